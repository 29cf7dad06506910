package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Vault folder names created by setup beyond the configured notes and
// journal directories.
const (
	TemplatesDir   = "templates"
	AttachmentsDir = "attachments"
	ObsidianDir    = ".obsidian"
)

const noteTemplate = `---
created: {{date}}
tags: []
---

`

const dailyTemplate = `---
created: {{date}}
tags: [journal]
---

## Log

## Notes

`

const vaultGitignore = `.obsidian/workspace.json
.obsidian/workspace-mobile.json
.trash/
.DS_Store
`

// ScaffoldVault creates the vault folder layout and starter templates.
// Existing files are left alone so setup is safe to re-run.
func ScaffoldVault(cfg *Config) error {
	if cfg.Vault == "" {
		return fmt.Errorf("vault path is not set")
	}

	dirs := []string{
		cfg.NotesPath(),
		cfg.JournalPath(),
		filepath.Join(cfg.Vault, TemplatesDir),
		filepath.Join(cfg.Vault, AttachmentsDir),
		filepath.Join(cfg.Vault, ObsidianDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	templates := map[string]string{
		filepath.Join(cfg.Vault, TemplatesDir, "note.md"):  noteTemplate,
		filepath.Join(cfg.Vault, TemplatesDir, "daily.md"): dailyTemplate,
		filepath.Join(cfg.Vault, ".gitignore"):             vaultGitignore,
	}
	for path, content := range templates {
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	return nil
}

// CheckVault verifies the vault and its notes and journal directories
// exist. The hook checks these but never creates them.
func CheckVault(cfg *Config) error {
	for _, dir := range []string{cfg.Vault, cfg.NotesPath(), cfg.JournalPath()} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory missing: %s", dir)
		}
		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", dir)
		}
	}
	return nil
}

// DailyNotePath returns the journal note path for a date.
func DailyNotePath(cfg *Config, date time.Time) string {
	return filepath.Join(cfg.JournalPath(), date.Format("2006-01-02")+".md")
}

// ReadDailyNote returns the existing journal note content for a date, or
// "" when absent or unreadable. Used as working context for dispatches.
func ReadDailyNote(cfg *Config, date time.Time) string {
	data, err := os.ReadFile(DailyNotePath(cfg, date))
	if err != nil {
		return ""
	}
	return string(data)
}
