package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Plugin describes one community plugin release to install.
type Plugin struct {
	ID    string
	Repo  string   // owner/name on GitHub
	Files []string // release assets to fetch
}

// DefaultPlugins is the editor plugin set the vault setup installs.
func DefaultPlugins() []Plugin {
	return []Plugin{
		{ID: "templater-obsidian", Repo: "SilentVoid13/Templater", Files: []string{"main.js", "manifest.json", "styles.css"}},
		{ID: "dataview", Repo: "blacksmithgu/obsidian-dataview", Files: []string{"main.js", "manifest.json", "styles.css"}},
		{ID: "periodic-notes", Repo: "liamcain/obsidian-periodic-notes", Files: []string{"main.js", "manifest.json"}},
	}
}

func (p Plugin) assetURL(file string) string {
	return fmt.Sprintf("https://github.com/%s/releases/latest/download/%s", p.Repo, file)
}

type ProgressWriter struct {
	Total      int64
	Written    int64
	OnProgress func(written, total int64)
}

func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.Written += int64(n)
	if pw.OnProgress != nil {
		pw.OnProgress(pw.Written, pw.Total)
	}
	return n, nil
}

// Downloader fetches plugin release assets into the vault.
type Downloader struct {
	client *http.Client
}

func NewDownloader() *Downloader {
	return &Downloader{client: http.DefaultClient}
}

// InstallPlugin downloads a plugin's release assets into
// <vault>/.obsidian/plugins/<id>/. Already-present files are kept; a
// missing optional asset (styles.css) is not an error.
func (d *Downloader) InstallPlugin(ctx context.Context, vault string, p Plugin, onProgress func(file string, written, total int64)) error {
	dir := filepath.Join(vault, ObsidianDir, "plugins", p.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create plugin dir: %w", err)
	}

	for _, file := range p.Files {
		dest := filepath.Join(dir, file)
		if _, err := os.Stat(dest); err == nil {
			continue
		}

		var progress func(written, total int64)
		if onProgress != nil {
			f := file
			progress = func(written, total int64) { onProgress(f, written, total) }
		}

		err := d.download(ctx, p.assetURL(file), dest, progress)
		if err != nil {
			if file == "styles.css" {
				continue
			}
			return fmt.Errorf("fetch %s for %s: %w", file, p.ID, err)
		}
	}

	return nil
}

func (d *Downloader) download(ctx context.Context, url, dest string, onProgress func(written, total int64)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	tmpFile := dest + ".tmp"
	f, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	pw := &ProgressWriter{
		Total:      resp.ContentLength,
		OnProgress: onProgress,
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	closeErr := f.Close()

	if err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("write file: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("close file: %w", closeErr)
	}

	if err := os.Rename(tmpFile, dest); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("rename file: %w", err)
	}

	return nil
}

// EnablePlugins records plugin IDs in the vault's community-plugins.json,
// preserving plugins enabled by hand.
func EnablePlugins(vault string, ids ...string) error {
	path := filepath.Join(vault, ObsidianDir, "community-plugins.json")

	var existing []any
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &existing)
	}

	merged := AppendUnique(existing, ids...)

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal community plugins: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create obsidian dir: %w", err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0644); err != nil {
		return fmt.Errorf("write community plugins: %w", err)
	}
	return nil
}
