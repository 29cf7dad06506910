package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Bounds for the sweep and reset options. Values outside these ranges are
// clamped on load so a bad config can never stall or flood the dispatcher.
const (
	MinSweepEveryMinutes = 5
	MaxSweepEveryMinutes = 1440
	MinSweepMessages     = 10
	MaxSweepMessages     = 400
	MinSweepMaxFiles     = 1
	MaxSweepMaxFiles     = 500
	MinSweepStaleMinutes = 5
	MaxSweepStaleMinutes = 10080
	MinResetMessages     = 1
	MaxResetMessages     = 200
)

type Config struct {
	Vault      string `yaml:"vault"`
	NotesDir   string `yaml:"notes_dir"`
	JournalDir string `yaml:"journal_dir"`

	DispatcherBin string `yaml:"dispatcher_bin,omitempty"`
	Model         string `yaml:"model,omitempty"`

	Messages    int  `yaml:"messages"`
	ExpectFinal bool `yaml:"expect_final"`

	SweepEnabled      bool `yaml:"sweep_enabled"`
	SweepEveryMinutes int  `yaml:"sweep_every_minutes"`
	SweepMessages     int  `yaml:"sweep_messages"`
	SweepMaxFiles     int  `yaml:"sweep_max_files"`
	SweepStaleMinutes int  `yaml:"sweep_stale_minutes"`
}

func DefaultConfig() *Config {
	return &Config{
		NotesDir:          "notes",
		JournalDir:        "journal",
		DispatcherBin:     "claude",
		Messages:          40,
		SweepEnabled:      true,
		SweepEveryMinutes: 30,
		SweepMessages:     120,
		SweepMaxFiles:     20,
		SweepStaleMinutes: 120,
	}
}

// DefaultConfigPath returns the well-known config location,
// ~/.config/zettelclaw/config.yaml (or the platform equivalent).
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "zettelclaw", "config.yaml"), nil
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Clamp()
	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Clamp forces every bounded option into its allowed range.
func (c *Config) Clamp() {
	c.SweepEveryMinutes = clampInt(c.SweepEveryMinutes, MinSweepEveryMinutes, MaxSweepEveryMinutes)
	c.SweepMessages = clampInt(c.SweepMessages, MinSweepMessages, MaxSweepMessages)
	c.SweepMaxFiles = clampInt(c.SweepMaxFiles, MinSweepMaxFiles, MaxSweepMaxFiles)
	c.SweepStaleMinutes = clampInt(c.SweepStaleMinutes, MinSweepStaleMinutes, MaxSweepStaleMinutes)
	c.Messages = clampInt(c.Messages, MinResetMessages, MaxResetMessages)
	if c.DispatcherBin == "" {
		c.DispatcherBin = "claude"
	}
	if c.NotesDir == "" {
		c.NotesDir = "notes"
	}
	if c.JournalDir == "" {
		c.JournalDir = "journal"
	}
}

// NotesPath returns the absolute notes directory inside the vault.
func (c *Config) NotesPath() string {
	return filepath.Join(c.Vault, c.NotesDir)
}

// JournalPath returns the absolute journal directory inside the vault.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Vault, c.JournalDir)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
