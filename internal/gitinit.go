package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	DefaultBranch = "main"
	DefaultAuthor = "zettelclaw"
	DefaultEmail  = "zettelclaw@local"
)

// IsGitRepo reports whether root already carries a git repository.
func IsGitRepo(root string) bool {
	info, err := os.Stat(filepath.Join(root, ".git"))
	return err == nil && info.IsDir()
}

// InitVaultRepo initializes the vault as a git repository with an initial
// commit of the scaffolded layout. Safe to skip when a repository already
// exists.
func InitVaultRepo(root string) error {
	repo, err := git.PlainInit(root, false)
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}

	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}
	cfg.Init.DefaultBranch = DefaultBranch
	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("set config: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("stage vault files: %w", err)
	}

	_, err = worktree.Commit("init: scaffold vault", &git.CommitOptions{
		Author: &object.Signature{
			Name:  DefaultAuthor,
			Email: DefaultEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	return nil
}
