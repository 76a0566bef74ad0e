// Package gitrepo provides local git working tree operations: init, staging,
// conditional commits, branch creation and token-authenticated pushes.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Service performs git operations on local working trees. The token is used
// for HTTP basic auth on push, so no credential helper or stored remote
// credential is ever consulted.
type Service struct {
	token       string
	authorName  string
	authorEmail string
}

func NewService(token, authorName, authorEmail string) *Service {
	return &Service{
		token:       token,
		authorName:  authorName,
		authorEmail: authorEmail,
	}
}

// Exists reports whether the working tree directory is present on disk.
func (s *Service) Exists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// Init creates the directory and initializes a repository whose HEAD points
// at the given default branch.
func (s *Service) Init(dir, defaultBranch string) error {
	slog.Info("Initializing working tree", "dir", dir, "default_branch", defaultBranch)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create working tree directory: %w", err)
	}

	_, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(defaultBranch),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	return nil
}

// AddRemote configures a remote if it is not configured yet. An existing
// remote with the same name is left untouched.
func (s *Service) AddRemote(dir, name, url string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	if errors.Is(err, git.ErrRemoteExists) {
		slog.Debug("Remote already configured", "dir", dir, "remote", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to add remote %s: %w", name, err)
	}

	slog.Info("Remote configured", "dir", dir, "remote", name, "url", url)
	return nil
}

// CommitAll stages every working tree change and commits only if the stage
// is non-empty. Committing with nothing staged is a benign skip, not an
// error; the returned bool reports whether a commit was created.
func (s *Service) CommitAll(dir, message string) (bool, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return false, fmt.Errorf("failed to open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return false, fmt.Errorf("failed to stage changes: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree status: %w", err)
	}
	if status.IsClean() {
		slog.Debug("Nothing to commit", "dir", dir)
		return false, nil
	}

	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  s.authorName,
			Email: s.authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}

	slog.Info("Committed working tree changes", "dir", dir, "message", message)
	return true, nil
}

// CreateBranch points a new branch at the current HEAD. An existing branch
// is left where it is.
func (s *Service) CreateBranch(dir, name string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	refName := plumbing.NewBranchReferenceName(name)
	if _, err := repo.Reference(refName, false); err == nil {
		slog.Debug("Branch already exists", "dir", dir, "branch", name)
		return nil
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}

	if err := repo.Storer.SetReference(plumbing.NewHashReference(refName, head.Hash())); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", name, err)
	}

	slog.Info("Branch created", "dir", dir, "branch", name)
	return nil
}

// Push pushes the given branches to the named remote, in order, using the
// configured token for authentication. Any push failure is returned
// immediately; the local commits are never rolled back.
func (s *Service) Push(ctx context.Context, dir, remote string, branches []string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	auth := &githttp.BasicAuth{
		Username: "x-access-token",
		Password: s.token,
	}

	for _, branch := range branches {
		slog.Info("Pushing branch", "dir", dir, "remote", remote, "branch", branch)

		refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
		err := repo.PushContext(ctx, &git.PushOptions{
			RemoteName: remote,
			RefSpecs:   []gitconfig.RefSpec{refSpec},
			Auth:       auth,
		})
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			slog.Debug("Branch already up to date", "branch", branch)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to push branch %s: %w", branch, err)
		}
	}
	return nil
}

// Remove deletes the working tree. If the process's current working
// directory is inside the target, it first changes to the parent so the
// process is not left running from a deleted directory.
func (s *Service) Remove(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve working tree path: %w", err)
	}

	cwd, err := os.Getwd()
	if err == nil && isWithin(absDir, cwd) {
		parent := filepath.Dir(absDir)
		slog.Warn("Current directory is inside the working tree, moving out", "cwd", cwd, "parent", parent)
		if err := os.Chdir(parent); err != nil {
			return fmt.Errorf("failed to leave working tree before removal: %w", err)
		}
	}

	if err := os.RemoveAll(absDir); err != nil {
		return fmt.Errorf("failed to remove working tree: %w", err)
	}

	slog.Info("Working tree removed", "dir", absDir)
	return nil
}

// isWithin reports whether path is root or located under root.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}
