// Package database drives the Supabase CLI for project linking and schema
// migrations. The CLI is the provider's only non-interactive surface, so
// every operation is a blocking subprocess invocation.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/siteforge-io/siteforge/domain"
)

// The provider CLI writes the linked project ref under the working tree.
const linkMarkerPath = "supabase/.temp/project-ref"

// commandRunner abstracts subprocess execution for testing.
type commandRunner interface {
	Run(ctx context.Context, dir string, env []string, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	slog.Debug("Executing command", "command", name, "args", args, "dir", dir)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)

	output, err := cmd.CombinedOutput()
	outputStr := string(output)

	if err != nil {
		slog.Error("Command failed", "command", name, "args", args, "error", err, "output", outputStr)
		return outputStr, fmt.Errorf("%s command failed: %w", name, err)
	}

	slog.Debug("Command completed", "command", name, "output_length", len(outputStr))
	return outputStr, nil
}

// Service links working trees to a Supabase project and pushes pending
// migrations.
type Service struct {
	runner      commandRunner
	projectID   string
	dbPassword  string
	accessToken string
}

func NewService(projectID, dbPassword, accessToken string) *Service {
	return &Service{
		runner:      execRunner{},
		projectID:   projectID,
		dbPassword:  dbPassword,
		accessToken: accessToken,
	}
}

// LinkedProjectRef returns the project ref the working tree is linked to, or
// domain.ErrNotFound when the link marker is absent.
func (s *Service) LinkedProjectRef(workingDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(workingDir, filepath.FromSlash(linkMarkerPath)))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no database link marker: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("failed to read database link marker: %w", err)
	}

	ref := strings.TrimSpace(string(data))
	if ref == "" {
		return "", fmt.Errorf("database link marker is empty: %w", domain.ErrNotFound)
	}
	return ref, nil
}

// Link links the working tree to the configured project. The access token is
// passed to the subprocess explicitly; nothing is exported into the parent
// process environment.
func (s *Service) Link(ctx context.Context, workingDir string) error {
	slog.Info("Linking database project", "project_ref", s.projectID, "dir", workingDir)

	_, err := s.runner.Run(ctx, workingDir,
		[]string{"SUPABASE_ACCESS_TOKEN=" + s.accessToken},
		"supabase", "link",
		"--project-ref", s.projectID,
		"--password", s.dbPassword,
	)
	if err != nil {
		return fmt.Errorf("failed to link database project %s: %w", s.projectID, err)
	}

	slog.Info("Database project linked", "project_ref", s.projectID)
	return nil
}

// Push applies all pending migrations non-interactively. A rejected push is
// fatal for the invocation: an unapplied schema change would invalidate any
// code deployed afterwards.
func (s *Service) Push(ctx context.Context, workingDir string) error {
	slog.Info("Pushing database migrations", "dir", workingDir)

	_, err := s.runner.Run(ctx, workingDir,
		[]string{"SUPABASE_ACCESS_TOKEN=" + s.accessToken},
		"supabase", "db", "push",
		"--password", s.dbPassword,
	)
	if err != nil {
		return fmt.Errorf("failed to push migrations: %w", err)
	}

	slog.Info("Database migrations pushed")
	return nil
}
