// Package githost implements the hosted repository provider on the GitHub API.
package githost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v68/github"
	"github.com/siteforge-io/siteforge/domain"
	"golang.org/x/oauth2"
)

const providerName = "github"

// Repository holds the identifying attributes of a hosted repository.
type Repository struct {
	Owner    string
	Name     string
	FullName string
	CloneURL string
}

// Client wraps the GitHub API for the operations siteforge consumes.
type Client struct {
	gh *github.Client
}

func NewClient(token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{gh: github.NewClient(oauth2.NewClient(context.Background(), ts))}
}

// NewClientWithBaseURL targets a non-default API endpoint (for testing).
func NewClientWithBaseURL(token, baseURL string) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	gh, err := github.NewClient(oauth2.NewClient(context.Background(), ts)).WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure GitHub base URL: %w", err)
	}
	return &Client{gh: gh}, nil
}

// CurrentUser returns the login of the authenticated user. The repository
// owner is always derived from this call, never assumed.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	user, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", classify("failed to identify GitHub user", resp, err)
	}
	return user.GetLogin(), nil
}

// GetRepository looks up a repository by owner and name. Returns
// domain.ErrNotFound when the repository does not exist.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*Repository, error) {
	repo, resp, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, classify(fmt.Sprintf("failed to look up repository %s/%s", owner, name), resp, err)
	}
	return fromGitHub(repo), nil
}

// CreateRepository creates a private repository for the authenticated user.
// The initial branch is established by the first push, so the repository is
// created empty.
func (c *Client) CreateRepository(ctx context.Context, name string) (*Repository, error) {
	slog.Info("Creating repository", "name", name)

	repo, resp, err := c.gh.Repositories.Create(ctx, "", &github.Repository{
		Name:    github.Ptr(name),
		Private: github.Ptr(true),
	})
	if err != nil {
		return nil, classify(fmt.Sprintf("failed to create repository %s", name), resp, err)
	}

	slog.Info("Repository created", "full_name", repo.GetFullName())
	return fromGitHub(repo), nil
}

// DeleteRepository deletes a repository. Returns domain.ErrNotFound when the
// repository is already gone.
func (c *Client) DeleteRepository(ctx context.Context, owner, name string) error {
	slog.Info("Deleting repository", "owner", owner, "name", name)

	resp, err := c.gh.Repositories.Delete(ctx, owner, name)
	if err != nil {
		return classify(fmt.Sprintf("failed to delete repository %s/%s", owner, name), resp, err)
	}
	return nil
}

func fromGitHub(repo *github.Repository) *Repository {
	return &Repository{
		Owner:    repo.GetOwner().GetLogin(),
		Name:     repo.GetName(),
		FullName: repo.GetFullName(),
		CloneURL: repo.GetCloneURL(),
	}
}

// classify maps a GitHub API failure onto the siteforge error taxonomy:
// 401/403 is an AuthError, 404 is ErrNotFound, anything else (including
// transport failures) is a TransientError.
func classify(op string, resp *github.Response, err error) error {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &domain.AuthError{Provider: providerName, Err: err}
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return &domain.TransientError{Op: op, Err: err}
}
