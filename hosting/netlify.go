// Package hosting implements the hosting provider on the Netlify API.
//
// Responses are always decoded into typed structs; a payload that does not
// parse is surfaced as a TransientError instead of proceeding with an empty
// identifier.
package hosting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/siteforge-io/siteforge/domain"
)

const (
	providerName   = "netlify"
	defaultBaseURL = "https://api.netlify.com/api/v1"
)

// Site holds the identifying attributes of a hosting site.
type Site struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	URL           string        `json:"url"`
	AdminURL      string        `json:"admin_url"`
	BuildSettings BuildSettings `json:"build_settings"`
}

// BuildSettings is the subset of site build configuration siteforge manages.
type BuildSettings struct {
	AllowedBranches []string `json:"allowed_branches,omitempty"`
}

// CreateSiteRequest describes a new site.
type CreateSiteRequest struct {
	Name        string `json:"name"`
	AccountSlug string `json:"account_slug,omitempty"`
	// ManualDeploys disables the provider's own CI; deploys happen through
	// the published repository instead.
	ManualDeploys bool `json:"manual_deploys,omitempty"`
}

type envVarUpdate struct {
	Context string `json:"context"`
	Value   string `json:"value"`
}

type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Client is a minimal typed client for the Netlify REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	accountID  string
}

func NewClient(token, accountID string) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		baseURL:    defaultBaseURL,
		token:      token,
		accountID:  accountID,
	}
}

// NewClientWithBaseURL targets a non-default API endpoint (for testing).
func NewClientWithBaseURL(token, accountID, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		accountID:  accountID,
	}
}

// GetSite fetches a site by id. Returns domain.ErrNotFound when no such site
// exists.
func (c *Client) GetSite(ctx context.Context, siteID string) (*Site, error) {
	var site Site
	if err := c.do(ctx, http.MethodGet, "/sites/"+url.PathEscape(siteID), nil, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// CreateSite creates a new site under the configured account.
func (c *Client) CreateSite(ctx context.Context, req CreateSiteRequest) (*Site, error) {
	slog.Info("Creating site", "name", req.Name, "account", req.AccountSlug)

	var site Site
	if err := c.do(ctx, http.MethodPost, "/sites", req, &site); err != nil {
		return nil, err
	}
	if site.ID == "" {
		return nil, &domain.TransientError{
			Op:  "create site response missing id",
			Err: fmt.Errorf("provider returned no site id for %q", req.Name),
		}
	}

	slog.Info("Site created", "site_id", site.ID, "name", site.Name, "url", site.URL)
	return &site, nil
}

// UpdateAllowedBranches restricts which branches the site deploys from.
func (c *Client) UpdateAllowedBranches(ctx context.Context, siteID string, branches []string) error {
	slog.Info("Updating site build settings", "site_id", siteID, "allowed_branches", branches)

	body := struct {
		BuildSettings BuildSettings `json:"build_settings"`
	}{BuildSettings: BuildSettings{AllowedBranches: branches}}

	return c.do(ctx, http.MethodPatch, "/sites/"+url.PathEscape(siteID), body, nil)
}

// SetEnvVar upserts one environment variable value for one deploy context on
// the given site. Calling it redundantly is safe; the provider replaces the
// value unconditionally.
func (c *Client) SetEnvVar(ctx context.Context, siteID, key, value string, dctx domain.DeployContext) error {
	slog.Info("Setting environment variable", "site_id", siteID, "key", key, "context", dctx)

	path := fmt.Sprintf("/accounts/%s/env/%s?site_id=%s",
		url.PathEscape(c.accountID), url.PathEscape(key), url.QueryEscape(siteID))
	update := envVarUpdate{Context: dctx.HostingContext(), Value: value}

	return c.do(ctx, http.MethodPatch, path, update, nil)
}

// DeleteSite deletes a site by id. Returns domain.ErrNotFound when the site
// is already gone.
func (c *Client) DeleteSite(ctx context.Context, siteID string) error {
	slog.Info("Deleting site", "site_id", siteID)
	return c.do(ctx, http.MethodDelete, "/sites/"+url.PathEscape(siteID), nil, nil)
}

// do issues one API request and decodes the response into out (when non-nil),
// mapping failures onto the siteforge error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := fmt.Sprintf("%s %s", method, path)

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.TransientError{Op: op, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Debug("Failed to close response body", "error", err)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &domain.AuthError{Provider: providerName, Err: decodeError(resp)}
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s: %w", op, decodeError(resp))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.TransientError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var apiErr apiError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("provider returned %d", resp.StatusCode)
}
