// Package config loads siteforge settings from an env file into an explicit
// configuration object. Nothing is exported into the process environment;
// every component receives the values it needs through this struct.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/siteforge-io/siteforge/domain"
)

// Operation selects which settings are required before any mutating call.
type Operation int

const (
	OperationProvision Operation = iota
	OperationTeardown
	OperationHistory
)

// Settings file keys.
const (
	KeyGitHubToken        = "GITHUB_TOKEN"
	KeyNetlifyAuthToken   = "NETLIFY_AUTH_TOKEN"
	KeyNetlifyAccountID   = "NETLIFY_ACCOUNT_ID"
	KeySupabaseURL        = "SUPABASE_URL"
	KeySupabaseAnonKey    = "SUPABASE_ANON_KEY"
	KeySupabaseDevURL     = "SUPABASE_DEV_URL"
	KeySupabaseDevAnonKey = "SUPABASE_DEV_ANON_KEY"
	KeySupabaseDBPassword = "SUPABASE_DB_PASSWORD"
	KeySupabaseProjectID  = "SUPABASE_PROJECT_ID"
	KeySupabaseAccessTok  = "SUPABASE_ACCESS_TOKEN"
	KeyMasterKey          = "SITEFORGE_MASTER_KEY"
)

// EnvProvider abstracts process environment access for testing.
type EnvProvider interface {
	Getenv(key string) string
	UserHomeDir() (string, error)
}

// DefaultEnvProvider implements EnvProvider using real OS functions.
type DefaultEnvProvider struct{}

func (p *DefaultEnvProvider) Getenv(key string) string { return os.Getenv(key) }

func (p *DefaultEnvProvider) UserHomeDir() (string, error) { return os.UserHomeDir() }

// Config holds every setting used by siteforge components.
type Config struct {
	// Provider credentials and identifiers
	GitHubToken         string
	NetlifyAuthToken    string
	NetlifyAccountID    string
	SupabaseURL         string
	SupabaseAnonKey     string
	SupabaseDevURL      string
	SupabaseDevAnonKey  string
	SupabaseDBPassword  string
	SupabaseProjectID   string
	SupabaseAccessToken string

	// Core paths
	DataDir      string
	DatabasePath string
	WorkspaceDir string

	// Logging
	LogLevel     string
	ColorEnabled bool

	// Commit authorship for the publish step
	GitAuthorName  string
	GitAuthorEmail string

	env EnvProvider
}

// GetDefaultDataDir returns the default siteforge data directory following
// the XDG Base Directory specification.
func GetDefaultDataDir() string {
	return getDefaultDataDirWithEnv(&DefaultEnvProvider{})
}

func getDefaultDataDirWithEnv(env EnvProvider) string {
	if xdgDataHome := env.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "siteforge")
	}
	homeDir, _ := env.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "siteforge")
}

// Load reads the settings file, overlays process environment variables and
// decrypts any *_ENC secrets. Required-key validation is deferred to
// RequireFor so that each operation can demand only the keys it uses.
func Load(envFile string) (*Config, error) {
	return loadWithEnv(&DefaultEnvProvider{}, envFile)
}

// LoadWithEnv is Load with a custom environment provider (for testing).
func LoadWithEnv(env EnvProvider, envFile string) (*Config, error) {
	return loadWithEnv(env, envFile)
}

func loadWithEnv(env EnvProvider, envFile string) (*Config, error) {
	c := &Config{env: env}
	c.setDefaults()

	settings, err := readSettingsFile(envFile)
	if err != nil {
		return nil, err
	}

	// Process environment overrides the settings file.
	get := func(key string) string {
		if v := env.Getenv(key); v != "" {
			return v
		}
		return settings[key]
	}

	if err := decryptSettings(settings, get(KeyMasterKey)); err != nil {
		return nil, err
	}

	c.GitHubToken = get(KeyGitHubToken)
	c.NetlifyAuthToken = get(KeyNetlifyAuthToken)
	c.NetlifyAccountID = get(KeyNetlifyAccountID)
	c.SupabaseURL = get(KeySupabaseURL)
	c.SupabaseAnonKey = get(KeySupabaseAnonKey)
	c.SupabaseDevURL = get(KeySupabaseDevURL)
	c.SupabaseDevAnonKey = get(KeySupabaseDevAnonKey)
	c.SupabaseDBPassword = get(KeySupabaseDBPassword)
	c.SupabaseProjectID = get(KeySupabaseProjectID)
	c.SupabaseAccessToken = get(KeySupabaseAccessTok)

	c.loadAmbientFromEnv()
	c.derivePaths()

	return c, nil
}

func readSettingsFile(envFile string) (map[string]string, error) {
	if envFile == "" {
		envFile = ".env"
	}
	settings, err := godotenv.Read(envFile)
	if err != nil {
		if os.IsNotExist(err) {
			// Settings may come entirely from the process environment.
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", envFile, err)
	}
	return settings, nil
}

func (c *Config) setDefaults() {
	c.DataDir = getDefaultDataDirWithEnv(c.env)
	c.LogLevel = "info"
	c.ColorEnabled = true
	c.GitAuthorName = "siteforge"
	c.GitAuthorEmail = "siteforge@localhost"

	if wd, err := os.Getwd(); err == nil {
		c.WorkspaceDir = wd
	}
}

func (c *Config) loadAmbientFromEnv() {
	if v := c.env.Getenv("SITEFORGE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := c.env.Getenv("SITEFORGE_WORKSPACE_DIR"); v != "" {
		c.WorkspaceDir = v
	}
	if v := c.env.Getenv("SITEFORGE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := c.env.Getenv("SITEFORGE_COLOR_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.ColorEnabled = enabled
		}
	}
	if v := c.env.Getenv("SITEFORGE_GIT_AUTHOR_NAME"); v != "" {
		c.GitAuthorName = v
	}
	if v := c.env.Getenv("SITEFORGE_GIT_AUTHOR_EMAIL"); v != "" {
		c.GitAuthorEmail = v
	}
}

func (c *Config) derivePaths() {
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, "siteforge.db")
	}
}

// RequireFor validates that every setting the given operation needs is
// present. Validation happens once, before any mutating call is issued.
func (c *Config) RequireFor(op Operation) error {
	required := map[string]string{}

	switch op {
	case OperationProvision:
		required[KeyGitHubToken] = c.GitHubToken
		required[KeyNetlifyAuthToken] = c.NetlifyAuthToken
		required[KeyNetlifyAccountID] = c.NetlifyAccountID
		required[KeySupabaseURL] = c.SupabaseURL
		required[KeySupabaseAnonKey] = c.SupabaseAnonKey
		required[KeySupabaseDevURL] = c.SupabaseDevURL
		required[KeySupabaseDevAnonKey] = c.SupabaseDevAnonKey
		required[KeySupabaseDBPassword] = c.SupabaseDBPassword
		required[KeySupabaseProjectID] = c.SupabaseProjectID
		required[KeySupabaseAccessTok] = c.SupabaseAccessToken
	case OperationTeardown:
		required[KeyGitHubToken] = c.GitHubToken
		required[KeyNetlifyAuthToken] = c.NetlifyAuthToken
	case OperationHistory:
		// Journal access only, no provider credentials.
	}

	var missing []string
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &domain.ConfigError{Missing: missing}
	}
	return nil
}

// DatabaseSettings returns the (URL, anon key) pair applied to the hosting
// site for the given deploy context. Production uses the live database;
// staging and branch previews share the development database.
func (c *Config) DatabaseSettings(ctx domain.DeployContext) (url, anonKey string) {
	if ctx == domain.DeployContextProduction {
		return c.SupabaseURL, c.SupabaseAnonKey
	}
	return c.SupabaseDevURL, c.SupabaseDevAnonKey
}
