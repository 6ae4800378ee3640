// Package config handles configuration loading and validation for revu.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	GitHub  GitHubConfig `yaml:"github"`
	Review  ReviewConfig `yaml:"review"`
	UI      UIConfig     `yaml:"ui"`
	DataDir string       `yaml:"-"` // set by caller, not from config file
}

// GitHubConfig configures the remote review service.
type GitHubConfig struct {
	BaseURL   string        `yaml:"base_url"`   // enterprise API url, empty for github.com
	UploadURL string        `yaml:"upload_url"` // enterprise upload url, defaults to base_url
	TokenEnv  string        `yaml:"token_env"`  // environment variable holding the token
	Timeout   time.Duration `yaml:"timeout"`
	PageSize  int           `yaml:"page_size"`
}

// ReviewConfig configures review behavior.
type ReviewConfig struct {
	// Ignore holds doublestar globs; matching files are hidden from the file list.
	Ignore       []string `yaml:"ignore"`
	DefaultEvent string   `yaml:"default_event"`
}

// UIConfig configures terminal rendering.
type UIConfig struct {
	Theme string `yaml:"theme"`
	// MarkdownStyle is "theme" to derive comment rendering from Theme, or a
	// glamour standard style name.
	MarkdownStyle string `yaml:"markdown_style"`
	WordWrap      int    `yaml:"word_wrap"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		GitHub: GitHubConfig{
			TokenEnv: "GITHUB_TOKEN",
			Timeout:  30 * time.Second,
			PageSize: 100,
		},
		Review: ReviewConfig{
			Ignore:       []string{},
			DefaultEvent: "COMMENT",
		},
		UI: UIConfig{
			Theme:         "tokyo-night",
			MarkdownStyle: "theme",
			WordWrap:      100,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.GitHub.TokenEnv == "" {
		c.GitHub.TokenEnv = defaults.GitHub.TokenEnv
	}
	if c.GitHub.Timeout == 0 {
		c.GitHub.Timeout = defaults.GitHub.Timeout
	}
	if c.GitHub.PageSize == 0 {
		c.GitHub.PageSize = defaults.GitHub.PageSize
	}
	if c.GitHub.UploadURL == "" {
		c.GitHub.UploadURL = c.GitHub.BaseURL
	}
	if c.Review.DefaultEvent == "" {
		c.Review.DefaultEvent = defaults.Review.DefaultEvent
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.MarkdownStyle == "" {
		c.UI.MarkdownStyle = defaults.UI.MarkdownStyle
	}
	if c.UI.WordWrap == 0 {
		c.UI.WordWrap = defaults.UI.WordWrap
	}
}

// Validate checks the structural invariants of the configuration.
// Field level checks live in ValidateDeep.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.GitHub.TokenEnv == "" {
		return fmt.Errorf("github.token_env cannot be empty")
	}

	if c.GitHub.PageSize < 1 || c.GitHub.PageSize > 100 {
		return fmt.Errorf("github.page_size must be between 1 and 100")
	}

	return nil
}

// Token reads the API token from the configured environment variable.
func (c *Config) Token() string {
	return os.Getenv(c.GitHub.TokenEnv)
}

// DatabaseFile returns the path to the tab database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "revu.db")
}

// LogFile returns the default log file location.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "revu.log")
}
