package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/colonyops/revu/internal/core/review"
	"github.com/colonyops/revu/internal/core/styles"
	"github.com/hay-kot/criterio"
)

// markdownStyles are the glamour standard styles plus "theme".
var markdownStyles = map[string]bool{
	"theme":       true,
	"auto":        true,
	"ascii":       true,
	"dark":        true,
	"light":       true,
	"notty":       true,
	"pink":        true,
	"dracula":     true,
	"tokyo-night": true,
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration
// including glob syntax, urls and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips the
// config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateGitHub(),
		c.validateReview(),
		c.validateUI(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Token() == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "GitHub",
			Item:     c.GitHub.TokenEnv,
			Message:  "token environment variable is empty; requests will be unauthenticated",
		})
	}

	if c.GitHub.UploadURL != "" && c.GitHub.BaseURL == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "GitHub",
			Item:     "upload_url",
			Message:  "upload_url is ignored without base_url",
		})
	}

	return warnings
}

func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func (c *Config) validateGitHub() error {
	var errs criterio.FieldErrorsBuilder
	if c.GitHub.Timeout <= 0 {
		errs = errs.Append("github.timeout", errors.New("must be positive"))
	}

	return criterio.ValidateStruct(
		criterio.Run("github.base_url", c.GitHub.BaseURL, absoluteURL),
		criterio.Run("github.upload_url", c.GitHub.UploadURL, absoluteURL),
		errs.ToError(),
	)
}

func (c *Config) validateReview() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Review.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("review.ignore[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}

	if _, ok := review.ParseSubmitEvent(c.Review.DefaultEvent); !ok {
		errs = errs.Append("review.default_event", fmt.Errorf("unknown event %q", c.Review.DefaultEvent))
	}

	return errs.ToError()
}

func (c *Config) validateUI() error {
	var errs criterio.FieldErrorsBuilder
	if _, ok := styles.GetPalette(c.UI.Theme); !ok {
		errs = errs.Append("ui.theme", fmt.Errorf("unknown theme %q, available: %s", c.UI.Theme, strings.Join(styles.ThemeNames(), ", ")))
	}
	if !markdownStyles[c.UI.MarkdownStyle] {
		errs = errs.Append("ui.markdown_style", fmt.Errorf("unknown style %q", c.UI.MarkdownStyle))
	}
	if c.UI.WordWrap < 20 {
		errs = errs.Append("ui.word_wrap", errors.New("must be at least 20"))
	}
	return errs.ToError()
}

func absoluteURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must be http or https, got %q", raw)
	}
	return nil
}
