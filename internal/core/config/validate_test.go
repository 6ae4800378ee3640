package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func fieldErrors(t *testing.T, err error) criterio.FieldErrors {
	t.Helper()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	return fieldErrs
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.GitHub.BaseURL = "https://ghe.example.com/api/v3/"
	cfg.Review.Ignore = []string{"**/*_gen.go", "docs/*.md"}

	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_InvalidIgnoreGlob(t *testing.T) {
	cfg := validConfig(t)
	cfg.Review.Ignore = []string{"ok/**", "bad/[", "also[bad"}

	fieldErrs := fieldErrors(t, cfg.ValidateDeep(""))
	require.Len(t, fieldErrs, 2)
	assert.Equal(t, "review.ignore[1]", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "invalid glob")
}

func TestValidateDeep_DefaultEvent(t *testing.T) {
	cfg := validConfig(t)
	cfg.Review.DefaultEvent = "MERGE"

	fieldErrs := fieldErrors(t, cfg.ValidateDeep(""))
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "review.default_event", fieldErrs[0].Field)
}

func TestValidateDeep_GitHub(t *testing.T) {
	cfg := validConfig(t)
	cfg.GitHub.BaseURL = "ftp://example.com"
	cfg.GitHub.Timeout = -1

	fieldErrs := fieldErrors(t, cfg.ValidateDeep(""))

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "github.base_url")
	assert.Contains(t, fields, "github.timeout")
}

func TestValidateDeep_UI(t *testing.T) {
	cfg := validConfig(t)
	cfg.UI.Theme = "solarized"
	cfg.UI.MarkdownStyle = "neon"
	cfg.UI.WordWrap = 5

	fieldErrs := fieldErrors(t, cfg.ValidateDeep(""))
	require.Len(t, fieldErrs, 3)
	assert.Equal(t, "ui.theme", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "tokyo-night")
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	fieldErrs := fieldErrors(t, cfg.ValidateDeep(t.TempDir()))
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "config_file", fieldErrs[0].Field)
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(cfg.DataDir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.DataDir = file

	fieldErrs := fieldErrors(t, cfg.ValidateDeep(""))
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "data_dir", fieldErrs[0].Field)
}

func TestWarnings(t *testing.T) {
	t.Setenv("REVU_EMPTY_TOKEN", "")

	cfg := validConfig(t)
	cfg.GitHub.TokenEnv = "REVU_EMPTY_TOKEN"
	cfg.GitHub.UploadURL = "https://uploads.example.com/"

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "GitHub", warnings[0].Category)
	assert.Equal(t, "upload_url", warnings[1].Item)
}
