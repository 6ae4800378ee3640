package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/colonyops/revu/internal/core/styles"
)

// StyleTheme derives comment rendering from the active color theme.
const StyleTheme = "theme"

// Markdown renders comment bodies.
type Markdown struct {
	r *glamour.TermRenderer
}

// NewMarkdown builds a renderer for style, which is StyleTheme, "auto" or a
// glamour standard style name.
func NewMarkdown(style string, wordWrap int) (*Markdown, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wordWrap)}

	switch style {
	case StyleTheme, "":
		opts = append(opts, glamour.WithStyles(styles.GlamourStyle()))
	case "auto":
		opts = append(opts, glamour.WithAutoStyle())
	default:
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &Markdown{r: r}, nil
}

// Render renders body. The raw text is returned when rendering fails or m is
// nil.
func (m *Markdown) Render(body string) string {
	if m == nil {
		return body
	}

	out, err := m.r.Render(body)
	if err != nil {
		return body
	}
	return strings.Trim(out, "\n")
}
