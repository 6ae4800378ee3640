// Package styles provides the shared lipgloss styles for command output.
package styles

import (
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// CurrentPalette is the active palette.
var CurrentPalette Palette

// Style exports.
var (
	HeaderStyle  lipgloss.Style
	MutedStyle   lipgloss.Style
	DividerStyle lipgloss.Style
	PathStyle    lipgloss.Style
	KeyStyle     lipgloss.Style

	StatusAddedStyle    lipgloss.Style
	StatusRemovedStyle  lipgloss.Style
	StatusModifiedStyle lipgloss.Style
	StatusRenamedStyle  lipgloss.Style

	HunkStyle       lipgloss.Style
	LineNumberStyle lipgloss.Style
	CursorLineStyle lipgloss.Style
	MarkerStyle     lipgloss.Style

	AuthorStyle   lipgloss.Style
	PendingStyle  lipgloss.Style
	ResolvedStyle lipgloss.Style
	OutdatedStyle lipgloss.Style
	ReactionStyle lipgloss.Style

	NoticeStyle  lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	MutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	DividerStyle = lipgloss.NewStyle().Foreground(p.Surface)
	PathStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	KeyStyle = lipgloss.NewStyle().Foreground(p.Secondary)

	StatusAddedStyle = lipgloss.NewStyle().Foreground(p.Success)
	StatusRemovedStyle = lipgloss.NewStyle().Foreground(p.Error)
	StatusModifiedStyle = lipgloss.NewStyle().Foreground(p.Warning)
	StatusRenamedStyle = lipgloss.NewStyle().Foreground(p.Secondary)

	HunkStyle = lipgloss.NewStyle().Foreground(p.Secondary).Faint(true)
	LineNumberStyle = lipgloss.NewStyle().Foreground(p.Muted).Width(5).Align(lipgloss.Right)
	CursorLineStyle = lipgloss.NewStyle().Background(p.Surface)
	MarkerStyle = lipgloss.NewStyle().Foreground(p.Warning).Bold(true)

	AuthorStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	PendingStyle = lipgloss.NewStyle().Foreground(p.Warning).Italic(true)
	ResolvedStyle = lipgloss.NewStyle().Foreground(p.Success)
	OutdatedStyle = lipgloss.NewStyle().Foreground(p.Muted).Italic(true)
	ReactionStyle = lipgloss.NewStyle().Foreground(p.Muted)

	NoticeStyle = lipgloss.NewStyle().Foreground(p.Warning)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error).Bold(true)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

func hex(c lipgloss.Color) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() ansi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig
	p := CurrentPalette

	fg := hex(p.Foreground)
	primary := hex(p.Primary)
	secondary := hex(p.Secondary)
	muted := hex(p.Muted)

	cfg.Document.Color = fg
	cfg.Document.Margin = nil
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = hex(p.Surface)
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Color = muted

	return cfg
}
