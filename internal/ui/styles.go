package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/focusflow/internal/config"
	"github.com/gubarz/focusflow/internal/render"
)

// StyleManager encapsulates all TUI styles and provides methods for style operations
type StyleManager struct {
	// Chrome styles
	Title      lipgloss.Style
	Mode       lipgloss.Style
	ActiveMode lipgloss.Style
	Meta       lipgloss.Style
	Dim        lipgloss.Style
	Error      lipgloss.Style
	Divider    lipgloss.Style
	Spinner    lipgloss.Style

	// Palette and code style handed to the document renderer
	Palette   render.Palette
	CodeStyle string
	Highlight bool
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		Mode:       lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("241")),
		ActiveMode: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")),
		Meta:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Divider:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Spinner:    lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Palette:    render.DefaultPalette,
		CodeStyle:  "monokai",
		Highlight:  true,
	}
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig() {
	s.Palette = render.Palette{
		Heading: config.GetColorHeading(),
		Link:    config.GetColorLink(),
		Code:    config.GetColorCode(),
		Quote:   config.GetColorQuote(),
		Dim:     config.GetColorDim(),
	}

	headingColor := render.ANSIColor(s.Palette.Heading)
	dimColor := render.ANSIColor(s.Palette.Dim)

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(headingColor)
	s.Mode = lipgloss.NewStyle().Padding(0, 1).Foreground(dimColor)
	s.ActiveMode = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("0")).Background(headingColor)
	s.Meta = lipgloss.NewStyle().Foreground(dimColor)
	s.Dim = lipgloss.NewStyle().Foreground(dimColor)
	s.Divider = lipgloss.NewStyle().Foreground(dimColor)

	s.Highlight = config.GetHighlight()
	s.CodeStyle = codeStyleForTheme(config.GetCodeStyle(), config.GetTheme(), lipgloss.HasDarkBackground())
}

// Terminal returns a document renderer using these styles
func (s *StyleManager) Terminal(width int) *render.Terminal {
	t := render.NewTerminal(s.Palette, width)
	t.CodeStyle = s.CodeStyle
	t.Highlight = s.Highlight
	return t
}

// codeStyleForTheme swaps the default dark chroma style for a light one on
// light terminals. An explicitly configured style is always kept.
func codeStyleForTheme(style, theme string, darkBackground bool) string {
	if style != "" && style != "monokai" {
		return style
	}
	switch theme {
	case "light":
		return "github"
	case "dark":
		return "monokai"
	default:
		if darkBackground {
			return "monokai"
		}
		return "github"
	}
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles updates the global styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}
