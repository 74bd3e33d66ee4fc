package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Base16 color palette with orange, brown, yellow, and pink tones
// Based on Autumn theme with warm earth tones
var (
	// Base colors (backgrounds and text)
	ColorBase00 = lipgloss.Color("#1a1816") // Dark background
	ColorBase01 = lipgloss.Color("#282420") // Lighter background
	ColorBase02 = lipgloss.Color("#36302a") // Selection background
	ColorBase03 = lipgloss.Color("#5c5044") // Comments, invisibles
	ColorBase04 = lipgloss.Color("#83715f") // Dark foreground
	ColorBase05 = lipgloss.Color("#ab937b") // Default foreground
	ColorBase06 = lipgloss.Color("#d3b597") // Light foreground

	ColorRed    = lipgloss.Color("#d95f5f")
	ColorOrange = lipgloss.Color("#eb8755")
	ColorYellow = lipgloss.Color("#f5b761")
	ColorGreen  = lipgloss.Color("#93b56b")
	ColorCyan   = lipgloss.Color("#61afaf")
	ColorBlue   = lipgloss.Color("#6b93b5")
	ColorViolet = lipgloss.Color("#6c71c4")

	// UI specific colors
	ColorBorder  = ColorBase03
	ColorFocus   = ColorOrange
	ColorError   = ColorRed
	ColorInfo    = ColorCyan
	ColorMuted   = ColorBase03
	ColorSuccess = ColorGreen
)

// Styles defines the Lipgloss styles for the TUI components
type Styles struct {
	// Messages
	UserMessage      lipgloss.Style
	UserLabel        lipgloss.Style
	AssistantMessage lipgloss.Style
	AssistantLabel   lipgloss.Style
	ErrorMessage     lipgloss.Style
	ThinkingMessage  lipgloss.Style

	// Source panel
	SourcesTitle       lipgloss.Style
	SourceTitle        lipgloss.Style
	SourceURL          lipgloss.Style
	SourcesPlaceholder lipgloss.Style

	// Chrome
	InputBorder lipgloss.Style
	Notice      lipgloss.Style
	StatusBar   lipgloss.Style
	StatusText  lipgloss.Style
	StatusTimer lipgloss.Style
	StatusIcon  lipgloss.Style
	Separator   lipgloss.Style
}

// DefaultStyles returns the default Lipgloss styles
func DefaultStyles() *Styles {
	return &Styles{
		UserMessage: lipgloss.NewStyle().
			Foreground(ColorGreen),
		UserLabel: lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true),
		AssistantMessage: lipgloss.NewStyle().
			Foreground(ColorBase06),
		AssistantLabel: lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true),
		ErrorMessage: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		ThinkingMessage: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true),

		SourcesTitle: lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true),
		SourceTitle: lipgloss.NewStyle().
			Foreground(ColorInfo),
		SourceURL: lipgloss.NewStyle().
			Foreground(ColorBase04).
			Underline(true),
		SourcesPlaceholder: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true),

		InputBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorFocus),
		Notice: lipgloss.NewStyle().
			Foreground(ColorYellow),
		StatusBar: lipgloss.NewStyle().
			Background(ColorBase01).
			Padding(0, 1),
		StatusText: lipgloss.NewStyle().
			Foreground(ColorBase05),
		StatusTimer: lipgloss.NewStyle().
			Foreground(ColorBase04),
		StatusIcon: lipgloss.NewStyle().
			Foreground(ColorOrange),
		Separator: lipgloss.NewStyle().
			Foreground(ColorBase03),
	}
}
