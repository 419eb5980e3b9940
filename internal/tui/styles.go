package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App        lipgloss.Style
	Title      lipgloss.Style
	Spinner    lipgloss.Style
	URL        lipgloss.Style
	Count      lipgloss.Style
	Accessible lipgloss.Style
	NotFound   lipgloss.Style
	Error      lipgloss.Style
	Warning    lipgloss.Style
	HintKey    lipgloss.Style // Key portion of hints (e.g., "q")
	HintDesc   lipgloss.Style // Description portion of hints (e.g., "cancel")
}

// DefaultStyles returns the default style configuration.
// Industrial design: grayscale with single desaturated teal accent, plus
// muted status colours for the tallies.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"} // main text
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}  // secondary text
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}  // desaturated teal
	good := lipgloss.AdaptiveColor{Light: "#5A7A4A", Dark: "#87A06F"}
	bad := lipgloss.AdaptiveColor{Light: "#8A4A4A", Dark: "#B07070"}
	warn := lipgloss.AdaptiveColor{Light: "#8A7440", Dark: "#B09A60"}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Spinner: lipgloss.NewStyle().
			Foreground(accent),

		URL: lipgloss.NewStyle().
			Foreground(subtle),

		Count: lipgloss.NewStyle().
			Foreground(primary),

		Accessible: lipgloss.NewStyle().
			Foreground(good),

		NotFound: lipgloss.NewStyle().
			Foreground(bad),

		Error: lipgloss.NewStyle().
			Foreground(warn),

		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(warn),

		HintKey: lipgloss.NewStyle().
			Foreground(subtle),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),
	}
}
