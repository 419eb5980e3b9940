package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Check CheckConfig
	Text  TextConfig
}

// CheckConfig holds dimensions of the link check progress view.
type CheckConfig struct {
	// HorizontalPadding is subtracted from the terminal width.
	// Accounts for: app padding left (2) + right (2) = 4
	HorizontalPadding int

	// MinBarWidth is the narrowest progress bar drawn.
	MinBarWidth int

	// MaxBarWidth caps the progress bar on wide terminals.
	MaxBarWidth int

	// URLIndent is the indentation of the current URL line.
	URLIndent int

	// MinURLWidth is the narrowest the current URL is shortened to.
	MinURLWidth int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Check: CheckConfig{
			HorizontalPadding: 4,
			MinBarWidth:       10,
			MaxBarWidth:       60,
			URLIndent:         2,
			MinURLWidth:       20,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
