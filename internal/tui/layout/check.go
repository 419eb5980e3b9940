package layout

// CalculateBarWidth computes the progress bar width for a terminal width,
// clamped to [MinBarWidth, MaxBarWidth].
func CalculateBarWidth(terminalWidth int, cfg CheckConfig) int {
	width := terminalWidth - cfg.HorizontalPadding
	if width < cfg.MinBarWidth {
		return cfg.MinBarWidth
	}
	if width > cfg.MaxBarWidth {
		return cfg.MaxBarWidth
	}
	return width
}

// CalculateURLWidth computes how many characters of the current URL fit.
func CalculateURLWidth(terminalWidth int, cfg CheckConfig) int {
	width := terminalWidth - cfg.HorizontalPadding - cfg.URLIndent
	if width < cfg.MinURLWidth {
		return cfg.MinURLWidth
	}
	return width
}
