// Package picker lets the user choose one bookmark out of several fuzzy
// matches before it is probed.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmlinks/internal/model"
	"github.com/nikbrunner/bmlinks/internal/search"
	"github.com/nikbrunner/bmlinks/internal/tui/layout"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("167"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// KeyMap defines the picker key bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns vim-style bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "probe")),
		Cancel: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/Esc", "cancel")),
	}
}

// Picker is a small TUI for selecting one search result.
type Picker struct {
	results   []search.SearchResult
	query     string
	keys      KeyMap
	cursor    int
	selected  bool
	cancelled bool
	width     int
}

// New creates a Picker over results.
func New(results []search.SearchResult, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		keys:    DefaultKeyMap(),
		width:   80,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Cancel):
			p.cancelled = true
			return p, tea.Quit
		case key.Matches(msg, p.keys.Select):
			p.selected = len(p.results) > 0
			return p, tea.Quit
		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		}
	}

	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Probe: %s (%d matches)", p.query, len(p.results))))
	b.WriteString("\n\n")

	text := layout.DefaultConfig().Text
	for i, result := range p.results {
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		badge := status(result.Bookmark)
		title, _ := layout.TruncateText(result.Bookmark.Title, p.width-len(cursor)-layout.VisibleLength(badge), text)
		url := layout.TruncateMiddle(result.Bookmark.URL, p.width-3, text)

		fmt.Fprintf(&b, "%s%s%s\n", cursor, style.Render(title), badge)
		fmt.Fprintf(&b, "   %s\n", urlStyle.Render(url))
	}

	b.WriteString("\n")
	hints := []key.Binding{p.keys.Down, p.keys.Up, p.keys.Select, p.keys.Cancel}
	parts := make([]string, 0, len(hints))
	for _, kb := range hints {
		parts = append(parts, kb.Help().Key+": "+kb.Help().Desc)
	}
	b.WriteString(footerStyle.Render(strings.Join(parts, "  ")))

	return b.String()
}

// status renders the last known link status, if any.
func status(b *model.Bookmark) string {
	if b.LastChecked == nil {
		return ""
	}
	label := " [" + b.Status.String() + "]"
	if b.Status.IsFailure() {
		return failedStyle.Render(label)
	}
	return urlStyle.Render(label)
}

// SelectedBookmark returns the selected bookmark, or nil if cancelled.
func (p Picker) SelectedBookmark() *model.Bookmark {
	if p.cancelled || !p.selected {
		return nil
	}
	if p.cursor < len(p.results) {
		return p.results[p.cursor].Bookmark
	}
	return nil
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
