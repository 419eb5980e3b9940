// Package tui renders live progress of a link check run in the terminal.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmlinks/internal/checker"
	"github.com/nikbrunner/bmlinks/internal/report"
	"github.com/nikbrunner/bmlinks/internal/tui/layout"
)

// CheckModel is the bubbletea model shown while a batch runs.
type CheckModel struct {
	keys   KeyMap
	styles Styles
	layout layout.LayoutConfig

	spinner spinner.Model
	bar     progress.Model
	cancel  func()

	width int

	current    int
	total      int
	url        string
	accessible int
	notFound   int
	errors     int

	cancelling bool
	done       bool
	stats      *checker.RunStatistics
	err        error
}

// CheckModelParams holds parameters for creating a new CheckModel.
type CheckModelParams struct {
	Cancel       func() // stops the batch, usually (*checker.Checker).Cancel
	Total        int
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
}

// NewCheckModel creates a CheckModel with the given parameters.
func NewCheckModel(params CheckModelParams) CheckModel {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	cfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		cfg = *params.LayoutConfig
	}

	m := CheckModel{
		keys:   keys,
		styles: styles,
		layout: cfg,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(styles.Spinner),
		),
		bar:    progress.New(progress.WithDefaultGradient()),
		cancel: params.Cancel,
		total:  params.Total,
	}
	return m.WithWidth(80)
}

// WithWidth returns a copy sized for a terminal of the given width.
func (m CheckModel) WithWidth(width int) CheckModel {
	m.width = width
	m.bar.Width = layout.CalculateBarWidth(width, m.layout.Check)
	return m
}

// Init starts the spinner.
func (m CheckModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages from the bubbletea runtime and the batch.
func (m CheckModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) && !m.done && !m.cancelling {
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		return m.WithWidth(msg.Width), nil

	case ProgressMsg:
		m.current = msg.Current
		m.total = msg.Total
		m.url = msg.URL
		m.accessible = msg.Accessible
		m.notFound = msg.NotFound
		m.errors = msg.Errors
		return m, nil

	case DoneMsg:
		m.done = true
		m.stats = msg.Stats
		m.err = msg.Err
		if m.stats != nil {
			m.accessible = m.stats.AccessibleCount
			m.notFound = m.stats.NotFoundCount
			m.errors = m.stats.ErrorCount
		}
		return m, tea.Quit

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// Done reports whether the batch has finished.
func (m CheckModel) Done() bool {
	return m.done
}

// Cancelling reports whether the user asked to stop the batch.
func (m CheckModel) Cancelling() bool {
	return m.cancelling
}

// View renders the current state.
func (m CheckModel) View() string {
	if m.done {
		return m.styles.App.Render(m.summaryView())
	}

	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(m.styles.Title.Render("Checking links"))
	b.WriteString(" ")
	b.WriteString(m.styles.Count.Render(fmt.Sprintf("%d/%d", m.current, m.total)))
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(m.percent()))
	b.WriteString("\n")

	indent := strings.Repeat(" ", m.layout.Check.URLIndent)
	url := layout.TruncateMiddle(m.url, layout.CalculateURLWidth(m.width, m.layout.Check), m.layout.Text)
	b.WriteString(indent + m.styles.URL.Render(url))
	b.WriteString("\n\n")

	b.WriteString(m.tallies())
	b.WriteString("\n\n")

	if m.cancelling {
		b.WriteString(m.styles.Warning.Render("cancelling…"))
	} else {
		b.WriteString(m.renderHints(m.keys.Hints()))
	}

	return m.styles.App.Render(b.String())
}

// percent is the share of targets already finished.
func (m CheckModel) percent() float64 {
	if m.total == 0 {
		return 0
	}
	finished := m.current - 1
	if finished < 0 {
		finished = 0
	}
	return float64(finished) / float64(m.total)
}

func (m CheckModel) tallies() string {
	return strings.Join([]string{
		m.styles.Accessible.Render(fmt.Sprintf("%d accessible", m.accessible)),
		m.styles.NotFound.Render(fmt.Sprintf("%d not found", m.notFound)),
		m.styles.Error.Render(fmt.Sprintf("%d errors", m.errors)),
	}, "  ")
}

func (m CheckModel) summaryView() string {
	var b strings.Builder

	title := "Link check finished"
	if m.stats != nil && m.stats.Cancelled {
		title = "Link check cancelled"
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n\n")

	if m.stats != nil {
		_ = report.WriteText(&b, m.stats)
	}
	if m.err != nil && !errors.Is(m.err, checker.ErrCancelled) {
		b.WriteString(m.styles.NotFound.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	return b.String()
}

// renderHints renders bindings as "key:desc" pairs for the bottom bar.
func (m CheckModel) renderHints(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, m.styles.HintKey.Render(h.Key)+":"+m.styles.HintDesc.Render(h.Desc))
	}
	return strings.Join(parts, " ")
}
