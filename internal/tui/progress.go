package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmlinks/internal/checker"
	"github.com/nikbrunner/bmlinks/internal/model"
)

// ProgressMsg reports that the target at Current (1-based) is about to be
// checked. The counts cover the targets before it.
type ProgressMsg struct {
	Current    int
	Total      int
	URL        string
	Accessible int
	NotFound   int
	Errors     int
}

// DoneMsg signals that the batch has returned.
type DoneMsg struct {
	Stats *checker.RunStatistics
	Err   error
}

// Reporter turns checker progress callbacks into ProgressMsg values.
// Progress must be called from the goroutine running the batch.
type Reporter struct {
	send     func(tea.Msg)
	previous *model.Bookmark

	accessible int
	notFound   int
	errors     int
}

// NewReporter creates a Reporter that delivers messages with send,
// typically (*tea.Program).Send.
func NewReporter(send func(tea.Msg)) *Reporter {
	return &Reporter{send: send}
}

// Progress implements checker.ProgressFunc.
func (r *Reporter) Progress(current, total int, url string, target checker.Target) {
	// The previous target has its verdict by the time the next one starts.
	if r.previous != nil {
		switch r.previous.Status {
		case model.StatusAccessible:
			r.accessible++
		case model.StatusNotFound:
			r.notFound++
		case model.StatusError:
			r.errors++
		}
	}
	r.previous = target.Bookmark

	r.send(ProgressMsg{
		Current:    current,
		Total:      total,
		URL:        url,
		Accessible: r.accessible,
		NotFound:   r.notFound,
		Errors:     r.errors,
	})
}
