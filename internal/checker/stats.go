package checker

import (
	"time"

	"github.com/nikbrunner/bmlinks/internal/model"
)

// RunStatistics summarizes one batch run.
type RunStatistics struct {
	TotalURLs       int
	AccessibleCount int
	NotFoundCount   int
	ErrorCount      int
	RedirectCount   int // URLs whose chain ended at a different URL
	StartedAt       time.Time
	Duration        time.Duration
	Cancelled       bool
}

// NewRunStatistics starts a tally for total targets.
func NewRunStatistics(total int, startedAt time.Time) *RunStatistics {
	return &RunStatistics{TotalURLs: total, StartedAt: startedAt}
}

// CheckedCount is the number of targets that received a verdict.
// Unknown results are not counted.
func (s *RunStatistics) CheckedCount() int {
	return s.AccessibleCount + s.NotFoundCount + s.ErrorCount
}

// Tally adds one result to the counters.
func (s *RunStatistics) Tally(res Result) {
	switch res.Status {
	case model.StatusAccessible:
		s.AccessibleCount++
	case model.StatusNotFound:
		s.NotFoundCount++
	case model.StatusError:
		s.ErrorCount++
	}
	if res.RedirectDetected {
		s.RedirectCount++
	}
}

// Remaining is the number of targets not yet given a verdict.
func (s *RunStatistics) Remaining() int {
	if n := s.TotalURLs - s.CheckedCount(); n > 0 {
		return n
	}
	return 0
}
