// Package checker determines whether bookmark URLs are still reachable.
//
// A Checker walks a list of targets sequentially, resolves each URL with a
// Resolver that follows redirects by hand, and writes the verdict back onto
// the bookmark. Only one batch may run per Checker at a time; a running batch
// can be cancelled from any goroutine.
package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nikbrunner/bmlinks/internal/logging"
	"github.com/nikbrunner/bmlinks/internal/model"
)

// Target is one bookmark scheduled for checking.
type Target struct {
	Bookmark *model.Bookmark
	Folder   *model.Folder // owning folder, nil for root
	Path     string        // breadcrumb of the owning folder, "" for root
}

// URL returns the bookmark URL, or "" when the target carries no bookmark.
func (t Target) URL() string {
	if t.Bookmark == nil {
		return ""
	}
	return t.Bookmark.URL
}

// ProgressFunc is called before each target is checked.
// current is 1-based.
type ProgressFunc func(current, total int, url string, target Target)

// URLResolver resolves a single URL to a verdict.
type URLResolver interface {
	Resolve(ctx context.Context, rawURL string) (Result, error)
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit caps how many URLs are checked per second.
// Zero or negative means unlimited.
func WithRateLimit(perSecond float64) Option {
	return func(c *Checker) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithClock replaces time.Now for check timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

type session struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Checker runs link checks. The zero value is not usable; use New.
type Checker struct {
	resolver URLResolver
	logger   *slog.Logger
	limiter  *rate.Limiter
	now      func() time.Time

	mu     sync.Mutex
	active *session
}

// New creates a Checker that resolves URLs with resolver.
func New(resolver URLResolver, opts ...Option) *Checker {
	c := &Checker{
		resolver: resolver,
		logger:   logging.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Running reports whether a batch is in progress.
func (c *Checker) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// Cancel stops the running batch, if any. It is safe to call from any
// goroutine, including from inside a ProgressFunc.
func (c *Checker) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		c.active.cancel()
	}
}

func (c *Checker) acquire(parent context.Context) (*session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return nil, ErrCheckInProgress
	}
	ctx, cancel := context.WithCancel(parent)
	c.active = &session{ctx: ctx, cancel: cancel}
	return c.active, nil
}

func (c *Checker) release(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s.cancel()
	if c.active == s {
		c.active = nil
	}
}

// Run checks targets in order and writes each verdict onto its bookmark.
//
// It returns ErrCheckInProgress without touching any target when another
// batch is running. When ctx is cancelled or Cancel is called, Run stops
// before the next target, leaves the in-flight target unmodified, and
// returns the partial statistics together with an error wrapping
// ErrCancelled. A failure checking one target never aborts the batch.
func (c *Checker) Run(ctx context.Context, targets []Target, progress ProgressFunc) (*RunStatistics, error) {
	s, err := c.acquire(ctx)
	if err != nil {
		c.logger.Warn("link check rejected", "error", err)
		return nil, err
	}
	defer c.release(s)

	total := len(targets)
	stats := NewRunStatistics(total, c.now())
	c.logger.Info("link check started", "targets", total)

	for i, target := range targets {
		if err := s.ctx.Err(); err != nil {
			return c.stop(stats, i, err)
		}

		url := target.URL()
		if progress != nil {
			progress(i+1, total, url, target)
		}

		res, err := c.checkTarget(s.ctx, url)
		if errors.Is(err, ErrCancelled) {
			return c.stop(stats, i, err)
		}
		if err != nil {
			c.logger.Warn("check failed", "url", url, "error", err)
			res = Result{Status: model.StatusError, Message: err.Error()}
		}

		if target.Bookmark != nil {
			target.Bookmark.ApplyCheck(res.Status, res.Message, c.now(), res.RedirectTarget())
		}
		stats.Tally(res)

		c.logger.Debug("checked", "url", url, "status", res.Status.String(), "message", res.Message)
	}

	stats.Duration = c.now().Sub(stats.StartedAt)
	c.logger.Info("link check finished",
		"checked", stats.CheckedCount(),
		"accessible", stats.AccessibleCount,
		"not_found", stats.NotFoundCount,
		"errors", stats.ErrorCount,
		"redirects", stats.RedirectCount,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (c *Checker) stop(stats *RunStatistics, done int, cause error) (*RunStatistics, error) {
	stats.Cancelled = true
	stats.Duration = c.now().Sub(stats.StartedAt)
	c.logger.Info("link check cancelled", "done", done, "targets", stats.TotalURLs)

	if errors.Is(cause, ErrCancelled) {
		return stats, cause
	}
	return stats, fmt.Errorf("%w: %w", ErrCancelled, cause)
}

// checkTarget waits for the rate limiter, then resolves url. A limiter
// failure is a cancellation only when ctx itself is done; a deadline too
// close for the next token fails just this target.
func (c *Checker) checkTarget(ctx context.Context, url string) (Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{}, fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
			}
			return Result{}, fmt.Errorf("rate limit: %w", err)
		}
	}
	return c.resolveSafely(ctx, url)
}

// resolveSafely turns a panic inside the resolver into an ordinary error so
// one bad target cannot take down the batch.
func (c *Checker) resolveSafely(ctx context.Context, url string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic while checking URL", "url", url, "panic", r)
			res = Result{}
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	return c.resolver.Resolve(ctx, url)
}

// CheckOne resolves a single URL outside any batch. It does not take the
// batch lock, so it may run while a batch is in progress.
func (c *Checker) CheckOne(ctx context.Context, url string) (model.LinkStatus, string) {
	res, err := c.resolveSafely(ctx, url)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return model.StatusUnknown, err.Error()
		}
		return model.StatusError, err.Error()
	}
	return res.Status, res.Message
}

// CheckBookmark resolves b.URL and records the verdict on b.
// On cancellation b is left untouched and the error wraps ErrCancelled.
func (c *Checker) CheckBookmark(ctx context.Context, b *model.Bookmark) (Result, error) {
	res, err := c.resolveSafely(ctx, b.URL)
	if errors.Is(err, ErrCancelled) {
		return Result{}, err
	}
	if err != nil {
		res = Result{Status: model.StatusError, Message: err.Error()}
	}
	b.ApplyCheck(res.Status, res.Message, c.now(), res.RedirectTarget())
	return res, nil
}
