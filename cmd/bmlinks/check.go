package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/bmlinks/internal/checker"
	"github.com/nikbrunner/bmlinks/internal/collector"
	"github.com/nikbrunner/bmlinks/internal/model"
	"github.com/nikbrunner/bmlinks/internal/report"
	"github.com/nikbrunner/bmlinks/internal/storage"
	"github.com/nikbrunner/bmlinks/internal/tui"
)

type checkOptions struct {
	folder         string
	query          string
	failed         bool
	noTUI          bool
	reportPath     string
	includeNonHTTP bool
}

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check bookmark URLs and record their status",
		Long: `Check every bookmark URL, or a subset of them, and record on each bookmark
whether it is accessible, not found, or failing. Redirects are followed and
their final destination is stored.

Press q or Ctrl+C to stop early; bookmarks checked so far keep their new
status. A run that finds broken links still exits successfully.`,
		Example: `  bmlinks check
  bmlinks check --folder Work --failed
  bmlinks check --query github --no-tui --report links.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.folder, "folder", "", "Only check bookmarks in this folder and its subfolders")
	flags.StringVarP(&opts.query, "query", "q", "", "Only check bookmarks whose title or URL matches")
	flags.BoolVar(&opts.failed, "failed", false, "Only re-check bookmarks that previously failed")
	flags.BoolVar(&opts.noTUI, "no-tui", false, "Print plain progress lines instead of the interactive view")
	flags.StringVar(&opts.reportPath, "report", "", "Write a Markdown report to this file")
	flags.BoolVar(&opts.includeNonHTTP, "include-non-http", false, "Also visit non-http(s) bookmarks (recorded as unknown)")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	store, err := e.storage.Load()
	if err != nil {
		return fmt.Errorf("load bookmarks: %w", err)
	}

	collectOpts := collector.Options{
		IncludeNonHTTP: opts.includeNonHTTP || e.cfg.IncludeNonHTTP,
		Query:          opts.query,
	}
	if opts.folder != "" {
		folder := store.GetFolderByName(opts.folder)
		if folder == nil {
			return fmt.Errorf("folder not found: %s", opts.folder)
		}
		collectOpts.FolderID = &folder.ID
	}
	if opts.failed {
		collectOpts.OnlyStatus = []model.LinkStatus{model.StatusNotFound, model.StatusError}
	}

	targets := collector.Collect(store, collectOpts)
	out := cmd.OutOrStdout()
	if len(targets) == 0 {
		fmt.Fprintln(out, "No bookmarks to check.")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chk := e.newChecker()
	plain := opts.noTUI || !isTerminal(out)
	var stats *checker.RunStatistics
	if plain {
		stats, err = chk.Run(ctx, targets, watchAttached(store, e.logger, printProgress(out)))
	} else {
		stats, err = checkInteractive(ctx, chk, targets, store, e.logger, cmd.InOrStdin(), out)
	}
	if err := saveResults(e.storage, store, stats, err); err != nil {
		return err
	}

	if plain {
		if err := report.WriteText(out, stats); err != nil {
			return err
		}
	}

	if opts.reportPath != "" {
		if err := writeReportFile(opts.reportPath, stats, targets); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", opts.reportPath)
	}

	return nil
}

// saveResults stores whatever the run checked, also when it was cancelled or
// the progress view failed. It returns runErr unless that was a cancellation.
func saveResults(s storage.Storage, store *model.Store, stats *checker.RunStatistics, runErr error) error {
	if stats == nil {
		if runErr != nil {
			return runErr
		}
		return errors.New("link check returned no statistics")
	}

	if err := s.Save(store); err != nil {
		return errors.Join(runErr, fmt.Errorf("save bookmarks: %w", err))
	}
	if runErr != nil && !errors.Is(runErr, checker.ErrCancelled) {
		return runErr
	}
	return nil
}

func printProgress(out io.Writer) checker.ProgressFunc {
	return func(current, total int, url string, _ checker.Target) {
		fmt.Fprintf(out, "[%d/%d] %s\n", current, total, url)
	}
}

// watchAttached warns about targets that no longer point into store before
// passing progress on. Verdicts on such targets would not be saved.
func watchAttached(store *model.Store, logger *slog.Logger, next checker.ProgressFunc) checker.ProgressFunc {
	return func(current, total int, url string, target checker.Target) {
		if !collector.Attached(store, target) {
			logger.Warn("target is no longer part of the store", "url", url, "folder", target.Path)
		}
		next(current, total, url, target)
	}
}

// checkInteractive runs the batch behind the progress view. The view's
// cancel key cancels the batch; the view quits once the batch returns.
func checkInteractive(ctx context.Context, chk *checker.Checker, targets []checker.Target, store *model.Store, logger *slog.Logger, in io.Reader, out io.Writer) (*checker.RunStatistics, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	view := tui.NewCheckModel(tui.CheckModelParams{
		Cancel: cancel,
		Total:  len(targets),
	})
	p := tea.NewProgram(view, tea.WithInput(in), tea.WithOutput(out))
	reporter := tui.NewReporter(p.Send)

	var (
		stats  *checker.RunStatistics
		runErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		stats, runErr = chk.Run(ctx, targets, watchAttached(store, logger, reporter.Progress))
		p.Send(tui.DoneMsg{Stats: stats, Err: runErr})
		return nil
	})
	g.Go(func() error {
		if _, err := p.Run(); err != nil {
			cancel()
			return fmt.Errorf("run progress view: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, runErr
}

func writeReportFile(path string, stats *checker.RunStatistics, targets []checker.Target) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.WriteMarkdown(f, stats, targets); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
