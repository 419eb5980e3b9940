package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmlinks/internal/checker"
	"github.com/nikbrunner/bmlinks/internal/model"
	"github.com/nikbrunner/bmlinks/internal/picker"
	"github.com/nikbrunner/bmlinks/internal/search"
	"github.com/nikbrunner/bmlinks/internal/urlutil"
)

// NewProbeCmd creates the probe command.
func NewProbeCmd() *cobra.Command {
	var first bool

	cmd := &cobra.Command{
		Use:   "probe <url|query>",
		Short: "Check a single URL or bookmark",
		Long: `Check a single link right away.

An argument starting with http:// or https:// is checked as is and nothing is
stored. Any other argument is fuzzy-matched against bookmark titles and URLs;
the chosen bookmark is checked and its status saved. With several matches a
picker is shown, unless --first is given or output is not a terminal.`,
		Example: `  bmlinks probe https://example.com
  bmlinks probe github
  bmlinks probe --first go docs`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, strings.Join(args, " "), first)
		},
	}

	cmd.Flags().BoolVar(&first, "first", false, "Probe the best match without asking")

	return cmd
}

func runProbe(cmd *cobra.Command, arg string, first bool) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	chk := e.newChecker()

	if urlutil.HasHTTPPrefix(arg) {
		url := strings.TrimSpace(arg)
		status, message := chk.CheckOne(ctx, url)
		printVerdict(out, url, status, message, nil)
		return nil
	}

	store, err := e.storage.Load()
	if err != nil {
		return fmt.Errorf("load bookmarks: %w", err)
	}

	results := search.FuzzySearchBookmarks(store, arg)
	if len(results) == 0 {
		fmt.Fprintf(out, "No bookmarks found for '%s'\n", arg)
		return nil
	}

	bookmark, err := chooseBookmark(cmd, results, arg, first || !isTerminal(out))
	if err != nil {
		return err
	}
	if bookmark == nil {
		return nil
	}

	return probeBookmark(ctx, e, chk, store, bookmark, out)
}

// chooseBookmark picks one result, asking through the picker when needed.
// It returns nil when the user cancels.
func chooseBookmark(cmd *cobra.Command, results []search.SearchResult, query string, auto bool) (*model.Bookmark, error) {
	if len(results) == 1 || auto {
		return results[0].Bookmark, nil
	}

	program := tea.NewProgram(picker.New(results, query),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	finalModel, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}

	finalPicker := finalModel.(picker.Picker)
	if finalPicker.Cancelled() {
		return nil, nil
	}
	return finalPicker.SelectedBookmark(), nil
}

func probeBookmark(ctx context.Context, e *env, chk *checker.Checker, store *model.Store, bookmark *model.Bookmark, out io.Writer) error {
	res, err := chk.CheckBookmark(ctx, bookmark)
	if errors.Is(err, checker.ErrCancelled) {
		fmt.Fprintln(out, "Probe cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	if err := e.storage.Save(store); err != nil {
		return fmt.Errorf("save bookmarks: %w", err)
	}

	location := store.FolderPath(bookmark.FolderID)
	if location == "" {
		location = "/"
	}
	fmt.Fprintf(out, "%s (%s)\n", bookmark.Title, location)
	printVerdict(out, bookmark.URL, res.Status, res.Message, res.RedirectTarget())
	return nil
}

func printVerdict(out io.Writer, url string, status model.LinkStatus, message string, redirect *string) {
	if message == "" {
		fmt.Fprintf(out, "%s: %s\n", url, status)
	} else {
		fmt.Fprintf(out, "%s: %s (%s)\n", url, status, message)
	}
	if redirect != nil {
		fmt.Fprintf(out, "  redirects to %s\n", *redirect)
	}
}
