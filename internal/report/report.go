// Package report renders the outcome of a link check run for people.
//
// WriteText produces the one-line summary printed after a run; WriteMarkdown
// produces a standalone document listing every broken and redirected link.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nikbrunner/bmlinks/internal/checker"
	"github.com/nikbrunner/bmlinks/internal/model"
)

// WriteText writes a single summary line for stats.
func WriteText(w io.Writer, stats *checker.RunStatistics) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Checked %d of %d URLs in %s: %d accessible, %d not found, %d errors",
		stats.CheckedCount(), stats.TotalURLs, roundDuration(stats.Duration),
		stats.AccessibleCount, stats.NotFoundCount, stats.ErrorCount)
	if stats.RedirectCount > 0 {
		fmt.Fprintf(&b, ", %d redirected", stats.RedirectCount)
	}
	if stats.Cancelled {
		b.WriteString(" (cancelled)")
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteMarkdown writes a Markdown report for a run over targets.
// Only targets checked during the run (LastChecked at or after StartedAt)
// are listed.
func WriteMarkdown(w io.Writer, stats *checker.RunStatistics, targets []checker.Target) error {
	md := markdown.NewMarkdown(w)

	md.H1("Link Check Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", stats.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", roundDuration(stats.Duration).String()},
			{"Status", runStatus(stats)},
		},
	})
	md.PlainText("")

	writeSummary(md, stats)

	checked := checkedIn(stats, targets)
	writeFailures(md, checked)
	writeRedirects(md, checked)

	return md.Build()
}

func runStatus(stats *checker.RunStatistics) string {
	if stats.Cancelled {
		return "Cancelled (partial results)"
	}
	return "Complete"
}

func writeSummary(md *markdown.Markdown, stats *checker.RunStatistics) {
	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Accessible", strconv.Itoa(stats.AccessibleCount)},
			{"Not found", strconv.Itoa(stats.NotFoundCount)},
			{"Error", strconv.Itoa(stats.ErrorCount)},
			{"Redirected", strconv.Itoa(stats.RedirectCount)},
			{"Unchecked", strconv.Itoa(stats.Remaining())},
			{"**Checked**", "**" + strconv.Itoa(stats.CheckedCount()) + "**"},
			{"**Total**", "**" + strconv.Itoa(stats.TotalURLs) + "**"},
		},
	})
	md.PlainText("")

	if stats.CheckedCount() > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Link Status"),
			piechart.WithShowData(true),
		)
		if stats.AccessibleCount > 0 {
			chart.LabelAndIntValue("Accessible", uint64(stats.AccessibleCount))
		}
		if stats.NotFoundCount > 0 {
			chart.LabelAndIntValue("Not found", uint64(stats.NotFoundCount))
		}
		if stats.ErrorCount > 0 {
			chart.LabelAndIntValue("Error", uint64(stats.ErrorCount))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	failures := stats.NotFoundCount + stats.ErrorCount
	switch {
	case stats.Cancelled:
		md.Warningf("Run cancelled after %d of %d URLs.", stats.CheckedCount(), stats.TotalURLs)
	case failures > 0:
		md.Cautionf("%d broken link(s) found.", failures)
	case stats.CheckedCount() == 0:
		md.Note("No URLs were checked.")
	default:
		md.Tip("All checked links are accessible.")
	}
	md.PlainText("")
}

func writeFailures(md *markdown.Markdown, targets []checker.Target) {
	md.H2("Broken Links")
	md.PlainText("")

	var rows [][]string
	for _, t := range targets {
		if !t.Bookmark.Status.IsFailure() {
			continue
		}
		rows = append(rows, []string{
			cell(t.Bookmark.Title),
			cell(t.Bookmark.URL),
			cell(folderLabel(t)),
			t.Bookmark.Status.String(),
			cell(t.Bookmark.StatusMessage),
		})
	}

	if len(rows) == 0 {
		md.PlainText("No broken links.")
		md.PlainText("")
		return
	}
	md.Table(markdown.TableSet{
		Header: []string{"Title", "URL", "Folder", "Status", "Message"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeRedirects(md *markdown.Markdown, targets []checker.Target) {
	var rows [][]string
	for _, t := range targets {
		if t.Bookmark.RedirectURL == nil {
			continue
		}
		rows = append(rows, []string{
			cell(t.Bookmark.Title),
			cell(t.Bookmark.URL),
			cell(*t.Bookmark.RedirectURL),
		})
	}
	if len(rows) == 0 {
		return
	}

	md.H2("Redirects")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Title", "URL", "Destination"},
		Rows:   rows,
	})
	md.PlainText("")
}

func checkedIn(stats *checker.RunStatistics, targets []checker.Target) []checker.Target {
	var out []checker.Target
	for _, t := range targets {
		b := t.Bookmark
		if b == nil || b.LastChecked == nil || b.LastChecked.Before(stats.StartedAt) {
			continue
		}
		if b.Status == model.StatusUnknown {
			continue
		}
		out = append(out, t)
	}
	return out
}

func folderLabel(t checker.Target) string {
	if t.Path == "" {
		return "/"
	}
	return t.Path
}

// cell escapes characters that would break a table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func roundDuration(d time.Duration) time.Duration {
	if d < time.Second {
		return d.Round(time.Millisecond)
	}
	return d.Round(10 * time.Millisecond)
}
