// Package exporter writes the store as a Netscape bookmark file that browsers
// and the importer can read back.
package exporter

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nikbrunner/bmlinks/internal/model"
)

// DefaultExportPath returns ~/Downloads/bmlinks-export-YYYY-MM-DD.html, using
// the platform's download directory.
func DefaultExportPath(now time.Time) string {
	filename := fmt.Sprintf("bmlinks-export-%s.html", now.Format("2006-01-02"))
	return filepath.Join(xdg.UserDirs.Download, filename)
}

// ExportHTML renders the store as Netscape bookmark HTML.
func ExportHTML(store *model.Store) string {
	var b strings.Builder
	_ = WriteHTML(&b, store)
	return b.String()
}

// WriteHTML streams the store as Netscape bookmark HTML to w.
// Checked bookmarks carry LINK_STATUS and LAST_CHECKED attributes.
func WriteHTML(w io.Writer, store *model.Store) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	bw.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	bw.WriteString("<TITLE>Bookmarks</TITLE>\n")
	bw.WriteString("<H1>Bookmarks</H1>\n")
	bw.WriteString("<DL><p>\n")
	writeLevel(bw, store, nil, 1, map[string]bool{})
	bw.WriteString("</DL><p>\n")

	return bw.Flush()
}

// writeLevel writes the subfolders of parentID, then its bookmarks.
func writeLevel(w *bufio.Writer, store *model.Store, parentID *string, depth int, seen map[string]bool) {
	indent := strings.Repeat("    ", depth)

	for _, folder := range store.GetFoldersInFolder(parentID) {
		if seen[folder.ID] {
			continue
		}
		seen[folder.ID] = true

		fmt.Fprintf(w, "%s<DT><H3>%s</H3>\n", indent, html.EscapeString(folder.Name))
		fmt.Fprintf(w, "%s<DL><p>\n", indent)
		id := folder.ID
		writeLevel(w, store, &id, depth+1, seen)
		fmt.Fprintf(w, "%s</DL><p>\n", indent)
	}

	for _, bm := range store.GetBookmarksInFolder(parentID) {
		fmt.Fprintf(w, "%s<DT><A%s>%s</A>\n", indent, attributes(bm), html.EscapeString(bm.Title))
	}
}

func attributes(bm model.Bookmark) string {
	var b strings.Builder
	fmt.Fprintf(&b, ` HREF="%s" ADD_DATE="%d"`, html.EscapeString(bm.URL), bm.CreatedAt.Unix())

	if bm.VisitedAt != nil {
		fmt.Fprintf(&b, ` LAST_VISIT="%d"`, bm.VisitedAt.Unix())
	}
	if len(bm.Tags) > 0 {
		fmt.Fprintf(&b, ` TAGS="%s"`, html.EscapeString(strings.Join(bm.Tags, ",")))
	}
	if bm.LastChecked != nil {
		fmt.Fprintf(&b, ` LINK_STATUS="%s" LAST_CHECKED="%d"`, bm.Status, bm.LastChecked.Unix())
		if bm.StatusMessage != "" {
			fmt.Fprintf(&b, ` STATUS_MESSAGE="%s"`, html.EscapeString(bm.StatusMessage))
		}
		if bm.RedirectURL != nil {
			fmt.Fprintf(&b, ` REDIRECT_URL="%s"`, html.EscapeString(*bm.RedirectURL))
		}
	}

	return b.String()
}
