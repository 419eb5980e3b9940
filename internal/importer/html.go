// Package importer reads bookmarks exported by browsers in the Netscape
// bookmark file format.
package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/bmlinks/internal/model"
)

// ParseHTMLBookmarks parses Netscape bookmark HTML and returns folders and
// bookmarks in document order. Link check attributes written by the exporter
// (LINK_STATUS, LAST_CHECKED) are restored; unknown status names are ignored.
func ParseHTMLBookmarks(r io.Reader) ([]model.Folder, []model.Bookmark, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, nil, err
	}

	p := &parser{}
	p.visit(doc)
	return p.folders, p.bookmarks, nil
}

type parser struct {
	folders   []model.Folder
	bookmarks []model.Bookmark

	// stack holds the IDs of the open folders, innermost last.
	stack []string
	// pending is the ID of an H3 folder whose DL has not been seen yet.
	pending string
}

func (p *parser) parent() *string {
	if len(p.stack) == 0 {
		return nil
	}
	id := p.stack[len(p.stack)-1]
	return &id
}

func (p *parser) visit(n *html.Node) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "h3":
			p.folder(n)
			return
		case "a":
			p.bookmark(n)
			return
		case "dl":
			p.list(n)
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.visit(c)
	}
}

func (p *parser) folder(n *html.Node) {
	name := textContent(n)
	if name == "" {
		return
	}
	f := model.NewFolder(model.NewFolderParams{Name: name, ParentID: p.parent()})
	p.folders = append(p.folders, f)
	p.pending = f.ID
}

// list handles a DL element. A DL directly following an H3 holds that
// folder's children.
func (p *parser) list(n *html.Node) {
	pushed := false
	if p.pending != "" {
		p.stack = append(p.stack, p.pending)
		p.pending = ""
		pushed = true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.visit(c)
	}

	if pushed {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

func (p *parser) bookmark(n *html.Node) {
	href := strings.TrimSpace(attr(n, "href"))
	if href == "" {
		return
	}

	title := textContent(n)
	if title == "" {
		title = href
	}

	b := model.Bookmark{
		ID:        model.GenerateUUID(),
		Title:     title,
		URL:       href,
		FolderID:  p.parent(),
		Tags:      tags(attr(n, "tags")),
		CreatedAt: time.Now(),
	}
	if t, ok := unixAttr(n, "add_date"); ok {
		b.CreatedAt = t
	}
	if t, ok := unixAttr(n, "last_visit"); ok {
		b.VisitedAt = &t
	}

	if status, err := model.ParseLinkStatus(attr(n, "link_status")); err == nil {
		b.Status = status
	}
	if t, ok := unixAttr(n, "last_checked"); ok {
		b.LastChecked = &t
		b.StatusMessage = attr(n, "status_message")
		if dest := strings.TrimSpace(attr(n, "redirect_url")); dest != "" {
			b.RedirectURL = &dest
		}
	}

	p.bookmarks = append(p.bookmarks, b)
}

func tags(raw string) []string {
	out := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func unixAttr(n *html.Node, key string) (time.Time, bool) {
	raw := attr(n, key)
	if raw == "" {
		return time.Time{}, false
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(ts, 0), true
}

// textContent returns the trimmed text of a node and its descendants.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// attr returns the value of an attribute, case-insensitive.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
