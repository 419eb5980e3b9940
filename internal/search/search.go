package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/bmlinks/internal/model"
)

// Field names the bookmark attribute a result matched on.
type Field string

const (
	FieldTitle Field = "title"
	FieldURL   Field = "url"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Bookmark       *model.Bookmark
	Field          Field
	MatchedIndexes []int // indexes into the matched field
	Score          int
}

// bookmarkField implements fuzzy.Source over one attribute of a bookmark slice.
type bookmarkField struct {
	bookmarks []*model.Bookmark
	field     Field
}

func (bf bookmarkField) String(i int) string {
	if bf.field == FieldURL {
		return bf.bookmarks[i].URL
	}
	return bf.bookmarks[i].Title
}

func (bf bookmarkField) Len() int {
	return len(bf.bookmarks)
}

// FuzzySearchBookmarks searches all bookmarks by title, then by URL.
// Title matches come first, sorted by score; bookmarks that only match on
// their URL follow. Each bookmark appears at most once.
func FuzzySearchBookmarks(store *model.Store, query string) []SearchResult {
	if query == "" {
		return nil
	}

	bookmarks := make([]*model.Bookmark, len(store.Bookmarks))
	for i := range store.Bookmarks {
		bookmarks[i] = &store.Bookmarks[i]
	}

	seen := make(map[int]bool)
	var results []SearchResult

	for _, field := range []Field{FieldTitle, FieldURL} {
		matches := fuzzy.FindFrom(query, bookmarkField{bookmarks: bookmarks, field: field})
		for _, m := range matches {
			if seen[m.Index] {
				continue
			}
			seen[m.Index] = true
			results = append(results, SearchResult{
				Bookmark:       bookmarks[m.Index],
				Field:          field,
				MatchedIndexes: m.MatchedIndexes,
				Score:          m.Score,
			})
		}
	}

	return results
}

// MatchingIDs returns the IDs of all bookmarks matching query.
// An empty query matches nothing.
func MatchingIDs(store *model.Store, query string) map[string]bool {
	ids := make(map[string]bool)
	for _, r := range FuzzySearchBookmarks(store, query) {
		ids[r.Bookmark.ID] = true
	}
	return ids
}
