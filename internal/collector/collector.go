// Package collector flattens the folder tree of a store into an ordered list
// of link targets for the checker.
package collector

import (
	"github.com/nikbrunner/bmlinks/internal/checker"
	"github.com/nikbrunner/bmlinks/internal/model"
	"github.com/nikbrunner/bmlinks/internal/search"
	"github.com/nikbrunner/bmlinks/internal/urlutil"
)

// Options narrows what Collect returns. The zero value collects every
// http(s) bookmark in the store.
type Options struct {
	// IncludeNonHTTP keeps bookmarks whose URL is not http(s). The checker
	// reports them as unknown without any network access.
	IncludeNonHTTP bool

	// FolderID restricts collection to that folder and its descendants.
	FolderID *string

	// Query keeps only bookmarks whose title or URL fuzzy-matches it.
	Query string

	// OnlyStatus keeps only bookmarks whose current status is listed.
	OnlyStatus []model.LinkStatus
}

// Collect walks the store depth-first and returns one target per matching
// bookmark. Within a folder, subfolders are visited before the folder's own
// bookmarks; siblings keep store order. Each target points at the bookmark
// inside store.Bookmarks, so verdicts written by the checker land in the store.
func Collect(store *model.Store, opts Options) []checker.Target {
	if store == nil {
		return nil
	}

	c := &collection{
		store:    store,
		opts:     opts,
		children: make(map[string][]int),
		members:  make(map[string][]int),
	}
	c.index()

	if opts.Query != "" {
		c.matches = search.MatchingIDs(store, opts.Query)
	}
	if len(opts.OnlyStatus) > 0 {
		c.statuses = make(map[model.LinkStatus]bool, len(opts.OnlyStatus))
		for _, st := range opts.OnlyStatus {
			c.statuses[st] = true
		}
	}

	if opts.FolderID != nil {
		f := store.GetFolderByID(*opts.FolderID)
		if f == nil {
			return nil
		}
		c.walk(f, map[string]bool{})
		return c.targets
	}

	c.walk(nil, map[string]bool{})
	return c.targets
}

type collection struct {
	store    *model.Store
	opts     Options
	matches  map[string]bool
	statuses map[model.LinkStatus]bool

	// indexes into store.Folders / store.Bookmarks keyed by parent folder ID ("" = root)
	children map[string][]int
	members  map[string][]int

	targets []checker.Target
}

// index groups folders and bookmarks by parent. Bookmarks whose folder no
// longer exists are treated as root bookmarks.
func (c *collection) index() {
	known := make(map[string]bool, len(c.store.Folders))
	for i, f := range c.store.Folders {
		known[f.ID] = true
		c.children[key(f.ParentID)] = append(c.children[key(f.ParentID)], i)
	}
	for i, b := range c.store.Bookmarks {
		parent := key(b.FolderID)
		if !known[parent] {
			parent = ""
		}
		c.members[parent] = append(c.members[parent], i)
	}
}

// walk visits folder (nil = root). visited guards against parent cycles in
// hand-edited stores.
func (c *collection) walk(folder *model.Folder, visited map[string]bool) {
	id := ""
	path := ""
	if folder != nil {
		if visited[folder.ID] {
			return
		}
		visited[folder.ID] = true
		id = folder.ID
		path = c.store.FolderPath(&folder.ID)
	}

	for _, i := range c.children[id] {
		c.walk(&c.store.Folders[i], visited)
	}

	for _, i := range c.members[id] {
		b := &c.store.Bookmarks[i]
		if !c.keep(b) {
			continue
		}
		c.targets = append(c.targets, checker.Target{
			Bookmark: b,
			Folder:   folder,
			Path:     path,
		})
	}
}

func (c *collection) keep(b *model.Bookmark) bool {
	if !c.opts.IncludeNonHTTP && !urlutil.HasHTTPPrefix(b.URL) {
		return false
	}
	if c.matches != nil && !c.matches[b.ID] {
		return false
	}
	if c.statuses != nil && !c.statuses[b.Status] {
		return false
	}
	return true
}

func key(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

// Attached reports whether target still refers to live entries of store:
// its bookmark is an element of store.Bookmarks and its folder, if any, is an
// element of store.Folders. A root target stays attached while its bookmark
// has no folder or names one the store does not have. Slices reallocated by
// appends detach old targets.
func Attached(store *model.Store, target checker.Target) bool {
	if store == nil || target.Bookmark == nil {
		return false
	}

	found := false
	for i := range store.Bookmarks {
		if &store.Bookmarks[i] == target.Bookmark {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	// Collect files bookmarks of vanished folders under the root.
	if target.Folder == nil {
		id := target.Bookmark.FolderID
		return id == nil || store.GetFolderByID(*id) == nil
	}
	for i := range store.Folders {
		if &store.Folders[i] == target.Folder {
			return key(target.Bookmark.FolderID) == target.Folder.ID
		}
	}
	return false
}
