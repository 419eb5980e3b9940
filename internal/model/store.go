package model

import "strings"

// Store holds all bookmarks and folders.
type Store struct {
	Folders   []Folder   `json:"folders"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// NewStore creates an empty Store with initialized slices.
func NewStore() *Store {
	return &Store{
		Folders:   []Folder{},
		Bookmarks: []Bookmark{},
	}
}

// AddFolder appends a folder to the store.
func (s *Store) AddFolder(f Folder) {
	s.Folders = append(s.Folders, f)
}

// AddBookmark appends a bookmark to the store.
func (s *Store) AddBookmark(b Bookmark) {
	s.Bookmarks = append(s.Bookmarks, b)
}

// GetFoldersInFolder returns folders with the given parent ID.
// Pass nil for root level folders.
func (s *Store) GetFoldersInFolder(parentID *string) []Folder {
	var result []Folder
	for _, f := range s.Folders {
		if ptrEqual(f.ParentID, parentID) {
			result = append(result, f)
		}
	}
	return result
}

// GetBookmarksInFolder returns bookmarks in the given folder.
// Pass nil for root level bookmarks.
func (s *Store) GetBookmarksInFolder(folderID *string) []Bookmark {
	var result []Bookmark
	for _, b := range s.Bookmarks {
		if ptrEqual(b.FolderID, folderID) {
			result = append(result, b)
		}
	}
	return result
}

// GetFolderByID finds a folder by ID, returns nil if not found.
func (s *Store) GetFolderByID(id string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	return nil
}

// GetFolderByName finds the first folder with the given name (case-insensitive).
func (s *Store) GetFolderByName(name string) *Folder {
	for i := range s.Folders {
		if strings.EqualFold(s.Folders[i].Name, name) {
			return &s.Folders[i]
		}
	}
	return nil
}

// GetBookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *Store) GetBookmarkByID(id string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// FolderPath returns the breadcrumb of a folder, e.g. "Development / Go".
// A nil ID is the root and yields an empty string.
func (s *Store) FolderPath(id *string) string {
	var parts []string
	seen := make(map[string]bool)
	for id != nil {
		if seen[*id] {
			break // cyclic parent chain in a hand-edited file
		}
		seen[*id] = true

		f := s.GetFolderByID(*id)
		if f == nil {
			break
		}
		parts = append([]string{f.Name}, parts...)
		id = f.ParentID
	}
	return strings.Join(parts, " / ")
}

// HasBookmarkURL reports whether a bookmark with exactly this URL exists.
func (s *Store) HasBookmarkURL(url string) bool {
	for _, b := range s.Bookmarks {
		if b.URL == url {
			return true
		}
	}
	return false
}

// ImportMerge adds imported folders and bookmarks to the store.
// Folders with the same name under the same parent are reused, and bookmarks whose
// URL already exists are skipped. Returns how many bookmarks were added and skipped.
func (s *Store) ImportMerge(folders []Folder, bookmarks []Bookmark) (added, skipped int) {
	// imported folder ID -> ID in this store
	remap := make(map[string]string, len(folders))

	for _, f := range folders {
		parentID := f.ParentID
		if parentID != nil {
			if mapped, ok := remap[*parentID]; ok {
				p := mapped
				parentID = &p
			}
		}

		if existing := s.findFolder(f.Name, parentID); existing != nil {
			remap[f.ID] = existing.ID
			continue
		}

		f.ParentID = parentID
		s.Folders = append(s.Folders, f)
		remap[f.ID] = f.ID
	}

	for _, b := range bookmarks {
		if s.HasBookmarkURL(b.URL) {
			skipped++
			continue
		}
		if b.FolderID != nil {
			if mapped, ok := remap[*b.FolderID]; ok {
				id := mapped
				b.FolderID = &id
			}
		}
		if b.Tags == nil {
			b.Tags = []string{}
		}
		s.Bookmarks = append(s.Bookmarks, b)
		added++
	}

	return added, skipped
}

// findFolder returns the folder with the given name directly under parentID.
func (s *Store) findFolder(name string, parentID *string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].Name == name && ptrEqual(s.Folders[i].ParentID, parentID) {
			return &s.Folders[i]
		}
	}
	return nil
}

// ptrEqual compares two string pointers for equality.
func ptrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
