package model

import "time"

// Bookmark represents a saved URL with metadata and the result of its last link check.
type Bookmark struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	FolderID  *string    `json:"folderId"` // nil = root level
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"createdAt"`
	VisitedAt *time.Time `json:"visitedAt"` // nil = never visited

	// Written by the link checker.
	Status        LinkStatus `json:"status"`
	StatusMessage string     `json:"statusMessage,omitempty"`
	LastChecked   *time.Time `json:"lastChecked"` // nil = never checked
	RedirectURL   *string    `json:"redirectUrl"` // nil = no redirect to a different URL
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title    string
	URL      string
	FolderID *string
	Tags     []string
}

// NewBookmark creates a Bookmark with generated UUID and timestamps.
func NewBookmark(params NewBookmarkParams) Bookmark {
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	return Bookmark{
		ID:        GenerateUUID(),
		Title:     params.Title,
		URL:       params.URL,
		FolderID:  params.FolderID,
		Tags:      tags,
		CreatedAt: time.Now(),
		VisitedAt: nil,
	}
}

// ApplyCheck records the outcome of a link check on the bookmark.
// A nil or empty redirectURL clears any previously recorded redirect.
func (b *Bookmark) ApplyCheck(status LinkStatus, message string, checkedAt time.Time, redirectURL *string) {
	b.Status = status
	b.StatusMessage = message
	b.LastChecked = &checkedAt
	b.RedirectURL = nil
	if redirectURL != nil && *redirectURL != "" {
		u := *redirectURL
		b.RedirectURL = &u
	}
}

// ClearCheck forgets the last link check.
func (b *Bookmark) ClearCheck() {
	b.Status = StatusUnknown
	b.StatusMessage = ""
	b.LastChecked = nil
	b.RedirectURL = nil
}
