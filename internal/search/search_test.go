package search

import (
	"testing"
	"time"

	"github.com/nikbrunner/bmlinks/internal/model"
)

func TestFuzzySearchBookmarks_EmptyQuery(t *testing.T) {
	store := model.NewStore()
	store.AddBookmark(model.Bookmark{
		ID:        "b1",
		Title:     "GitHub",
		URL:       "https://github.com",
		CreatedAt: time.Now(),
	})

	results := FuzzySearchBookmarks(store, "")

	if len(results) != 0 {
		t.Errorf("expected 0 results for empty query, got %d", len(results))
	}
}

func TestFuzzySearchBookmarks_ExactMatch(t *testing.T) {
	store := model.NewStore()
	store.AddBookmark(model.Bookmark{
		ID:        "b1",
		Title:     "GitHub",
		URL:       "https://github.com",
		CreatedAt: time.Now(),
	})
	store.AddBookmark(model.Bookmark{
		ID:        "b2",
		Title:     "GitLab",
		URL:       "https://gitlab.com",
		CreatedAt: time.Now(),
	})

	results := FuzzySearchBookmarks(store, "GitHub")

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Bookmark.Title != "GitHub" {
		t.Errorf("expected GitHub, got %s", results[0].Bookmark.Title)
	}
}

func TestFuzzySearchBookmarks_FuzzyMatch(t *testing.T) {
	store := model.NewStore()
	store.AddBookmark(model.Bookmark{
		ID:        "b1",
		Title:     "TanStack Router",
		URL:       "https://tanstack.com/router",
		CreatedAt: time.Now(),
	})
	store.AddBookmark(model.Bookmark{
		ID:        "b2",
		Title:     "React Router",
		URL:       "https://reactrouter.com",
		CreatedAt: time.Now(),
	})

	// "tanrou" should fuzzy match "TanStack Router"
	results := FuzzySearchBookmarks(store, "tanrou")

	if len(results) < 1 {
		t.Fatalf("expected at least 1 result for 'tanrou', got %d", len(results))
	}
	// TanStack Router should be first (better match)
	if results[0].Bookmark.Title != "TanStack Router" {
		t.Errorf("expected TanStack Router as first result, got %s", results[0].Bookmark.Title)
	}
}

func TestFuzzySearchBookmarks_MultipleMatches(t *testing.T) {
	store := model.NewStore()
	store.AddBookmark(model.Bookmark{
		ID:        "b1",
		Title:     "GitHub",
		URL:       "https://github.com",
		CreatedAt: time.Now(),
	})
	store.AddBookmark(model.Bookmark{
		ID:        "b2",
		Title:     "GitLab",
		URL:       "https://gitlab.com",
		CreatedAt: time.Now(),
	})
	store.AddBookmark(model.Bookmark{
		ID:        "b3",
		Title:     "Gitea",
		URL:       "https://gitea.io",
		CreatedAt: time.Now(),
	})

	results := FuzzySearchBookmarks(store, "git")

	if len(results) != 3 {
		t.Errorf("expected 3 results for 'git', got %d", len(results))
	}
}

func TestFuzzySearchBookmarks_NoMatch(t *testing.T) {
	store := model.NewStore()
	store.AddBookmark(model.Bookmark{
		ID:        "b1",
		Title:     "GitHub",
		URL:       "https://github.com",
		CreatedAt: time.Now(),
	})

	results := FuzzySearchBookmarks(store, "xyz123")

	if len(results) != 0 {
		t.Errorf("expected 0 results for 'xyz123', got %d", len(results))
	}
}

func TestFuzzySearchBookmarks_CaseInsensitive(t *testing.T) {
	store := model.NewStore()
	store.AddBookmark(model.Bookmark{
		ID:        "b1",
		Title:     "GitHub",
		URL:       "https://github.com",
		CreatedAt: time.Now(),
	})

	results := FuzzySearchBookmarks(store, "github")

	if len(results) != 1 {
		t.Fatalf("expected 1 result for case-insensitive match, got %d", len(results))
	}
}

func TestFuzzySearchBookmarks_SortedByScore(t *testing.T) {
	store := model.NewStore()
	store.AddBookmark(model.Bookmark{
		ID:        "b1",
		Title:     "React Router Documentation",
		URL:       "https://reactrouter.com",
		CreatedAt: time.Now(),
	})
	store.AddBookmark(model.Bookmark{
		ID:        "b2",
		Title:     "Router",
		URL:       "https://router.example.com",
		CreatedAt: time.Now(),
	})

	results := FuzzySearchBookmarks(store, "router")

	if len(results) < 2 {
		t.Fatalf("expected at least 2 results, got %d", len(results))
	}
	// "Router" should rank higher (exact match) than "React Router Documentation"
	if results[0].Bookmark.Title != "Router" {
		t.Errorf("expected 'Router' as first result (exact match), got %s", results[0].Bookmark.Title)
	}
}

func TestFuzzySearchBookmarks_MatchesURL(t *testing.T) {
	store := model.NewStore()
	store.AddBookmark(model.Bookmark{
		ID:        "b1",
		Title:     "Docs",
		URL:       "https://pkg.go.dev/net/http",
		CreatedAt: time.Now(),
	})
	store.AddBookmark(model.Bookmark{
		ID:        "b2",
		Title:     "Weather",
		URL:       "https://weather.example.com",
		CreatedAt: time.Now(),
	})

	results := FuzzySearchBookmarks(store, "pkg.go.dev")

	if len(results) != 1 {
		t.Fatalf("expected 1 result for URL match, got %d", len(results))
	}
	if results[0].Bookmark.ID != "b1" {
		t.Errorf("expected b1, got %s", results[0].Bookmark.ID)
	}
	if results[0].Field != FieldURL {
		t.Errorf("expected match on url, got %s", results[0].Field)
	}
}

func TestFuzzySearchBookmarks_TitleMatchesFirstAndOnce(t *testing.T) {
	store := model.NewStore()
	store.AddBookmark(model.Bookmark{
		ID:        "b1",
		Title:     "Home",
		URL:       "https://github.com/nikbrunner",
		CreatedAt: time.Now(),
	})
	store.AddBookmark(model.Bookmark{
		ID:        "b2",
		Title:     "GitHub",
		URL:       "https://github.com",
		CreatedAt: time.Now(),
	})

	results := FuzzySearchBookmarks(store, "github")

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Bookmark.ID != "b2" || results[0].Field != FieldTitle {
		t.Errorf("expected title match b2 first, got %s on %s", results[0].Bookmark.ID, results[0].Field)
	}
	if results[1].Bookmark.ID != "b1" || results[1].Field != FieldURL {
		t.Errorf("expected url match b1 second, got %s on %s", results[1].Bookmark.ID, results[1].Field)
	}
}

func TestMatchingIDs(t *testing.T) {
	store := model.NewStore()
	store.AddBookmark(model.Bookmark{ID: "b1", Title: "GitHub", URL: "https://github.com"})
	store.AddBookmark(model.Bookmark{ID: "b2", Title: "Weather", URL: "https://weather.example.com"})

	ids := MatchingIDs(store, "git")
	if !ids["b1"] || ids["b2"] {
		t.Errorf("unexpected ids: %v", ids)
	}
	if len(MatchingIDs(store, "")) != 0 {
		t.Error("expected empty query to match nothing")
	}
}
