package picker

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmlinks/internal/model"
	"github.com/nikbrunner/bmlinks/internal/search"
	"github.com/nikbrunner/bmlinks/internal/tui/layout"
)

func twoResults() []search.SearchResult {
	return []search.SearchResult{
		{Bookmark: &model.Bookmark{ID: "b1", Title: "GitHub", URL: "https://github.com"}},
		{Bookmark: &model.Bookmark{ID: "b2", Title: "GitLab", URL: "https://gitlab.com"}},
	}
}

func press(t *testing.T, p Picker, msg tea.KeyMsg) (Picker, tea.Cmd) {
	t.Helper()
	next, cmd := p.Update(msg)
	return next.(Picker), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_Navigation(t *testing.T) {
	tests := []struct {
		name  string
		start int
		keys  []tea.KeyMsg
		want  int
	}{
		{"j moves down", 0, []tea.KeyMsg{runes("j")}, 1},
		{"k moves up", 1, []tea.KeyMsg{runes("k")}, 0},
		{"arrow down", 0, []tea.KeyMsg{{Type: tea.KeyDown}}, 1},
		{"arrow up", 1, []tea.KeyMsg{{Type: tea.KeyUp}}, 0},
		{"stops at top", 0, []tea.KeyMsg{runes("k"), runes("k")}, 0},
		{"stops at bottom", 0, []tea.KeyMsg{runes("j"), runes("j"), runes("j")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(twoResults(), "git")
			p.cursor = tt.start
			for _, k := range tt.keys {
				p, _ = press(t, p, k)
			}
			if p.cursor != tt.want {
				t.Errorf("expected cursor at %d, got %d", tt.want, p.cursor)
			}
		})
	}
}

func TestPicker_SelectItem(t *testing.T) {
	results := twoResults()
	p := New(results, "git")
	p.cursor = 1

	p, cmd := press(t, p, tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Error("expected quit command after selection")
	}
	if got := p.SelectedBookmark(); got != results[1].Bookmark {
		t.Errorf("expected GitLab, got %v", got)
	}
}

func TestPicker_SelectWithoutResults(t *testing.T) {
	p := New(nil, "nothing")

	p, _ = press(t, p, tea.KeyMsg{Type: tea.KeyEnter})

	if p.SelectedBookmark() != nil {
		t.Error("expected no selection without results")
	}
}

func TestPicker_Cancel(t *testing.T) {
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}, runes("q")} {
		t.Run(msg.String(), func(t *testing.T) {
			p := New(twoResults(), "git")

			p, cmd := press(t, p, msg)

			if !p.Cancelled() {
				t.Error("expected cancelled")
			}
			if cmd == nil {
				t.Error("expected quit command after cancel")
			}
			if p.SelectedBookmark() != nil {
				t.Error("expected nil when cancelled")
			}
		})
	}
}

func TestPicker_ViewShowsStatus(t *testing.T) {
	results := twoResults()
	results[0].Bookmark.ApplyCheck(model.StatusNotFound, "HTTP 404 Not Found", time.Now(), nil)

	out := layout.StripANSI(New(results, "git").View())

	if !strings.Contains(out, "Probe: git (2 matches)") {
		t.Errorf("missing header in %q", out)
	}
	if !strings.Contains(out, "GitHub [not_found]") {
		t.Errorf("missing status of checked bookmark in %q", out)
	}
	if strings.Contains(out, "GitLab [") {
		t.Errorf("unchecked bookmark should carry no status in %q", out)
	}
	if !strings.Contains(out, "Enter: probe") {
		t.Errorf("missing hints in %q", out)
	}
}

func TestPicker_TruncatesToWidth(t *testing.T) {
	results := []search.SearchResult{{Bookmark: &model.Bookmark{
		ID:    "b1",
		Title: "A very long bookmark title indeed",
		URL:   "https://example.com/a/very/long/path/to/somewhere",
	}}}

	next, _ := New(results, "long").Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	out := layout.StripANSI(next.(Picker).View())

	if !strings.Contains(out, "> A very long boo...\n") {
		t.Errorf("expected truncated title in %q", out)
	}
	if !strings.Contains(out, "   https:/...mewhere\n") {
		t.Errorf("expected URL cut in the middle in %q", out)
	}
}
