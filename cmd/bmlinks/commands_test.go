package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmlinks/internal/checker"
	"github.com/nikbrunner/bmlinks/internal/collector"
	"github.com/nikbrunner/bmlinks/internal/logging"
	"github.com/nikbrunner/bmlinks/internal/model"
	"github.com/nikbrunner/bmlinks/internal/storage"
)

// linkServer serves one healthy page, one missing page and one redirect to
// the healthy page.
func linkServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/gone", http.NotFound)
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// setupConfig writes a JSON config whose data directory is a temp dir and
// seeds it with store when given. It returns the config path and config.
func setupConfig(t *testing.T, store *model.Store) (string, *storage.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := storage.DefaultConfig()
	cfg.Storage = storage.BackendJSON
	cfg.DataPath = filepath.Join(dir, "data")
	path := filepath.Join(dir, "config.json")
	assert.NilError(t, storage.SaveConfig(path, &cfg))

	if store != nil {
		assert.NilError(t, storage.NewJSONStorage(cfg.JSONPath()).Save(store))
	}
	return path, &cfg
}

func seedStore(base string) *model.Store {
	store := model.NewStore()
	work := model.NewFolder(model.NewFolderParams{Name: "Work"})
	store.AddFolder(work)
	store.AddBookmark(model.NewBookmark(model.NewBookmarkParams{Title: "Healthy", URL: base + "/ok"}))
	store.AddBookmark(model.NewBookmark(model.NewBookmarkParams{Title: "Gone", URL: base + "/gone", FolderID: &work.ID}))
	store.AddBookmark(model.NewBookmark(model.NewBookmarkParams{Title: "Moved", URL: base + "/moved"}))
	return store
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func loadStore(t *testing.T, cfg *storage.Config) *model.Store {
	t.Helper()
	store, err := storage.NewJSONStorage(cfg.JSONPath()).Load()
	assert.NilError(t, err)
	return store
}

func bookmarkByTitle(t *testing.T, store *model.Store, title string) *model.Bookmark {
	t.Helper()
	for i := range store.Bookmarks {
		if store.Bookmarks[i].Title == title {
			return &store.Bookmarks[i]
		}
	}
	t.Fatalf("no bookmark titled %q", title)
	return nil
}

func TestCheckCmd_Plain(t *testing.T) {
	srv := linkServer(t)
	configPath, cfg := setupConfig(t, seedStore(srv.URL))

	out, err := run(t, "check", "--no-tui", "--config", configPath)
	assert.NilError(t, err)

	assert.Check(t, is.Contains(out, "[1/3] "))
	assert.Check(t, is.Contains(out, "[3/3] "))
	assert.Check(t, is.Contains(out, "Checked 3 of 3 URLs"))
	assert.Check(t, is.Contains(out, "2 accessible, 1 not found, 0 errors, 1 redirected\n"))

	store := loadStore(t, cfg)

	healthy := bookmarkByTitle(t, store, "Healthy")
	assert.Equal(t, healthy.Status, model.StatusAccessible)
	assert.Check(t, healthy.LastChecked != nil)
	assert.Check(t, healthy.RedirectURL == nil)

	gone := bookmarkByTitle(t, store, "Gone")
	assert.Equal(t, gone.Status, model.StatusNotFound)
	assert.Check(t, is.Contains(gone.StatusMessage, "404"))

	moved := bookmarkByTitle(t, store, "Moved")
	assert.Equal(t, moved.Status, model.StatusAccessible)
	assert.Assert(t, moved.RedirectURL != nil)
	assert.Equal(t, *moved.RedirectURL, srv.URL+"/ok")
}

func TestCheckCmd_FailedOnly(t *testing.T) {
	srv := linkServer(t)
	configPath, _ := setupConfig(t, seedStore(srv.URL))

	_, err := run(t, "check", "--no-tui", "--config", configPath)
	assert.NilError(t, err)

	out, err := run(t, "check", "--no-tui", "--failed", "--config", configPath)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "[1/1] "+srv.URL+"/gone"))
	assert.Check(t, is.Contains(out, "Checked 1 of 1 URLs"))
}

func TestCheckCmd_Folder(t *testing.T) {
	srv := linkServer(t)
	configPath, _ := setupConfig(t, seedStore(srv.URL))

	out, err := run(t, "check", "--no-tui", "--folder", "work", "--config", configPath)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "[1/1] "+srv.URL+"/gone"))

	_, err = run(t, "check", "--no-tui", "--folder", "Nope", "--config", configPath)
	assert.ErrorContains(t, err, "folder not found: Nope")
}

func TestCheckCmd_NothingToCheck(t *testing.T) {
	configPath, _ := setupConfig(t, nil)

	out, err := run(t, "check", "--no-tui", "--config", configPath)
	assert.NilError(t, err)
	assert.Equal(t, out, "No bookmarks to check.\n")
}

func TestCheckCmd_Report(t *testing.T) {
	srv := linkServer(t)
	configPath, _ := setupConfig(t, seedStore(srv.URL))
	reportPath := filepath.Join(t.TempDir(), "links.md")

	out, err := run(t, "check", "--no-tui", "--report", reportPath, "--config", configPath)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "Report written to "+reportPath))

	data, err := os.ReadFile(reportPath)
	assert.NilError(t, err)
	report := string(data)
	assert.Check(t, is.Contains(report, "# Link Check Report"))
	assert.Check(t, is.Contains(report, "## Broken Links"))
	assert.Check(t, is.Contains(report, srv.URL+"/gone"))
	assert.Check(t, is.Contains(report, "## Redirects"))
}

func TestCheckCmd_InvalidOverride(t *testing.T) {
	configPath, _ := setupConfig(t, nil)

	_, err := run(t, "check", "--no-tui", "--timeout", "0s", "--config", configPath)
	assert.ErrorContains(t, err, "invalid config")
}

func TestProbeCmd_URL(t *testing.T) {
	srv := linkServer(t)
	configPath, cfg := setupConfig(t, seedStore(srv.URL))

	out, err := run(t, "probe", srv.URL+"/gone", "--config", configPath)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, srv.URL+"/gone: not_found (HTTP 404"))

	// A bare URL is not recorded on the bookmark.
	gone := bookmarkByTitle(t, loadStore(t, cfg), "Gone")
	assert.Check(t, gone.LastChecked == nil)
}

func TestProbeCmd_Redirect(t *testing.T) {
	srv := linkServer(t)
	configPath, cfg := setupConfig(t, seedStore(srv.URL))

	out, err := run(t, "probe", "Moved", "--config", configPath)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "Moved (/)\n"))
	assert.Check(t, is.Contains(out, "redirects to "+srv.URL+"/ok"))

	moved := bookmarkByTitle(t, loadStore(t, cfg), "Moved")
	assert.Equal(t, moved.Status, model.StatusAccessible)
	assert.Assert(t, moved.RedirectURL != nil)
}

func TestProbeCmd_Query(t *testing.T) {
	srv := linkServer(t)
	configPath, cfg := setupConfig(t, seedStore(srv.URL))

	out, err := run(t, "probe", "Gone", "--config", configPath)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(out, "Gone (Work)\n"))
	assert.Check(t, is.Contains(out, ": not_found"))

	gone := bookmarkByTitle(t, loadStore(t, cfg), "Gone")
	assert.Equal(t, gone.Status, model.StatusNotFound)
	assert.Check(t, gone.LastChecked != nil)
}

func TestProbeCmd_NoMatch(t *testing.T) {
	configPath, _ := setupConfig(t, seedStore("https://example.com"))

	out, err := run(t, "probe", "zzz", "--config", configPath)
	assert.NilError(t, err)
	assert.Equal(t, out, "No bookmarks found for 'zzz'\n")
}

func TestImportExportCmd(t *testing.T) {
	configPath, cfg := setupConfig(t, nil)
	dir := t.TempDir()

	htmlPath := filepath.Join(dir, "bookmarks.html")
	assert.NilError(t, os.WriteFile(htmlPath, []byte(`<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Dev</H3>
    <DL><p>
        <DT><A HREF="https://go.dev" ADD_DATE="1234567890" LINK_STATUS="not_found">Go</A>
    </DL><p>
    <DT><A HREF="https://example.com">Example</A>
</DL><p>`), 0o644))

	out, err := run(t, "import", htmlPath, "--config", configPath)
	assert.NilError(t, err)
	assert.Equal(t, out, "Imported 2 bookmarks, 1 folders\n")

	out, err = run(t, "import", htmlPath, "--config", configPath)
	assert.NilError(t, err)
	assert.Equal(t, out, "Imported 0 bookmarks, 1 folders (2 duplicates skipped)\n")

	store := loadStore(t, cfg)
	assert.Equal(t, len(store.Folders), 1)
	assert.Equal(t, len(store.Bookmarks), 2)

	exportPath := filepath.Join(dir, "export.html")
	out, err = run(t, "export", exportPath, "--config", configPath)
	assert.NilError(t, err)
	assert.Equal(t, out, "Exported 2 bookmarks, 1 folders to "+exportPath+"\n")

	data, err := os.ReadFile(exportPath)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(string(data), `HREF="https://go.dev"`))
	assert.Check(t, strings.Contains(string(data), "<H3"))
}

func TestImportCmd_MissingFile(t *testing.T) {
	configPath, _ := setupConfig(t, nil)

	_, err := run(t, "import", filepath.Join(t.TempDir(), "missing.html"), "--config", configPath)
	assert.ErrorContains(t, err, "open file")
}

func TestCheckCmd_JSONLogs(t *testing.T) {
	srv := linkServer(t)
	configPath, _ := setupConfig(t, seedStore(srv.URL))

	cmd := NewRootCmd()
	var stderr bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"check", "--no-tui", "--verbose", "--log-json", "--config", configPath})

	assert.NilError(t, cmd.Execute())
	assert.Check(t, is.Contains(stderr.String(), `"msg":"link check started"`))
}

func TestSaveResults(t *testing.T) {
	checkedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	viewFailed := errors.New("run progress view: no terminal")

	tests := []struct {
		name    string
		stats   *checker.RunStatistics
		runErr  error
		wantErr string
		saved   bool
	}{
		{name: "completed", stats: &checker.RunStatistics{TotalURLs: 1}, saved: true},
		{
			name:   "cancelled",
			stats:  &checker.RunStatistics{TotalURLs: 1, Cancelled: true},
			runErr: fmt.Errorf("%w: %w", checker.ErrCancelled, errors.New("interrupted")),
			saved:  true,
		},
		{
			name:    "view failed",
			stats:   &checker.RunStatistics{TotalURLs: 1, Cancelled: true},
			runErr:  viewFailed,
			wantErr: "no terminal",
			saved:   true,
		},
		{name: "rejected", runErr: checker.ErrCheckInProgress, wantErr: "check already in progress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storage.NewJSONStorage(filepath.Join(t.TempDir(), "bookmarks.json"))
			store := model.NewStore()
			store.AddBookmark(model.Bookmark{ID: "b1", URL: "https://example.com"})
			store.Bookmarks[0].ApplyCheck(model.StatusNotFound, "HTTP 404 Not Found", checkedAt, nil)

			err := saveResults(s, store, tt.stats, tt.runErr)
			if tt.wantErr == "" {
				assert.NilError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}

			loaded, err := s.Load()
			assert.NilError(t, err)
			if tt.saved {
				assert.Assert(t, is.Len(loaded.Bookmarks, 1))
				assert.Equal(t, loaded.Bookmarks[0].Status, model.StatusNotFound)
			} else {
				assert.Check(t, is.Len(loaded.Bookmarks, 0))
			}
		})
	}
}

func TestWatchAttached(t *testing.T) {
	store := model.NewStore()
	store.AddBookmark(model.Bookmark{ID: "b1", URL: "https://example.com"})
	store.AddBookmark(model.Bookmark{ID: "b2", URL: "https://orphan.example", FolderID: stringPtr("deleted")})
	targets := collector.Collect(store, collector.Options{})
	assert.Assert(t, is.Len(targets, 2))

	var logs bytes.Buffer
	calls := 0
	progress := watchAttached(store, logging.NewLogger(&logs, false), func(int, int, string, checker.Target) {
		calls++
	})

	for i, tgt := range targets {
		progress(i+1, len(targets), tgt.URL(), tgt)
	}
	assert.Equal(t, calls, 2)
	assert.Equal(t, logs.String(), "")

	// Growing the slice moves the bookmarks; the old targets are stale.
	store.Bookmarks = append(store.Bookmarks[:len(store.Bookmarks):len(store.Bookmarks)], model.Bookmark{ID: "b3"})
	progress(1, 1, targets[0].URL(), targets[0])
	assert.Equal(t, calls, 3)
	assert.Check(t, is.Contains(logs.String(), "target is no longer part of the store"))
}

func stringPtr(s string) *string { return &s }
