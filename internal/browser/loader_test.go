package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/vidyasagar/xplore/internal/theme"
)

type mapRewriter map[string]string

func (m mapRewriter) Apply(loc string) (string, error) {
	if to, ok := m[loc]; ok {
		if to == "!" {
			return "", errors.New("rule failed")
		}
		return to, nil
	}
	return loc, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head><title>Page</title></head><body><article>
<h1>Page</h1><p>Some readable text that goes on for a while so the extractor keeps it.
More words here to make the paragraph long enough. <a href="/other">other</a></p>
</article></body></html>`)
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/page", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "just <text>")
	})
	mux.HandleFunc("/html/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, searchPage)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestLoader(t *testing.T, srv *httptest.Server, rw Rewriter) *Loader {
	t.Helper()
	l, err := NewLoader(LoaderOptions{
		Fetcher:        NewFetcherWithClient(srv.Client()),
		Rewriter:       rw,
		SearchEndpoint: srv.URL + "/html/?q=",
	})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func webLoc(t *testing.T, raw string) Location {
	t.Helper()
	l, err := ParseLocation(raw, "")
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestLoadWebPage(t *testing.T) {
	srv, _ := newTestServer(t)
	l := newTestLoader(t, srv, nil)

	loc := webLoc(t, srv.URL+"/page")
	page, err := l.Load(context.Background(), loc, 80, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if page.Requested != loc || !SameResource(page.Location, loc) {
		t.Errorf("page locations = %+v / %+v", page.Requested, page.Location)
	}
	if len(page.Links) != 1 || page.Links[0].Target != srv.URL+"/other" {
		t.Errorf("links = %+v", page.Links)
	}
}

func TestLoadRedirectLandsElsewhere(t *testing.T) {
	srv, _ := newTestServer(t)
	l := newTestLoader(t, srv, nil)

	loc := webLoc(t, srv.URL+"/old")
	page, err := l.Load(context.Background(), loc, 80, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if SameResource(page.Location, loc) {
		t.Errorf("redirected page should land elsewhere, got %s", page.Location)
	}
	if page.Location.Target != srv.URL+"/page" {
		t.Errorf("landed at %s, want %s/page", page.Location, srv.URL)
	}
}

func TestLoadCache(t *testing.T) {
	srv, hits := newTestServer(t)
	l := newTestLoader(t, srv, nil)
	loc := webLoc(t, srv.URL+"/page")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := l.Load(ctx, loc, 80, false); err != nil {
			t.Fatal(err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
	if _, err := l.Load(ctx, loc, 80, true); err != nil {
		t.Fatal(err)
	}
	l.Invalidate(loc)
	if _, err := l.Load(ctx, loc, 80, false); err != nil {
		t.Fatal(err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("server hits = %d, want 3", got)
	}
}

func TestLoadCacheKeyedByRendering(t *testing.T) {
	srv, hits := newTestServer(t)
	l := newTestLoader(t, srv, nil)
	loc := webLoc(t, srv.URL+"/page")
	ctx := context.Background()

	load := func(width int) {
		t.Helper()
		if _, err := l.Load(ctx, loc, width, false); err != nil {
			t.Fatal(err)
		}
	}
	load(80)
	load(60)
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits after resize = %d, want 2", got)
	}
	load(80)
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits returning to width 80 = %d, want 2", got)
	}

	saved := theme.Current.Glamour
	theme.Current.Glamour = "ascii"
	t.Cleanup(func() { theme.Current.Glamour = saved })
	load(80)
	if got := hits.Load(); got != 3 {
		t.Errorf("server hits after style change = %d, want 3", got)
	}

	l.Invalidate(loc)
	theme.Current.Glamour = saved
	load(60)
	if got := hits.Load(); got != 4 {
		t.Errorf("server hits after Invalidate = %d, want 4", got)
	}
}

func TestLoadSearchResults(t *testing.T) {
	srv, _ := newTestServer(t)
	l := newTestLoader(t, srv, nil)

	loc := webLoc(t, srv.URL+"/html/?q=go+docs")
	page, err := l.Load(context.Background(), loc, 80, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if page.Title != "Search: go docs" {
		t.Errorf("title = %q", page.Title)
	}
	want := []string{"https://go.dev/doc/", "https://example.com/pkg"}
	if len(page.Links) != len(want) {
		t.Fatalf("links = %+v, want %v", page.Links, want)
	}
	for i, target := range want {
		if page.Links[i].Index != i+1 || page.Links[i].Target != target {
			t.Errorf("link %d = %+v, want [%d] %s", i, page.Links[i], i+1, target)
		}
	}
	if !strings.Contains(page.Content, "Documentation") || !strings.Contains(page.Content, "2 results") {
		t.Errorf("results not rendered:\n%s", page.Content)
	}
}

func TestLoadPlainText(t *testing.T) {
	srv, _ := newTestServer(t)
	l := newTestLoader(t, srv, nil)
	page, err := l.Load(context.Background(), webLoc(t, srv.URL+"/plain"), 80, false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page.Content, "just") {
		t.Errorf("plain content lost:\n%s", page.Content)
	}
}

func TestLoadErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	l := newTestLoader(t, srv, mapRewriter{srv.URL + "/broken": "!"})
	ctx := context.Background()

	if _, err := l.Load(ctx, webLoc(t, srv.URL+"/missing"), 80, false); err == nil {
		t.Error("expected error for 404")
	}
	if _, err := l.Load(ctx, webLoc(t, srv.URL+"/broken"), 80, false); err == nil {
		t.Error("expected rewrite error")
	}
	if _, err := l.Load(ctx, Location{Scheme: "gopher", Target: "x"}, 80, false); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("unknown scheme error = %v", err)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := l.Load(cctx, webLoc(t, srv.URL+"/page"), 80, true); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled load error = %v", err)
	}
}

func TestLoadRewrite(t *testing.T) {
	srv, _ := newTestServer(t)
	dir := t.TempDir()
	l := newTestLoader(t, srv, mapRewriter{
		srv.URL + "/elsewhere": srv.URL + "/page",
		"/redirected":          dir,
	})

	page, err := l.Load(context.Background(), webLoc(t, srv.URL+"/elsewhere"), 80, false)
	if err != nil {
		t.Fatal(err)
	}
	if page.Location.Target != srv.URL+"/page" {
		t.Errorf("rewritten load landed at %s", page.Location)
	}

	page, err = l.Load(context.Background(), FileLocation("/redirected"), 80, false)
	if err != nil {
		t.Fatal(err)
	}
	if !SameResource(page.Location, FileLocation(dir)) {
		t.Errorf("rewritten file load landed at %s, want %s", page.Location, dir)
	}
}

func TestLoadFolderAndFile(t *testing.T) {
	dir := makeTree(t)
	l, err := NewLoader(LoaderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	page, err := l.Load(ctx, FileLocation(dir), 80, false)
	if err != nil {
		t.Fatal(err)
	}
	if page.Location != FileLocation(dir) || page.Title != filepath.Base(dir) {
		t.Errorf("folder page = %+v", page)
	}

	missing := FileLocation(filepath.Join(dir, "beta", "gone", "deeper"))
	page, err = l.Load(ctx, missing, 80, false)
	if err != nil {
		t.Fatal(err)
	}
	if page.Location != FileLocation(filepath.Join(dir, "beta")) {
		t.Errorf("missing path landed at %s, want beta", page.Location)
	}
	if page.Requested != missing {
		t.Errorf("requested = %s", page.Requested)
	}

	page, err = l.Load(ctx, FileLocation(filepath.Join(dir, "README.md")), 80, false)
	if err != nil {
		t.Fatal(err)
	}
	if page.Title != "README.md" || len(page.Links) != 1 || page.Links[0].Target != dir {
		t.Errorf("file page = %+v", page)
	}

	if _, err := l.Load(ctx, FileLocation(filepath.Join(dir, "blob.bin")), 80, false); !errors.Is(err, ErrBinaryFile) {
		t.Errorf("binary load error = %v", err)
	}
}

func TestLoadUnreadableFolder(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any folder")
	}
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	if err := os.Mkdir(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	l, _ := NewLoader(LoaderOptions{})
	if _, err := l.Load(context.Background(), FileLocation(locked), 80, false); err == nil {
		t.Error("expected error for unreadable folder")
	}
}
