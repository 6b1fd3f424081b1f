package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vidyasagar/xplore/internal/theme"
)

const defaultCacheSize = 50

// Rewriter maps a location string to the one that should be loaded instead.
type Rewriter interface {
	Apply(loc string) (string, error)
}

// LoaderOptions configures a Loader. Zero values pick defaults.
type LoaderOptions struct {
	Fetcher   *Fetcher
	Rewriter  Rewriter
	CacheSize int
	Logger    *slog.Logger

	// SearchEndpoint is the results page free text is sent to. Locations
	// under it are rendered as result lists instead of articles.
	SearchEndpoint string
}

// Loader turns locations into rendered pages. The page it returns may be for
// a different location than the one asked for: rewrite rules, HTTP redirects
// and missing folders all move the landing spot.
type Loader struct {
	fetcher  *Fetcher
	rewriter Rewriter
	cache    *lru.Cache[string, *Page]
	logger   *slog.Logger
	search   string
}

// NewLoader creates a Loader.
func NewLoader(opts LoaderOptions) (*Loader, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, *Page](size)
	if err != nil {
		return nil, fmt.Errorf("creating page cache: %w", err)
	}

	l := &Loader{
		fetcher:  opts.Fetcher,
		rewriter: opts.Rewriter,
		cache:    cache,
		logger:   opts.Logger,
		search:   opts.SearchEndpoint,
	}
	if l.search == "" {
		l.search = searchEndpoint
	}
	if l.fetcher == nil {
		l.fetcher = NewFetcher()
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	return l, nil
}

// Load resolves loc and renders it for the given width. Cached web pages are
// reused unless fresh is set; folders and files are always read again.
func (l *Loader) Load(ctx context.Context, loc Location, width int, fresh bool) (*Page, error) {
	target, err := l.rewrite(loc)
	if err != nil {
		return nil, err
	}

	var page *Page
	switch {
	case target.IsFile():
		page, err = l.loadFile(target, width)
	case target.IsWeb():
		page, err = l.loadWeb(ctx, target, width, fresh)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedScheme, target.Scheme)
	}
	if err != nil {
		l.logger.Debug("load failed", "location", loc.String(), "error", err)
		return nil, err
	}

	out := *page
	out.Requested = loc
	if !SameResource(loc, out.Location) {
		l.logger.Debug("load landed elsewhere", "requested", loc.String(), "landed", out.Location.String())
	}
	return &out, nil
}

// Invalidate drops every cached rendering of loc.
func (l *Loader) Invalidate(loc Location) {
	prefix := loc.Target + "\x00"
	for _, k := range l.cache.Keys() {
		if strings.HasPrefix(k, prefix) {
			l.cache.Remove(k)
		}
	}
}

// cacheKey identifies a rendering: the same page at another width or in
// another glamour style is a different entry.
func cacheKey(target string, width int) string {
	return fmt.Sprintf("%s\x00%d\x00%s", target, contentWidth(width), theme.Current.Glamour)
}

func (l *Loader) rewrite(loc Location) (Location, error) {
	if l.rewriter == nil {
		return loc, nil
	}
	raw, err := l.rewriter.Apply(loc.String())
	if err != nil {
		return Location{}, err
	}
	if raw == loc.String() {
		return loc, nil
	}
	dir := ""
	if loc.IsFile() {
		dir = filepath.Dir(loc.Target)
	}
	target, err := ParseLocation(raw, dir)
	if err != nil {
		return Location{}, fmt.Errorf("rewritten location %q: %w", raw, err)
	}
	l.logger.Debug("location rewritten", "from", loc.String(), "to", target.String())
	return target, nil
}

func (l *Loader) loadFile(loc Location, width int) (*Page, error) {
	path := NearestExisting(loc.Target)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	landed := FileLocation(path)

	if !info.IsDir() {
		content, err := RenderFile(path, width)
		if err != nil {
			return nil, err
		}
		return &Page{
			Location: landed,
			Title:    filepath.Base(path),
			Content:  content,
			Links:    []Link{{Index: 0, Text: "..", Target: filepath.Dir(path)}},
		}, nil
	}

	entries, err := ReadFolder(path)
	if err != nil {
		return nil, err
	}
	content, links := RenderFolder(path, entries, width)
	title := filepath.Base(path)
	if title == string(filepath.Separator) || title == "." {
		title = path
	}
	return &Page{
		Location: landed,
		Title:    title,
		Content:  content,
		Links:    links,
	}, nil
}

func (l *Loader) loadWeb(ctx context.Context, loc Location, width int, fresh bool) (*Page, error) {
	key := cacheKey(loc.Target, width)
	if !fresh {
		if page, ok := l.cache.Get(key); ok {
			return page, nil
		}
	}

	result, err := l.fetcher.Fetch(ctx, loc.Target)
	if err != nil {
		return nil, err
	}

	var title, content string
	var links []Link
	if query, ok := searchQuery(l.search, loc.Target); ok {
		results, err := ParseSearchResults(result.Body)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("search results", "query", query, "count", len(results))
		title = "Search: " + query
		content, links = RenderSearchResults(query, results, width)
	} else {
		article, err := Extract(result)
		if err != nil {
			return nil, err
		}
		title = article.Title
		content, links = Render(article, width)
	}

	landed := Location{Scheme: loc.Scheme, Target: result.FinalURL}
	if final, err := ParseLocation(result.FinalURL, ""); err == nil {
		landed = final
	}
	page := &Page{
		Location: landed,
		Title:    title,
		Content:  content,
		Links:    links,
	}
	l.cache.Add(key, page)
	if landed.Target != loc.Target {
		l.cache.Add(cacheKey(landed.Target, width), page)
	}
	return page, nil
}
