package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Location schemes.
const (
	SchemeFile  = "file"
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

const searchEndpoint = "https://html.duckduckgo.com/html/?q="

// ErrUnsupportedScheme is returned for locations xplore cannot load.
var ErrUnsupportedScheme = errors.New("unsupported scheme")

// Location identifies something xplore can navigate to: a filesystem path
// or a web URL.
type Location struct {
	Scheme string
	Target string // absolute path for files, full URL otherwise
}

// FileLocation returns a location for the cleaned absolute form of path.
func FileLocation(path string) Location {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return Location{Scheme: SchemeFile, Target: filepath.Clean(path)}
}

// String renders the location the way the URL bar shows it.
func (l Location) String() string {
	return l.Target
}

// IsZero reports whether l is the zero Location.
func (l Location) IsZero() bool {
	return l.Scheme == "" && l.Target == ""
}

// IsFile reports whether l points into the filesystem.
func (l Location) IsFile() bool {
	return l.Scheme == SchemeFile
}

// IsWeb reports whether l is an http(s) URL.
func (l Location) IsWeb() bool {
	return l.Scheme == SchemeHTTP || l.Scheme == SchemeHTTPS
}

// ParseLocation interprets user input. Paths (absolute, relative to cwd, or
// starting with ~) become file locations, URLs are kept, domain-like input
// gets https://, and anything else turns into a web search.
func ParseLocation(raw, cwd string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, errors.New("empty location")
	}

	switch {
	case strings.HasPrefix(raw, "file://"):
		return FileLocation(strings.TrimPrefix(raw, "file://")), nil
	case raw == "~" || strings.HasPrefix(raw, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return Location{}, fmt.Errorf("getting home dir: %w", err)
		}
		return FileLocation(filepath.Join(home, strings.TrimPrefix(raw, "~"))), nil
	case filepath.IsAbs(raw):
		return FileLocation(raw), nil
	case raw == "." || raw == ".." || strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../"):
		return FileLocation(filepath.Join(cwd, raw)), nil
	}

	if i := strings.Index(raw, "://"); i > 0 {
		u, err := url.Parse(raw)
		if err != nil {
			return Location{}, fmt.Errorf("parsing URL: %w", err)
		}
		scheme := strings.ToLower(u.Scheme)
		if scheme != SchemeHTTP && scheme != SchemeHTTPS {
			return Location{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
		}
		return Location{Scheme: scheme, Target: raw}, nil
	}

	// An existing relative path wins over a domain guess ("docs.d", "go.mod").
	if cwd != "" {
		if _, err := os.Stat(filepath.Join(cwd, raw)); err == nil {
			return FileLocation(filepath.Join(cwd, raw)), nil
		}
	}

	if strings.Contains(raw, ".") && !strings.Contains(raw, " ") {
		return Location{Scheme: SchemeHTTPS, Target: "https://" + raw}, nil
	}

	return Location{Scheme: SchemeHTTPS, Target: searchEndpoint + url.QueryEscape(raw)}, nil
}

// Parent returns the folder containing a file location, or the URL one path
// segment up for web locations. It reports false at the root.
func Parent(loc Location) (Location, bool) {
	switch {
	case loc.IsFile():
		dir := filepath.Dir(loc.Target)
		if dir == loc.Target {
			return Location{}, false
		}
		return FileLocation(dir), true
	case loc.IsWeb():
		u, err := url.Parse(loc.Target)
		if err != nil {
			return Location{}, false
		}
		p := strings.TrimSuffix(u.Path, "/")
		if p == "" && u.RawQuery == "" {
			return Location{}, false
		}
		parent := "/"
		if p != "" {
			parent = path.Dir(p)
		}
		if !strings.HasSuffix(parent, "/") {
			parent += "/"
		}
		u.Path, u.RawPath = parent, ""
		u.RawQuery, u.Fragment, u.RawFragment = "", "", ""
		return Location{Scheme: loc.Scheme, Target: u.String()}, true
	}
	return Location{}, false
}

// SameResource reports whether a and b name the same underlying resource.
//
// Files are compared by identity on disk, so symlinks and alternate spellings
// of one directory are equal. URLs are compared after normalizing case of
// scheme and host, default ports, an empty path and the fragment.
func SameResource(a, b Location) bool {
	if a.Scheme == SchemeFile || b.Scheme == SchemeFile {
		if a.Scheme != b.Scheme {
			return false
		}
		return sameFile(a.Target, b.Target)
	}
	if !a.IsWeb() || !b.IsWeb() {
		return a == b
	}
	na, errA := normalizeURL(a.Target)
	nb, errB := normalizeURL(b.Target)
	if errA != nil || errB != nil {
		return a.Target == b.Target
	}
	return na == nb
}

func sameFile(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	fa, errA := os.Stat(a)
	fb, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

func normalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (u.Scheme == SchemeHTTP && port == "80") || (u.Scheme == SchemeHTTPS && port == "443") {
		port = ""
	}
	if port != "" {
		host += ":" + port
	}
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return u.String(), nil
}
