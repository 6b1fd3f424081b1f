package browser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestParseLocation(t *testing.T) {
	cwd := t.TempDir()
	if err := os.WriteFile(filepath.Join(cwd, "notes.md"), []byte("# hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want Location
	}{
		{"/etc", Location{SchemeFile, "/etc"}},
		{"/etc/../tmp/", Location{SchemeFile, "/tmp"}},
		{"file:///var/log", Location{SchemeFile, "/var/log"}},
		{"./sub", Location{SchemeFile, filepath.Join(cwd, "sub")}},
		{"..", Location{SchemeFile, filepath.Dir(cwd)}},
		{"notes.md", Location{SchemeFile, filepath.Join(cwd, "notes.md")}},
		{"https://example.com/a", Location{SchemeHTTPS, "https://example.com/a"}},
		{"HTTP://Example.com", Location{SchemeHTTP, "HTTP://Example.com"}},
		{"golang.org", Location{SchemeHTTPS, "https://golang.org"}},
		{"how to go", Location{SchemeHTTPS, searchEndpoint + "how+to+go"}},
	}
	if home != "" {
		tests = append(tests, struct {
			in   string
			want Location
		}{"~/x", Location{SchemeFile, filepath.Join(home, "x")}})
	}

	for _, tt := range tests {
		got, err := ParseLocation(tt.in, cwd)
		if err != nil {
			t.Errorf("ParseLocation(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLocation(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseLocationErrors(t *testing.T) {
	if _, err := ParseLocation("   ", ""); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := ParseLocation("ftp://example.com", ""); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("ftp error = %v, want ErrUnsupportedScheme", err)
	}
}

func TestSameResourceWeb(t *testing.T) {
	web := func(s string) Location {
		l, err := ParseLocation(s, "")
		if err != nil {
			t.Fatal(err)
		}
		return l
	}
	tests := []struct {
		a, b string
		want bool
	}{
		{"https://example.com", "https://example.com/", true},
		{"https://EXAMPLE.com/a", "https://example.com/a", true},
		{"https://example.com:443/a", "https://example.com/a", true},
		{"http://example.com:80/a", "http://example.com/a", true},
		{"https://example.com/a#frag", "https://example.com/a", true},
		{"https://example.com/a", "https://example.com/A", false},
		{"https://example.com/a?x=1", "https://example.com/a?x=2", false},
		{"http://example.com/a", "https://example.com/a", false},
		{"https://example.com:8443/a", "https://example.com/a", false},
	}
	for _, tt := range tests {
		if got := SameResource(web(tt.a), web(tt.b)); got != tt.want {
			t.Errorf("SameResource(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSameResourceFiles(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	if err := os.Mkdir(real, 0o755); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(dir, "other")
	if err := os.Mkdir(other, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if !SameResource(FileLocation(real), FileLocation(link)) {
		t.Error("symlink should be the same resource as its target")
	}
	if !SameResource(FileLocation(real), FileLocation(real+"/.")) {
		t.Error("alternate spelling should be equal")
	}
	if SameResource(FileLocation(real), FileLocation(other)) {
		t.Error("different folders compared equal")
	}
	if SameResource(FileLocation(filepath.Join(dir, "gone")), FileLocation(real)) {
		t.Error("missing path compared equal")
	}
	if SameResource(FileLocation(real), Location{SchemeHTTPS, "https://" + real}) {
		t.Error("file and web location compared equal")
	}
}

func TestParent(t *testing.T) {
	tests := []struct {
		in     Location
		want   string
		wantOK bool
	}{
		{Location{SchemeHTTPS, "https://a.com/x/y"}, "https://a.com/x/", true},
		{Location{SchemeHTTPS, "https://a.com/x/"}, "https://a.com/", true},
		{Location{SchemeHTTPS, "https://a.com/x/y?q=1#frag"}, "https://a.com/x/", true},
		{Location{SchemeHTTPS, "https://a.com/?q=1"}, "https://a.com/", true},
		{Location{SchemeHTTPS, "https://a.com/"}, "", false},
		{Location{SchemeHTTPS, "https://a.com"}, "", false},
		{FileLocation("/srv/data"), "/srv", true},
		{FileLocation("/"), "", false},
		{Location{}, "", false},
	}
	for _, tt := range tests {
		got, ok := Parent(tt.in)
		if ok != tt.wantOK || got.Target != tt.want {
			t.Errorf("Parent(%q) = (%q, %v), want (%q, %v)", tt.in.Target, got.Target, ok, tt.want, tt.wantOK)
		}
	}
}
