package rewrite

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const oldReddit = `
function rewrite(location)
  if location:find("^https://www%.reddit%.com") then
    return (location:gsub("www%.reddit", "old.reddit"))
  end
end
`

func TestApply(t *testing.T) {
	r, err := LoadString(oldReddit)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	defer r.Close()

	tests := []struct {
		in   string
		want string
	}{
		{"https://www.reddit.com/r/golang", "https://old.reddit.com/r/golang"},
		{"https://example.com/", "https://example.com/"},
		{"/home/user", "/home/user"},
	}
	for _, tt := range tests {
		got, err := r.Apply(tt.in)
		if err != nil {
			t.Errorf("Apply(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNilRulesKeepLocation(t *testing.T) {
	var r *Rules
	got, err := r.Apply("https://example.com")
	if err != nil || got != "https://example.com" {
		t.Errorf("nil Apply = (%q, %v)", got, err)
	}
	r.Close()
}

func TestMissingFunction(t *testing.T) {
	_, err := LoadString(`x = 1`)
	if !errors.Is(err, ErrNoRewriteFunc) {
		t.Errorf("err = %v, want ErrNoRewriteFunc", err)
	}
}

func TestSyntaxError(t *testing.T) {
	if _, err := LoadString(`function rewrite(`); err == nil {
		t.Error("expected error for invalid script")
	}
}

func TestSandbox(t *testing.T) {
	r, err := LoadString(`
function rewrite(location)
  return tostring(dofile == nil and io == nil and os == nil)
end`)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := r.Apply("x")
	if err != nil {
		t.Fatal(err)
	}
	if got != "true" {
		t.Errorf("sandbox leaked globals")
	}
}

func TestRuntimeErrorAndBadReturn(t *testing.T) {
	r, err := LoadString(`
function rewrite(location)
  if location == "boom" then error("kaboom") end
  return 42
end`)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	got, err := r.Apply("boom")
	if err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("Apply(boom) error = %v", err)
	}
	if got != "boom" {
		t.Errorf("failed Apply returned %q, want original", got)
	}
	if _, err := r.Apply("x"); err == nil {
		t.Error("expected error for numeric return")
	}
}

func TestLoadFileAndConcurrency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewrite.lua")
	if err := os.WriteFile(path, []byte(`function rewrite(l) return l .. "/" end`), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if got, err := r.Apply("a"); err != nil || got != "a/" {
					t.Errorf("Apply = (%q, %v)", got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
