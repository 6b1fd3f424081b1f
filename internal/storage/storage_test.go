package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/uuid"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestVisitStore(t *testing.T) {
	db := openTestDB(t)
	vs := NewVisitStore(db)
	if vs.Session() == uuid.Nil {
		t.Fatal("session id not set")
	}

	for _, v := range []struct{ loc, title string }{
		{"/home", "home"},
		{"/home", ""}, // repeat refreshes, keeps title
		{"https://example.com/", "Example"},
		{"/home", "home again"},
		{"", "ignored"},
	} {
		if err := vs.Add(v.loc, v.title); err != nil {
			t.Fatalf("Add(%q): %v", v.loc, err)
		}
	}

	if got, err := vs.Count(); err != nil || got != 3 {
		t.Errorf("Count = (%d, %v), want 3", got, err)
	}
	recent, err := vs.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent = %d visits, want 3", len(recent))
	}
	if recent[0].Location != "/home" || recent[0].Title != "home again" {
		t.Errorf("newest visit = %+v", recent[0])
	}
	if recent[2].Title != "home" {
		t.Errorf("refreshed visit lost its title: %+v", recent[2])
	}
	if recent[0].SessionID != vs.Session() || recent[0].VisitedAt.IsZero() {
		t.Errorf("visit metadata = %+v", recent[0])
	}

	found, err := vs.Search("example", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].Title != "Example" {
		t.Errorf("Search = %+v", found)
	}

	if err := vs.Clear(); err != nil {
		t.Fatal(err)
	}
	if got, err := vs.Count(); err != nil || got != 0 {
		t.Errorf("Count after Clear = (%d, %v)", got, err)
	}
}

func TestVisitCountReportsErrors(t *testing.T) {
	db, err := OpenDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	vs := NewVisitStore(db)
	db.Close()
	if _, err := vs.Count(); err == nil {
		t.Error("Count on a closed database should fail")
	}
}

func TestVisitSessionsAreSeparate(t *testing.T) {
	db := openTestDB(t)
	a, b := NewVisitStore(db), NewVisitStore(db)
	a.Add("/x", "")
	b.Add("/x", "")
	if got, _ := a.Count(); got != 2 {
		t.Errorf("Count = %d, want one visit per session", got)
	}
}

func TestBookmarkStore(t *testing.T) {
	bs := NewBookmarkStore(openTestDB(t))

	added, err := bs.Add("/srv", "srv")
	if err != nil || !added {
		t.Fatalf("Add = (%v, %v)", added, err)
	}
	added, err = bs.Add("/srv", "again")
	if err != nil || added {
		t.Errorf("duplicate Add = (%v, %v), want (false, nil)", added, err)
	}
	bs.Add("https://go.dev/", "Go")

	if !bs.Has("/srv") || bs.Has("/nope") {
		t.Error("Has mismatch")
	}
	list, err := bs.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Location != "https://go.dev/" {
		t.Errorf("List = %+v", list)
	}

	removed, err := bs.Remove("/srv")
	if err != nil || !removed {
		t.Errorf("Remove = (%v, %v)", removed, err)
	}
	if removed, _ := bs.Remove("/srv"); removed {
		t.Error("second Remove reported success")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.json")

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if cfg.Theme != "default" || cfg.CacheSize != 50 {
		t.Errorf("defaults = %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("defaults not written: %v", err)
	}

	cfg.Home = "/srv"
	cfg.CacheSize = 0
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}
	again, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Home != "/srv" || again.CacheSize != 50 || again.Path() != path {
		t.Errorf("reloaded = %+v", again)
	}

	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestDataDirHonoursXDG(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("XDG only applies on unix-likes")
	}
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	dir, err := DataDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/xdg-data/xplore" {
		t.Errorf("DataDir = %q", dir)
	}
}
