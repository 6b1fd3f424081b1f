package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vidyasagar/xplore/internal/storage"
)

func TestTabBar(t *testing.T) {
	tb := NewTabBar()
	tb.SetWidth(120)
	first := tb.Active()

	second := tb.NewTab()
	third := tb.NewTab()
	if tb.Count() != 3 || tb.Active().ID != third.ID {
		t.Fatalf("after two NewTab: count %d, active %+v", tb.Count(), tb.Active())
	}

	tb.Update(second.ID, "", "/srv")
	if tb.tabs[1].Title != "/srv" || tb.tabs[1].Location != "/srv" {
		t.Errorf("untitled update = %+v", tb.tabs[1])
	}
	tb.Update(999, "ghost", "x") // unknown IDs are ignored

	tb.Next()
	if tb.Active().ID != first.ID {
		t.Errorf("Next should wrap to the first tab, got %+v", tb.Active())
	}
	tb.Prev()
	if tb.Active().ID != third.ID {
		t.Errorf("Prev should wrap to the last tab, got %+v", tb.Active())
	}

	id, ok := tb.CloseActive()
	if !ok || id != third.ID || tb.Active().ID != second.ID {
		t.Errorf("CloseActive = (%d, %v), active %+v", id, ok, tb.Active())
	}
	tb.CloseActive()
	if _, ok := tb.CloseActive(); ok {
		t.Error("closed the last tab")
	}
	if !strings.Contains(tb.View(), newTabTitle) {
		t.Errorf("view missing title:\n%s", tb.View())
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCommandBarCompletion(t *testing.T) {
	cb := NewCommandBar([]string{"back", "bookmark", "bookmarks", "forward"})
	cb.Open(CommandEx)

	cb.SetValue("fo")
	cb.Update(key("tab"))
	if got := cb.Value(); got != "forward " {
		t.Errorf("unique prefix completed to %q", got)
	}

	cb.SetValue("bo")
	cb.Update(key("tab"))
	if got := cb.Value(); got != "bo" {
		t.Errorf("ambiguous prefix changed to %q", got)
	}
}

func TestCommandBarHistory(t *testing.T) {
	cb := NewCommandBar(nil)
	for _, c := range []string{"back", "go 2"} {
		cb.Open(CommandEx)
		cb.SetValue(c)
		if res := cb.Submit(); res.Value != c || res.Type != CommandEx {
			t.Fatalf("Submit = %+v", res)
		}
	}
	if cb.IsActive() {
		t.Fatal("bar still open after Submit")
	}

	cb.Open(CommandEx)
	cb.Update(key("up"))
	if got := cb.Value(); got != "go 2" {
		t.Errorf("first recall = %q", got)
	}
	cb.Update(key("up"))
	cb.Update(key("up"))
	if got := cb.Value(); got != "back" {
		t.Errorf("recall past the oldest = %q", got)
	}
	cb.Update(key("down"))
	cb.Update(key("down"))
	if got := cb.Value(); got != "" {
		t.Errorf("recall past the newest = %q", got)
	}

	cb.Update(key("esc"))
	if cb.IsActive() {
		t.Error("esc did not close the bar")
	}

	cb.Open(CommandFollow)
	cb.SetValue(" 7 ")
	if res := cb.Submit(); res.Type != CommandFollow || res.Value != "7" {
		t.Errorf("follow Submit = %+v", res)
	}
	if len(cb.history) != 2 {
		t.Errorf("link numbers should not enter history: %v", cb.history)
	}
}

func TestLogPanel(t *testing.T) {
	lp := NewLogPanel()
	lp.SetSize(40, 20)
	lp.SetEntries([]LogEntry{
		{Title: "home", Location: "/home"},
		{Location: "https://example.com/"},
		{Title: "docs", Location: "/srv/docs"},
	}, 1)
	lp.Show()

	if i, ok := lp.Selected(); !ok || i != 1 {
		t.Fatalf("Show should put the cursor on the current entry, got (%d, %v)", i, ok)
	}
	lp.CursorDown()
	lp.CursorDown()
	if i, _ := lp.Selected(); i != 2 {
		t.Errorf("cursor = %d, want clamp at 2", i)
	}
	if lp.HandleGKey() || !lp.HandleGKey() {
		t.Error("gg not detected")
	}
	if i, _ := lp.Selected(); i != 0 {
		t.Errorf("gg moved cursor to %d", i)
	}

	view := lp.View()
	for _, want := range []string{"Log  3", "● 2 https://example.com/", "3 docs"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	lp.GotoBottom()
	lp.SetEntries(lp.entries[:1], 0)
	if i, _ := lp.Selected(); i != 0 {
		t.Errorf("cursor not clamped after shrink: %d", i)
	}
	lp.SetEntries(nil, -1)
	if _, ok := lp.Selected(); ok {
		t.Error("selection on an empty log")
	}
	if !strings.Contains(lp.View(), "empty") {
		t.Error("empty log not reported")
	}
	lp.Hide()
	if lp.View() != "" {
		t.Error("hidden panel rendered")
	}
}

func TestStatusBarNav(t *testing.T) {
	sb := NewStatusBar()
	sb.SetWidth(100)
	if !strings.Contains(sb.View(), "-/-") {
		t.Errorf("empty log position missing:\n%s", sb.View())
	}

	sb.SetNav(NavState{CanBack: true, Index: 2, Count: 5})
	sb.SetTitle("Example")
	view := sb.View()
	for _, want := range []string{"NORMAL", "◀", "▶", "3/5", "Example"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	sb.SetError("boom")
	if !strings.Contains(sb.View(), "boom") || strings.Contains(sb.View(), "Example") {
		t.Errorf("error should replace the title:\n%s", sb.View())
	}
}

func TestRenderListings(t *testing.T) {
	now := time.Now()
	content, links := RenderBookmarks([]storage.Bookmark{
		{Location: "https://go.dev/", Title: "Go", CreatedAt: now},
		{Location: "/srv", CreatedAt: now.Add(-2 * time.Hour)},
	}, 80)
	if len(links) != 2 || links[1].Index != 2 || links[1].Text != "/srv" {
		t.Fatalf("links = %+v", links)
	}
	if !strings.Contains(content, "[1]") || !strings.Contains(content, "2h ago") {
		t.Errorf("content:\n%s", content)
	}

	content, links = RenderVisits("Visits", nil, 80)
	if links != nil || !strings.Contains(content, "Nothing visited") {
		t.Errorf("empty visits = %q, %+v", content, links)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hel…"},
		{"héllo", 2, "h…"},
		{"hello", 1, "h"},
		{"hello", 0, ""},
		{"hello", -3, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestPalette(t *testing.T) {
	p := NewPalette([]PaletteGroup{{Name: "Go", Items: []PaletteItem{{"b", "back"}, {"f", "forward"}}}})
	if !p.Has("b") || p.Has("z") {
		t.Error("Has mismatch")
	}
	if p.View() != "" {
		t.Error("hidden palette rendered")
	}
	p.Show()
	if !strings.Contains(p.View(), "forward") {
		t.Errorf("view:\n%s", p.View())
	}
}
