package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/xplore/internal/theme"
)

const newTabTitle = "new tab"

// Tab is one entry of the tab bar. ID is stable for the tab's lifetime.
type Tab struct {
	ID       int
	Title    string
	Location string
}

// TabBar keeps the ordered tabs and which one is active.
type TabBar struct {
	tabs       []Tab
	active     int
	nextID     int
	width      int
	maxVisible int
}

// NewTabBar creates a tab bar with one tab.
func NewTabBar() TabBar {
	tb := TabBar{maxVisible: 8}
	tb.tabs = []Tab{tb.newTab()}
	return tb
}

func (tb *TabBar) newTab() Tab {
	tb.nextID++
	return Tab{ID: tb.nextID, Title: newTabTitle}
}

// SetWidth sets the bar width.
func (tb *TabBar) SetWidth(w int) {
	tb.width = w
	tb.maxVisible = min(max(w/20, 2), 10)
}

// NewTab inserts a tab after the active one, activates it and returns it.
func (tb *TabBar) NewTab() Tab {
	tab := tb.newTab()
	tb.active++
	tb.tabs = slices.Insert(tb.tabs, tb.active, tab)
	return tab
}

// CloseActive removes the active tab and returns its ID. The last tab is
// never closed.
func (tb *TabBar) CloseActive() (int, bool) {
	if len(tb.tabs) <= 1 {
		return 0, false
	}
	id := tb.tabs[tb.active].ID
	tb.tabs = slices.Delete(tb.tabs, tb.active, tb.active+1)
	tb.active = min(tb.active, len(tb.tabs)-1)
	return id, true
}

// Next activates the tab to the right, wrapping around.
func (tb *TabBar) Next() {
	tb.active = (tb.active + 1) % len(tb.tabs)
}

// Prev activates the tab to the left, wrapping around.
func (tb *TabBar) Prev() {
	tb.active = (tb.active - 1 + len(tb.tabs)) % len(tb.tabs)
}

// Active returns the active tab.
func (tb *TabBar) Active() Tab {
	return tb.tabs[tb.active]
}

// Count returns the number of tabs.
func (tb *TabBar) Count() int {
	return len(tb.tabs)
}

// Update sets the title and location of the tab with the given ID.
func (tb *TabBar) Update(id int, title, location string) {
	i := slices.IndexFunc(tb.tabs, func(t Tab) bool { return t.ID == id })
	if i < 0 {
		return
	}
	if title == "" {
		title = location
	}
	tb.tabs[i].Title = title
	tb.tabs[i].Location = location
}

// View renders the bar, scrolling so the active tab stays visible.
func (tb *TabBar) View() string {
	t := theme.Current

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Surface).
		Background(t.TabActive).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.TabInactive).
		Padding(0, 1)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)

	start, end := 0, len(tb.tabs)
	if end > tb.maxVisible {
		start = max(tb.active-tb.maxVisible/2, 0)
		end = min(start+tb.maxVisible, len(tb.tabs))
		start = max(end-tb.maxVisible, 0)
	}
	maxTitle := max(tb.width/max(tb.maxVisible, 1)-4, 8)

	var sb strings.Builder
	if start > 0 {
		sb.WriteString(dim.Render(fmt.Sprintf(" +%d ", start)))
	}
	for i := start; i < end; i++ {
		title := truncate(tb.tabs[i].Title, maxTitle)
		label := fmt.Sprintf("%d %s", i+1, title)
		if i == tb.active {
			sb.WriteString(activeStyle.Render(label))
		} else {
			sb.WriteString(inactiveStyle.Render(label))
		}
		if i < end-1 {
			sb.WriteString(dim.Render("│"))
		}
	}
	if end < len(tb.tabs) {
		sb.WriteString(dim.Render(fmt.Sprintf(" +%d ", len(tb.tabs)-end)))
	}

	return lipgloss.NewStyle().Background(t.Surface).Width(tb.width).Render(sb.String())
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
