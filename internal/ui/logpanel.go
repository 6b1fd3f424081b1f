package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/xplore/internal/theme"
)

// LogEntry is one row of the navigation log panel.
type LogEntry struct {
	Title    string
	Location string
}

// LogPanel lists a tab's navigation log, oldest first, marking the
// current entry. The cursor picks an entry to jump to.
type LogPanel struct {
	entries  []LogEntry
	current  int
	cursor   int
	offset   int
	width    int
	height   int
	visible  bool
	lastGKey bool
}

// NewLogPanel creates a hidden log panel.
func NewLogPanel() LogPanel {
	return LogPanel{current: -1}
}

// SetEntries replaces the listing. current is the log's current index,
// -1 when it has none. The cursor stays put unless it falls off the end.
func (lp *LogPanel) SetEntries(entries []LogEntry, current int) {
	lp.entries = entries
	lp.current = current
	lp.cursor = min(lp.cursor, len(entries)-1)
	lp.cursor = max(lp.cursor, 0)
	lp.ensureVisible()
}

// SetSize updates the panel dimensions.
func (lp *LogPanel) SetSize(w, h int) {
	lp.width = w
	lp.height = h
	lp.ensureVisible()
}

// Show makes the panel visible with the cursor on the current entry.
func (lp *LogPanel) Show() {
	lp.visible = true
	lp.lastGKey = false
	lp.cursor = max(lp.current, 0)
	lp.offset = 0
	lp.ensureVisible()
}

// Hide closes the panel.
func (lp *LogPanel) Hide() {
	lp.visible = false
	lp.lastGKey = false
}

// IsVisible reports whether the panel is shown.
func (lp *LogPanel) IsVisible() bool {
	return lp.visible
}

// CursorUp moves towards older entries.
func (lp *LogPanel) CursorUp() {
	lp.lastGKey = false
	if lp.cursor > 0 {
		lp.cursor--
		lp.ensureVisible()
	}
}

// CursorDown moves towards newer entries.
func (lp *LogPanel) CursorDown() {
	lp.lastGKey = false
	if lp.cursor < len(lp.entries)-1 {
		lp.cursor++
		lp.ensureVisible()
	}
}

// GotoBottom moves to the newest entry.
func (lp *LogPanel) GotoBottom() {
	lp.lastGKey = false
	lp.cursor = max(len(lp.entries)-1, 0)
	lp.ensureVisible()
}

// HandleGKey tracks "gg". It reports true when the second g moved the
// cursor to the oldest entry.
func (lp *LogPanel) HandleGKey() bool {
	if lp.lastGKey {
		lp.lastGKey = false
		lp.cursor, lp.offset = 0, 0
		return true
	}
	lp.lastGKey = true
	return false
}

// ResetGKey forgets a pending g.
func (lp *LogPanel) ResetGKey() {
	lp.lastGKey = false
}

// Selected returns the log index under the cursor.
func (lp *LogPanel) Selected() (int, bool) {
	if lp.cursor < 0 || lp.cursor >= len(lp.entries) {
		return 0, false
	}
	return lp.cursor, true
}

// visibleCount is how many two-line entries fit below the header.
func (lp *LogPanel) visibleCount() int {
	return max((lp.height-3)/2, 1)
}

func (lp *LogPanel) ensureVisible() {
	n := lp.visibleCount()
	if lp.cursor < lp.offset {
		lp.offset = lp.cursor
	}
	if lp.cursor >= lp.offset+n {
		lp.offset = lp.cursor - n + 1
	}
	lp.offset = max(lp.offset, 0)
}

// View renders the panel.
func (lp *LogPanel) View() string {
	if !lp.visible {
		return ""
	}
	t := theme.Current
	w := max(lp.width, 12)

	header := lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Background(t.Surface).
		Width(w).Padding(0, 1)
	sep := lipgloss.NewStyle().Foreground(t.Border)
	row := lipgloss.NewStyle().Width(w).Padding(0, 1)
	selected := row.Foreground(t.Surface).Background(t.TabActive).Bold(true)
	normal := row.Foreground(t.Text)
	detail := row.Foreground(t.TextDim)
	selectedDetail := row.Foreground(t.Surface).Background(t.TabActive)
	marker := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)

	var sb strings.Builder
	sb.WriteString(header.Render(fmt.Sprintf("Log  %d", len(lp.entries))) + "\n")
	sb.WriteString(sep.Render(strings.Repeat("─", max(w-2, 1))) + "\n")

	if len(lp.entries) == 0 {
		sb.WriteString(detail.Render("The log is empty.") + "\n")
		return lipgloss.NewStyle().Width(w).Height(lp.height).Render(sb.String())
	}

	end := min(lp.offset+lp.visibleCount(), len(lp.entries))
	for i := lp.offset; i < end; i++ {
		e := lp.entries[i]
		title := e.Title
		if title == "" {
			title = e.Location
		}
		mark := "  "
		if i == lp.current {
			mark = "● "
		}
		title = truncate(fmt.Sprintf("%d %s", i+1, title), w-6)
		loc := "    " + truncate(e.Location, w-8)

		if i == lp.cursor {
			sb.WriteString(selected.Render(mark+title) + "\n")
			sb.WriteString(selectedDetail.Render(loc) + "\n")
			continue
		}
		if i == lp.current {
			sb.WriteString(normal.Render(marker.Render(mark)+title) + "\n")
		} else {
			sb.WriteString(normal.Render(mark+title) + "\n")
		}
		sb.WriteString(detail.Render(loc) + "\n")
	}

	if used := 2 + (end-lp.offset)*2; lp.height-used > 1 {
		sb.WriteString(strings.Repeat("\n", lp.height-used-1))
		sb.WriteString(detail.Italic(true).Render("j/k move  enter go  esc close"))
	}
	return lipgloss.NewStyle().Width(w).Height(lp.height).Render(sb.String())
}
