package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/xplore/internal/browser"
	"github.com/vidyasagar/xplore/internal/storage"
	"github.com/vidyasagar/xplore/internal/theme"
)

// RenderBookmarks lays out saved bookmarks as a numbered, followable list.
func RenderBookmarks(bookmarks []storage.Bookmark, width int) (string, []browser.Link) {
	rows := make([]listRow, len(bookmarks))
	for i, b := range bookmarks {
		rows[i] = listRow{title: b.Title, location: b.Location, when: b.CreatedAt}
	}
	return renderList("Bookmarks", "No bookmarks yet. Use :bookmark to add one.", rows, width)
}

// RenderVisits lays out visit journal entries, newest first.
func RenderVisits(heading string, visits []storage.Visit, width int) (string, []browser.Link) {
	rows := make([]listRow, len(visits))
	for i, v := range visits {
		rows[i] = listRow{title: v.Title, location: v.Location, when: v.VisitedAt}
	}
	return renderList(heading, "Nothing visited yet.", rows, width)
}

type listRow struct {
	title    string
	location string
	when     time.Time
}

func renderList(heading, empty string, rows []listRow, width int) (string, []browser.Link) {
	t := theme.Current
	w := max(min(width-4, 100), 20)

	title := lipgloss.NewStyle().Bold(true).Foreground(t.Heading)
	sep := lipgloss.NewStyle().Foreground(t.Border)
	idx := lipgloss.NewStyle().Foreground(t.LinkIndex).Width(6)
	name := lipgloss.NewStyle().Foreground(t.Link).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)

	var sb strings.Builder
	sb.WriteString("  " + title.Render(heading) + "\n")
	sb.WriteString("  " + sep.Render(strings.Repeat("━", min(w, 60))) + "\n\n")
	if len(rows) == 0 {
		sb.WriteString("  " + dim.Render(empty) + "\n")
		return sb.String(), nil
	}

	links := make([]browser.Link, 0, len(rows))
	for i, r := range rows {
		n := i + 1
		label := r.title
		if label == "" {
			label = r.location
		}
		links = append(links, browser.Link{Index: n, Text: label, Target: r.location})

		sb.WriteString("  " + idx.Render(fmt.Sprintf("[%d]", n)) + name.Render(truncate(label, w-8)) + "\n")
		sb.WriteString("        " + dim.Render(truncate(r.location, max(w-24, 12))+"  "+timeAgo(r.when)) + "\n")
	}
	return sb.String(), links
}

// timeAgo renders t relative to now.
func timeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
