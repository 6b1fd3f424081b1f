package app

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/xplore/internal/browser"
	"github.com/vidyasagar/xplore/internal/navlog"
	"github.com/vidyasagar/xplore/internal/theme"
	"github.com/vidyasagar/xplore/internal/ui"
)

const visitsLimit = 100

// runCommand executes an ex command line.
func (m Model) runCommand(line string) (Model, tea.Cmd) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	ts := m.activeTab()

	switch name {
	case "":
		return m, nil
	case "q", "quit":
		return m, tea.Quit

	case "o", "open":
		if arg == "" {
			m.statusBar.SetError("usage: :open <path|url|search>")
			return m, nil
		}
		return m, m.openRaw(ts, arg)
	case "back":
		m.traverse(navlog.Backward)
	case "forward":
		m.traverse(navlog.Forward)
	case "go":
		n, err := strconv.Atoi(arg)
		if err != nil {
			m.statusBar.SetError("usage: :go <entry number>")
			return m, nil
		}
		m.goToIndex(n - 1)
	case "up":
		return m, m.goUp()
	case "reload":
		return m, m.reload()

	case "log":
		m.toggleLog()
	case "clearlog":
		ts.log.Clear()
		m.statusBar.SetMessage("log cleared")

	case "bookmark", "unbookmark":
		return m.bookmark(name == "bookmark")
	case "bookmarks":
		if m.bookmarks == nil {
			m.statusBar.SetError("bookmarks unavailable")
			return m, nil
		}
		list, err := m.bookmarks.List()
		if err != nil {
			m.statusBar.SetError(err.Error())
			return m, nil
		}
		content, links := ui.RenderBookmarks(list, m.contentWidth())
		m.showListing(ts, "Bookmarks", content, links)

	case "visits":
		return m.showVisits(arg)
	case "clearvisits":
		if m.visits == nil {
			m.statusBar.SetError("visit journal unavailable")
			return m, nil
		}
		if err := m.visits.Clear(); err != nil {
			m.statusBar.SetError(err.Error())
			return m, nil
		}
		m.statusBar.SetMessage("visits cleared")

	case "theme":
		m.setTheme(arg)

	case "tabnew":
		nt := m.openTab()
		if arg != "" {
			return m, m.openRaw(nt, arg)
		}
	case "tabclose":
		if !m.closeActiveTab() {
			m.statusBar.SetMessage("cannot close the last tab")
		}

	case "help":
		m.showHelp(ts)
	default:
		m.statusBar.SetError("unknown command: " + name)
	}
	return m, nil
}

// followLink opens the link numbered input on the active page or listing.
func (m Model) followLink(input string) (Model, tea.Cmd) {
	ts := m.activeTab()
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		m.statusBar.SetError("not a link number: " + input)
		return m, nil
	}
	links := ts.links()
	i := slices.IndexFunc(links, func(l browser.Link) bool { return l.Index == n })
	if i < 0 {
		m.statusBar.SetError(fmt.Sprintf("no link [%d]", n))
		return m, nil
	}
	return m, m.openRaw(ts, links[i].Target)
}

func (m Model) bookmark(add bool) (Model, tea.Cmd) {
	if m.bookmarks == nil {
		m.statusBar.SetError("bookmarks unavailable")
		return m, nil
	}
	ts := m.activeTab()
	if ts.page == nil {
		m.statusBar.SetError("no page to bookmark")
		return m, nil
	}
	loc := ts.page.Location.String()

	var changed bool
	var err error
	if add {
		changed, err = m.bookmarks.Add(loc, ts.page.Title)
	} else {
		changed, err = m.bookmarks.Remove(loc)
	}
	switch {
	case err != nil:
		m.statusBar.SetError(err.Error())
	case add && changed:
		m.statusBar.SetMessage("bookmarked " + loc)
	case add:
		m.statusBar.SetMessage("already bookmarked")
	case changed:
		m.statusBar.SetMessage("bookmark removed")
	default:
		m.statusBar.SetMessage("not bookmarked")
	}
	return m, nil
}

func (m Model) showVisits(query string) (Model, tea.Cmd) {
	if m.visits == nil {
		m.statusBar.SetError("visit journal unavailable")
		return m, nil
	}
	heading := "Visits"
	list, err := m.visits.Recent(visitsLimit)
	if query != "" {
		heading = "Visits matching " + strconv.Quote(query)
		list, err = m.visits.Search(query, visitsLimit)
	}
	if err != nil {
		m.statusBar.SetError(err.Error())
		return m, nil
	}
	content, links := ui.RenderVisits(heading, list, m.contentWidth())
	m.showListing(m.activeTab(), heading, content, links)
	return m, nil
}

// showListing displays generated content in ts without touching its log.
// Following one of its links is an ordinary new visit.
func (m *Model) showListing(ts *tabState, title, content string, links []browser.Link) {
	if links == nil {
		links = []browser.Link{}
	}
	ts.listing = links
	ts.show(content)
	m.tabBar.Update(ts.id, title, m.tabBar.Active().Location)
	m.statusBar.SetTitle(title)
	m.statusBar.SetMessage("")
	m.syncStatusBar()
}

// setTheme switches to the named theme, or the next one for "next".
func (m *Model) setTheme(name string) {
	names := theme.List()
	switch name {
	case "":
		m.statusBar.SetMessage(fmt.Sprintf("theme %s (available: %s)", theme.Current.Name, strings.Join(names, ", ")))
		return
	case "next":
		i := slices.Index(names, theme.Current.Name)
		name = names[(i+1)%len(names)]
	}
	if !theme.Set(name) {
		m.statusBar.SetError(fmt.Sprintf("unknown theme %s (available: %s)", name, strings.Join(names, ", ")))
		return
	}
	m.statusBar.SetMessage("theme " + name + ", reload to restyle the page")
}

// showHelp renders the key and command reference as a listing.
func (m *Model) showHelp(ts *tabState) {
	t := theme.Current
	heading := lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	section := lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	keyStyle := lipgloss.NewStyle().Foreground(t.LinkIndex).Width(18)
	desc := lipgloss.NewStyle().Foreground(t.Text)

	var sb strings.Builder
	sb.WriteString("\n  " + heading.Render("xplore keys and commands") + "\n")

	for i, group := range m.keys.helpBindings() {
		sb.WriteString("\n  " + section.Render([]string{"Scrolling", "Navigation", "Tabs", "Other"}[i]) + "\n")
		for _, b := range group {
			h := b.Help()
			sb.WriteString("  " + keyStyle.Render(h.Key) + desc.Render(h.Desc) + "\n")
		}
	}

	sb.WriteString("\n  " + section.Render("Commands") + "\n")
	for _, c := range [][2]string{
		{":open <location>", "open a path, URL or search"},
		{":back  :forward", "move through the log"},
		{":go <n>", "jump to log entry n"},
		{":up  :reload", "parent location, load again"},
		{":log  :clearlog", "show or empty the log"},
		{":bookmark", "bookmark this page (:unbookmark)"},
		{":bookmarks", "list bookmarks"},
		{":visits [query]", "recent or matching visits"},
		{":clearvisits", "empty the visit journal"},
		{":theme [name|next]", "change colours"},
		{":tabnew [location]", "open a tab"},
		{":tabclose  :quit", "close a tab, leave"},
	} {
		sb.WriteString("  " + keyStyle.Render(c[0]) + desc.Render(c[1]) + "\n")
	}
	m.showListing(ts, "help", sb.String(), nil)
}
