package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/xplore/internal/browser"
	"github.com/vidyasagar/xplore/internal/navlog"
	"github.com/vidyasagar/xplore/internal/theme"
	"github.com/vidyasagar/xplore/internal/ui"
)

// loadKind says how a load relates to the tab's navigation log.
type loadKind int

const (
	loadOrganic   loadKind = iota // started by the user, a new visit
	loadTraversal                 // requested by the log
	loadRefresh                   // re-render of the current entry
)

func (k loadKind) String() string {
	switch k {
	case loadTraversal:
		return "traversal"
	case loadRefresh:
		return "refresh"
	default:
		return "organic"
	}
}

// tabNavigator performs navigation for a tab's log. Navigate only queues
// the location; the model turns the queue into a load once the current
// update is done, so the log is never re-entered from inside itself.
type tabNavigator struct {
	queue []browser.Location
}

func (n *tabNavigator) Navigate(loc browser.Location) {
	n.queue = append(n.queue, loc)
}

func (n *tabNavigator) Equal(a, b browser.Location) bool {
	return browser.SameResource(a, b)
}

// take returns the most recent request and empties the queue. Earlier
// requests were overwritten in the log and are not worth loading.
func (n *tabNavigator) take() (browser.Location, bool) {
	if len(n.queue) == 0 {
		return browser.Location{}, false
	}
	loc := n.queue[len(n.queue)-1]
	n.queue = n.queue[:0]
	return loc, true
}

// tabState is everything one tab owns.
type tabState struct {
	id       int
	viewport ui.PageViewport
	log      *navlog.Log[browser.Location]
	nav      *tabNavigator
	stop     func() // unregisters the log listener

	page    *browser.Page  // last page that loaded
	listing []browser.Link // links of a bookmarks/visits/help listing, if shown
	content string
	stale   bool // content not yet handed to the viewport
	titles  map[string]string

	seq      uint64 // identifies the load in flight
	inflight bool
	kind     loadKind
	cancel   context.CancelFunc

	changed bool // the log reported a change since the last sync
}

func (m *Model) newTab(id int) *tabState {
	nav := &tabNavigator{}
	log, _ := navlog.New[browser.Location](nav) // nav is never nil
	log.SetLogger(m.logger.With("tab", id))

	ts := &tabState{
		id:       id,
		viewport: ui.NewPageViewport(),
		log:      log,
		nav:      nav,
		titles:   make(map[string]string),
	}
	ts.stop = log.OnChange(func(navlog.Change) { ts.changed = true })
	m.tabs[id] = ts
	return ts
}

func (m *Model) closeTab(ts *tabState) {
	if ts.cancel != nil {
		ts.cancel()
	}
	ts.stop()
	delete(m.tabs, ts.id)
}

// show puts content in the tab's viewport, or keeps it until the viewport
// has a size.
func (ts *tabState) show(content string) {
	ts.content = content
	ts.stale = ts.viewport.Width() == 0
	ts.viewport.SetContent(content)
}

// links returns what f can follow right now.
func (ts *tabState) links() []browser.Link {
	if ts.listing != nil {
		return ts.listing
	}
	if ts.page != nil {
		return ts.page.Links
	}
	return nil
}

// current is the location the log considers current, falling back to the
// last loaded page after the log was cleared.
func (ts *tabState) current() (browser.Location, bool) {
	if loc, ok := ts.log.Current(); ok {
		return loc, true
	}
	if ts.page != nil {
		return ts.page.Location, true
	}
	return browser.Location{}, false
}

// pageLoadedMsg carries the outcome of a load back to the update loop.
type pageLoadedMsg struct {
	tabID     int
	seq       uint64
	kind      loadKind
	requested browser.Location
	page      *browser.Page
	err       error
}

// startLoad begins loading loc in ts, superseding whatever was in flight.
func (m *Model) startLoad(ts *tabState, loc browser.Location, kind loadKind) tea.Cmd {
	if ts.inflight {
		ts.cancel()
		// A superseded traversal will never report back. A new traversal
		// has already replaced it in the log; anything else must fail it.
		if ts.kind == loadTraversal && kind != loadTraversal {
			ts.log.NavigationFailed()
		}
		m.logger.Debug("load superseded", "tab", ts.id, "seq", ts.seq)
	}

	ts.seq++
	ts.inflight = true
	ts.kind = kind
	ctx, cancel := context.WithCancel(context.Background())
	ts.cancel = cancel

	m.tabBar.Update(ts.id, "loading…", loc.String())
	if m.isActive(ts) {
		m.statusBar.SetLoading(true)
		m.statusBar.SetMessage("")
		m.urlBar.SetLocation(loc.String(), loc.IsWeb())
	}

	msg := pageLoadedMsg{tabID: ts.id, seq: ts.seq, kind: kind, requested: loc}
	loader := m.loader
	width := m.contentWidth()
	m.logger.Debug("load started", "tab", ts.id, "seq", ts.seq, "kind", kind.String(), "location", loc.String())

	return func() tea.Msg {
		msg.page, msg.err = loader.Load(ctx, loc, width, kind == loadRefresh)
		return msg
	}
}

// handlePageLoaded reconciles a finished load with the tab's log.
func (m Model) handlePageLoaded(msg pageLoadedMsg) (Model, tea.Cmd) {
	ts, ok := m.tabs[msg.tabID]
	if !ok {
		return m, nil
	}
	if msg.seq != ts.seq || !ts.inflight {
		m.logger.Debug("dropping superseded load", "tab", ts.id, "seq", msg.seq, "want", ts.seq)
		return m, nil
	}
	ts.inflight = false
	ts.cancel()
	ts.cancel = nil

	active := m.isActive(ts)
	if active {
		m.statusBar.SetLoading(false)
	}

	if msg.err != nil {
		m.logger.Info("load failed", "tab", ts.id, "location", msg.requested.String(), "error", msg.err)
		ts.log.NavigationFailed()
		m.loadFailed(ts, msg)
		return m, nil
	}

	page := msg.page
	inPlace := msg.kind == loadRefresh && ts.page != nil &&
		browser.SameResource(page.Location, ts.page.Location)
	if !inPlace {
		ts.log.NavigationComplete(page.Location)
	}

	ts.page = page
	ts.listing = nil
	ts.titles[page.Location.String()] = page.Title
	ts.show(page.Content)
	m.tabBar.Update(ts.id, page.Title, page.Location.String())
	if active {
		m.urlBar.SetLocation(page.Location.String(), page.Location.IsWeb())
		m.statusBar.SetTitle(page.Title)
		if !browser.SameResource(msg.requested, page.Location) {
			m.statusBar.SetMessage("landed on " + page.Location.String())
		}
		m.syncStatusBar()
	}
	m.recordVisit(page)
	return m, nil
}

// loadFailed leaves the tab on its current page and reports the error. A
// tab with nothing to show gets an error page instead.
func (m *Model) loadFailed(ts *tabState, msg pageLoadedMsg) {
	if ts.page != nil {
		m.tabBar.Update(ts.id, ts.page.Title, ts.page.Location.String())
	} else {
		m.tabBar.Update(ts.id, "error", msg.requested.String())
		t := theme.Current
		head := lipgloss.NewStyle().Foreground(t.Error).Bold(true).Padding(2, 4)
		detail := lipgloss.NewStyle().Foreground(t.TextDim).Padding(0, 4)
		ts.show(head.Render("Could not load "+msg.requested.String()) + "\n\n" +
			detail.Render(msg.err.Error()))
	}
	if m.isActive(ts) {
		if cur, ok := ts.current(); ok {
			m.urlBar.SetLocation(cur.String(), cur.IsWeb())
		}
		m.statusBar.SetError(fmt.Sprintf("error: %v", msg.err))
	}
}

func (m *Model) recordVisit(page *browser.Page) {
	if m.visits == nil {
		return
	}
	if err := m.visits.Add(page.Location.String(), page.Title); err != nil {
		m.logger.Warn("recording visit", "location", page.Location.String(), "error", err)
	}
}

// drainNavigations starts the loads the logs asked for during the last
// update and syncs the chrome with any log changes.
func (m *Model) drainNavigations() tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range m.tabIDs() {
		ts := m.tabs[id]
		if loc, ok := ts.nav.take(); ok {
			cmds = append(cmds, m.startLoad(ts, loc, loadTraversal))
		}
		if ts.changed {
			ts.changed = false
			if m.isActive(ts) {
				m.syncStatusBar()
				m.syncLogPanel()
			}
		}
	}
	return tea.Batch(cmds...)
}

// logEntries builds the log panel rows for ts.
func (ts *tabState) logEntries() []ui.LogEntry {
	locs := ts.log.Locations()
	entries := make([]ui.LogEntry, len(locs))
	for i, loc := range locs {
		entries[i] = ui.LogEntry{Title: ts.titles[loc.String()], Location: loc.String()}
	}
	return entries
}
