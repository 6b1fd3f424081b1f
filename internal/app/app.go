// Package app wires the navigation log, the loader and the TUI components
// into the bubbletea program.
package app

import (
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/xplore/internal/browser"
	"github.com/vidyasagar/xplore/internal/navlog"
	"github.com/vidyasagar/xplore/internal/storage"
	"github.com/vidyasagar/xplore/internal/theme"
	"github.com/vidyasagar/xplore/internal/ui"
)

// Mode is the current input mode.
type Mode int

const (
	ModeNormal  Mode = iota
	ModeInsert       // URL bar focused
	ModeCommand      // command bar active
	ModeFollow       // reading a link number
	ModeLog          // log panel has the keyboard
	ModeLeader       // shortcut palette shown
)

var modeNames = map[Mode]string{
	ModeNormal:  "NORMAL",
	ModeInsert:  "INSERT",
	ModeCommand: "COMMAND",
	ModeFollow:  "FOLLOW",
	ModeLog:     "LOG",
	ModeLeader:  "SPACE",
}

// Options configures a Model. Loader is required; the stores are optional
// and their features are disabled when nil.
type Options struct {
	Start     string // location to open first, as typed
	Cwd       string // base for relative paths
	Loader    *browser.Loader
	Visits    *storage.VisitStore
	Bookmarks *storage.BookmarkStore
	Logger    *slog.Logger
}

// Model is the top-level bubbletea model.
type Model struct {
	tabBar     ui.TabBar
	urlBar     ui.URLBar
	statusBar  ui.StatusBar
	commandBar ui.CommandBar
	logPanel   ui.LogPanel
	palette    ui.Palette

	tabs map[int]*tabState

	loader    *browser.Loader
	visits    *storage.VisitStore
	bookmarks *storage.BookmarkStore
	logger    *slog.Logger

	keys     KeyMap
	mode     Mode
	width    int
	height   int
	lastGKey bool
	ready    bool
	start    string
	cwd      string
}

// openMsg asks the model to open a location as typed by the user.
type openMsg struct{ raw string }

// New creates the model with one empty tab.
func New(opts Options) Model {
	m := Model{
		tabBar:     ui.NewTabBar(),
		urlBar:     ui.NewURLBar(),
		statusBar:  ui.NewStatusBar(),
		commandBar: ui.NewCommandBar(commandNames),
		logPanel:   ui.NewLogPanel(),
		palette:    ui.NewPalette(leaderGroups()),
		tabs:       make(map[int]*tabState),
		loader:     opts.Loader,
		visits:     opts.Visits,
		bookmarks:  opts.Bookmarks,
		logger:     opts.Logger,
		keys:       DefaultKeyMap(),
		start:      opts.Start,
		cwd:        opts.Cwd,
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if m.cwd == "" {
		m.cwd, _ = os.Getwd()
	}
	m.newTab(m.tabBar.Active().ID)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.start == "" {
		return nil
	}
	raw := m.start
	return func() tea.Msg { return openMsg{raw: raw} }
}

// Update implements tea.Model. Loads the navigation logs asked for while
// handling msg are started afterwards.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	loads := m.drainNavigations()
	return m, tea.Batch(cmd, loads)
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case openMsg:
		return m, m.openRaw(m.activeTab(), msg.raw)

	case pageLoadedMsg:
		return m.handlePageLoaded(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Everything else (cursor blinks, mouse) goes to whoever may want it.
	var cmds []tea.Cmd
	if m.urlBar.IsActive() {
		ub, cmd := m.urlBar.Update(msg)
		m.urlBar = *ub
		cmds = append(cmds, cmd)
	}
	if m.commandBar.IsActive() {
		cb, cmd := m.commandBar.Update(msg)
		m.commandBar = *cb
		cmds = append(cmds, cmd)
	}
	ts := m.activeTab()
	vp, cmd := ts.viewport.Update(msg)
	ts.viewport = *vp
	m.syncStatusBar()
	return m, tea.Batch(append(cmds, cmd)...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "\n  starting xplore..."
	}

	ts := m.activeTab()
	body := ts.viewport.View()
	if m.logPanel.IsVisible() {
		divider := lipgloss.NewStyle().Foreground(theme.Current.Border).
			Render(strings.TrimSuffix(strings.Repeat("│\n", m.bodyHeight()), "\n"))
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.logPanel.View(), divider, body)
	}

	sections := []string{m.tabBar.View(), m.urlBar.View(), body, m.statusBar.View()}
	if m.commandBar.IsActive() {
		sections = append(sections, m.commandBar.View())
	}
	out := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.palette.IsVisible() {
		out = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.palette.View())
	}
	return out
}

const (
	tabBarHeight    = 1
	urlBarHeight    = 3 // border included
	statusBarHeight = 1
)

func (m *Model) bodyHeight() int {
	h := m.height - tabBarHeight - urlBarHeight - statusBarHeight
	if m.commandBar.IsActive() {
		h--
	}
	return max(h, 1)
}

// layout recalculates component sizes.
func (m *Model) layout() {
	m.tabBar.SetWidth(m.width)
	m.urlBar.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.commandBar.SetWidth(m.width)

	height := m.bodyHeight()
	width := m.width
	if m.logPanel.IsVisible() {
		panel := max(m.width*30/100, 24)
		m.logPanel.SetSize(panel, height)
		width = max(m.width-panel-1, 1)
	}
	for _, ts := range m.tabs {
		ts.viewport.SetSize(width, height)
		if ts.stale {
			ts.show(ts.content)
		}
	}
	m.syncStatusBar()
}

// contentWidth is the width pages are rendered for.
func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func (m *Model) activeTab() *tabState {
	return m.tabs[m.tabBar.Active().ID]
}

func (m *Model) isActive(ts *tabState) bool {
	return m.tabBar.Active().ID == ts.id
}

func (m *Model) setMode(mode Mode) {
	m.mode = mode
	m.statusBar.SetMode(modeNames[mode])
}

// baseDir is where relative paths typed in ts resolve from: the folder
// being shown, the folder of the file being shown, or the working
// directory for web pages.
func (m *Model) baseDir(ts *tabState) string {
	if ts.page != nil && ts.page.Location.IsFile() {
		if info, err := os.Stat(ts.page.Location.Target); err == nil && info.IsDir() {
			return ts.page.Location.Target
		}
		if parent, ok := browser.Parent(ts.page.Location); ok {
			return parent.Target
		}
	}
	return m.cwd
}

// openRaw parses user input and loads it as a new visit.
func (m *Model) openRaw(ts *tabState, raw string) tea.Cmd {
	loc, err := browser.ParseLocation(raw, m.baseDir(ts))
	if err != nil {
		m.statusBar.SetError(err.Error())
		return nil
	}
	return m.startLoad(ts, loc, loadOrganic)
}

// traverse moves the active tab's log one step.
func (m *Model) traverse(dir navlog.Direction) {
	if !m.activeTab().log.Navigate(dir) {
		m.statusBar.SetMessage("nothing " + dir.String())
	}
}

// goUp opens the parent of the current location.
func (m *Model) goUp() tea.Cmd {
	ts := m.activeTab()
	cur, ok := ts.current()
	if !ok {
		return nil
	}
	parent, ok := browser.Parent(cur)
	if !ok {
		m.statusBar.SetMessage("already at the top")
		return nil
	}
	return m.startLoad(ts, parent, loadOrganic)
}

// reload loads the current entry again, bypassing the page cache.
func (m *Model) reload() tea.Cmd {
	ts := m.activeTab()
	cur, ok := ts.current()
	if !ok {
		return nil
	}
	return m.startLoad(ts, cur, loadRefresh)
}

// syncStatusBar refreshes the status bar from the active tab.
func (m *Model) syncStatusBar() {
	ts := m.activeTab()
	if ts == nil {
		return
	}
	m.statusBar.SetNav(ui.NavState{
		CanBack:    ts.log.CanGoBackward(),
		CanForward: ts.log.CanGoForward(),
		Index:      ts.log.CurrentIndex(),
		Count:      ts.log.Len(),
	})
	m.statusBar.SetLinkCount(len(ts.links()))
	m.statusBar.SetScrollInfo(ts.viewport.ScrollInfo())
	m.statusBar.SetLoading(ts.inflight)
}

// syncLogPanel refreshes the log panel from the active tab.
func (m *Model) syncLogPanel() {
	ts := m.activeTab()
	m.logPanel.SetEntries(ts.logEntries(), ts.log.CurrentIndex())
}

// syncTab refreshes everything after the active tab changed.
func (m *Model) syncTab() {
	ts := m.activeTab()
	tab := m.tabBar.Active()
	web := ts.page != nil && ts.page.Location.IsWeb()
	m.urlBar.SetLocation(tab.Location, web)
	m.statusBar.SetTitle(tab.Title)
	m.statusBar.SetMessage("")
	m.syncStatusBar()
	m.syncLogPanel()
}

func (m *Model) toggleLog() {
	if m.logPanel.IsVisible() {
		m.logPanel.Hide()
		m.setMode(ModeNormal)
	} else {
		m.syncLogPanel()
		m.logPanel.Show()
		m.setMode(ModeLog)
	}
	m.layout()
}

func (m *Model) openTab() *tabState {
	ts := m.newTab(m.tabBar.NewTab().ID)
	m.layout()
	m.syncTab()
	return ts
}

// closeActiveTab closes the active tab, reporting false for the last one.
func (m *Model) closeActiveTab() bool {
	ts := m.activeTab()
	if _, ok := m.tabBar.CloseActive(); !ok {
		return false
	}
	m.closeTab(ts)
	m.syncTab()
	return true
}

// tabIDs returns the open tab IDs in ascending order.
func (m *Model) tabIDs() []int {
	ids := make([]int, 0, len(m.tabs))
	for id := range m.tabs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case ModeInsert:
		return m.handleInsertKey(msg)
	case ModeCommand, ModeFollow:
		return m.handleCommandKey(msg)
	case ModeLog:
		return m.handleLogKey(msg)
	case ModeLeader:
		return m.handleLeaderKey(msg)
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	ts := m.activeTab()

	// g prefixes: gg top, gt/gT tabs.
	if m.lastGKey {
		m.lastGKey = false
		switch msg.String() {
		case "g":
			ts.viewport.GotoTop()
			m.syncStatusBar()
			return m, nil
		case "t":
			m.tabBar.Next()
			m.syncTab()
			return m, nil
		case "T":
			m.tabBar.Prev()
			m.syncTab()
			return m, nil
		}
	}
	if msg.String() == "g" {
		m.lastGKey = true
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.ScrollDown):
		ts.viewport.LineDown(1)
	case key.Matches(msg, m.keys.ScrollUp):
		ts.viewport.LineUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		ts.viewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		ts.viewport.HalfPageUp()
	case key.Matches(msg, m.keys.GotoBottom):
		ts.viewport.GotoBottom()

	case key.Matches(msg, m.keys.OpenURL):
		m.setMode(ModeInsert)
		return m, m.urlBar.Focus()
	case key.Matches(msg, m.keys.Back):
		m.traverse(navlog.Backward)
		return m, nil
	case key.Matches(msg, m.keys.Forward):
		m.traverse(navlog.Forward)
		return m, nil
	case key.Matches(msg, m.keys.Up):
		return m, m.goUp()
	case key.Matches(msg, m.keys.Reload):
		return m, m.reload()
	case key.Matches(msg, m.keys.FollowLink):
		m.setMode(ModeFollow)
		return m, m.commandBar.Open(ui.CommandFollow)
	case key.Matches(msg, m.keys.LogToggle):
		m.toggleLog()
		return m, nil

	case key.Matches(msg, m.keys.NewTab):
		m.openTab()
		return m, nil
	case key.Matches(msg, m.keys.CloseTab):
		if !m.closeActiveTab() {
			return m, tea.Quit
		}
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		m.tabBar.Next()
		m.syncTab()
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.tabBar.Prev()
		m.syncTab()
		return m, nil

	case key.Matches(msg, m.keys.CommandMode):
		m.setMode(ModeCommand)
		cmd := m.commandBar.Open(ui.CommandEx)
		m.layout()
		return m, cmd
	case key.Matches(msg, m.keys.Leader):
		m.palette.Show()
		m.setMode(ModeLeader)
		return m, nil
	case key.Matches(msg, m.keys.Bookmark):
		return m.runCommand("bookmark")
	case key.Matches(msg, m.keys.Help):
		return m.runCommand("help")

	default:
		vp, cmd := ts.viewport.Update(msg)
		ts.viewport = *vp
		m.syncStatusBar()
		return m, cmd
	}
	m.syncStatusBar()
	return m, nil
}

func (m Model) handleInsertKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.urlBar.Blur()
		m.setMode(ModeNormal)
		if cur, ok := m.activeTab().current(); ok {
			m.urlBar.SetLocation(cur.String(), cur.IsWeb())
		}
		return m, nil
	case tea.KeyEnter:
		raw := m.urlBar.Value()
		m.urlBar.Blur()
		m.setMode(ModeNormal)
		if strings.TrimSpace(raw) == "" {
			return m, nil
		}
		return m, m.openRaw(m.activeTab(), raw)
	}
	ub, cmd := m.urlBar.Update(msg)
	m.urlBar = *ub
	return m, cmd
}

func (m Model) handleCommandKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.commandBar.Close()
		m.setMode(ModeNormal)
		m.layout()
		return m, nil
	case tea.KeyEnter:
		res := m.commandBar.Submit()
		m.setMode(ModeNormal)
		m.layout()
		if res.Type == ui.CommandFollow {
			return m.followLink(res.Value)
		}
		return m.runCommand(res.Value)
	}
	cb, cmd := m.commandBar.Update(msg)
	m.commandBar = *cb
	return m, cmd
}

func (m Model) handleLogKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.logPanel.CursorDown()
	case "k", "up":
		m.logPanel.CursorUp()
	case "g":
		m.logPanel.HandleGKey()
		return m, nil
	case "G":
		m.logPanel.GotoBottom()
	case "enter":
		m.logPanel.ResetGKey()
		if i, ok := m.logPanel.Selected(); ok {
			m.goToIndex(i)
		}
		return m, nil
	case "esc", "ctrl+h", "q":
		m.toggleLog()
		return m, nil
	}
	m.logPanel.ResetGKey()
	return m, nil
}

func (m Model) handleLeaderKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.palette.Hide()
	m.setMode(ModeNormal)
	if cmd, ok := leaderCommands[msg.String()]; ok {
		return m.runCommand(cmd)
	}
	return m, nil
}

// goToIndex jumps the active tab's log to a zero-based index.
func (m *Model) goToIndex(i int) {
	ts := m.activeTab()
	if ts.log.NavigateToIndex(i) {
		return
	}
	if i == ts.log.CurrentIndex() {
		m.statusBar.SetMessage("already there")
	} else {
		m.statusBar.SetError("no log entry " + strconv.Itoa(i+1))
	}
}
