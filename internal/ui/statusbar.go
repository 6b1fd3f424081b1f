package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/xplore/internal/theme"
)

// NavState is what the status bar shows about a tab's navigation log.
type NavState struct {
	CanBack    bool
	CanForward bool
	Index      int // zero-based, -1 when the log is empty
	Count      int
}

// StatusBar shows the mode, page title, back/forward availability and the
// log position at the bottom of the screen.
type StatusBar struct {
	mode       string
	title      string
	message    string
	isError    bool
	loading    bool
	nav        NavState
	linkCount  int
	scrollInfo string
	width      int
}

// NewStatusBar creates a status bar in NORMAL mode.
func NewStatusBar() StatusBar {
	return StatusBar{mode: "NORMAL", nav: NavState{Index: -1}}
}

// SetWidth sets the bar width.
func (s *StatusBar) SetWidth(w int) { s.width = w }

// SetMode sets the mode indicator.
func (s *StatusBar) SetMode(mode string) { s.mode = mode }

// SetTitle sets the page title.
func (s *StatusBar) SetTitle(title string) { s.title = title }

// SetLoading toggles the loading indicator.
func (s *StatusBar) SetLoading(loading bool) { s.loading = loading }

// SetNav updates back/forward availability and the log position.
func (s *StatusBar) SetNav(n NavState) { s.nav = n }

// Nav returns the navigation state last shown.
func (s *StatusBar) Nav() NavState { return s.nav }

// SetLinkCount sets the number of followable links.
func (s *StatusBar) SetLinkCount(n int) { s.linkCount = n }

// SetScrollInfo sets the scroll position text.
func (s *StatusBar) SetScrollInfo(info string) { s.scrollInfo = info }

// SetMessage shows a transient message in place of the title.
func (s *StatusBar) SetMessage(msg string) {
	s.message, s.isError = msg, false
}

// SetError shows a transient error message.
func (s *StatusBar) SetError(msg string) {
	s.message, s.isError = msg, true
}

// Message returns the transient message, if any.
func (s *StatusBar) Message() string { return s.message }

// View renders the bar.
func (s *StatusBar) View() string {
	t := theme.Current
	base := lipgloss.NewStyle().Background(t.Surface)

	modeBg := t.Primary
	switch s.mode {
	case "INSERT":
		modeBg = t.Success
	case "COMMAND":
		modeBg = t.Accent
	case "FOLLOW":
		modeBg = t.Link
	case "LOG":
		modeBg = t.Warning
	}
	mode := lipgloss.NewStyle().Bold(true).Padding(0, 1).
		Foreground(t.Surface).Background(modeBg).Render(s.mode)

	nav := base.Padding(0, 1).Render(s.navView())

	var left string
	switch {
	case s.loading:
		left = base.Foreground(t.Warning).Bold(true).Padding(0, 1).Render("loading…")
	case s.message != "" && s.isError:
		left = base.Foreground(t.Error).Padding(0, 1).Render(s.message)
	case s.message != "":
		left = base.Foreground(t.Accent).Padding(0, 1).Render(s.message)
	case s.title != "":
		left = base.Foreground(t.Text).Padding(0, 1).Render(s.title)
	}

	dim := base.Foreground(t.TextDim).Padding(0, 1)
	var right string
	if s.linkCount > 0 {
		right += dim.Render(fmt.Sprintf("%d links", s.linkCount))
	}
	if s.scrollInfo != "" {
		right += dim.Bold(true).Render(s.scrollInfo)
	}

	used := lipgloss.Width(mode) + lipgloss.Width(nav) + lipgloss.Width(left) + lipgloss.Width(right)
	spacer := base.Render(fmt.Sprintf("%*s", max(s.width-used, 0), ""))
	return mode + nav + left + spacer + right
}

// navView renders "◀ ▶ 3/5", dimming the arrows that are unavailable.
func (s *StatusBar) navView() string {
	t := theme.Current
	on := lipgloss.NewStyle().Background(t.Surface).Foreground(t.Link).Bold(true)
	off := lipgloss.NewStyle().Background(t.Surface).Foreground(t.TextDim)

	arrow := func(glyph string, ok bool) string {
		if ok {
			return on.Render(glyph)
		}
		return off.Render(glyph)
	}
	pos := "-/-"
	if s.nav.Index >= 0 {
		pos = fmt.Sprintf("%d/%d", s.nav.Index+1, s.nav.Count)
	}
	return arrow("◀", s.nav.CanBack) + off.Render(" ") + arrow("▶", s.nav.CanForward) +
		off.Render(" "+pos)
}
