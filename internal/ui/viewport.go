package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/xplore/internal/theme"
)

// PageViewport wraps bubbles/viewport and shows a start screen until the
// first page arrives.
type PageViewport struct {
	viewport   viewport.Model
	ready      bool
	contentSet bool
}

// NewPageViewport creates a viewport. Dimensions arrive with the first
// WindowSizeMsg.
func NewPageViewport() PageViewport {
	return PageViewport{}
}

// SetSize updates the viewport dimensions.
func (pv *PageViewport) SetSize(width, height int) {
	if !pv.ready {
		pv.viewport = viewport.New(width, height)
		pv.viewport.MouseWheelEnabled = true
		pv.viewport.MouseWheelDelta = 3
		pv.ready = true
		return
	}
	pv.viewport.Width = width
	pv.viewport.Height = height
}

// SetContent replaces the content and scrolls to the top.
func (pv *PageViewport) SetContent(content string) {
	if !pv.ready {
		return
	}
	pv.viewport.SetContent(content)
	pv.contentSet = true
	pv.viewport.GotoTop()
}

// Update forwards messages to the viewport.
func (pv *PageViewport) Update(msg tea.Msg) (*PageViewport, tea.Cmd) {
	if !pv.ready {
		return pv, nil
	}
	var cmd tea.Cmd
	pv.viewport, cmd = pv.viewport.Update(msg)
	return pv, cmd
}

// View renders the viewport.
func (pv *PageViewport) View() string {
	if !pv.ready {
		return "\n  Initializing..."
	}
	if !pv.contentSet {
		return renderWelcome()
	}
	return pv.viewport.View()
}

// ScrollInfo returns "TOP", "BOT" or a percentage.
func (pv *PageViewport) ScrollInfo() string {
	if !pv.ready || !pv.contentSet {
		return ""
	}
	pct := pv.viewport.ScrollPercent()
	switch {
	case pct <= 0:
		return "TOP"
	case pct >= 1:
		return "BOT"
	default:
		return fmt.Sprintf("%d%%", int(pct*100))
	}
}

// HalfPageDown scrolls down half a page.
func (pv *PageViewport) HalfPageDown() {
	if pv.ready {
		pv.viewport.HalfViewDown()
	}
}

// HalfPageUp scrolls up half a page.
func (pv *PageViewport) HalfPageUp() {
	if pv.ready {
		pv.viewport.HalfViewUp()
	}
}

// LineDown scrolls down n lines.
func (pv *PageViewport) LineDown(n int) {
	if pv.ready {
		pv.viewport.LineDown(n)
	}
}

// LineUp scrolls up n lines.
func (pv *PageViewport) LineUp(n int) {
	if pv.ready {
		pv.viewport.LineUp(n)
	}
}

// GotoTop scrolls to the top.
func (pv *PageViewport) GotoTop() {
	if pv.ready {
		pv.viewport.GotoTop()
	}
}

// GotoBottom scrolls to the bottom.
func (pv *PageViewport) GotoBottom() {
	if pv.ready {
		pv.viewport.GotoBottom()
	}
}

// Width returns the viewport width, or zero before the first resize.
func (pv *PageViewport) Width() int {
	if !pv.ready {
		return 0
	}
	return pv.viewport.Width
}

func renderWelcome() string {
	t := theme.Current

	title := lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)
	key := lipgloss.NewStyle().Foreground(t.LinkIndex).Width(14)
	desc := lipgloss.NewStyle().Foreground(t.Text)

	var sb strings.Builder
	sb.WriteString("\n  " + title.Render("xplore") + "\n")
	sb.WriteString("  " + dim.Render("folders, files and the web, one back/forward log per tab") + "\n\n")

	for _, s := range [][2]string{
		{"o", "open a path, URL or search"},
		{"f", "follow a numbered link"},
		{"H / L", "back / forward"},
		{"u", "up one level"},
		{"ctrl+h", "navigation log"},
		{":", "command"},
		{"space", "shortcut palette"},
		{"?", "all keys"},
		{"q", "quit"},
	} {
		sb.WriteString("  " + key.Render(s[0]) + desc.Render(s[1]) + "\n")
	}
	return sb.String()
}
