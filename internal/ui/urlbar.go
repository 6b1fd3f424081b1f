package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/xplore/internal/theme"
)

// URLBar is the location input at the top of the window. It shows the
// current location when idle and takes a path, URL or search when focused.
type URLBar struct {
	input  textinput.Model
	active bool
	width  int
	web    bool // current location is a web page
}

// NewURLBar creates a new URL bar.
func NewURLBar() URLBar {
	ti := textinput.New()
	ti.Placeholder = "path, URL or search terms"
	ti.CharLimit = 2048
	ti.Prompt = ""
	ti.Width = 60
	return URLBar{input: ti}
}

// SetWidth updates the bar width.
func (u *URLBar) SetWidth(w int) {
	u.width = w
	u.input.Width = max(w-10, 10) // border, padding and prompt
}

// Focus activates the bar for input.
func (u *URLBar) Focus() tea.Cmd {
	u.active = true
	u.input.CursorEnd()
	return u.input.Focus()
}

// Blur deactivates the bar.
func (u *URLBar) Blur() {
	u.active = false
	u.input.Blur()
}

// IsActive reports whether the bar is focused.
func (u *URLBar) IsActive() bool {
	return u.active
}

// Value returns the current input text.
func (u *URLBar) Value() string {
	return u.input.Value()
}

// SetLocation shows loc in the bar. web selects the prompt glyph.
func (u *URLBar) SetLocation(loc string, web bool) {
	u.input.SetValue(loc)
	u.web = web
}

// Reset clears the input.
func (u *URLBar) Reset() {
	u.input.Reset()
}

// Update handles messages while the bar is focused.
func (u *URLBar) Update(msg tea.Msg) (*URLBar, tea.Cmd) {
	if !u.active {
		return u, nil
	}
	var cmd tea.Cmd
	u.input, cmd = u.input.Update(msg)
	return u, cmd
}

// View renders the bar.
func (u *URLBar) View() string {
	t := theme.Current

	fg, border := t.TextDim, t.Border
	if u.active {
		fg, border = t.Text, t.BorderFocus
	}
	barStyle := lipgloss.NewStyle().
		Foreground(fg).
		Background(t.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(max(u.width-2, 1))

	glyph := "▸"
	if u.web {
		glyph = "◆"
	}
	prompt := lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render(glyph)
	return barStyle.Render(prompt + " " + u.input.View())
}
