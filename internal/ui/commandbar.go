package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/xplore/internal/theme"
)

// CommandType identifies what the command bar is collecting.
type CommandType int

const (
	CommandNone   CommandType = iota
	CommandEx                 // :commands
	CommandFollow             // f, a link number
)

// CommandResult is produced when the bar is submitted.
type CommandResult struct {
	Type  CommandType
	Value string
}

// CommandBar reads vim-style :commands and link numbers. Ex commands keep
// a recall history and complete their first word with Tab.
type CommandBar struct {
	input      textinput.Model
	cmdType    CommandType
	width      int
	history    []string
	historyPos int
	commands   []string
}

// NewCommandBar creates a command bar that completes the given command
// names.
func NewCommandBar(commands []string) CommandBar {
	ti := textinput.New()
	ti.CharLimit = 512
	return CommandBar{input: ti, historyPos: -1, commands: commands}
}

// SetWidth sets the bar width.
func (c *CommandBar) SetWidth(w int) {
	c.width = w
	c.input.Width = max(w-4, 1)
}

// Open activates the bar in the given mode.
func (c *CommandBar) Open(ct CommandType) tea.Cmd {
	c.cmdType = ct
	c.historyPos = -1
	c.input.Reset()
	switch ct {
	case CommandEx:
		c.input.Prompt = ":"
		c.input.Placeholder = "command"
	case CommandFollow:
		c.input.Prompt = "f "
		c.input.Placeholder = "link number"
	}
	return c.input.Focus()
}

// Close deactivates the bar.
func (c *CommandBar) Close() {
	c.cmdType = CommandNone
	c.input.Blur()
	c.input.Reset()
}

// IsActive reports whether the bar is open.
func (c *CommandBar) IsActive() bool {
	return c.cmdType != CommandNone
}

// Value returns the text typed so far.
func (c *CommandBar) Value() string {
	return c.input.Value()
}

// SetValue pre-fills the input.
func (c *CommandBar) SetValue(val string) {
	c.input.SetValue(val)
	c.input.CursorEnd()
}

// Submit closes the bar and returns what was typed. Non-empty ex commands
// are remembered.
func (c *CommandBar) Submit() CommandResult {
	res := CommandResult{Type: c.cmdType, Value: strings.TrimSpace(c.input.Value())}
	if res.Type == CommandEx && res.Value != "" {
		c.history = append(c.history, res.Value)
	}
	c.Close()
	return res
}

// Update handles keys while the bar is open. Enter is left to the caller.
func (c *CommandBar) Update(msg tea.Msg) (*CommandBar, tea.Cmd) {
	if !c.IsActive() {
		return c, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyEsc:
			c.Close()
			return c, nil
		case tea.KeyEnter:
			return c, nil
		case tea.KeyUp:
			c.recall(1)
			return c, nil
		case tea.KeyDown:
			c.recall(-1)
			return c, nil
		case tea.KeyTab:
			c.complete()
			return c, nil
		}
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// recall steps through ex history; step 1 is older, -1 newer.
func (c *CommandBar) recall(step int) {
	if c.cmdType != CommandEx || len(c.history) == 0 {
		return
	}
	pos := c.historyPos + step
	switch {
	case pos < 0:
		c.historyPos = -1
		c.input.Reset()
		return
	case pos >= len(c.history):
		pos = len(c.history) - 1
	}
	c.historyPos = pos
	c.SetValue(c.history[len(c.history)-1-pos])
}

// complete extends the first word to the only command it prefixes.
func (c *CommandBar) complete() {
	if c.cmdType != CommandEx {
		return
	}
	val := c.input.Value()
	if val == "" || strings.Contains(val, " ") {
		return
	}
	var match string
	for _, name := range c.commands {
		if strings.HasPrefix(name, val) {
			if match != "" {
				return
			}
			match = name
		}
	}
	if match != "" {
		c.SetValue(match + " ")
	}
}

// View renders the bar, or nothing when closed.
func (c *CommandBar) View() string {
	if !c.IsActive() {
		return ""
	}
	t := theme.Current
	return lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Surface).
		Width(c.width).
		Render(c.input.View())
}
