package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/vidyasagar/xplore/internal/ui"
)

// KeyMap defines the normal-mode keybindings.
type KeyMap struct {
	// Scrolling
	ScrollDown   key.Binding
	ScrollUp     key.Binding
	HalfPageDown key.Binding
	HalfPageUp   key.Binding
	GotoBottom   key.Binding

	// Navigation
	OpenURL    key.Binding
	Back       key.Binding
	Forward    key.Binding
	Up         key.Binding
	Reload     key.Binding
	FollowLink key.Binding
	LogToggle  key.Binding

	// Tabs
	NewTab   key.Binding
	CloseTab key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding

	// Other
	CommandMode key.Binding
	Leader      key.Binding
	Bookmark    key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default vim-style keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ScrollDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "scroll down")),
		ScrollUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "scroll up")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "half page down")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "half page up")),
		GotoBottom:   key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "go to bottom")),

		OpenURL:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open location")),
		Back:       key.NewBinding(key.WithKeys("H", "alt+left"), key.WithHelp("H", "back")),
		Forward:    key.NewBinding(key.WithKeys("L", "alt+right"), key.WithHelp("L", "forward")),
		Up:         key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "up one level")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		FollowLink: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow link")),
		LogToggle:  key.NewBinding(key.WithKeys("ctrl+h"), key.WithHelp("ctrl+h", "navigation log")),

		NewTab:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "new tab")),
		CloseTab: key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "close tab")),
		NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("gt/tab", "next tab")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("gT/S-tab", "previous tab")),

		CommandMode: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Leader:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "shortcut palette")),
		Bookmark:    key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "bookmark page")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

// helpBindings lists the bindings shown on the help page, grouped.
func (k KeyMap) helpBindings() [][]key.Binding {
	return [][]key.Binding{
		{k.ScrollDown, k.ScrollUp, k.HalfPageDown, k.HalfPageUp, k.GotoBottom},
		{k.OpenURL, k.FollowLink, k.Back, k.Forward, k.Up, k.Reload, k.LogToggle, k.Bookmark},
		{k.NewTab, k.CloseTab, k.NextTab, k.PrevTab},
		{k.CommandMode, k.Leader, k.Help, k.Quit},
	}
}

// leaderGroups is what the space palette offers. Each key runs the ex
// command of the same row in leaderCommands.
func leaderGroups() []ui.PaletteGroup {
	return []ui.PaletteGroup{
		{Name: "Navigate", Items: []ui.PaletteItem{
			{Key: "b", Desc: "back"},
			{Key: "f", Desc: "forward"},
			{Key: "u", Desc: "up"},
			{Key: "r", Desc: "reload"},
			{Key: "l", Desc: "log"},
		}},
		{Name: "Tabs", Items: []ui.PaletteItem{
			{Key: "t", Desc: "new tab"},
			{Key: "w", Desc: "close tab"},
		}},
		{Name: "Library", Items: []ui.PaletteItem{
			{Key: "m", Desc: "bookmark"},
			{Key: "B", Desc: "bookmarks"},
			{Key: "v", Desc: "visits"},
		}},
		{Name: "View", Items: []ui.PaletteItem{
			{Key: "T", Desc: "next theme"},
			{Key: "?", Desc: "help"},
		}},
	}
}

var leaderCommands = map[string]string{
	"b": "back",
	"f": "forward",
	"u": "up",
	"r": "reload",
	"l": "log",
	"t": "tabnew",
	"w": "tabclose",
	"m": "bookmark",
	"B": "bookmarks",
	"v": "visits",
	"T": "theme next",
	"?": "help",
}

// commandNames feeds command bar completion.
var commandNames = []string{
	"back", "bookmark", "bookmarks", "clearlog", "clearvisits", "forward", "go", "help",
	"log", "open", "quit", "reload", "tabclose", "tabnew", "theme", "unbookmark", "up", "visits",
}
