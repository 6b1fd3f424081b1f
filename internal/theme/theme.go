// Package theme holds the colour palettes shared by the browser renderers
// and the TUI chrome.
package theme

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette. Glamour names the glamour standard style used
// for rendered markdown so page bodies match the chrome.
type Theme struct {
	Name    string
	Glamour string

	Primary lipgloss.Color
	Accent  lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color

	Surface     lipgloss.Color
	Border      lipgloss.Color
	BorderFocus lipgloss.Color

	Link      lipgloss.Color
	LinkIndex lipgloss.Color
	Heading   lipgloss.Color

	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color

	TabActive   lipgloss.Color
	TabInactive lipgloss.Color
}

var themes = map[string]Theme{
	"default": Default,
	"gruvbox": Gruvbox,
	"nord":    Nord,
	"paper":   Paper,
}

var Default = Theme{
	Name:        "default",
	Glamour:     "dark",
	Primary:     lipgloss.Color("#7C3AED"),
	Accent:      lipgloss.Color("#F59E0B"),
	Text:        lipgloss.Color("#E2E8F0"),
	TextDim:     lipgloss.Color("#64748B"),
	Surface:     lipgloss.Color("#1E293B"),
	Border:      lipgloss.Color("#334155"),
	BorderFocus: lipgloss.Color("#7C3AED"),
	Link:        lipgloss.Color("#38BDF8"),
	LinkIndex:   lipgloss.Color("#F59E0B"),
	Heading:     lipgloss.Color("#A78BFA"),
	Error:       lipgloss.Color("#EF4444"),
	Success:     lipgloss.Color("#22C55E"),
	Warning:     lipgloss.Color("#F59E0B"),
	TabActive:   lipgloss.Color("#7C3AED"),
	TabInactive: lipgloss.Color("#475569"),
}

var Gruvbox = Theme{
	Name:        "gruvbox",
	Glamour:     "dark",
	Primary:     lipgloss.Color("#D65D0E"),
	Accent:      lipgloss.Color("#FABD2F"),
	Text:        lipgloss.Color("#EBDBB2"),
	TextDim:     lipgloss.Color("#928374"),
	Surface:     lipgloss.Color("#3C3836"),
	Border:      lipgloss.Color("#504945"),
	BorderFocus: lipgloss.Color("#D65D0E"),
	Link:        lipgloss.Color("#83A598"),
	LinkIndex:   lipgloss.Color("#FABD2F"),
	Heading:     lipgloss.Color("#FE8019"),
	Error:       lipgloss.Color("#FB4934"),
	Success:     lipgloss.Color("#B8BB26"),
	Warning:     lipgloss.Color("#FABD2F"),
	TabActive:   lipgloss.Color("#D65D0E"),
	TabInactive: lipgloss.Color("#665C54"),
}

var Nord = Theme{
	Name:        "nord",
	Glamour:     "dark",
	Primary:     lipgloss.Color("#88C0D0"),
	Accent:      lipgloss.Color("#EBCB8B"),
	Text:        lipgloss.Color("#ECEFF4"),
	TextDim:     lipgloss.Color("#4C566A"),
	Surface:     lipgloss.Color("#3B4252"),
	Border:      lipgloss.Color("#434C5E"),
	BorderFocus: lipgloss.Color("#88C0D0"),
	Link:        lipgloss.Color("#81A1C1"),
	LinkIndex:   lipgloss.Color("#EBCB8B"),
	Heading:     lipgloss.Color("#8FBCBB"),
	Error:       lipgloss.Color("#BF616A"),
	Success:     lipgloss.Color("#A3BE8C"),
	Warning:     lipgloss.Color("#EBCB8B"),
	TabActive:   lipgloss.Color("#88C0D0"),
	TabInactive: lipgloss.Color("#4C566A"),
}

var Paper = Theme{
	Name:        "paper",
	Glamour:     "light",
	Primary:     lipgloss.Color("#1D4ED8"),
	Accent:      lipgloss.Color("#B45309"),
	Text:        lipgloss.Color("#1F2937"),
	TextDim:     lipgloss.Color("#6B7280"),
	Surface:     lipgloss.Color("#E5E7EB"),
	Border:      lipgloss.Color("#D1D5DB"),
	BorderFocus: lipgloss.Color("#1D4ED8"),
	Link:        lipgloss.Color("#0369A1"),
	LinkIndex:   lipgloss.Color("#B45309"),
	Heading:     lipgloss.Color("#6D28D9"),
	Error:       lipgloss.Color("#B91C1C"),
	Success:     lipgloss.Color("#15803D"),
	Warning:     lipgloss.Color("#B45309"),
	TabActive:   lipgloss.Color("#1D4ED8"),
	TabInactive: lipgloss.Color("#9CA3AF"),
}

// Current is the active theme.
var Current = Default

// Set changes the active theme by name.
func Set(name string) bool {
	if t, ok := themes[name]; ok {
		Current = t
		return true
	}
	return false
}

// List returns the available theme names in order.
func List() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
