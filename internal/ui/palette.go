package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/xplore/internal/theme"
)

// PaletteItem is one shortcut reachable after the leader key.
type PaletteItem struct {
	Key  string
	Desc string
}

// PaletteGroup is a titled column of shortcuts.
type PaletteGroup struct {
	Name  string
	Items []PaletteItem
}

// Palette is the popup shown after the leader key, listing what each
// following key does.
type Palette struct {
	groups  []PaletteGroup
	visible bool
}

// NewPalette creates a hidden palette for the given groups.
func NewPalette(groups []PaletteGroup) Palette {
	return Palette{groups: groups}
}

// Show makes the palette visible.
func (p *Palette) Show() { p.visible = true }

// Hide closes the palette.
func (p *Palette) Hide() { p.visible = false }

// IsVisible reports whether the palette is shown.
func (p *Palette) IsVisible() bool { return p.visible }

// Has reports whether key is bound in the palette.
func (p *Palette) Has(key string) bool {
	for _, g := range p.groups {
		for _, it := range g.Items {
			if it.Key == key {
				return true
			}
		}
	}
	return false
}

// View renders the palette as a bordered box of columns.
func (p *Palette) View() string {
	if !p.visible {
		return ""
	}
	t := theme.Current

	const colWidth = 20
	groupName := lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	badge := lipgloss.NewStyle().Bold(true).Foreground(t.Surface).Background(t.LinkIndex).Padding(0, 1)
	desc := lipgloss.NewStyle().Foreground(t.Text)
	sep := lipgloss.NewStyle().Foreground(t.Border)
	col := lipgloss.NewStyle().Width(colWidth)

	rows := 0
	for _, g := range p.groups {
		rows = max(rows, len(g.Items))
	}

	var columns []string
	for i, g := range p.groups {
		lines := []string{groupName.Render(g.Name), ""}
		for _, it := range g.Items {
			lines = append(lines, badge.Render(it.Key)+desc.Render(" "+it.Desc))
		}
		for range rows - len(g.Items) {
			lines = append(lines, "")
		}
		rendered := col.Render(strings.Join(lines, "\n"))
		columns = append(columns, rendered)
		if i < len(p.groups)-1 {
			bar := strings.TrimSuffix(strings.Repeat(sep.Render(" │ ")+"\n", lipgloss.Height(rendered)), "\n")
			columns = append(columns, bar)
		}
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	rule := sep.Render(strings.Repeat("─", lipgloss.Width(body)))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Render("space"),
		rule, "", body, "", rule,
		lipgloss.NewStyle().Foreground(t.TextDim).Italic(true).Render("press a key, esc to dismiss"),
	)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Render(content)
}
