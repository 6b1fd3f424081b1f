package browser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/vidyasagar/xplore/internal/theme"
)

const maxSnippetWidth = 200

// SearchResult is one hit on a DuckDuckGo HTML results page.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// searchQuery returns the query of a search location, or false when target
// is not under endpoint.
func searchQuery(endpoint, target string) (string, bool) {
	if endpoint == "" || !strings.HasPrefix(target, endpoint) {
		return "", false
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", false
	}
	q := u.Query().Get("q")
	return q, q != ""
}

// ParseSearchResults reads the results out of a DuckDuckGo HTML page.
// Entries without a title or a target are skipped.
func ParseSearchResults(body []byte) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	var results []SearchResult
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		a := s.Find(".result__a").First()
		title := strings.TrimSpace(a.Text())
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		target := unwrapResultURL(href)
		if title == "" || target == "" {
			return
		}
		results = append(results, SearchResult{
			Title:   title,
			URL:     target,
			Snippet: strings.Join(strings.Fields(s.Find(".result__snippet").Text()), " "),
		})
	})
	return results, nil
}

// unwrapResultURL strips DuckDuckGo's click-tracking redirect
// (//duckduckgo.com/l/?uddg=<url>&rut=...) from a result link.
func unwrapResultURL(href string) string {
	if strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if target := u.Query().Get("uddg"); target != "" {
				return target
			}
		}
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

// RenderSearchResults formats results as numbered links.
func RenderSearchResults(query string, results []SearchResult, width int) (string, []Link) {
	t := theme.Current
	w := contentWidth(width)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Heading)
	sepStyle := lipgloss.NewStyle().Foreground(t.Border)
	idxStyle := lipgloss.NewStyle().Foreground(t.LinkIndex).Width(6)
	linkStyle := lipgloss.NewStyle().Foreground(t.Link).Bold(true)
	urlStyle := lipgloss.NewStyle().Foreground(t.Success)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var sb strings.Builder
	sb.WriteString("  " + titleStyle.Render("Search: "+query) + "\n")
	sb.WriteString("  " + sepStyle.Render(strings.Repeat("━", min(w, 60))) + "\n\n")

	if len(results) == 0 {
		sb.WriteString("  " + dimStyle.Render("No results found.") + "\n")
		return sb.String(), nil
	}

	textWidth := max(w-8, 12)
	links := make([]Link, 0, len(results))
	for i, r := range results {
		idx := i + 1
		links = append(links, Link{Index: idx, Text: r.Title, Target: r.URL})

		sb.WriteString("  " + idxStyle.Render(fmt.Sprintf("[%d]", idx)) +
			linkStyle.Render(ansi.Truncate(r.Title, textWidth, "…")) + "\n")
		sb.WriteString("        " + urlStyle.Render(ansi.Truncate(r.URL, textWidth, "…")) + "\n")
		if r.Snippet != "" {
			snippet := ansi.Truncate(r.Snippet, min(maxSnippetWidth, textWidth*2), "…")
			sb.WriteString(lipgloss.NewStyle().MarginLeft(8).Width(textWidth).Foreground(t.Text).Render(snippet) + "\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  " + dimStyle.Render(fmt.Sprintf("%d results | f <number> to follow", len(results))) + "\n")
	return sb.String(), links
}
