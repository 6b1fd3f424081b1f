package browser

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/xplore/internal/theme"
)

// Cached glamour renderer; building one is expensive.
var (
	glamourRenderer *glamour.TermRenderer
	glamourWidth    int
	glamourStyle    string
	glamourMu       sync.Mutex
)

// Link is a numbered, followable reference on a page.
type Link struct {
	Index  int
	Text   string
	Target string // absolute URL or filesystem path
}

// Page is a loaded, terminal-ready location.
type Page struct {
	Requested Location // what the navigator was asked for
	Location  Location // where the load actually landed
	Title     string
	Content   string
	Links     []Link
}

// contentWidth constrains text width for readability.
func contentWidth(width int) int {
	if width <= 0 {
		width = 80
	}
	w := width - 4
	if w > 100 {
		w = 100
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Render converts an article into styled terminal text. Relative links are
// resolved against the article's final URL.
func Render(article *Article, width int) (content string, links []Link) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return article.TextContent, nil
	}

	base, _ := url.Parse(article.FinalURL)
	conv := &mdConverter{base: base}

	var md strings.Builder
	if article.Title != "" {
		md.WriteString("# " + article.Title + "\n\n")
	}
	if article.Byline != "" {
		md.WriteString("*" + article.Byline + "*\n\n")
	}
	md.WriteString("---\n\n")
	doc.Find("body").Children().Each(func(_ int, s *goquery.Selection) {
		md.WriteString(conv.block(s, 0))
	})

	out, err := RenderMarkdown(md.String(), width)
	if err != nil {
		return RenderFallback(article, width)
	}
	return out, conv.links
}

// RenderMarkdown renders markdown with glamour at the given terminal width,
// in the current theme's glamour style.
func RenderMarkdown(markdown string, width int) (string, error) {
	w := contentWidth(width)
	style := theme.Current.Glamour
	if style == "" {
		style = "dark"
	}

	glamourMu.Lock()
	defer glamourMu.Unlock()

	if glamourRenderer == nil || glamourWidth != w || glamourStyle != style {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(w),
		)
		if err != nil {
			return "", err
		}
		glamourRenderer = r
		glamourWidth = w
		glamourStyle = style
	}
	return glamourRenderer.Render(markdown)
}

// RenderFallback renders the article's plain text with lipgloss only.
func RenderFallback(article *Article, width int) (string, []Link) {
	t := theme.Current
	w := contentWidth(width)

	title := lipgloss.NewStyle().Bold(true).Foreground(t.Heading).Render(article.Title)
	body := lipgloss.NewStyle().Foreground(t.Text).Width(w).Render(strings.TrimSpace(article.TextContent))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return title + "\n\n" + body, nil
	}
	base, _ := url.Parse(article.FinalURL)
	conv := &mdConverter{base: base}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		conv.link(s)
	})

	var sb strings.Builder
	sb.WriteString(title + "\n\n" + body + "\n")
	if len(conv.links) > 0 {
		idx := lipgloss.NewStyle().Foreground(t.LinkIndex)
		link := lipgloss.NewStyle().Foreground(t.Link)
		sb.WriteString("\n")
		for _, l := range conv.links {
			sb.WriteString(fmt.Sprintf("%s %s\n", idx.Render(fmt.Sprintf("[%d]", l.Index)), link.Render(l.Text)))
		}
	}
	return sb.String(), conv.links
}

// mdConverter turns HTML into markdown and numbers the links it meets.
type mdConverter struct {
	base  *url.URL
	links []Link
}

func (c *mdConverter) block(s *goquery.Selection, depth int) string {
	switch tag := goquery.NodeName(s); tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return ""
		}
		return strings.Repeat("#", int(tag[1]-'0')) + " " + text + "\n\n"
	case "p":
		text := strings.TrimSpace(c.inline(s))
		if text == "" {
			return ""
		}
		return text + "\n\n"
	case "ul", "ol":
		return c.list(s, tag == "ol", depth)
	case "blockquote":
		var sb strings.Builder
		s.Children().Each(func(_ int, child *goquery.Selection) {
			for _, line := range strings.Split(strings.TrimRight(c.block(child, 0), "\n"), "\n") {
				sb.WriteString("> " + line + "\n")
			}
		})
		return sb.String() + "\n"
	case "pre":
		return c.code(s)
	case "hr":
		return "---\n\n"
	case "table":
		return c.table(s)
	case "div", "article", "section", "main", "header", "footer", "figure", "nav":
		var sb strings.Builder
		s.Children().Each(func(_ int, child *goquery.Selection) {
			sb.WriteString(c.block(child, depth))
		})
		return sb.String()
	case "script", "style", "noscript":
		return ""
	default:
		text := strings.TrimSpace(c.inline(s))
		if text == "" {
			return ""
		}
		return text + "\n\n"
	}
}

func (c *mdConverter) inline(s *goquery.Selection) string {
	var sb strings.Builder
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "#text":
			sb.WriteString(child.Text())
		case "a":
			sb.WriteString(c.link(child))
		case "strong", "b":
			sb.WriteString("**" + c.inline(child) + "**")
		case "em", "i":
			sb.WriteString("*" + c.inline(child) + "*")
		case "code":
			sb.WriteString("`" + child.Text() + "`")
		case "br":
			sb.WriteString("  \n")
		case "img":
			alt, _ := child.Attr("alt")
			if alt != "" {
				sb.WriteString("[" + alt + "]")
			}
		case "script", "style":
		default:
			sb.WriteString(c.inline(child))
		}
	})
	return sb.String()
}

func (c *mdConverter) link(s *goquery.Selection) string {
	href, _ := s.Attr("href")
	text := strings.TrimSpace(s.Text())
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return text
	}
	target := href
	if c.base != nil {
		if ref, err := url.Parse(href); err == nil {
			target = c.base.ResolveReference(ref).String()
		}
	}
	if text == "" {
		text = target
	}

	idx := len(c.links) + 1
	c.links = append(c.links, Link{Index: idx, Text: text, Target: target})
	return fmt.Sprintf("%s **[%d]**", text, idx)
}

func (c *mdConverter) list(s *goquery.Selection, ordered bool, depth int) string {
	var sb strings.Builder
	indent := strings.Repeat("  ", depth)
	s.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		prefix := indent + "- "
		if ordered {
			prefix = fmt.Sprintf("%s%d. ", indent, i+1)
		}
		item := li.Clone()
		item.ChildrenFiltered("ul, ol").Remove()
		sb.WriteString(prefix + strings.TrimSpace(c.inline(item)) + "\n")

		li.ChildrenFiltered("ul, ol").Each(func(_ int, nested *goquery.Selection) {
			sb.WriteString(c.list(nested, goquery.NodeName(nested) == "ol", depth+1))
		})
	})
	if depth == 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

func (c *mdConverter) code(s *goquery.Selection) string {
	lang := ""
	code := s.Find("code").First()
	if class, ok := code.Attr("class"); ok {
		for _, f := range strings.Fields(class) {
			if l, found := strings.CutPrefix(f, "language-"); found {
				lang = l
				break
			}
		}
	}
	text := s.Text()
	if code.Length() > 0 {
		text = code.Text()
	}
	return "```" + lang + "\n" + strings.TrimRight(text, "\n") + "\n```\n\n"
}

func (c *mdConverter) table(s *goquery.Selection) string {
	var rows [][]string
	s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, strings.TrimSpace(strings.ReplaceAll(cell.Text(), "|", `\|`)))
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	if len(rows) == 0 {
		return ""
	}

	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	var sb strings.Builder
	for i, r := range rows {
		for len(r) < cols {
			r = append(r, "")
		}
		sb.WriteString("| " + strings.Join(r, " | ") + " |\n")
		if i == 0 {
			sb.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
		}
	}
	return sb.String() + "\n"
}
