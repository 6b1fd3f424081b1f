package browser

import (
	"os"
	"strings"
	"testing"

	"github.com/vidyasagar/xplore/internal/theme"
)

// Render without escape codes so assertions can match plain substrings.
func TestMain(m *testing.M) {
	theme.Current.Glamour = "notty"
	os.Exit(m.Run())
}

func TestRenderBasicHTML(t *testing.T) {
	article := &Article{
		Title:  "Test Page",
		Byline: "By Author",
		Content: `<h1>Test Page</h1>
<p>Hello world. This is a <strong>bold</strong> and <em>italic</em> test.</p>
<p>Here is a <a href="/about">relative link</a> and <a href="https://golang.org">Go website</a>.</p>
<p><a href="#top">anchor</a> <a href="javascript:void(0)">script</a></p>
<ul>
<li>Item one</li>
<li>Item two<ul><li>Nested</li></ul></li>
</ul>
<pre><code class="language-go">func main() {}</code></pre>
<blockquote><p>This is a quote</p></blockquote>`,
		TextContent: "fallback text",
		FinalURL:    "https://example.com/posts/1",
	}

	content, links := Render(article, 80)
	if content == "" {
		t.Fatal("content should not be empty")
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d: %+v", len(links), links)
	}
	if links[0].Target != "https://example.com/about" {
		t.Errorf("relative link resolved to %q", links[0].Target)
	}
	if links[1].Index != 2 || links[1].Target != "https://golang.org" {
		t.Errorf("second link = %+v", links[1])
	}
}

func TestRenderFallback(t *testing.T) {
	article := &Article{
		Title:       "Fallback Test",
		Content:     `<p>Testing the <a href="https://test.com">fallback renderer</a>.</p>`,
		TextContent: "Testing the fallback renderer.",
	}

	content, links := RenderFallback(article, 80)
	if len(links) != 1 {
		t.Errorf("expected 1 link, got %d", len(links))
	}
	if !strings.Contains(content, "fallback renderer") {
		t.Errorf("fallback content missing text:\n%s", content)
	}
}

func TestRenderEmptyArticle(t *testing.T) {
	content, links := Render(&Article{TextContent: "some text"}, 80)
	if len(links) != 0 {
		t.Errorf("expected no links, got %+v", links)
	}
	_ = content
}

func TestMarkdownTable(t *testing.T) {
	conv := &mdConverter{}
	doc := mustDoc(t, `<table>
<thead><tr><th>Name</th><th>Value</th></tr></thead>
<tbody><tr><td>Foo</td><td>Bar|Baz</td></tr><tr><td>Only</td></tr></tbody>
</table>`)

	got := conv.table(doc.Find("table"))
	want := "| Name | Value |\n| --- | --- |\n| Foo | Bar\\|Baz |\n| Only |  |\n\n"
	if got != want {
		t.Errorf("table =\n%q\nwant\n%q", got, want)
	}
}
