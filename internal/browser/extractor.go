package browser

import (
	"bytes"
	"fmt"
	"html"
	"net/url"

	readability "github.com/go-shiori/go-readability"
)

// Article is the readable content of a fetched page.
type Article struct {
	Title       string
	Byline      string
	Content     string // cleaned HTML
	TextContent string
	SiteName    string
	FinalURL    string
}

// Extract pulls the readable article out of result. Non-HTML bodies are
// wrapped in a <pre> block as-is.
func Extract(result *FetchResult) (*Article, error) {
	if !IsHTML(result.ContentType) {
		return &Article{
			Title:       result.FinalURL,
			Content:     "<pre>" + html.EscapeString(string(result.Body)) + "</pre>",
			TextContent: string(result.Body),
			FinalURL:    result.FinalURL,
		}, nil
	}

	pageURL, err := url.Parse(result.FinalURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL: %w", err)
	}

	article, err := readability.FromReader(bytes.NewReader(result.Body), pageURL)
	if err != nil {
		return nil, fmt.Errorf("extracting article: %w", err)
	}

	title := article.Title
	if title == "" {
		title = result.FinalURL
	}
	return &Article{
		Title:       title,
		Byline:      article.Byline,
		Content:     article.Content,
		TextContent: article.TextContent,
		SiteName:    article.SiteName,
		FinalURL:    result.FinalURL,
	}, nil
}
