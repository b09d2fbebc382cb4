// Package article converts raw page HTML into a clean, self-contained
// reader-view document.
package article

import (
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"webgrab/pkg/errors"
	"webgrab/pkg/storage"
)

// FallbackFilename holds the raw page markup when extraction fails
const FallbackFilename = "full_page.html"

// ErrUnparseable signals that no article content could be identified.
// Callers recover by persisting the raw HTML instead.
var ErrUnparseable = errors.New(errors.ErrorTypeExtraction, "no article content identified")

// Document is an extracted article ready to be written to disk
type Document struct {
	Title    string
	Byline   string
	BodyHTML string
}

// Extract runs the readability transform over raw page HTML. A page with no
// identifiable main content returns ErrUnparseable rather than a fatal error.
func Extract(pageURL string, rawHTML string) (*Document, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page URL: %w", err)
	}

	result, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		return nil, ErrUnparseable
	}
	if strings.TrimSpace(result.Content) == "" {
		return nil, ErrUnparseable
	}

	byline := strings.TrimSpace(result.Byline)
	if byline == "" {
		byline = "Unknown"
	}

	title := strings.TrimSpace(result.Title)
	if title == "" {
		title = "Untitled"
	}

	return &Document{
		Title:    title,
		Byline:   byline,
		BodyHTML: result.Content,
	}, nil
}

// Filename derives the output name from the sanitized title: alphanumerics
// only, truncated to 50 characters.
func (d *Document) Filename() string {
	stem := storage.SanitizeTitle(d.Title)
	if stem == "" {
		stem = "article"
	}
	return stem + ".html"
}

// Render wraps the extracted content in a minimal standalone HTML document.
// The stylesheet is embedded so the file carries no external references.
func (d *Document) Render() string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>")
	b.WriteString(escapeText(d.Title))
	b.WriteString("</title>\n<style>\n")
	b.WriteString(stylesheet)
	b.WriteString("</style>\n</head>\n<body>\n<article>\n<h1>")
	b.WriteString(escapeText(d.Title))
	b.WriteString("</h1>\n<p class=\"byline\">")
	b.WriteString(escapeText(d.Byline))
	b.WriteString("</p>\n")
	b.WriteString(d.BodyHTML)
	b.WriteString("\n</article>\n</body>\n</html>\n")
	return b.String()
}

const stylesheet = `body { max-width: 42em; margin: 2em auto; padding: 0 1em;
  font-family: Georgia, serif; line-height: 1.6; color: #222; }
h1 { line-height: 1.2; }
.byline { color: #666; font-style: italic; }
img { max-width: 100%; height: auto; }`

// escapeText escapes the characters HTML treats specially in text content
func escapeText(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(s)
}
