package comment

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)
	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}

// formatBody normalizes the body text and renders its sanitized HTML.
func formatBody(c *Comment) {
	c.Body = normalizeBody(c.Body)
	c.BodyHTML = RenderBody(c.Body)
}

func normalizeBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.TrimSpace(body)
}

// RenderBody converts a markdown body to HTML safe to embed in a page.
func RenderBody(body string) string {
	if body == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return policy.Sanitize(html.EscapeString(body))
	}
	return strings.TrimSpace(policy.Sanitize(buf.String()))
}
