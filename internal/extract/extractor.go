// Package extract retrieves the main body text of an article URL.
package extract

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// TextProvider is a secondary service that returns extracted text for a URL.
type TextProvider interface {
	Contents(ctx context.Context, url string) (string, error)
}

// Extractor fetches pages and strips them down to their article text
type Extractor struct {
	client   *resty.Client
	fallback TextProvider
}

// NewExtractor creates an extractor. fallback may be nil.
func NewExtractor(timeout time.Duration, fallback TextProvider) *Extractor {
	return &Extractor{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "Mozilla/5.0 (compatible; HealthShieldMentionsBot/1.0)"),
		fallback: fallback,
	}
}

// ExtractText returns the article text for url. Failures at either stage are
// logged and reported as no text.
func (e *Extractor) ExtractText(ctx context.Context, url string) (string, bool) {
	if strings.TrimSpace(url) == "" {
		return "", false
	}

	text, err := e.fetchMainText(ctx, url)
	if err != nil {
		logrus.Warnf("Primary extraction failed for %s: %v", url, err)
	} else if text != "" {
		return text, true
	}

	if e.fallback == nil {
		return "", false
	}
	text, err = e.fallback.Contents(ctx, url)
	if err != nil {
		logrus.Infof("Fallback extraction failed for %s: %v", url, err)
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

func (e *Extractor) fetchMainText(ctx context.Context, url string) (string, error) {
	resp, err := e.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("page returned status %d", resp.StatusCode())
	}
	return MainText(body)
}

// Containers dropped wholesale before text is collected.
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "nav": true, "header": true,
	"footer": true, "aside": true, "form": true, "iframe": true, "table": true,
	"svg": true, "button": true, "figure": true,
}

// Block elements whose text forms a paragraph of the body.
var blockTags = map[string]bool{
	"p": true, "h2": true, "h3": true, "h4": true, "blockquote": true, "li": true, "pre": true,
}

// MainText parses an HTML document and returns its main content: the
// paragraphs of the first <article>, else <main>, else <body>. Navigation,
// tables, forms and comment sections are dropped.
func MainText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	root := findFirst(doc, "article")
	if root == nil {
		root = findFirst(doc, "main")
	}
	if root == nil {
		root = findFirst(doc, "body")
	}
	if root == nil {
		return "", nil
	}

	var paragraphs []string
	collectBlocks(root, &paragraphs)
	if len(paragraphs) == 0 {
		// No block structure; fall back to all visible text.
		var b strings.Builder
		collectText(root, &b)
		return collapseSpace(b.String()), nil
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func skipped(n *html.Node) bool {
	if n.Type == html.CommentNode {
		return true
	}
	if n.Type != html.ElementNode {
		return false
	}
	if skipTags[n.Data] {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" && attr.Key != "id" {
			continue
		}
		v := strings.ToLower(attr.Val)
		if strings.Contains(v, "comment") || strings.Contains(v, "share") || strings.Contains(v, "related") {
			return true
		}
	}
	return false
}

func collectBlocks(n *html.Node, out *[]string) {
	if skipped(n) {
		return
	}
	if n.Type == html.ElementNode && blockTags[n.Data] {
		var b strings.Builder
		collectText(n, &b)
		if text := collapseSpace(b.String()); text != "" {
			*out = append(*out, text)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectBlocks(c, out)
	}
}

func collectText(n *html.Node, b *strings.Builder) {
	if skipped(n) {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString(" ")
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
