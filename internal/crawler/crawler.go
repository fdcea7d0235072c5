// ABOUTME: Breadth-first site crawler that extracts documentation pages
// ABOUTME: Stays on the start host, parses HTML, and hashes page content
package crawler

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/bookrag/bookrag/internal/core"
	"github.com/bookrag/bookrag/internal/models"
)

const defaultTimeout = 30 * time.Second

// skippedExtensions are link targets that are never documentation pages.
var skippedExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp",
	".pdf", ".zip", ".tar", ".gz", ".css", ".js", ".json", ".xml",
	".woff", ".woff2", ".ttf", ".mp4", ".mp3",
}

// Crawler walks a documentation site breadth-first from a start URL,
// visiting only pages on the same host. Fetch and parse failures skip the
// page rather than aborting the crawl.
type Crawler struct {
	client   *http.Client
	maxPages int
}

// New returns a crawler that visits at most maxPages pages.
func New(maxPages int) *Crawler {
	return &Crawler{
		client:   &http.Client{Timeout: defaultTimeout},
		maxPages: maxPages,
	}
}

// Crawl fetches pages starting at startURL and returns the extracted
// documents in visit order. Pages with empty text content are dropped.
func (c *Crawler) Crawl(ctx context.Context, startURL string) ([]models.Document, error) {
	root, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL %s: %w", startURL, err)
	}
	if root.Scheme != "http" && root.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q in %s", root.Scheme, startURL)
	}

	var docs []models.Document
	visited := map[string]bool{}
	frontier := []string{normalizeURL(root)}
	visited[frontier[0]] = true

	for len(frontier) > 0 && len(docs) < c.maxPages {
		if err := ctx.Err(); err != nil {
			return docs, err
		}

		pageURL := frontier[0]
		frontier = frontier[1:]

		node, err := c.fetch(ctx, pageURL)
		if err != nil {
			log.Printf("skipping %s: %v", pageURL, err)
			continue
		}

		doc := extractDocument(pageURL, node)
		if doc.Content != "" {
			doc.ContentHash = core.HashContent(doc.Content)
			docs = append(docs, doc)
		}

		for _, link := range extractLinks(node) {
			next := resolveLink(root, pageURL, link)
			if next == "" || visited[next] {
				continue
			}
			visited[next] = true
			frontier = append(frontier, next)
		}
	}

	log.Printf("crawl of %s finished: %d pages, %d URLs seen", startURL, len(docs), len(visited))
	return docs, nil
}

// fetch retrieves and parses one HTML page.
func (c *Crawler) fetch(ctx context.Context, pageURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "bookrag-crawler/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("not HTML: %s", ct)
	}

	node, err := html.Parse(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	return node, nil
}

// extractDocument pulls the title, headings, and visible text from a page.
func extractDocument(pageURL string, node *html.Node) models.Document {
	doc := models.Document{URL: pageURL}

	var text strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "nav", "footer":
				return
			case "title":
				if doc.Title == "" {
					doc.Title = strings.TrimSpace(nodeText(n))
				}
				return
			case "h1", "h2", "h3", "h4", "h5", "h6":
				if h := strings.TrimSpace(nodeText(n)); h != "" {
					doc.Headings = append(doc.Headings, h)
				}
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				text.WriteString(t)
				text.WriteString(" ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)

	doc.Content = strings.TrimSpace(text.String())
	if doc.Title == "" && len(doc.Headings) > 0 {
		doc.Title = doc.Headings[0]
	}
	return doc
}

// nodeText concatenates the text nodes under n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

// extractLinks collects href values from anchor tags.
func extractLinks(node *html.Node) []string {
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" {
					links = append(links, attr.Val)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return links
}

// resolveLink turns an href into an absolute same-host URL, or "" when the
// link leaves the site or points at a non-page resource.
func resolveLink(root *url.URL, baseURL, href string) string {
	if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
		return ""
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	resolved, err := base.Parse(href)
	if err != nil {
		return ""
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host != root.Host {
		return ""
	}

	lower := strings.ToLower(resolved.Path)
	for _, ext := range skippedExtensions {
		if strings.HasSuffix(lower, ext) {
			return ""
		}
	}
	return normalizeURL(resolved)
}

// normalizeURL drops fragments, bare query markers, and trailing slashes so
// the visited set does not fetch the same page twice.
func normalizeURL(u *url.URL) string {
	clean := *u
	clean.Fragment = ""
	clean.ForceQuery = false
	if clean.RawQuery == "" {
		clean.Path = strings.TrimSuffix(clean.Path, "/")
	}
	return clean.String()
}
