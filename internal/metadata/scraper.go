package metadata

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/MrSnakeDoc/shelf/internal/utils"
)

const (
	defaultUserAgent = "shelf-metadata/1.0 (+https://github.com/MrSnakeDoc/shelf)"
	maxPageBytes     = 1 << 20
)

// Scraper fetches a page itself and reads its metadata from the HTML head.
type Scraper struct {
	client    *http.Client
	userAgent string
}

// NewScraper creates a scraper. timeout bounds each page fetch. Pages on
// non-public addresses are refused; see WithClient to lift that.
func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		client:    utils.NewFetchClient(timeout, false),
		userAgent: defaultUserAgent,
	}
}

// WithClient returns a copy of s using c for fetches.
func (s *Scraper) WithClient(c *http.Client) *Scraper {
	cp := *s
	cp.client = c
	return &cp
}

// Lookup implements Source.
func (s *Scraper) Lookup(ctx context.Context, candidate string) (Metadata, error) {
	u, err := url.Parse(candidate)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Metadata{}, fmt.Errorf("unsupported url %q", candidate)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Metadata{}, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return Metadata{}, err
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Metadata{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil &&
		mt != "text/html" && mt != "application/xhtml+xml" {
		return Metadata{}, fmt.Errorf("not an html page: %s", mt)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Metadata{}, err
	}

	m := extract(doc)
	if m.Empty() {
		return Metadata{}, ErrNoMetadata
	}
	return m, nil
}

// extract reads <title>, <meta name=description> and their OpenGraph
// counterparts. OpenGraph values win when both are present.
func extract(doc *html.Node) Metadata {
	var title, ogTitle, desc, ogDesc string

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" {
					title = textContent(n)
				}
			case "meta":
				key := strings.ToLower(attr(n, "property"))
				if key == "" {
					key = strings.ToLower(attr(n, "name"))
				}
				content := attr(n, "content")
				switch key {
				case "og:title":
					ogTitle = content
				case "og:description":
					ogDesc = content
				case "description":
					desc = content
				}
			case "svg":
				// <title> inside inline icons is not the page title
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	return Metadata{
		Title:       clean(firstNonEmpty(ogTitle, title)),
		Description: clean(firstNonEmpty(ogDesc, desc)),
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// clean collapses whitespace runs.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
