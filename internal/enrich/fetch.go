// Package enrich fetches a short text snippet from a lead's website to give
// the icebreaker prompt something specific to work with. Enrichment is
// opportunistic: every failure degrades to an empty snippet.
package enrich

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ColdReach/1.0)"

// DefaultMaxSnippetLen bounds the snippet fed into the prompt.
const DefaultMaxSnippetLen = 600

// Options configures snippet fetching.
type Options struct {
	Timeout       time.Duration
	UserAgent     string
	MaxSnippetLen int

	// UseBrowser enables headless-browser rendering when the static fetch
	// yields too little text (JavaScript-rendered sites).
	UseBrowser bool
	Verbose    bool
}

// DefaultOptions returns sensible defaults for enrichment.
func DefaultOptions() *Options {
	return &Options{
		Timeout:       DefaultTimeout,
		UserAgent:     DefaultUserAgent,
		MaxSnippetLen: DefaultMaxSnippetLen,
	}
}

// Fetcher retrieves website snippets. It implements llm.Snippeter.
type Fetcher struct {
	opts   *Options
	client *http.Client
}

// NewFetcher returns a Fetcher with the given options (nil for defaults).
func NewFetcher(opts *Options) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxSnippetLen <= 0 {
		opts.MaxSnippetLen = DefaultMaxSnippetLen
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Fetcher{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

// Snippet fetches websiteURL and returns a cleaned, truncated text excerpt.
// It never fails: any error returns an empty snippet so resolution proceeds
// without enrichment.
func (f *Fetcher) Snippet(ctx context.Context, websiteURL string) string {
	websiteURL = normalizeURL(websiteURL)
	if websiteURL == "" {
		return ""
	}

	html, err := f.fetchHTML(ctx, websiteURL)
	if err != nil {
		if f.opts.Verbose {
			log.Printf("[enrich] fetch failed for %s: %v", websiteURL, err)
		}
		return ""
	}

	text, err := ExtractMainText(html)
	if err != nil {
		return ""
	}

	if ShouldUseBrowser(text) && f.opts.UseBrowser {
		if rendered, berr := renderWithBrowser(ctx, websiteURL, f.opts.Timeout, f.opts.Verbose); berr == nil {
			if renderedText, terr := ExtractMainText(rendered); terr == nil && len(renderedText) > len(text) {
				text = renderedText
			}
		}
	}

	return truncateSnippet(text, f.opts.MaxSnippetLen)
}

func (f *Fetcher) fetchHTML(ctx context.Context, urlStr string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// ExtractMainText parses HTML and returns the main body text with noise
// elements removed.
func ExtractMainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .ads, .sidebar, .cookie-banner, .popup").Remove()

	var mainContent *goquery.Selection
	for _, selector := range []string{"main", "article", ".content", "#content", ".hero", ".about"} {
		if sel := doc.Find(selector); sel.Length() > 0 {
			mainContent = sel.First()
			break
		}
	}
	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	return cleanWhitespace(mainContent.Text()), nil
}

// normalizeURL validates the lead's website field, defaulting to https when
// the export omitted the scheme.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return raw
}

func truncateSnippet(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	cut := text[:max]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}

// cleanWhitespace collapses blank lines and trims each remaining line.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
