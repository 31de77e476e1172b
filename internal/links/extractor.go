package links

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/perini/anexos-downloader/internal/model"
	"golang.org/x/net/html"
)

// PageSource opens a readable byte stream for a URL.
//
// *http.Client from internal/http satisfies this interface.
type PageSource interface {
	Open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error)
}

// Options configures an Extractor.
type Options struct {
	// BaseOrigin prefixes relative hrefs. When empty, the origin of the page
	// URL is used.
	BaseOrigin string

	// Deduplicate drops repeated URLs, keeping the first occurrence.
	Deduplicate bool
}

// Extractor finds target-file links on one HTML page.
//
// Example usage:
//
//	rule := NewRule(settings.Markers, settings.Extensions, settings.CaseInsensitive)
//	extractor := NewExtractor(client, rule, Options{BaseOrigin: "https://www.gov.br"}, onProgress)
//
//	urls, err := extractor.Extract(ctx, settings.PageURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
type Extractor struct {
	source     PageSource
	rule       *Rule
	opts       Options
	onProgress model.ProgressFunc
}

// NewExtractor creates a new Extractor.
func NewExtractor(source PageSource, rule *Rule, opts Options, onProgress model.ProgressFunc) *Extractor {
	return &Extractor{
		source:     source,
		rule:       rule,
		opts:       opts,
		onProgress: onProgress,
	}
}

// Extract fetches pageURL and returns the absolute URLs of every target-file
// link, in document order.
//
// Returns an error wrapping model.ErrFetch if the page cannot be retrieved
// or its body cannot be read in full, and model.ErrParse if it cannot be
// parsed.
func (e *Extractor) Extract(ctx context.Context, pageURL string) ([]string, error) {
	origin := e.opts.BaseOrigin
	if origin == "" {
		var err error
		origin, err = OriginOf(pageURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidURL, err)
		}
	}

	e.onProgress.Emit(model.ProgressEvent{Message: "Connecting to page", Level: model.LevelInfo, URL: pageURL})

	body, _, err := e.source.Open(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	page, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", model.ErrFetch, pageURL, err)
	}

	hrefs, err := Hrefs(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}
	e.onProgress.Emit(model.ProgressEvent{Message: fmt.Sprintf("Found %d links on page", len(hrefs)), Level: model.LevelInfo, URL: pageURL})

	urls := e.filter(hrefs, origin)
	e.onProgress.Emit(model.ProgressEvent{Message: fmt.Sprintf("%d links match the target rule", len(urls)), Level: model.LevelInfo, URL: pageURL})

	return urls, nil
}

// ExtractFromHTML applies the rule to an already fetched document.
func (e *Extractor) ExtractFromHTML(r io.Reader, origin string) ([]string, error) {
	hrefs, err := Hrefs(r)
	if err != nil {
		return nil, err
	}
	return e.filter(hrefs, origin), nil
}

func (e *Extractor) filter(hrefs []string, origin string) []string {
	var seen map[string]struct{}
	if e.opts.Deduplicate {
		seen = make(map[string]struct{})
	}

	urls := make([]string, 0)
	for _, href := range hrefs {
		if !e.rule.IsTargetFile(href) {
			continue
		}
		fileURL := Normalize(href, origin)
		if seen != nil {
			if _, dup := seen[fileURL]; dup {
				e.onProgress.Emit(model.ProgressEvent{Message: "Skipping duplicate link", Level: model.LevelVerbose, URL: fileURL})
				continue
			}
			seen[fileURL] = struct{}{}
		}
		e.onProgress.Emit(model.ProgressEvent{Message: "Valid link found", Level: model.LevelVerbose, URL: fileURL})
		urls = append(urls, fileURL)
	}
	return urls
}

// Hrefs parses an HTML document and returns the value of every href
// attribute, in document order. Any failure, including one reading r, wraps
// model.ErrParse.
func Hrefs(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrParse, err)
	}

	var hrefs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Namespace == "" && a.Key == "href" {
					hrefs = append(hrefs, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return hrefs, nil
}
