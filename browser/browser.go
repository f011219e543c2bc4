// Package browser provides a minimal stateful browser over the catalog
// site: it keeps one "current page" at a time and navigates by URL or
// by following anchors, with session cookies carried across loads.
package browser

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/d120/tucan-export/config"
	"github.com/gocolly/colly/v2"
)

// Anchor is a link extracted from the current page.
type Anchor struct {
	Name string
	Href string
}

// Browser wraps a synchronous colly collector and holds the parsed
// document of the most recently loaded page.
type Browser struct {
	collector *colly.Collector
	current   *url.URL
	doc       *goquery.Document
	loadErr   error
}

// New builds a browser configured from cfg. The collector keeps its own
// cookie jar, so the catalog session survives across page loads.
func New(cfg *config.Config) (*Browser, error) {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.DetectCharset(),
	)
	collector.SetRequestTimeout(cfg.Timeout)

	if cfg.PageDelay > 0 {
		if err := collector.Limit(&colly.LimitRule{
			DomainGlob: "*",
			Delay:      cfg.PageDelay,
		}); err != nil {
			return nil, fmt.Errorf("configure rate limits: %w", err)
		}
	}

	b := &Browser{collector: collector}

	collector.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			b.loadErr = fmt.Errorf("parse %s: %w", r.Request.URL, err)
			return
		}
		b.doc = doc
		b.current = r.Request.URL
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.Request != nil && r.Request.URL != nil {
			b.loadErr = fmt.Errorf("load %s: %w", r.Request.URL, err)
			return
		}
		b.loadErr = err
	})

	return b, nil
}

// Open loads a page and replaces the current document state.
func (b *Browser) Open(rawURL string) error {
	b.doc = nil
	b.loadErr = nil

	if err := b.collector.Visit(rawURL); err != nil {
		return fmt.Errorf("visit %s: %w", rawURL, err)
	}
	if b.loadErr != nil {
		return b.loadErr
	}
	if b.doc == nil {
		return fmt.Errorf("no document loaded from %s", rawURL)
	}
	return nil
}

// FollowLink navigates to an anchor's target, resolved against the
// current page URL.
func (b *Browser) FollowLink(a Anchor) error {
	abs, err := b.Resolve(a.Href)
	if err != nil {
		return err
	}
	return b.Open(abs)
}

// Resolve turns an href from the current page into an absolute URL.
func (b *Browser) Resolve(href string) (string, error) {
	if b.current == nil {
		return "", fmt.Errorf("no page loaded")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	return b.current.ResolveReference(ref).String(), nil
}

// Select returns all elements matching the selector on the current page.
func (b *Browser) Select(selector string) *goquery.Selection {
	if b.doc == nil {
		empty, _ := goquery.NewDocumentFromReader(strings.NewReader(""))
		return empty.Selection
	}
	return b.doc.Find(selector)
}

// Anchors selects elements and extracts their href plus cleaned-up
// visible text.
func (b *Browser) Anchors(selector string) []Anchor {
	var anchors []Anchor
	b.Select(selector).Each(func(_ int, sel *goquery.Selection) {
		name := removeNonPrintable(sel.Text())
		name = strings.Join(strings.Fields(name), " ")
		anchors = append(anchors, Anchor{
			Name: name,
			Href: sel.AttrOr("href", ""),
		})
	})
	return anchors
}

// CurrentURL returns the URL of the current page, or nil before the
// first successful Open.
func (b *Browser) CurrentURL() *url.URL {
	return b.current
}

// SetTransport swaps the underlying HTTP transport; tests use this to
// serve canned pages.
func (b *Browser) SetTransport(rt http.RoundTripper) {
	b.collector.WithTransport(rt)
}

func removeNonPrintable(s string) string {
	var out strings.Builder
	for _, c := range s {
		if unicode.IsPrint(c) {
			out.WriteRune(c)
		}
	}
	return out.String()
}
