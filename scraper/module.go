package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/d120/tucan-export/models"
	"github.com/d120/tucan-export/parser"
	"golang.org/x/net/html"
)

const (
	courseHeaderSelector    = "#pageContent form h1"
	literatureScopeSelector = "table:nth-of-type(1) td.tbdata > *"
	literatureMarker        = "literatur"
)

// retrieveModule extracts a single module page: course id and localized
// names from the header, plus the literature candidate fragments. Any
// failure fails the whole module; the caller decides to skip it.
func (s *Scraper) retrieveModule(link models.ModuleLink) (*models.Module, error) {
	pageURL := s.cfg.BaseURL + link.Href
	if err := s.browser.Open(pageURL); err != nil {
		return nil, err
	}
	s.Metrics.IncPage("module")

	cid, name, err := s.parseHeader()
	if err != nil {
		return nil, err
	}

	candidates := s.literatureCandidates()

	// The English variant of the page differs only in the locale
	// marker segment of the URL.
	enURL := s.cfg.BaseURL + strings.ReplaceAll(link.Href, s.cfg.LocaleMarkerDE, s.cfg.LocaleMarkerEN)
	if err := s.browser.Open(enURL); err != nil {
		return nil, fmt.Errorf("english variant: %w", err)
	}
	s.Metrics.IncPage("module")

	_, nameEN, err := s.parseHeader()
	if err != nil {
		return nil, fmt.Errorf("english variant: %w", err)
	}

	return &models.Module{
		CID:         cid,
		Name:        name,
		NameEN:      nameEN,
		Category:    link.Category,
		URL:         link.Href,
		LastOffered: s.cfg.Semester,
		Candidates:  candidates,
	}, nil
}

func (s *Scraper) parseHeader() (cid, name string, err error) {
	header := s.browser.Select(courseHeaderSelector).First()
	if header.Length() == 0 {
		return "", "", ErrMissingElement{Selector: courseHeaderSelector}
	}
	return parser.ParseCourseHeader(header.Text())
}

// literatureCandidates locates the literature section within the module
// description block and returns the fragments worth resolving. The
// section starts at the first element whose bold label begins with the
// literature marker and ends before the next bold-labeled element.
func (s *Scraper) literatureCandidates() []string {
	var nodes []*html.Node
	found := false

	s.browser.Select(literatureScopeSelector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		bold := el.Find("b")
		if bold.Length() > 0 {
			if found {
				return false
			}
			bold.EachWithBreak(func(_ int, b *goquery.Selection) bool {
				label := strings.ToLower(strings.TrimSpace(b.Text()))
				if strings.HasPrefix(label, literatureMarker) {
					found = true
					return false
				}
				return true
			})
		}
		if found {
			nodes = append(nodes, el.Nodes...)
		}
		return true
	})

	var candidates []string
	for _, leaf := range textLeaves(nodes) {
		if parser.ShouldConsider(leaf) {
			candidates = append(candidates, leaf)
		}
	}
	return candidates
}

// textLeaves flattens element trees into their trimmed text leaves,
// depth-first, discarding the tag structure but keeping leaf order.
func textLeaves(nodes []*html.Node) []string {
	var leaves []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				leaves = append(leaves, text)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return leaves
}
