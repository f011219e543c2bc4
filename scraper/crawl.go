package scraper

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/d120/tucan-export/models"
)

// Selectors for the catalog's navigation structure.
const (
	topNavSelector     = "#pageTopNavi ul a"
	containerSelector  = "#auditRegistration_list li a"
	breadcrumbSelector = ".pageElementTop > h2 > a"
	moduleLinkSelector = ".eventTable td a"
)

func departmentSelector(title string) string {
	return fmt.Sprintf(`#auditRegistration_list li[title=%q] a`, title)
}

// crawlResult is everything the category walk produces: the module
// pages to visit and the breadcrumb labels seen along the way.
type crawlResult struct {
	Links      []models.ModuleLink
	Categories []string
}

// collectModuleLinks opens the catalog entry page, navigates to the
// department root and walks the category tree depth-first, collecting
// module page links tagged with the category they were found under.
func (s *Scraper) collectModuleLinks() (*crawlResult, error) {
	slog.Info("retrieving module links", "start", s.cfg.StartURL())

	if err := s.browser.Open(s.cfg.StartURL()); err != nil {
		return nil, ErrStartPage{Err: err}
	}

	nav := s.browser.Anchors(topNavSelector)
	if len(nav) < 2 {
		return nil, ErrStartPage{Err: ErrMissingElement{Selector: topNavSelector}}
	}
	if err := s.browser.FollowLink(nav[1]); err != nil {
		return nil, ErrStartPage{Err: err}
	}

	deptSelector := departmentSelector(s.cfg.DepartmentTitle)
	dept := s.browser.Anchors(deptSelector)
	if len(dept) == 0 {
		return nil, ErrStartPage{Err: ErrMissingElement{Selector: deptSelector}}
	}
	if err := s.browser.FollowLink(dept[0]); err != nil {
		return nil, ErrStartPage{Err: err}
	}

	result := &crawlResult{}

	// Explicit worklist with a visited set: the catalog has no stable
	// depth and could contain cross-links between categories.
	stack := []string{s.browser.CurrentURL().String()}
	visited := make(map[string]struct{})

	for len(stack) > 0 {
		pageURL := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[pageURL]; ok {
			continue
		}
		visited[pageURL] = struct{}{}

		if err := s.browser.Open(pageURL); err != nil {
			slog.Warn("failed to load category page", "url", pageURL, "error", err)
			continue
		}
		s.Metrics.IncPage("catalog")

		label := s.categoryLabel()
		result.Categories = append(result.Categories, label)
		slog.Debug("visiting category", "label", label, "url", pageURL)

		for _, a := range s.browser.Anchors(moduleLinkSelector) {
			result.Links = append(result.Links, models.ModuleLink{
				Href:     a.Href,
				Category: label,
			})
		}

		var next []string
		for _, container := range s.browser.Anchors(containerSelector) {
			if s.excludedProgram(container.Name) {
				slog.Debug("skipping excluded program", "name", container.Name)
				continue
			}
			abs, err := s.browser.Resolve(container.Href)
			if err != nil {
				slog.Warn("unresolvable container link", "href", container.Href, "error", err)
				continue
			}
			if _, ok := visited[abs]; !ok {
				next = append(next, abs)
			}
		}
		// Push in reverse so siblings are walked in page order.
		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}

	slog.Info("retrieved module links", "count", len(result.Links))
	return result, nil
}

// categoryLabel reads the human-readable category from the breadcrumb
// trail; the second-to-last segment names the current listing.
func (s *Scraper) categoryLabel() string {
	crumbs := s.browser.Anchors(breadcrumbSelector)
	switch {
	case len(crumbs) >= 2:
		return crumbs[len(crumbs)-2].Name
	case len(crumbs) == 1:
		return crumbs[0].Name
	default:
		return ""
	}
}

func (s *Scraper) excludedProgram(name string) bool {
	for _, excluded := range s.cfg.ExcludedPrograms {
		if strings.Contains(name, excluded) {
			return true
		}
	}
	return false
}
