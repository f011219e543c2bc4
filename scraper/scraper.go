// Package scraper drives the crawl-extract-resolve pipeline against the
// course catalog.
package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/d120/tucan-export/browser"
	"github.com/d120/tucan-export/config"
	"github.com/d120/tucan-export/models"
	"github.com/d120/tucan-export/pipeline"
	"github.com/d120/tucan-export/resolver"
)

// Scraper owns the browsing session and the book resolver for one run.
type Scraper struct {
	cfg      *config.Config
	browser  *browser.Browser
	resolver *resolver.Resolver
	Metrics  *Metrics
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	b, err := browser.New(cfg)
	if err != nil {
		return nil, err
	}
	r, err := resolver.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Scraper{
		cfg:      cfg,
		browser:  b,
		resolver: r,
		Metrics:  NewMetrics(),
	}, nil
}

// Run walks the category tree, extracts each discovered module page and
// resolves its literature candidates into agg. A start-page failure is
// fatal; everything else is skipped per module and the run continues.
func (s *Scraper) Run(ctx context.Context, agg *pipeline.Aggregator) error {
	crawl, err := s.collectModuleLinks()
	if err != nil {
		return err
	}
	agg.AddCategories(crawl.Categories)

	total := len(crawl.Links)
	for i, link := range crawl.Links {
		if err := ctx.Err(); err != nil {
			return err
		}
		slog.Info("loading module", "index", i+1, "total", total, "category", link.Category)

		module, err := s.retrieveModule(link)
		if err != nil {
			slog.Warn("failed to process module", "url", link.Href, slog.Any("error", err))
			agg.RecordModuleFailed()
			s.Metrics.IncModule("failed")
			continue
		}

		if !agg.AddModule(module) {
			slog.Info("skipping duplicate module", "cid", module.CID, "index", i+1, "total", total)
			s.Metrics.IncModule("skipped")
			continue
		}
		s.Metrics.IncModule("processed")

		s.resolveCandidates(ctx, module, agg)
	}
	return nil
}

func (s *Scraper) resolveCandidates(ctx context.Context, module *models.Module, agg *pipeline.Aggregator) {
	total := len(module.Candidates)
	for j, candidate := range module.Candidates {
		s.Metrics.IncCandidate()
		slog.Debug("resolving candidate", "index", j+1, "total", total, "cid", module.CID)

		start := time.Now()
		book, err := s.resolver.Resolve(ctx, candidate)
		s.Metrics.ObserveResolve(time.Since(start))

		if err != nil {
			slog.Warn("book lookup failed", "candidate", candidate, slog.Any("error", err))
			agg.RecordIgnored()
			s.Metrics.IncResolution("error")
			continue
		}
		if book == nil {
			slog.Debug("candidate ignored", "candidate", candidate)
			agg.RecordIgnored()
			s.Metrics.IncResolution("ignored")
			continue
		}

		module.Books = append(module.Books, book.ISBN)
		if agg.AddBook(book) {
			slog.Debug("book added", "isbn", book.ISBN, "title", book.Title)
			s.Metrics.IncResolution("added")
		} else {
			slog.Debug("book duplicate", "isbn", book.ISBN)
			s.Metrics.IncResolution("duplicate")
		}
	}
}
