// Package pipeline owns the run-global aggregation state and the final
// CSV export.
package pipeline

import (
	"time"

	"github.com/d120/tucan-export/models"
)

// Aggregator deduplicates modules by course id and books by ISBN-13
// across a whole run, and keeps the visit-ordered category list. First
// seen always wins; later duplicates are dropped, never merged.
type Aggregator struct {
	modules     map[string]*models.Module
	moduleOrder []string

	books     map[string]*models.Book
	bookOrder []string

	categories []string

	summary models.Summary
}

// NewAggregator returns an empty aggregator with the run clock started.
func NewAggregator() *Aggregator {
	return &Aggregator{
		modules: make(map[string]*models.Module),
		books:   make(map[string]*models.Book),
		summary: models.Summary{StartTime: time.Now()},
	}
}

// AddModule inserts a module unless its course id was already seen.
// It reports whether the module was kept.
func (a *Aggregator) AddModule(m *models.Module) bool {
	if _, ok := a.modules[m.CID]; ok {
		a.summary.ModulesSkipped++
		return false
	}
	a.modules[m.CID] = m
	a.moduleOrder = append(a.moduleOrder, m.CID)
	a.summary.ModulesProcessed++
	return true
}

// AddBook inserts a book unless its ISBN was already seen. It reports
// whether the book was added; either way the caller references the
// ISBN from its module.
func (a *Aggregator) AddBook(b *models.Book) bool {
	if _, ok := a.books[b.ISBN]; ok {
		a.summary.BooksDuplicate++
		return false
	}
	a.books[b.ISBN] = b
	a.bookOrder = append(a.bookOrder, b.ISBN)
	a.summary.BooksAdded++
	return true
}

// AddCategories appends breadcrumb labels in visit order. Duplicates
// are kept; the downstream import deduplicates on its side.
func (a *Aggregator) AddCategories(labels []string) {
	a.categories = append(a.categories, labels...)
}

// RecordModuleFailed counts a module page that could not be extracted.
func (a *Aggregator) RecordModuleFailed() {
	a.summary.ModulesFailed++
}

// RecordIgnored counts a candidate that did not resolve to a book.
func (a *Aggregator) RecordIgnored() {
	a.summary.BooksIgnored++
}

// Modules returns the kept modules in insertion order.
func (a *Aggregator) Modules() []*models.Module {
	out := make([]*models.Module, 0, len(a.moduleOrder))
	for _, cid := range a.moduleOrder {
		out = append(out, a.modules[cid])
	}
	return out
}

// Books returns the unique books in first-seen order.
func (a *Aggregator) Books() []*models.Book {
	out := make([]*models.Book, 0, len(a.bookOrder))
	for _, isbn := range a.bookOrder {
		out = append(out, a.books[isbn])
	}
	return out
}

// Categories returns the category labels in visit order.
func (a *Aggregator) Categories() []string {
	return a.categories
}

// Summary closes the run clock and returns the final counters.
func (a *Aggregator) Summary() models.Summary {
	s := a.summary
	s.Categories = len(a.categories)
	s.EndTime = time.Now()
	return s
}
