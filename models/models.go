// Package models defines data structures for the catalog export.
package models

import "time"

// Book is a resolved book record. Identity is the ISBN-13; the metadata
// service never provides a price, so Price stays at its default.
type Book struct {
	ISBN        string `csv:"isbn_13" json:"isbn_13"`
	Title       string `csv:"title" json:"title"`
	Author      string `csv:"author" json:"author"`
	Price       int    `csv:"price" json:"price"`
	Publisher   string `csv:"publisher" json:"publisher"`
	Year        string `csv:"year" json:"year"`
	Reliability int    `json:"reliability"`
}

// Module is a course-catalog module keyed by its course id.
type Module struct {
	CID         string
	Name        string
	NameEN      string
	Category    string
	URL         string
	LastOffered string
	Candidates  []string
	Books       []string // resolved ISBNs in resolution order
}

// ModuleLink is a module page discovered during the category walk,
// paired with the breadcrumb label of the page it was found on.
type ModuleLink struct {
	Href     string
	Category string
}

// Summary holds the counters reported at the end of a run.
type Summary struct {
	ModulesProcessed int
	ModulesSkipped   int
	ModulesFailed    int
	BooksAdded       int
	BooksDuplicate   int
	BooksIgnored     int
	Categories       int
	StartTime        time.Time
	EndTime          time.Time
}
