package resolver

import (
	"context"
	"strings"
	"testing"

	"github.com/d120/tucan-export/config"
	"github.com/d120/tucan-export/models"
	"github.com/jarcoal/httpmock"
)

const volumesURL = "http://books.test/books/v1/volumes"

func newTestResolver(t *testing.T) (*Resolver, *httpmock.MockTransport) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.BooksAPIURL = "http://books.test"
	cfg.APIKey = "test-key"
	cfg.ResolveDelay = 0
	cfg.CacheSize = 16

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	transport := httpmock.NewMockTransport()
	r.HTTPClient().SetTransport(transport)
	return r, transport
}

const fullVolumeResponse = `{
	"items": [
		{
			"volumeInfo": {
				"title": "Introduction to Algorithms",
				"authors": ["Thomas H. Cormen", "Charles E. Leiserson"],
				"publisher": "MIT Press",
				"publishedDate": "2009-07-31",
				"industryIdentifiers": [
					{"type": "ISBN_10", "identifier": "0262033844"},
					{"type": "ISBN_13", "identifier": "9780262033848"}
				]
			}
		}
	]
}`

func TestResolveSuccess(t *testing.T) {
	r, transport := newTestResolver(t)
	transport.RegisterResponder("GET", volumesURL,
		httpmock.NewStringResponder(200, fullVolumeResponse))

	book, err := r.Resolve(context.Background(), "Introduction to Algorithms, Cormen et al., 2009")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if book == nil {
		t.Fatalf("expected a match")
	}
	if book.ISBN != "9780262033848" {
		t.Fatalf("isbn = %q", book.ISBN)
	}
	if book.Title != "Introduction to Algorithms" {
		t.Fatalf("title = %q", book.Title)
	}
	if book.Author != "Thomas H. Cormen, Charles E. Leiserson" {
		t.Fatalf("author = %q", book.Author)
	}
	if book.Publisher != "MIT Press" {
		t.Fatalf("publisher = %q", book.Publisher)
	}
	if book.Year != "2009" {
		t.Fatalf("year = %q", book.Year)
	}
	if book.Price != 0 {
		t.Fatalf("price = %d, want 0", book.Price)
	}
}

func TestResolveNoResults(t *testing.T) {
	r, transport := newTestResolver(t)
	transport.RegisterResponder("GET", volumesURL,
		httpmock.NewStringResponder(200, `{}`))

	book, err := r.Resolve(context.Background(), "Some Unfindable Title, Nobody, 1900")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if book != nil {
		t.Fatalf("expected no match, got %+v", book)
	}
}

func TestResolveMissingISBN13(t *testing.T) {
	r, transport := newTestResolver(t)
	response := strings.Replace(fullVolumeResponse, "ISBN_13", "ISBN_XX", 1)
	transport.RegisterResponder("GET", volumesURL,
		httpmock.NewStringResponder(200, response))

	book, err := r.Resolve(context.Background(), "Introduction to Algorithms, Cormen et al., 2009")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if book != nil {
		t.Fatalf("record without ISBN-13 should be rejected, got %+v", book)
	}
}

func TestResolveAPIError(t *testing.T) {
	r, transport := newTestResolver(t)
	transport.RegisterResponder("GET", volumesURL,
		httpmock.NewStringResponder(500, "boom"))

	if _, err := r.Resolve(context.Background(), "Introduction to Algorithms, Cormen"); err == nil {
		t.Fatalf("expected error for server failure")
	}
}

func TestResolveCachesResults(t *testing.T) {
	r, transport := newTestResolver(t)
	transport.RegisterResponder("GET", volumesURL,
		httpmock.NewStringResponder(200, fullVolumeResponse))

	candidate := "Introduction to Algorithms, Cormen et al., 2009"
	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(context.Background(), candidate); err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
	}

	if calls := transport.GetTotalCallCount(); calls != 1 {
		t.Fatalf("API calls = %d, want 1", calls)
	}
}

func TestResolveCachesMisses(t *testing.T) {
	r, transport := newTestResolver(t)
	transport.RegisterResponder("GET", volumesURL,
		httpmock.NewStringResponder(200, `{}`))

	candidate := "Some Unfindable Title, Nobody, 1900"
	for i := 0; i < 2; i++ {
		book, err := r.Resolve(context.Background(), candidate)
		if err != nil || book != nil {
			t.Fatalf("resolve %d: book=%+v err=%v", i, book, err)
		}
	}

	if calls := transport.GetTotalCallCount(); calls != 1 {
		t.Fatalf("API calls = %d, want 1", calls)
	}
}

func TestSanityCheck(t *testing.T) {
	base := func() *models.Book {
		return &models.Book{
			ISBN:      "9780262033848",
			Title:     "Introduction to Algorithms",
			Author:    "Cormen",
			Publisher: "MIT Press",
			Year:      "2009",
		}
	}

	tests := []struct {
		name      string
		candidate string
		mutate    func(*models.Book)
		want      bool
	}{
		{
			name:      "exact title at offset zero",
			candidate: "Introduction to Algorithms, Cormen et al., 2009",
			want:      true,
		},
		{
			name:      "exact title equal length",
			candidate: "Introduction to Algorithms",
			want:      true,
		},
		{
			name:      "title at step-aligned offset",
			candidate: "### Introduction to Algorithms, Cormen",
			want:      true,
		},
		{
			name:      "no window close enough",
			candidate: strings.Repeat("z", 60),
			want:      false,
		},
		{
			name:      "candidate shorter than title",
			candidate: "Intro to Algos",
			want:      false,
		},
		{
			name:      "missing author",
			candidate: "Introduction to Algorithms, Cormen et al., 2009",
			mutate:    func(b *models.Book) { b.Author = "" },
			want:      false,
		},
		{
			name:      "missing isbn",
			candidate: "Introduction to Algorithms, Cormen et al., 2009",
			mutate:    func(b *models.Book) { b.ISBN = "" },
			want:      false,
		},
		{
			name:      "missing publisher",
			candidate: "Introduction to Algorithms, Cormen et al., 2009",
			mutate:    func(b *models.Book) { b.Publisher = "" },
			want:      false,
		},
		{
			name:      "missing year",
			candidate: "Introduction to Algorithms, Cormen et al., 2009",
			mutate:    func(b *models.Book) { b.Year = "" },
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := base()
			if tt.mutate != nil {
				tt.mutate(book)
			}
			if got := sanityCheck(tt.candidate, book); got != tt.want {
				t.Fatalf("sanityCheck = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReliability(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      int
	}{
		{name: "short string scores zero", candidate: strings.Repeat("a", 50), want: 0},
		{name: "just above threshold", candidate: strings.Repeat("a", 52), want: 76},
		{name: "capped at maximum", candidate: strings.Repeat("a", 200), want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reliability(tt.candidate); got != tt.want {
				t.Fatalf("reliability(len=%d) = %d, want %d", len(tt.candidate), got, tt.want)
			}
		})
	}
}
