// Package resolver turns free-text literature fragments into canonical
// book records via the books metadata search API.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
	"github.com/d120/tucan-export/config"
	"github.com/d120/tucan-export/models"
	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	volumesPath = "/books/v1/volumes"

	reliabilityBase       = 50
	reliabilityMax        = 100
	reliabilityMinLength  = 50
	reliabilityMultiplier = 0.5

	sanityCheckStepWidth = 4
	sanityCheckMaxRatio  = 0.7
)

// volumesResponse mirrors the slice of the search API response the
// resolver cares about.
type volumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			Title               string   `json:"title"`
			Authors             []string `json:"authors"`
			Publisher           string   `json:"publisher"`
			PublishedDate       string   `json:"publishedDate"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Resolver queries the metadata API and vets the first hit against the
// original fragment. Results, including misses, are cached per fragment
// so repeated candidates across modules cost a single request.
type Resolver struct {
	client *resty.Client
	apiKey string
	delay  time.Duration
	cache  *lru.Cache[string, *models.Book]
}

// New builds a resolver from cfg.
func New(cfg *config.Config) (*Resolver, error) {
	cache, err := lru.New[string, *models.Book](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create resolution cache: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(cfg.BooksAPIURL)
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept", "application/json")

	return &Resolver{
		client: client,
		apiKey: cfg.APIKey,
		delay:  cfg.ResolveDelay,
		cache:  cache,
	}, nil
}

// HTTPClient exposes the underlying client; tests swap its transport.
func (r *Resolver) HTTPClient() *resty.Client {
	return r.client
}

// Resolve looks up a candidate fragment. A nil book with nil error
// means the fragment did not resolve to a trustworthy match, which is
// routine and not an error.
func (r *Resolver) Resolve(ctx context.Context, candidate string) (*models.Book, error) {
	if book, ok := r.cache.Get(candidate); ok {
		return book, nil
	}

	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	res, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":   candidate,
			"key": r.apiKey,
		}).
		Get(volumesPath)
	if err != nil {
		return nil, fmt.Errorf("query metadata API: %w", err)
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("metadata API returned status %d", res.StatusCode())
	}

	var decoded volumesResponse
	if err := json.Unmarshal(res.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("decode metadata response: %w", err)
	}

	book := buildBook(candidate, decoded)
	if book != nil && !sanityCheck(candidate, book) {
		book = nil
	}
	r.cache.Add(candidate, book)
	return book, nil
}

// buildBook extracts a best-guess record from the first search result,
// or nil if there is none.
func buildBook(candidate string, decoded volumesResponse) *models.Book {
	if len(decoded.Items) == 0 {
		return nil
	}
	info := decoded.Items[0].VolumeInfo

	book := &models.Book{
		Title:       info.Title,
		Author:      strings.Join(info.Authors, ", "),
		Publisher:   info.Publisher,
		Year:        "0",
		Reliability: reliability(candidate),
	}
	if book.Publisher == "" {
		book.Publisher = "Unknown"
	}
	if info.PublishedDate != "" {
		book.Year = strings.SplitN(info.PublishedDate, "-", 2)[0]
	}
	for _, id := range info.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			book.ISBN = id.Identifier
			break
		}
	}
	return book
}

// reliability scores how much the fragment length lets us trust a
// match. Informational only; it never gates acceptance.
func reliability(candidate string) int {
	length := len([]rune(candidate))
	if length <= reliabilityMinLength {
		return 0
	}
	score := reliabilityBase + int(float64(length)*reliabilityMultiplier)
	if score > reliabilityMax {
		return reliabilityMax
	}
	return score
}

// sanityCheck vets a fuzzy match: some window of the candidate, the
// width of the title and stepped every few characters, must sit within
// the edit-distance ratio bound, and all record fields must be present.
func sanityCheck(candidate string, book *models.Book) bool {
	if book.Title == "" {
		return false
	}

	candidateRunes := []rune(candidate)
	titleLen := len([]rune(book.Title))
	diff := len(candidateRunes) - titleLen

	valid := false
	for offset := 0; offset <= diff; offset += sanityCheckStepWidth {
		window := string(candidateRunes[offset : offset+titleLen])
		ratio := float64(matchr.Levenshtein(window, book.Title)) / float64(titleLen)
		if ratio < sanityCheckMaxRatio {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	return book.Author != "" && book.ISBN != "" && book.Publisher != "" && book.Year != ""
}
