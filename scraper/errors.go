package scraper

import "fmt"

// ErrStartPage indicates the catalog entry navigation failed. This is
// the only unrecoverable failure: without a session there is nothing to
// crawl.
type ErrStartPage struct {
	Err error
}

func (e ErrStartPage) Error() string {
	return fmt.Sprintf("start page: %v", e.Err)
}

func (e ErrStartPage) Unwrap() error {
	return e.Err
}

// ErrMissingElement indicates a selector matched nothing on the current
// page.
type ErrMissingElement struct {
	Selector string
}

func (e ErrMissingElement) Error() string {
	return fmt.Sprintf("no element matches %q", e.Selector)
}
