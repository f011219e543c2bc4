// Package parser holds the text predicates and patterns used while
// dissecting catalog pages.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Course ids look like "20-00-0005-iv": two-letter, two-letter,
// four-char and two-letter segments joined by hyphens, followed by the
// localized module name.
var courseHeaderPattern = regexp.MustCompile(`^(\w{2}-\w{2}-\w{4}-\w{2})\s*(.+)$`)

// Fragments made up of plain word-and-whitespace runs ending in a
// period or colon read as prose, not as book titles. Unicode word
// classes so umlauts count as word characters.
var sentencePattern = regexp.MustCompile(`^([\p{L}\p{N}_\s]+\.)*[\p{L}\p{N}_\s]+[.:]?$`)

var innerWhitespace = regexp.MustCompile(`\s+`)

// minCandidateLength is the shortest fragment worth sending to the
// metadata API; anything below it is noise.
const minCandidateLength = 15

// ParseCourseHeader splits a module page heading into course id and
// localized name.
func ParseCourseHeader(text string) (cid, name string, err error) {
	collapsed := CollapseWhitespace(text)
	groups := courseHeaderPattern.FindStringSubmatch(collapsed)
	if groups == nil {
		return "", "", fmt.Errorf("course header %q does not match id/name pattern", collapsed)
	}
	return groups[1], strings.TrimSpace(groups[2]), nil
}

// ShouldConsider reports whether a literature fragment is worth
// resolving: long enough to be a reference and not sentence-shaped.
func ShouldConsider(text string) bool {
	if utf8.RuneCountInString(text) < minCandidateLength {
		return false
	}
	if sentencePattern.MatchString(text) {
		return false
	}
	return true
}

// CollapseWhitespace trims the string and folds inner whitespace runs
// into single spaces.
func CollapseWhitespace(s string) string {
	return innerWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}
