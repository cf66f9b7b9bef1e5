// Package scan finds image references embedded in page text.
package scan

import (
	"iter"
	"math/rand/v2"
	"regexp"
	"strconv"

	"github.com/fwojciec/pagegrab"
)

// MaxFallbackTitle bounds the random titles given to untitled images.
// Generated titles fall in [0, MaxFallbackTitle).
const MaxFallbackTitle = 1000000

// imageURLTitlePattern matches `"imageUrl":"https://...","title":"..."`.
// It assumes the page embeds loosely JSON-shaped text with the two keys
// adjacent and in that order; escaped quotes inside values are not supported
// and no JSON structure is validated.
var imageURLTitlePattern = regexp.MustCompile(`"imageUrl":"(https://[^"]+)","title":"([^"]*)"`)

// Ensure Scanner implements pagegrab.ImageScanner at compile time.
var _ pagegrab.ImageScanner = (*Scanner)(nil)

// Scanner extracts image URL and title pairs from embedded JSON-like text.
type Scanner struct {
	// IntN returns a random integer in [0, n). Defaults to math/rand/v2.IntN.
	IntN func(n int) int
}

// NewScanner creates a new Scanner.
func NewScanner() *Scanner {
	return &Scanner{IntN: rand.IntN}
}

// Scan returns the image references in text, left to right, without overlap.
// An empty title is replaced by a random number at the moment of the match,
// so titles generated this way are neither stable nor unique.
func (s *Scanner) Scan(text string) iter.Seq[pagegrab.ImageRef] {
	return func(yield func(pagegrab.ImageRef) bool) {
		pos := 0
		for pos < len(text) {
			loc := imageURLTitlePattern.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return
			}

			ref := pagegrab.ImageRef{
				URL:   text[pos+loc[2] : pos+loc[3]],
				Title: text[pos+loc[4] : pos+loc[5]],
			}
			if ref.Title == "" {
				ref.Title = s.fallbackTitle()
			}

			pos += loc[1]
			if !yield(ref) {
				return
			}
		}
	}
}

func (s *Scanner) fallbackTitle() string {
	intN := s.IntN
	if intN == nil {
		intN = rand.IntN
	}
	return strconv.Itoa(intN(MaxFallbackTitle))
}
