// Package bloom provides probabilistic image URL de-duplication.
package bloom

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/pagegrab"
)

// Default sizing for a single page's worth of image URLs.
const (
	DefaultExpectedURLs  = 10000
	DefaultFalsePositive = 0.001
)

// Ensure Filter implements pagegrab.URLFilter at compile time.
var _ pagegrab.URLFilter = (*Filter)(nil)

// Filter remembers URLs in a Bloom filter.
// A false positive makes a new URL look seen; a seen URL is never reported new.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add records url.
func (f *Filter) Add(url string) {
	f.f.AddString(url)
}

// Test returns true if url might have been added.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(url)
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
