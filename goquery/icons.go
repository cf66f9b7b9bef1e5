// Package goquery implements HTML icon extraction using goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagegrab"
)

// Ensure IconExtractor implements pagegrab.IconExtractor at compile time.
var _ pagegrab.IconExtractor = (*IconExtractor)(nil)

// IconExtractor extracts <img> sources and <svg> path data from HTML.
type IconExtractor struct{}

// NewIconExtractor creates a new IconExtractor.
func NewIconExtractor() *IconExtractor {
	return &IconExtractor{}
}

// Extract returns one image icon per <img> with a non-empty src, followed by
// one vector icon per <svg> that has a viewBox or at least one <path>.
//
// A <path> without a d attribute contributes an empty string so that path
// positions keep matching the document.
func (e *IconExtractor) Extract(html string) ([]*pagegrab.Icon, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, pagegrab.Errorf(pagegrab.EINVALID, "failed to parse HTML: %v", err)
	}

	icons := make([]*pagegrab.Icon, 0)

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if src == "" {
			return
		}
		icons = append(icons, pagegrab.NewImageIcon(src))
	})

	doc.Find("svg").Each(func(_ int, sel *goquery.Selection) {
		viewBox := viewBoxAttr(sel)
		paths := make([]string, 0)
		sel.Find("path").Each(func(_ int, path *goquery.Selection) {
			d, _ := path.Attr("d")
			paths = append(paths, d)
		})
		if viewBox == "" && len(paths) == 0 {
			return
		}
		icons = append(icons, pagegrab.NewVectorIcon(viewBox, paths))
	})

	return icons, nil
}

// viewBoxAttr reads the viewBox attribute. The HTML parser restores the
// camel-cased SVG name inside <svg>, but keeps the lower-cased form elsewhere.
func viewBoxAttr(sel *goquery.Selection) string {
	if v, ok := sel.Attr("viewBox"); ok {
		return v
	}
	v, _ := sel.Attr("viewbox")
	return v
}

// CountTags returns case-insensitive counts of the substrings "img" and "svg"
// in html. The counts are a sanity check on extraction coverage only.
func CountTags(html string) pagegrab.TagCounts {
	lower := strings.ToLower(html)
	return pagegrab.TagCounts{
		Img: strings.Count(lower, "img"),
		SVG: strings.Count(lower, "svg"),
	}
}
