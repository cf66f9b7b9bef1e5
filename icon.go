package pagegrab

import (
	"bytes"
	"context"
	"encoding/json"
)

// IconKind identifies the kind of element an icon was extracted from.
type IconKind string

// IconKind constants.
const (
	IconImage  IconKind = "image"
	IconVector IconKind = "vector"
)

// Icon is one extracted image or vector-graphic descriptor.
//
// Source is set only for image icons. ViewBox and Paths are set only for
// vector icons; ViewBox is optional and Paths keeps document order.
type Icon struct {
	Kind    IconKind `json:"kind"`
	Source  string   `json:"source,omitempty"`
	ViewBox string   `json:"viewBox,omitempty"`
	Paths   []string `json:"paths,omitempty"`
}

// NewImageIcon returns an image icon for the given src attribute.
func NewImageIcon(src string) *Icon {
	return &Icon{Kind: IconImage, Source: src}
}

// NewVectorIcon returns a vector icon with the given bounding box and path data.
func NewVectorIcon(viewBox string, paths []string) *Icon {
	if paths == nil {
		paths = []string{}
	}
	return &Icon{Kind: IconVector, ViewBox: viewBox, Paths: paths}
}

// Validate returns an error if the icon would not be emitted by an extractor.
// An image icon needs a source; a vector icon needs a viewBox or at least one path.
func (i *Icon) Validate() error {
	switch i.Kind {
	case IconImage:
		if i.Source == "" {
			return Errorf(EINVALID, "image icon source required")
		}
	case IconVector:
		if i.ViewBox == "" && len(i.Paths) == 0 {
			return Errorf(EINVALID, "vector icon requires a viewBox or paths")
		}
	default:
		return Errorf(EINVALID, "unknown icon kind %q", i.Kind)
	}
	return nil
}

type imageIconJSON struct {
	Kind   IconKind `json:"kind"`
	Source string   `json:"source"`
}

type vectorIconJSON struct {
	Kind    IconKind `json:"kind"`
	ViewBox string   `json:"viewBox,omitempty"`
	Paths   []string `json:"paths"`
}

// MarshalJSON encodes only the fields that belong to the icon's kind.
// Vector icons always carry a paths array, even when it is empty.
func (i Icon) MarshalJSON() ([]byte, error) {
	switch i.Kind {
	case IconImage:
		return marshalNoEscape(imageIconJSON{Kind: i.Kind, Source: i.Source})
	case IconVector:
		paths := i.Paths
		if paths == nil {
			paths = []string{}
		}
		return marshalNoEscape(vectorIconJSON{Kind: i.Kind, ViewBox: i.ViewBox, Paths: paths})
	}
	type plain Icon
	return marshalNoEscape(plain(i))
}

// marshalNoEscape encodes v without escaping <, > and &, which are common in
// URLs and path data.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// TagCounts holds case-insensitive substring counts of "img" and "svg" in raw
// HTML. It is a coverage diagnostic and never affects extraction.
type TagCounts struct {
	Img int `json:"img"`
	SVG int `json:"svg"`
}

// IconExtractor extracts icons from HTML.
type IconExtractor interface {
	// Extract parses html and returns image icons followed by vector icons,
	// each group in document order. Malformed HTML yields fewer icons, not an error.
	Extract(html string) ([]*Icon, error)
}

// IconWriter persists an icon sequence.
type IconWriter interface {
	WriteIcons(ctx context.Context, path string, icons []*Icon) error
}

// HTMLArchiver persists a verbatim copy of a fetched page.
type HTMLArchiver interface {
	SaveHTML(ctx context.Context, path string, html string) error
}

// SVGRenderer renders a vector icon as a standalone SVG document.
type SVGRenderer interface {
	RenderSVG(icon *Icon) (string, error)
}

// SVGWriter writes vector icons as individual SVG files.
type SVGWriter interface {
	// WriteSVGs writes every vector icon in icons to dir and returns the
	// paths written, in icon order.
	WriteSVGs(ctx context.Context, dir string, icons []*Icon) ([]string, error)
}
