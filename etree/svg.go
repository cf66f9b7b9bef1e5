// Package etree renders vector icons as standalone SVG documents using etree.
package etree

import (
	"github.com/beevik/etree"
	"github.com/fwojciec/pagegrab"
)

// SVGNamespace is the XML namespace of SVG documents.
const SVGNamespace = "http://www.w3.org/2000/svg"

// Ensure Renderer implements pagegrab.SVGRenderer at compile time.
var _ pagegrab.SVGRenderer = (*Renderer)(nil)

// Renderer builds an <svg> document from a vector icon.
type Renderer struct {
	indent int
}

// NewRenderer creates a Renderer that indents nested elements by two spaces.
func NewRenderer() *Renderer {
	return &Renderer{indent: 2}
}

// RenderSVG returns an XML document with one <path> per icon path.
// Empty path data is kept so element positions match the source page.
func (r *Renderer) RenderSVG(icon *pagegrab.Icon) (string, error) {
	if icon.Kind != pagegrab.IconVector {
		return "", pagegrab.Errorf(pagegrab.EINVALID, "cannot render %s icon as SVG", icon.Kind)
	}
	if err := icon.Validate(); err != nil {
		return "", err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	svg := doc.CreateElement("svg")
	svg.CreateAttr("xmlns", SVGNamespace)
	if icon.ViewBox != "" {
		svg.CreateAttr("viewBox", icon.ViewBox)
	}
	for _, d := range icon.Paths {
		svg.CreateElement("path").CreateAttr("d", d)
	}

	doc.Indent(r.indent)
	return doc.WriteToString()
}
