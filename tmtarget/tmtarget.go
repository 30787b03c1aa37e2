// Package tmtarget is the compiled, laid out form of a document.
// All lengths are in points of 1/72 inch with y growing downward.
package tmtarget

import (
	"oss.terrastruct.com/texmath/tmfonts"
)

type Document struct {
	Pages []*Page `json:"pages"`
}

type Page struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Items  []Item  `json:"-"`
}

// Item is a Glyph or a Rule.
type Item interface {
	isItem()
}

// Glyph is a character whose baseline origin is at (X, Y).
type Glyph struct {
	X    float64
	Y    float64
	Size float64
	// Advance is the width the compiler's font metrics reserve for the glyph.
	Advance float64

	// Rune is the Unicode character drawn from Face.
	Rune rune
	// Face is nil when no font of the catalog could be chosen.
	Face *tmfonts.Face

	// FontName and Code identify the glyph in the compiler's own font.
	FontName string
	Code     int32
}

// Rule is a filled rectangle whose top left corner is at (X, Y).
type Rule struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (*Glyph) isItem() {}
func (*Rule) isItem()  {}

func (p *Page) Glyphs() []*Glyph {
	var glyphs []*Glyph
	for _, it := range p.Items {
		if g, ok := it.(*Glyph); ok {
			glyphs = append(glyphs, g)
		}
	}
	return glyphs
}

func (p *Page) Rules() []*Rule {
	var rules []*Rule
	for _, it := range p.Items {
		if r, ok := it.(*Rule); ok {
			rules = append(rules, r)
		}
	}
	return rules
}
