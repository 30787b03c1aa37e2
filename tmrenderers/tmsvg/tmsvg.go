// Package tmsvg serializes a typeset page to SVG. Glyphs are drawn from the outlines of
// their catalog face so the output does not depend on fonts installed on the viewer.
package tmsvg

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"

	"golang.org/x/image/font/sfnt"

	"oss.terrastruct.com/texmath/lib/color"
	"oss.terrastruct.com/texmath/lib/svg"
	"oss.terrastruct.com/texmath/tmfonts"
	"oss.terrastruct.com/texmath/tmtarget"
)

const DEFAULT_FILL = "#000000"

// ErrInvalidFill is returned by Render when RenderOpts.Fill is not a CSS color.
var ErrInvalidFill = errors.New("invalid fill")

type RenderOpts struct {
	// Fill is any CSS color. Glyphs and rules are black when unset.
	Fill *string
	// NoXMLTag omits the XML declaration when unset or true. Set it to false for
	// standalone .svg files.
	NoXMLTag *bool
}

type glyphKey struct {
	face *tmfonts.Face
	r    rune
	size float64
}

type renderer struct {
	buf  *bytes.Buffer
	defs *bytes.Buffer
	hash string
	ids  map[glyphKey]string
}

// Render writes page as one SVG document. The output only depends on page and opts.
func Render(page *tmtarget.Page, opts *RenderOpts) ([]byte, error) {
	if opts == nil {
		opts = &RenderOpts{}
	}
	fill := DEFAULT_FILL
	if opts.Fill != nil {
		hex, err := color.Hex(*opts.Fill)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidFill, *opts.Fill, err)
		}
		fill = hex
	}

	r := &renderer{
		buf:  &bytes.Buffer{},
		defs: &bytes.Buffer{},
		hash: pageHash(page),
		ids:  make(map[glyphKey]string),
	}
	for _, it := range page.Items {
		switch it := it.(type) {
		case *tmtarget.Glyph:
			r.glyph(it)
		case *tmtarget.Rule:
			r.rule(it)
		}
	}

	out := &bytes.Buffer{}
	if opts.NoXMLTag != nil && !*opts.NoXMLTag {
		fmt.Fprint(out, `<?xml version="1.0" encoding="utf-8"?>`)
	}
	w, h := svg.FormatFloat(page.Width), svg.FormatFloat(page.Height)
	fmt.Fprintf(out,
		`<svg class="texmath-doc" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" version="1.1" viewBox="0 0 %s %s" width="%spt" height="%spt">`,
		w, h, w, h,
	)
	if r.defs.Len() > 0 {
		fmt.Fprintf(out, `<defs>%s</defs>`, r.defs.String())
	}
	fmt.Fprintf(out, `<g class="%s" fill="%s">%s</g></svg>`, r.hash, fill, r.buf.String())
	return out.Bytes(), nil
}

func (r *renderer) glyph(g *tmtarget.Glyph) {
	x, y := svg.FormatFloat(g.X), svg.FormatFloat(g.Y)
	if id, ok := r.define(g); ok {
		fmt.Fprintf(r.buf, `<use xlink:href="#%s" x="%s" y="%s"/>`, id, x, y)
		return
	}

	family := "serif"
	style := ""
	if g.Face != nil {
		info := g.Face.Info()
		family = info.Family
		if info.Variant.Style == tmfonts.FONT_STYLE_ITALIC {
			style += ` font-style="italic"`
		}
		if info.Variant.Weight != tmfonts.FONT_WEIGHT_REGULAR {
			style += fmt.Sprintf(` font-weight="%d"`, info.Variant.Weight)
		}
	}
	fmt.Fprintf(r.buf, `<text x="%s" y="%s" font-family="%s" font-size="%s"%s>%s</text>`,
		x, y, svg.EscapeText(family), svg.FormatFloat(g.Size), style, svg.EscapeText(string(g.Rune)),
	)
}

// define adds the outline of g to the defs once per face, rune and size.
func (r *renderer) define(g *tmtarget.Glyph) (string, bool) {
	if g.Face == nil {
		return "", false
	}
	k := glyphKey{face: g.Face, r: g.Rune, size: g.Size}
	if id, ok := r.ids[k]; ok {
		return id, id != ""
	}
	segs, ok := g.Face.Outline(g.Rune, g.Size)
	if !ok {
		r.ids[k] = ""
		return "", false
	}
	id := fmt.Sprintf("%s-g%d", r.hash, len(r.ids))
	r.ids[k] = id
	fmt.Fprintf(r.defs, `<path id="%s" d="%s"/>`, id, pathData(segs))
	return id, true
}

func (r *renderer) rule(rule *tmtarget.Rule) {
	fmt.Fprintf(r.buf, `<rect x="%s" y="%s" width="%s" height="%s"/>`,
		svg.FormatFloat(rule.X), svg.FormatFloat(rule.Y),
		svg.FormatFloat(rule.Width), svg.FormatFloat(rule.Height),
	)
}

func pathData(segs sfnt.Segments) string {
	pc := svg.NewPathContext(0, 0, 1)
	f := func(v int32) float64 { return float64(v) / 64 }
	for _, s := range segs {
		a := s.Args
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if !pc.Empty() {
				pc.Z()
			}
			pc.StartAt(f(int32(a[0].X)), f(int32(a[0].Y)))
		case sfnt.SegmentOpLineTo:
			pc.L(f(int32(a[0].X)), f(int32(a[0].Y)))
		case sfnt.SegmentOpQuadTo:
			pc.Q(f(int32(a[0].X)), f(int32(a[0].Y)), f(int32(a[1].X)), f(int32(a[1].Y)))
		case sfnt.SegmentOpCubeTo:
			pc.C(f(int32(a[0].X)), f(int32(a[0].Y)), f(int32(a[1].X)), f(int32(a[1].Y)), f(int32(a[2].X)), f(int32(a[2].Y)))
		}
	}
	if !pc.Empty() {
		pc.Z()
	}
	return pc.PathData()
}

// pageHash names the page so that several SVGs inlined in one HTML document keep
// distinct ids.
func pageHash(page *tmtarget.Page) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%v %v", page.Width, page.Height)
	for _, it := range page.Items {
		switch it := it.(type) {
		case *tmtarget.Glyph:
			fmt.Fprintf(h, "g %v %v %v %d %s", it.X, it.Y, it.Size, it.Rune, it.FontName)
		case *tmtarget.Rule:
			fmt.Fprintf(h, "r %v %v %v %v", it.X, it.Y, it.Width, it.Height)
		}
	}
	return fmt.Sprintf("tm-%08x", h.Sum32())
}
