// tmfonts holds the font registry used to draw typeset glyphs.
//
// A Catalog pairs a Book (font metadata, searchable by family and variant) with the
// decoded faces. Book.Info(i) always describes Faces[i].
package tmfonts

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

type FontStyle string
type FontWeight int

const (
	FONT_STYLE_NORMAL FontStyle = "normal"
	FONT_STYLE_ITALIC FontStyle = "italic"

	FONT_WEIGHT_REGULAR FontWeight = 400
	FONT_WEIGHT_MEDIUM  FontWeight = 500
	FONT_WEIGHT_BOLD    FontWeight = 700
)

type Variant struct {
	Style  FontStyle
	Weight FontWeight
}

var Regular = Variant{Style: FONT_STYLE_NORMAL, Weight: FONT_WEIGHT_REGULAR}

type FontInfo struct {
	Family    string
	Variant   Variant
	Monospace bool
}

func (fi FontInfo) String() string {
	return fmt.Sprintf("%s %s %d", fi.Family, fi.Variant.Style, fi.Variant.Weight)
}

// Book indexes font metadata by position.
type Book struct {
	infos []FontInfo
}

func (b *Book) push(fi FontInfo) {
	b.infos = append(b.infos, fi)
}

func (b *Book) Len() int {
	return len(b.infos)
}

func (b *Book) Info(i int) (FontInfo, bool) {
	if i < 0 || i >= len(b.infos) {
		return FontInfo{}, false
	}
	return b.infos[i], true
}

// Select returns the index of the face of the given family closest to v.
// Families match case insensitively. An exact style match always wins over a
// closer weight.
func (b *Book) Select(family string, v Variant) (int, bool) {
	best := -1
	bestScore := 0
	for i, fi := range b.infos {
		if !strings.EqualFold(fi.Family, family) {
			continue
		}
		score := int(fi.Variant.Weight - v.Weight)
		if score < 0 {
			score = -score
		}
		if fi.Variant.Style != v.Style {
			score += 10000
		}
		if best == -1 || score < bestScore {
			best = i
			bestScore = score
		}
	}
	return best, best != -1
}

// Face is one decoded font face. It is immutable and safe for concurrent use.
type Face struct {
	info FontInfo
	font *sfnt.Font
	bufs *sync.Pool
}

func (f *Face) Info() FontInfo {
	return f.info
}

func (f *Face) buffer() *sfnt.Buffer {
	return f.bufs.Get().(*sfnt.Buffer)
}

func (f *Face) HasGlyph(r rune) bool {
	b := f.buffer()
	defer f.bufs.Put(b)
	gi, err := f.font.GlyphIndex(b, r)
	return err == nil && gi != 0
}

// Outline returns the outline of r drawn at size points, with the origin on the
// baseline and y growing downward. It returns false when the face has no glyph for r.
func (f *Face) Outline(r rune, size float64) (sfnt.Segments, bool) {
	b := f.buffer()
	defer f.bufs.Put(b)
	gi, err := f.font.GlyphIndex(b, r)
	if err != nil || gi == 0 {
		return nil, false
	}
	segs, err := f.font.LoadGlyph(b, gi, fixed.Int26_6(size*64), nil)
	if err != nil {
		return nil, false
	}
	// segs aliases b, which goes back to the pool.
	out := make(sfnt.Segments, len(segs))
	copy(out, segs)
	return out, true
}

// Advance returns the horizontal advance of r at size points.
func (f *Face) Advance(r rune, size float64) (float64, bool) {
	b := f.buffer()
	defer f.bufs.Put(b)
	gi, err := f.font.GlyphIndex(b, r)
	if err != nil || gi == 0 {
		return 0, false
	}
	adv, err := f.font.GlyphAdvance(b, gi, fixed.Int26_6(size*64), font.HintingNone)
	if err != nil {
		return 0, false
	}
	return float64(adv) / 64, true
}

type Catalog struct {
	Book  *Book
	Faces []*Face
}

// Font returns the face at index i.
func (c *Catalog) Font(i int) (*Face, bool) {
	if i < 0 || i >= len(c.Faces) {
		return nil, false
	}
	return c.Faces[i], true
}

// Load decodes every face of every blob. A blob may be a single font or a collection.
func Load(blobs ...[]byte) (*Catalog, error) {
	c := &Catalog{Book: &Book{}}
	var b sfnt.Buffer
	for i, blob := range blobs {
		coll, err := sfnt.ParseCollection(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font %d: %w", i, err)
		}
		for j := 0; j < coll.NumFonts(); j++ {
			f, err := coll.Font(j)
			if err != nil {
				return nil, fmt.Errorf("failed to parse face %d of font %d: %w", j, i, err)
			}
			info, err := describe(&b, f)
			if err != nil {
				return nil, fmt.Errorf("failed to describe face %d of font %d: %w", j, i, err)
			}
			c.Book.push(info)
			c.Faces = append(c.Faces, &Face{
				info: info,
				font: f,
				bufs: &sync.Pool{New: func() interface{} { return new(sfnt.Buffer) }},
			})
		}
	}
	return c, nil
}

func describe(b *sfnt.Buffer, f *sfnt.Font) (FontInfo, error) {
	family, err := f.Name(b, sfnt.NameIDFamily)
	if err != nil {
		return FontInfo{}, err
	}
	// Missing subfamily names are common, they mean Regular.
	sub, _ := f.Name(b, sfnt.NameIDSubfamily)
	return FontInfo{
		Family:    family,
		Variant:   parseVariant(family + " " + sub),
		Monospace: strings.Contains(strings.ToLower(family), "mono"),
	}, nil
}

func parseVariant(s string) Variant {
	s = strings.ToLower(s)
	v := Regular
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		v.Style = FONT_STYLE_ITALIC
	}
	switch {
	case strings.Contains(s, "bold"):
		v.Weight = FONT_WEIGHT_BOLD
	case strings.Contains(s, "medium"):
		v.Weight = FONT_WEIGHT_MEDIUM
	}
	return v
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the process wide catalog of the embedded fonts, loading it on first use.
// Embedded fonts failing to parse is a packaging defect and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(Embedded()...)
		if err != nil {
			panic(fmt.Sprintf("failed to load embedded fonts: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
