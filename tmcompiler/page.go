package tmcompiler

import (
	"bytes"
	"fmt"
	"image/color"

	"star-tex.org/x/tex/dvi"

	"oss.terrastruct.com/texmath/tmtarget"
)

var (
	_ dvi.Renderer = (*pageRenderer)(nil)
	_ dvi.Handler  = (*pageRenderer)(nil)
)

var paperSizePrefix = []byte("papersize=")

// pageRenderer collects the pages run by a dvi.Machine. Positions arrive in DVI units
// and are stored in points with the magnification applied.
type pageRenderer struct {
	fm *fontMap

	pre  dvi.CmdPre
	post dvi.CmdPost

	doc  *tmtarget.Document
	page *tmtarget.Page
	err  error
}

func newPageRenderer(fm *fontMap) *pageRenderer {
	return &pageRenderer{
		fm:  fm,
		doc: &tmtarget.Document{},
	}
}

func (pr *pageRenderer) setErr(err error) {
	if pr.err == nil {
		pr.err = err
	}
}

// points converts DVI units to points. num/den is the length of a DVI unit in units of
// 1e-7 meters.
func (pr *pageRenderer) points(v int32) float64 {
	meters := float64(v) * float64(pr.pre.Num) / float64(pr.pre.Den) * 1e-7
	return meters / 0.0254 * 72 * float64(pr.pre.Mag) / 1000
}

func (pr *pageRenderer) Init(pre *dvi.CmdPre, post *dvi.CmdPost) {
	pr.pre = *pre
	pr.post = *post
}

func (pr *pageRenderer) BOP(*dvi.CmdBOP) {
	pr.page = &tmtarget.Page{
		Width:  pr.points(int32(pr.post.Width)),
		Height: pr.points(int32(pr.post.Height)),
	}
}

func (pr *pageRenderer) EOP() {
	if pr.page == nil {
		return
	}
	pr.doc.Pages = append(pr.doc.Pages, pr.page)
	pr.page = nil
}

func (pr *pageRenderer) DrawGlyph(x, y int32, font dvi.Font, glyph rune, _ color.Color) {
	w, _, _, ok := font.Metrics().Box(glyph)
	if !ok {
		pr.setErr(fmt.Errorf("font %q has no character %d", font.Name(), glyph))
		return
	}
	// The width is in design size units with 20 fractional bits.
	adv := int32((int64(int32(w)) * int64(int32(font.Size()))) >> 20)
	pr.glyph(font.Name(), int32(font.Size()), int32(glyph), x, y, adv)
}

func (pr *pageRenderer) glyph(name string, size, code, x, y, adv int32) {
	if pr.page == nil {
		pr.setErr(fmt.Errorf("character %d outside of a page", code))
		return
	}
	rf := pr.fm.resolve(name)
	r := rf.rune(code)
	if r == 0 {
		return
	}
	pr.page.Items = append(pr.page.Items, &tmtarget.Glyph{
		X:        pr.points(x),
		Y:        pr.points(y),
		Size:     pr.points(size),
		Advance:  pr.points(adv),
		Rune:     r,
		Face:     rf.face,
		FontName: name,
		Code:     code,
	})
}

// DrawRule draws a rule whose bottom left corner is at (x, y).
func (pr *pageRenderer) DrawRule(x, y, w, h int32, _ color.Color) {
	if pr.page == nil || w <= 0 || h <= 0 {
		return
	}
	pr.page.Items = append(pr.page.Items, &tmtarget.Rule{
		X:      pr.points(x),
		Y:      pr.points(y - h),
		Width:  pr.points(w),
		Height: pr.points(h),
	})
}

// Handle sizes the current page from a papersize special.
func (pr *pageRenderer) Handle(p []byte) error {
	if !bytes.HasPrefix(p, paperSizePrefix) {
		return dvi.ErrSkipHandler
	}
	if pr.page == nil {
		return nil
	}
	w, h, ok := parsePaperSize(string(p[len(paperSizePrefix):]))
	if !ok {
		return nil
	}
	pr.page.Width = pr.points(w)
	pr.page.Height = pr.points(h)
	return nil
}
