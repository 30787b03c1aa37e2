package tmcompiler

import (
	"strings"

	"oss.terrastruct.com/texmath/lib/syncmap"
	"oss.terrastruct.com/texmath/tmfonts"
	"oss.terrastruct.com/texmath/tmworld"
)

// texFont says where the characters of a TeX font are drawn from.
type texFont struct {
	family  string
	variant tmfonts.Variant
	enc     *encoding
}

var (
	italic     = tmfonts.Variant{Style: tmfonts.FONT_STYLE_ITALIC, Weight: tmfonts.FONT_WEIGHT_REGULAR}
	bold       = tmfonts.Variant{Style: tmfonts.FONT_STYLE_NORMAL, Weight: tmfonts.FONT_WEIGHT_BOLD}
	boldItalic = tmfonts.Variant{Style: tmfonts.FONT_STYLE_ITALIC, Weight: tmfonts.FONT_WEIGHT_BOLD}
)

// texFonts is keyed by font name without its design size.
var texFonts = map[string]texFont{
	"cmr":    {tmfonts.FAMILY_SANS, tmfonts.Regular, ot1},
	"cmmi":   {tmfonts.FAMILY_SANS, italic, oml},
	"cmmib":  {tmfonts.FAMILY_SANS, boldItalic, oml},
	"cmsy":   {tmfonts.FAMILY_SANS, tmfonts.Regular, oms},
	"cmbsy":  {tmfonts.FAMILY_SANS, bold, oms},
	"cmex":   {tmfonts.FAMILY_SANS, tmfonts.Regular, omx},
	"cmbx":   {tmfonts.FAMILY_SANS, bold, ot1},
	"cmb":    {tmfonts.FAMILY_SANS, bold, ot1},
	"cmbxti": {tmfonts.FAMILY_SANS, boldItalic, ot1},
	"cmbxsl": {tmfonts.FAMILY_SANS, boldItalic, ot1},
	"cmti":   {tmfonts.FAMILY_SANS, italic, ot1},
	"cmsl":   {tmfonts.FAMILY_SANS, italic, ot1},
	"cmu":    {tmfonts.FAMILY_SANS, italic, ot1},
	"cmss":   {tmfonts.FAMILY_SANS, tmfonts.Regular, ot1},
	"cmssi":  {tmfonts.FAMILY_SANS, italic, ot1},
	"cmssbx": {tmfonts.FAMILY_SANS, bold, ot1},
	"cmtt":   {tmfonts.FAMILY_MONO, tmfonts.Regular, ot1tt},
	"cmitt":  {tmfonts.FAMILY_MONO, italic, ot1tt},
	"cmsltt": {tmfonts.FAMILY_MONO, italic, ot1tt},
	"cmcsc":  {tmfonts.FAMILY_SMALLCAPS, tmfonts.Regular, ot1},
}

// lookupTeXFont maps a TeX font name like cmmi10 to its catalog family and encoding.
// Unknown fonts are drawn from the regular face with codes taken as Unicode.
func lookupTeXFont(name string) texFont {
	base := strings.TrimRight(strings.ToLower(name), "0123456789")
	if tf, ok := texFonts[base]; ok {
		return tf
	}
	return texFont{family: tmfonts.FAMILY_SANS, variant: tmfonts.Regular}
}

type resolvedFont struct {
	texFont
	// face is nil when the world has no suitable font.
	face *tmfonts.Face
}

// rune returns the Unicode character for code, 0 when there is none.
func (rf *resolvedFont) rune(code int32) rune {
	return rf.enc.rune(code)
}

// fontMap resolves TeX fonts against the faces of one world.
type fontMap struct {
	w     tmworld.World
	fonts syncmap.SyncMap[string, *resolvedFont]
}

func newFontMap(w tmworld.World) *fontMap {
	return &fontMap{
		w:     w,
		fonts: syncmap.New[string, *resolvedFont](),
	}
}

func (m *fontMap) resolve(name string) *resolvedFont {
	return m.fonts.LoadOrCompute(name, func() *resolvedFont {
		rf := &resolvedFont{texFont: lookupTeXFont(name)}
		if i, ok := m.w.Book().Select(rf.family, rf.variant); ok {
			rf.face, _ = m.w.Font(i)
		} else if i, ok := m.w.Book().Select(tmfonts.FAMILY_SANS, tmfonts.Regular); ok {
			rf.face, _ = m.w.Font(i)
		}
		return rf
	})
}
