package tmcompiler

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"star-tex.org/x/tex/dvi"

	"oss.terrastruct.com/texmath/lib/log"
	"oss.terrastruct.com/texmath/tmfonts"
	"oss.terrastruct.com/texmath/tmtarget"
	"oss.terrastruct.com/texmath/tmworld"
)

func TestAssemble(t *testing.T) {
	t.Parallel()

	lib := &tmworld.Library{Preamble: "\\nonstopmode\n\\def\\a{b}\n"}
	j := assemble(lib, "one\ntwo", dateRegisters(tmworld.Datetime{}, false))

	lines := strings.Split(j.text, "\n")
	require.True(t, len(lines) > j.firstLine)
	assert.Equal(t, "one", lines[j.firstLine-1])
	assert.Equal(t, "two", lines[j.firstLine])
	assert.Equal(t, 2, j.lineCount)
	assert.Contains(t, j.text, `\year=0 \month=0 \day=0 \time=0`)
	assert.True(t, strings.HasSuffix(j.text, "\\unskip\\egroup\\shipmath\\end\n"))
}

func TestDateRegisters(t *testing.T) {
	t.Parallel()

	d := tmworld.Datetime{Year: 2024, Month: 2, Day: 29, Hour: 13, Minute: 5}
	assert.Equal(t, `\year=2024 \month=2 \day=29 \time=785 `, dateRegisters(d, true))
	assert.Equal(t, `\year=0 \month=0 \day=0 \time=0 `, dateRegisters(d, false))
}

func TestParsePaperSize(t *testing.T) {
	t.Parallel()

	w, h, ok := parsePaperSize("10.0pt,2.5pt")
	require.True(t, ok)
	assert.Equal(t, int32(10*65536), w)
	assert.Equal(t, int32(2.5*65536), h)

	for _, v := range []string{"", "10pt", "10pt,", "10in,2pt", "-1pt,2pt", "apt,2pt"} {
		_, _, ok := parsePaperSize(v)
		assert.False(t, ok, v)
	}
}

func TestLookupTeXFont(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		family  string
		variant tmfonts.Variant
		code    int32
		exp     rune
	}{
		{"cmr10", tmfonts.FAMILY_SANS, tmfonts.Regular, '+', '+'},
		{"cmmi7", tmfonts.FAMILY_SANS, italic, 0x0B, 'α'},
		{"cmmib10", tmfonts.FAMILY_SANS, boldItalic, 'x', 'x'},
		{"cmsy10", tmfonts.FAMILY_SANS, tmfonts.Regular, 0x00, '−'},
		{"cmsy5", tmfonts.FAMILY_SANS, tmfonts.Regular, 0x31, '∞'},
		{"cmex10", tmfonts.FAMILY_SANS, tmfonts.Regular, 0x50, '∑'},
		{"cmbx12", tmfonts.FAMILY_SANS, bold, 0x7B, '–'},
		{"cmtt10", tmfonts.FAMILY_MONO, tmfonts.Regular, 0x22, '"'},
		{"cmti10", tmfonts.FAMILY_SANS, italic, 0x0C, 'ﬁ'},
		{"CMR10", tmfonts.FAMILY_SANS, tmfonts.Regular, 0x00, 'Γ'},
		{"zzz12", tmfonts.FAMILY_SANS, tmfonts.Regular, 0x2211, '∑'},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tf := lookupTeXFont(tc.name)
			assert.Equal(t, tc.family, tf.family)
			assert.Equal(t, tc.variant, tf.variant)
			assert.Equal(t, tc.exp, tf.enc.rune(tc.code))
		})
	}
}

func TestEncodingOutOfRange(t *testing.T) {
	t.Parallel()

	assert.Equal(t, rune(200), ot1.rune(200))
	assert.Equal(t, rune(-1), oml.rune(-1))
	assert.Equal(t, rune(0), omx.rune(0x76))
}

func TestFontMap(t *testing.T) {
	t.Parallel()

	w := tmworld.NewMathWorld("x", tmfonts.Default())
	fm := newFontMap(w)

	rf := fm.resolve("cmmi10")
	require.NotNil(t, rf.face)
	assert.Equal(t, tmfonts.FONT_STYLE_ITALIC, rf.face.Info().Variant.Style)
	assert.Same(t, rf, fm.resolve("cmmi10"))

	mono := fm.resolve("cmtt10")
	require.NotNil(t, mono.face)
	assert.True(t, mono.face.Info().Monospace)
	assert.Equal(t, 'm', mono.rune('m'))

	// Construction pieces have no character.
	ex := fm.resolve("cmex10")
	assert.Equal(t, rune(0), ex.rune(0x76))
}

func TestFontMapEmptyCatalog(t *testing.T) {
	t.Parallel()

	catalog, err := tmfonts.Load()
	require.NoError(t, err)
	fm := newFontMap(tmworld.NewMathWorld("x", catalog))

	rf := fm.resolve("cmr10")
	assert.Nil(t, rf.face)
	assert.Equal(t, 'a', rf.rune('a'))
}

func TestPageRenderer(t *testing.T) {
	t.Parallel()

	w := tmworld.NewMathWorld("x", tmfonts.Default())
	pr := newPageRenderer(newFontMap(w))

	// TeX's DVI unit is the scaled point.
	sp := func(pt float64) int32 { return int32(pt * 65536) }
	bp := func(pt float64) float64 { return pt * 2 * 72 / 72.27 }

	pr.Init(
		&dvi.CmdPre{Num: 25400000, Den: 473628672, Mag: 2000},
		&dvi.CmdPost{Width: uint32(sp(100)), Height: uint32(sp(50))},
	)
	pr.BOP(&dvi.CmdBOP{})
	require.NoError(t, pr.Handle([]byte("papersize=12.0pt,9.0pt")))
	assert.True(t, errors.Is(pr.Handle([]byte("color push red")), dvi.ErrSkipHandler))
	pr.glyph("cmmi10", sp(10), 'x', sp(1), sp(8), sp(5.72))
	pr.glyph("cmex10", sp(10), 0x76, sp(2), sp(8), sp(8.89))
	pr.DrawRule(sp(1), sp(5), sp(4), sp(0.5), color.Black)
	pr.DrawRule(sp(1), sp(5), sp(4), 0, color.Black)
	pr.EOP()

	pr.BOP(&dvi.CmdBOP{})
	pr.EOP()

	require.NoError(t, pr.err)
	require.Len(t, pr.doc.Pages, 2)

	page := pr.doc.Pages[0]
	assert.InDelta(t, bp(12), page.Width, 1e-3)
	assert.InDelta(t, bp(9), page.Height, 1e-3)

	glyphs := page.Glyphs()
	require.Len(t, glyphs, 1)
	assert.Equal(t, 'x', glyphs[0].Rune)
	assert.Equal(t, "cmmi10", glyphs[0].FontName)
	assert.InDelta(t, bp(1), glyphs[0].X, 1e-3)
	assert.InDelta(t, bp(8), glyphs[0].Y, 1e-3)
	assert.InDelta(t, bp(10), glyphs[0].Size, 1e-3)
	assert.InDelta(t, bp(5.72), glyphs[0].Advance, 1e-3)
	assert.NotNil(t, glyphs[0].Face)

	rules := page.Rules()
	require.Len(t, rules, 1)
	assert.InDelta(t, bp(4.5), rules[0].Y, 1e-3)
	assert.InDelta(t, bp(4), rules[0].Width, 1e-3)

	// Without a papersize special the page takes the largest box.
	page = pr.doc.Pages[1]
	assert.InDelta(t, bp(100), page.Width, 1e-3)
	assert.InDelta(t, bp(50), page.Height, 1e-3)
}

func TestPageRendererOutsidePage(t *testing.T) {
	t.Parallel()

	pr := newPageRenderer(newFontMap(tmworld.NewMathWorld("x", tmfonts.Default())))
	pr.Init(&dvi.CmdPre{Num: 25400000, Den: 473628672, Mag: 1000}, &dvi.CmdPost{})
	require.NoError(t, pr.Handle([]byte("papersize=1pt,1pt")))
	pr.glyph("cmr10", 65536*10, 'a', 0, 0, 0)
	require.Error(t, pr.err)
	assert.Empty(t, pr.doc.Pages)
}

func TestConvertEmpty(t *testing.T) {
	t.Parallel()

	fm := newFontMap(tmworld.NewMathWorld("x", tmfonts.Default()))
	doc, err := convert(fm, nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Pages)

	_, err = convert(fm, []byte{1, 2, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read typeset output")
}

type brokenWorld struct {
	*tmworld.MathWorld
}

func (brokenWorld) Main() tmworld.FileID {
	return tmworld.NewFileID("missing.tex")
}

func TestCompileMissingSource(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	_, err := Compile(ctx, brokenWorld{tmworld.NewMathWorld("x", tmfonts.Default())})

	var ds Diagnostics
	require.True(t, errors.As(err, &ds))
	require.Len(t, ds, 1)
	assert.Equal(t, "file not found (searched at missing.tex)", ds.Error())
}

func TestCompile(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	doc, err := Compile(ctx, tmworld.NewMathWorld(`x^2+y^2=z^2`, tmfonts.Default()))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)

	page := doc.Pages[0]
	assert.True(t, page.Width > 0)
	assert.True(t, page.Height > 0)

	var runes []rune
	for _, g := range page.Glyphs() {
		runes = append(runes, g.Rune)
		assert.True(t, g.X >= 0 && g.X <= page.Width, "%c at %v", g.Rune, g.X)
		assert.True(t, g.Y >= 0 && g.Y <= page.Height, "%c at %v", g.Rune, g.Y)
	}
	assert.Equal(t, "x2+y2=z2", string(runes))
}

func TestCompileAdvances(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	doc, err := Compile(ctx, tmworld.NewMathWorld(`x^2+y^2=z^2\quad ABC+\sum_{i=1}^n i`, tmfonts.Default()))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)

	page := doc.Pages[0]
	glyphs := page.Glyphs()
	require.NotEmpty(t, glyphs)
	for _, g := range glyphs {
		assert.True(t, g.Advance > 0, "%c in %s", g.Rune, g.FontName)
		assert.True(t, g.X+g.Advance <= page.Width+1e-6, "%c in %s ends at %v past %v", g.Rune, g.FontName, g.X+g.Advance, page.Width)
	}

	// '+' of cmr10 is 7.77781pt wide, magnified to the 16pt text size.
	var plus *tmtarget.Glyph
	for _, g := range glyphs {
		if g.FontName == "cmr10" && g.Code == '+' {
			plus = g
			break
		}
	}
	require.NotNil(t, plus)
	assert.InDelta(t, 7.77781*1.6*72/72.27, plus.Advance, 1e-3)
}

func TestCompileUndefined(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	_, err := Compile(ctx, tmworld.NewMathWorld(`\foo`, tmfonts.Default()))

	var ds Diagnostics
	require.True(t, errors.As(err, &ds))
	require.NotEmpty(t, ds)
	assert.Equal(t, "Undefined control sequence.", ds[0].Message)
	assert.Equal(t, 3, ds[0].Line)
}

func TestCompileCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(log.WithTB(context.Background(), t, nil))
	cancel()
	_, err := Compile(ctx, tmworld.NewMathWorld("x", tmfonts.Default()))
	assert.True(t, errors.Is(err, context.Canceled))
}

var _ tmtarget.Item = &tmtarget.Glyph{}
