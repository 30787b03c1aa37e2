package tmworld

import (
	"errors"
	math_rand "math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/diff"
	"oss.terrastruct.com/xrand"

	"oss.terrastruct.com/texmath/tmfonts"
)

func TestMathWorldSource(t *testing.T) {
	t.Parallel()

	w := NewMathWorld(`x^2+y^2=z^2`, tmfonts.Default())

	src, err := w.Source(w.Main())
	require.NoError(t, err)
	assert.Equal(t, w.Main(), src.ID())
	diff.AssertStringEq(t, `\autopage{0.5em}
\textsize{16pt}
$x^2+y^2=z^2$`, src.Text())
	assert.Equal(t, MAIN_PATH, w.Main().Path())
}

func TestMathWorldNoEscaping(t *testing.T) {
	t.Parallel()

	expr := `\frac{1}{0`
	w := NewMathWorld(expr, tmfonts.Default())
	src, err := w.Source(w.Main())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(src.Text(), "$"+expr+"$"))
}

func TestMathWorldRandomExpr(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		expr := xrand.String(math_rand.Intn(99), nil)
		t.Logf("testing: %q", expr)

		w := NewMathWorld(expr, tmfonts.Default())
		src, err := w.Source(w.Main())
		require.NoError(t, err)

		text := strings.TrimPrefix(src.Text(), "\\autopage{0.5em}\n\\textsize{16pt}\n")
		err = diff.Runes("$"+expr+"$", text)
		assert.NoError(t, err)
	}
}

func TestMathWorldSourceNotFound(t *testing.T) {
	t.Parallel()

	w := NewMathWorld(`a`, tmfonts.Default())
	other := NewMathWorld(`a`, tmfonts.Default())

	ids := []FileID{
		NewFileID(MAIN_PATH),
		NewFileID("other.tex"),
		NewDetachedID(MAIN_PATH),
		other.Main(),
	}
	for _, id := range ids {
		assert.NotEqual(t, w.Main(), id)
		src, err := w.Source(id)
		assert.Nil(t, src)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))

		var ferr *FileError
		require.True(t, errors.As(err, &ferr))
		assert.Equal(t, id.Path(), ferr.Path)
	}

	_, err := w.Source(NewFileID("chapters/one.tex"))
	assert.EqualError(t, err, "file not found (searched at chapters/one.tex)")
}

func TestMathWorldFile(t *testing.T) {
	t.Parallel()

	w := NewMathWorld(`a`, tmfonts.Default())
	for _, id := range []FileID{w.Main(), NewFileID("logo.png")} {
		b, err := w.File(id)
		assert.Nil(t, b)
		assert.True(t, errors.Is(err, ErrNotFound))
	}
}

func TestMathWorldFont(t *testing.T) {
	t.Parallel()

	c := tmfonts.Default()
	w := NewMathWorld(`a`, c)
	assert.Same(t, c.Book, w.Book())

	for i := 0; i < w.Book().Len(); i++ {
		f, ok := w.Font(i)
		require.True(t, ok)
		assert.Same(t, c.Faces[i], f)
	}
	for _, i := range []int{-1, w.Book().Len(), 1 << 20} {
		f, ok := w.Font(i)
		assert.False(t, ok)
		assert.Nil(t, f)
	}
}

func TestMathWorldToday(t *testing.T) {
	t.Parallel()

	w := NewMathWorld(`a`, tmfonts.Default())
	offset := int64(2)
	for _, o := range []*int64{nil, &offset} {
		_, ok := w.Today(o)
		assert.False(t, ok)
	}
}

func TestLibraryFresh(t *testing.T) {
	t.Parallel()

	a := NewMathWorld(`a`, tmfonts.Default())
	b := NewMathWorld(`a`, tmfonts.Default())
	assert.NotSame(t, a.Library(), b.Library())
	assert.Equal(t, a.Library(), b.Library())
	assert.Contains(t, a.Library().Preamble, `\def\autopage`)
	assert.Contains(t, a.Library().Preamble, `\def\textsize`)
}

func TestDetachedIDsUnique(t *testing.T) {
	t.Parallel()

	a := NewDetachedID(MAIN_PATH)
	b := NewDetachedID(MAIN_PATH)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a.Path(), b.Path())
	assert.Equal(t, NewFileID("x.tex"), NewFileID("x.tex"))
}
