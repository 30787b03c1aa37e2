package xmain

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"
)

type nopWriteCloser struct {
	bytes.Buffer
	closed bool
}

func (w *nopWriteCloser) Close() error {
	w.closed = true
	return nil
}

func testState(t *testing.T, env []string, args ...string) (*State, *nopWriteCloser) {
	stdout := &nopWriteCloser{}
	ms := &State{
		Name:   "texmath",
		Stdin:  strings.NewReader("from stdin"),
		Stdout: stdout,
		Stderr: &nopWriteCloser{},
		Env:    xos.NewEnv(env),
		PWD:    t.TempDir(),
	}
	ms.Log = cmdlog.NewTB(ms.Env, t)
	ms.Opts = NewOpts(ms.Env, args)
	return ms, stdout
}

func TestOptsEnv(t *testing.T) {
	t.Parallel()

	ms, _ := testState(t, []string{"TM_FILL=red", "TM_WATCH=1"}, "--fill", "blue")
	fill := ms.Opts.String("TM_FILL", "fill", "", "", "fill")
	watch, err := ms.Opts.Bool("TM_WATCH", "watch", "w", false, "watch")
	require.NoError(t, err)
	debug, err := ms.Opts.Bool("TM_DEBUG", "debug", "d", false, "debug")
	require.NoError(t, err)
	require.NoError(t, ms.Opts.Flags.Parse(ms.Opts.Args))

	// Flags take precedence over the environment.
	assert.Equal(t, "blue", *fill)
	assert.True(t, *watch)
	assert.False(t, *debug)

	defaults := ms.Opts.Defaults()
	assert.Contains(t, defaults, "--fill")
	assert.Contains(t, defaults, "- $TM_FILL")
	assert.Contains(t, defaults, "- $TM_DEBUG")
}

func TestOptsBoolEnv(t *testing.T) {
	t.Parallel()

	ms, _ := testState(t, []string{"TM_A=true", "TM_B=0", "TM_C=false"})
	a, err := ms.Opts.Bool("TM_A", "a", "", false, "a")
	require.NoError(t, err)
	b, err := ms.Opts.Bool("TM_B", "b", "", true, "b")
	require.NoError(t, err)
	c, err := ms.Opts.Bool("TM_C", "c", "", true, "c")
	require.NoError(t, err)
	d, err := ms.Opts.Bool("", "d", "", true, "d")
	require.NoError(t, err)
	require.NoError(t, ms.Opts.Flags.Parse(ms.Opts.Args))

	assert.True(t, *a)
	assert.False(t, *b)
	assert.False(t, *c)
	assert.True(t, *d)
	assert.NotContains(t, ms.Opts.Defaults(), "- $\n")
	assert.True(t, strings.HasSuffix(ms.Opts.Defaults(), "- $TM_C"))
}

func TestOptsInvalidBool(t *testing.T) {
	t.Parallel()

	ms, _ := testState(t, []string{"TM_WATCH=yes"})
	_, err := ms.Opts.Bool("TM_WATCH", "watch", "w", false, "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid environment variable TM_WATCH`)
}

func TestReadWritePath(t *testing.T) {
	t.Parallel()

	ms, stdout := testState(t, nil)

	b, err := ms.ReadPath("-")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", string(b))

	require.NoError(t, ms.WritePath("out.svg", []byte("<svg/>")))
	b, err = os.ReadFile(filepath.Join(ms.PWD, "out.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(b))

	b, err = ms.ReadPath("out.svg")
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(b))

	require.NoError(t, ms.WritePath("-", []byte("x")))
	assert.Equal(t, "x", stdout.String())
	assert.True(t, stdout.closed)
}

func TestHumanPath(t *testing.T) {
	t.Parallel()

	ms, _ := testState(t, []string{"HOME=/home/gopher"})
	ms.PWD = "/work/project"

	assert.Equal(t, "-", ms.HumanPath("-"))
	assert.Equal(t, "eq.tex", ms.HumanPath("eq.tex"))
	assert.Equal(t, filepath.Join("sub", "eq.tex"), ms.HumanPath("/work/project/sub/eq.tex"))
	assert.Equal(t, filepath.Join("~", "notes", "eq.tex"), ms.HumanPath("/home/gopher/notes/eq.tex"))
	assert.Equal(t, "/etc/eq.tex", ms.HumanPath("/etc/eq.tex"))
	assert.Equal(t, "/work/project/eq.tex", ms.AbsPath("eq.tex"))
}

func TestErrors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "exiting with code 2: no input", ExitErrorf(2, "no %s", "input").Error())
	assert.Equal(t, "exiting with code 1", ExitError{Code: 1}.Error())
	assert.Equal(t, "bad usage: too many arguments", UsageErrorf("too many %s", "arguments").Error())
}
