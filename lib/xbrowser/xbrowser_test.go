package xbrowser

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss.terrastruct.com/xos"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()

	env := xos.NewEnv([]string{"BROWSER=0"})
	assert.NoError(t, Open(context.Background(), env, "http://localhost:1"))
}

func TestOpenCommand(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	out := filepath.Join(t.TempDir(), "url")
	env := xos.NewEnv([]string{"BROWSER=echo >" + out})
	require.NoError(t, Open(context.Background(), env, "http://localhost:1/a b"))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1/a b\n", string(b))

	env = xos.NewEnv([]string{"BROWSER=false"})
	assert.Error(t, Open(context.Background(), env, "http://localhost:1"))
}
