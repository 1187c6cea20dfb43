package devenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	path, err := ResolvePath("cache.db")
	require.NoError(t, err)
	require.Equal(t, "cache.db", path)

	root, err := GetWorkspaceRoot()
	require.NoError(t, err)

	path, err = ResolvePath("<dev_state>/soc/cache.db")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dev", ".state", "soc", "cache.db"), path)

	info, err := os.Stat(filepath.Join(root, "dev", ".state"))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestIsWorkspaceRoot(t *testing.T) {
	dir := t.TempDir()
	require.False(t, isWorkspaceRoot(dir))

	err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module other\n\ngo 1.22\n"), 0600)
	require.NoError(t, err)
	require.False(t, isWorkspaceRoot(dir))

	err = os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module course-api\n\ngo 1.22\n"), 0600)
	require.NoError(t, err)
	require.True(t, isWorkspaceRoot(dir))
}
