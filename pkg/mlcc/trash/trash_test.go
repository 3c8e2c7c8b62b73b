package trash

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveToTrash_FallsBackToBackup(t *testing.T) {
	// no gio, trash-put or osascript on PATH
	t.Setenv("PATH", "")

	dir := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("FROM scratch"), 0o644))

	res, err := MoveToTrash(dir)
	require.NoError(t, err)
	assert.Equal(t, MethodBackup, res.Method)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(filepath.Join(res.Backup, "Dockerfile"))
	require.NoError(t, err)
	assert.Equal(t, "FROM scratch", string(data))
}

func TestMoveToTrash_NonexistentPath(t *testing.T) {
	_, err := MoveToTrash(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestBackup_AvoidsCollisions(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	first := filepath.Join(root, "out")
	require.NoError(t, os.Mkdir(first, 0o755))
	res1, err := backup(first, now)
	require.NoError(t, err)
	assert.Equal(t, first+".bak-20240501-100000", res1.Backup)

	require.NoError(t, os.Mkdir(first, 0o755))
	res2, err := backup(first, now)
	require.NoError(t, err)
	assert.Equal(t, first+".bak-20240501-100000-1", res2.Backup)

	assert.DirExists(t, res1.Backup)
	assert.DirExists(t, res2.Backup)
}
