package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x: 1\n"), 0o644))
}

func TestLookup_FirstDirectoryWins(t *testing.T) {
	// Arrange
	studio := t.TempDir()
	project := t.TempDir()
	writeFile(t, filepath.Join(studio, "publish.yml"))
	writeFile(t, filepath.Join(project, "publish.yaml"))

	// Act
	path, err := Lookup([]string{project, studio}, "publish", ".yml", ".yaml")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(project, "publish.yaml"), path)
}

func TestLookup_ExplicitExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.yml"))

	path, err := Lookup([]string{dir}, "base.yml", ".yml", ".yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "base.yml"), path)
}

func TestLookup_NotFound(t *testing.T) {
	_, err := Lookup([]string{t.TempDir()}, "missing", ".yml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestListNames(t *testing.T) {
	studio := t.TempDir()
	project := t.TempDir()
	writeFile(t, filepath.Join(studio, "publish.yml"))
	writeFile(t, filepath.Join(studio, "lighting", "render.yaml"))
	writeFile(t, filepath.Join(project, "publish.yml"))
	writeFile(t, filepath.Join(project, "notes.txt"))

	names, err := ListNames([]string{project, studio, filepath.Join(studio, "missing")}, ".yml", ".yaml")

	require.NoError(t, err)
	assert.Equal(t, []string{"lighting/render", "publish"}, names)
}
