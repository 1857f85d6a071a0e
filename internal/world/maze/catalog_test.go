package maze

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(jsonMaze), 0o644))
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "spiral.yaml", "alpha.json", "notes.txt", ".hidden.json", "zigzag.yml")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	entries, err := Scan(dir)
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Name: "alpha", Path: filepath.Join(dir, "alpha.json")},
		{Name: "spiral", Path: filepath.Join(dir, "spiral.yaml")},
		{Name: "zigzag", Path: filepath.Join(dir, "zigzag.yml")},
	}, entries)
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Spiral.json")
	direct := filepath.Join(dir, "Spiral.json")

	got, err := Resolve(dir, direct)
	require.NoError(t, err)
	assert.Equal(t, direct, got, "an existing path is used as is")

	got, err = Resolve(dir, "spiral")
	require.NoError(t, err)
	assert.Equal(t, direct, got, "names match case-insensitively")

	_, err = Resolve(dir, "labyrinth")
	assert.Error(t, err)
}
