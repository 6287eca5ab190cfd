// asset_test.go - Tests fuer die Asset-Helfer
package asset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupDirs legt Asset- und Cache-Verzeichnis fuer den Test um
func setupDirs(t *testing.T) (assetDir, cacheDir string) {
	t.Helper()

	assetDir = t.TempDir()
	cacheDir = t.TempDir()
	t.Setenv("LITERT_ASSETS", assetDir)
	t.Setenv("LITERT_CACHE", cacheDir)
	return assetDir, cacheDir
}

func TestPath(t *testing.T) {
	assetDir, cacheDir := setupDirs(t)

	content := []byte("not really a model")
	require.NoError(t, os.WriteFile(filepath.Join(assetDir, "tiny.lgf"), content, 0o644))

	path, err := Path("tiny.lgf")
	require.NoError(t, err)
	assert.Equal(t, cacheDir, filepath.Dir(path))
	assert.Equal(t, ".lgf", filepath.Ext(path))

	copied, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, copied)

	// Wiederholte Aufrufe liefern dieselbe Kopie
	again, err := Path("tiny.lgf")
	require.NoError(t, err)
	assert.Equal(t, path, again)

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files may survive in the cache")
}

func TestPathMissingAsset(t *testing.T) {
	setupDirs(t)

	_, err := Path("absent.lgf")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBytes(t *testing.T) {
	assetDir, _ := setupDirs(t)

	content := []byte{1, 2, 3}
	require.NoError(t, os.WriteFile(filepath.Join(assetDir, "blob.bin"), content, 0o644))

	data, err := Bytes("blob.bin")
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestBytesMissingAsset(t *testing.T) {
	setupDirs(t)

	_, err := Bytes("absent.bin")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
