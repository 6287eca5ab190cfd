// asset.go - Helfer fuer gebuendelte Modell-Assets
//
// Dieses Modul enthaelt:
// - Path: Kopiert ein Asset ins Cache-Verzeichnis und gibt den Pfad zurueck
// - Bytes: Gibt die Rohbytes eines Assets zurueck
//
// Assets liegen unter envconfig.AssetDir und werden unter einem
// Content-Digest im Cache abgelegt, damit wiederholte Aufrufe dieselbe
// Kopie wiederverwenden. Das Kopieren ist atomar: erst in eine temporaere
// Datei mit UUID-Suffix, dann Rename.
package asset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/JoHorni/litert/envconfig"
)

// Path stellt das benannte Asset als Datei im Cache bereit und gibt den
// absoluten Pfad der Kopie zurueck
func Path(name string) (string, error) {
	src := filepath.Join(envconfig.AssetDir(), name)

	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("reading asset %q: %w", name, err)
	}

	digest := sha256.Sum256(data)

	cacheDir := envconfig.CacheDir()
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}

	dst := filepath.Join(cacheDir,
		fmt.Sprintf("sha256-%s%s", hex.EncodeToString(digest[:]), filepath.Ext(name)))

	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	}

	tmp := dst + "-" + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("writing asset copy: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return "", fmt.Errorf("placing asset copy: %w", err)
	}

	slog.Debug("asset cached", "name", name, "path", dst, "size", len(data))
	return dst, nil
}

// Bytes gibt die Rohbytes des benannten Assets zurueck
func Bytes(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(envconfig.AssetDir(), name))
	if err != nil {
		return nil, fmt.Errorf("reading asset %q: %w", name, err)
	}

	return data, nil
}
