// config.go - Konfigurationsfunktionen fuer litert
//
// Dieses Modul enthaelt:
// - LogLevel: Gibt Log-Level zurueck (LITERT_DEBUG)
// - CacheDir: Gibt Cache-Verzeichnis zurueck (LITERT_CACHE)
// - AssetDir: Gibt Asset-Verzeichnis zurueck (LITERT_ASSETS)
// - NumThreads: Gibt Default-Threadanzahl zurueck (LITERT_NUM_THREADS)
// - Var: Environment-Variablen-Zugriff
// - EnvVar/AsMap: Export fuer die CLI-Dokumentation
package envconfig

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via LITERT_DEBUG (z.B. LITERT_DEBUG=1)
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("LITERT_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// CacheDir gibt das Verzeichnis fuer entpackte Modell-Assets zurueck
// Konfigurierbar via LITERT_CACHE
// Default: $HOME/.litert/cache
func CacheDir() string {
	if s := Var("LITERT_CACHE"); s != "" {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	return filepath.Join(home, ".litert", "cache")
}

// AssetDir gibt das Verzeichnis der gebuendelten Assets zurueck
// Konfigurierbar via LITERT_ASSETS
// Default: Arbeitsverzeichnis + "assets"
func AssetDir() string {
	if s := Var("LITERT_ASSETS"); s != "" {
		return s
	}

	return "assets"
}

// NumThreads gibt die Default-Threadanzahl fuer einen Graph-Durchlauf zurueck
// Konfigurierbar via LITERT_NUM_THREADS
// Default: GOMAXPROCS
func NumThreads() int {
	if s := Var("LITERT_NUM_THREADS"); s != "" {
		if n, err := strconv.Atoi(s); err != nil || n <= 0 {
			slog.Warn("invalid environment variable, using default", "key", "LITERT_NUM_THREADS", "value", s)
		} else {
			return n
		}
	}

	return runtime.GOMAXPROCS(0)
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"LITERT_DEBUG":       {"LITERT_DEBUG", LogLevel(), "Show additional debug information (e.g. LITERT_DEBUG=1)"},
		"LITERT_CACHE":       {"LITERT_CACHE", CacheDir(), "The path to the asset cache directory"},
		"LITERT_ASSETS":      {"LITERT_ASSETS", AssetDir(), "The path to the bundled asset directory"},
		"LITERT_NUM_THREADS": {"LITERT_NUM_THREADS", NumThreads(), "Worker threads per graph invocation (default: GOMAXPROCS)"},
	}
}
