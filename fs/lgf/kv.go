// Package lgf - KV (Key-Value) Metadaten
//
// Dieses Modul enthaelt den KV-Typ und die generischen Getter:
// - KV: Map fuer LGF Key-Value Metadaten
// - String, Uint, Int, Bool: typisierte Getter mit Default-Wert
// - Ints, Strings: Array-Getter
// - Keys, Len: Iteration und Groesse
package lgf

import (
	"iter"
	"maps"
	"slices"
)

// KV repraesentiert LGF Key-Value Metadaten
type KV map[string]any

// Name gibt den Modell-Namen zurueck
func (kv KV) Name() string {
	return kv.String("general.name", "unknown")
}

// Description gibt die Modell-Beschreibung zurueck
func (kv KV) Description() string {
	return kv.String("general.description", "")
}

// Alignment gibt das Daten-Alignment zurueck
func (kv KV) Alignment() uint64 {
	return uint64(kv.Uint("general.alignment", 32))
}

// keyValue liest einen Wert mit Typ-Assertion und Default
func keyValue[T any](kv KV, key string, defaultValue T) (T, bool) {
	if v, ok := kv[key].(T); ok {
		return v, true
	}
	return defaultValue, false
}

// String gibt einen String-Wert zurueck
func (kv KV) String(key string, defaultValue ...string) string {
	val, _ := keyValue(kv, key, append(defaultValue, "")[0])
	return val
}

// Uint gibt einen uint32-Wert zurueck
func (kv KV) Uint(key string, defaultValue ...uint32) uint32 {
	val, _ := keyValue(kv, key, append(defaultValue, 0)[0])
	return val
}

// Int gibt einen int32-Wert zurueck
func (kv KV) Int(key string, defaultValue ...int32) int32 {
	val, _ := keyValue(kv, key, append(defaultValue, 0)[0])
	return val
}

// Uint64 gibt einen uint64-Wert zurueck
func (kv KV) Uint64(key string, defaultValue ...uint64) uint64 {
	val, _ := keyValue(kv, key, append(defaultValue, 0)[0])
	return val
}

// Float gibt einen float32-Wert zurueck
func (kv KV) Float(key string, defaultValue ...float32) float32 {
	val, _ := keyValue(kv, key, append(defaultValue, 0)[0])
	return val
}

// Bool gibt einen bool-Wert zurueck
func (kv KV) Bool(key string, defaultValue ...bool) bool {
	val, _ := keyValue(kv, key, append(defaultValue, false)[0])
	return val
}

// Ints gibt ein int32-Array zurueck (nil wenn nicht vorhanden)
func (kv KV) Ints(key string) []int32 {
	val, _ := keyValue[[]int32](kv, key, nil)
	return val
}

// Strings gibt ein String-Array zurueck (nil wenn nicht vorhanden)
func (kv KV) Strings(key string) []string {
	val, _ := keyValue[[]string](kv, key, nil)
	return val
}

// Keys gibt einen Iterator ueber alle Schluessel zurueck
func (kv KV) Keys() iter.Seq[string] {
	return maps.Keys(kv)
}

// SortedKeys gibt alle Schluessel sortiert zurueck
func (kv KV) SortedKeys() []string {
	return slices.Sorted(maps.Keys(kv))
}

// Len gibt die Anzahl der KV-Paare zurueck
func (kv KV) Len() int {
	return len(kv)
}
