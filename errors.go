// errors.go - Fehlerklassen der Binding-Schicht
// Alle Fehler dieser Bibliothek wrappen genau einen der beiden Sentinels und
// sind mit errors.Is pruefbar.
package litert

import "errors"

var (
	// ErrInvalidArgument meldet fehlerhafte Eingaben: fehlende oder
	// kaputte Modelldateien, unbekannte Tensor-Namen, falsche
	// Puffergroessen.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState meldet Operationen im falschen Lifecycle-Zustand:
	// doppeltes Delete, doppeltes AllocateTensors, Invoke oder
	// Datenzugriff ohne Allokation.
	ErrInvalidState = errors.New("invalid state")
)
