// options.go - Interpreter-Optionen
// Eine InterpreterOptions-Instanz ist eine reine Wertkonfiguration; sie wird
// bei der Interpreter-Konstruktion einmal konsumiert.
package litert

// InterpreterOptions konfiguriert die Interpreter-Konstruktion
type InterpreterOptions struct {
	numThreads int
}

// NewInterpreterOptions erstellt leere Optionen mit Default-Werten
func NewInterpreterOptions() *InterpreterOptions {
	return &InterpreterOptions{}
}

// SetNumThreads setzt die Worker-Anzahl fuer einen Graph-Durchlauf.
// Werte <= 0 bedeuten den Default aus LITERT_NUM_THREADS bzw. GOMAXPROCS.
func (o *InterpreterOptions) SetNumThreads(n int) {
	o.numThreads = n
}

// Delete gibt die Optionen frei. Der Aufruf ist erwartet, aber gefahrlos
// wiederholbar; Optionen besitzen keine eigene Ressource.
func (o *InterpreterOptions) Delete() error {
	return nil
}
