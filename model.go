// model.go - Model-Handle und Lifecycle
//
// Dieses Modul enthaelt:
// - Model: Handle auf einen dekodierten, unveraenderlichen Graphen
// - NewModelFromFile/NewModelFromBuffer: Konstruktion
// - Delete: Explizite Freigabe mit Double-Free-Guard
package litert

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JoHorni/litert/fs/lgf"
)

// Model haelt einen dekodierten Graphen. Ein Model ist nach der Konstruktion
// unveraenderlich und kann beliebig viele Interpreter speisen; es wird von
// Interpretern referenziert, nicht besessen.
type Model struct {
	graph *lgf.Model

	deleted bool
}

// NewModelFromFile laedt ein Modell aus einer LGF-Datei.
// Fehlende, abgeschnittene oder anderweitig kaputte Dateien melden
// ErrInvalidArgument.
func NewModelFromFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	defer f.Close()

	return newModel(f)
}

// NewModelFromBuffer laedt ein Modell aus einem Byte-Puffer.
// Gleiche Fehlersemantik wie NewModelFromFile.
func NewModelFromBuffer(data []byte) (*Model, error) {
	return newModel(bytes.NewReader(data))
}

func newModel(rs io.ReadSeeker) (*Model, error) {
	graph, err := lgf.Decode(rs)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding model: %v", ErrInvalidArgument, err)
	}

	slog.Debug("model loaded",
		"name", graph.KV().Name(),
		"tensors", len(graph.Tensors()),
		"ops", len(graph.Ops()))

	return &Model{graph: graph}, nil
}

// Delete gibt das Modell explizit frei.
// Ein zweites Delete meldet ErrInvalidState.
func (m *Model) Delete() error {
	if m.deleted {
		return fmt.Errorf("%w: model already deleted", ErrInvalidState)
	}

	m.deleted = true
	m.graph = nil
	return nil
}
