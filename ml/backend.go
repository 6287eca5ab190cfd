// backend.go - Backend-Interface und Registrierung fuer Graph-Ausfuehrung
// Dieses Modul definiert das Backend-Interface und die Backend-Factory-Funktionen.
package ml

import (
	"context"
	"fmt"

	"github.com/JoHorni/litert/fs/lgf"
)

// Backend represents an execution backend for a decoded LGF graph. The
// binding layer never reaches past this interface; to it the backend is an
// opaque execution context.
type Backend interface {
	// Close frees all memory associated with this backend
	Close()

	// Allocate binds concrete buffers for all graph tensors based on the
	// current input shapes and propagates shapes through the graph.
	Allocate() error

	// Forward runs one blocking graph pass. Requires a prior Allocate.
	Forward(ctx context.Context) error

	// Resize changes the shape of the given graph input and drops any
	// buffers bound by a previous Allocate.
	Resize(input int, shape []int32) error

	// Inputs and Outputs return the graph boundary tensors in declared
	// order. The slices are stable for the lifetime of the backend.
	Inputs() []*Tensor
	Outputs() []*Tensor
}

// Tensor ist ein Backend-Tensor mit gebundenem Puffer.
// Data ist nil solange keine Allokation stattgefunden hat.
type Tensor struct {
	Name  string
	Kind  lgf.TensorKind
	Shape []int32
	Data  []byte
}

// Elements gibt die Gesamtanzahl der Elemente zurueck
func (t *Tensor) Elements() int {
	n := 1
	for _, d := range t.Shape {
		n *= int(d)
	}
	return n
}

// Size gibt die Puffergroesse in Bytes zurueck
func (t *Tensor) Size() int {
	return t.Elements() * int(t.Kind.TypeSize())
}

// BackendParams controls how the backend executes graphs
type BackendParams struct {
	// NumThreads sets the number of worker goroutines for one graph pass
	NumThreads int
}

var backends = make(map[string]func(*lgf.Model, BackendParams) (Backend, error))

// RegisterBackend registers a backend factory function.
func RegisterBackend(name string, f func(*lgf.Model, BackendParams) (Backend, error)) {
	if _, ok := backends[name]; ok {
		panic("backend: backend already registered")
	}

	backends[name] = f
}

// NewBackend creates a new backend instance for the given decoded model.
func NewBackend(model *lgf.Model, params BackendParams) (Backend, error) {
	if backend, ok := backends["ref"]; ok {
		return backend(model, params)
	}

	return nil, fmt.Errorf("unsupported backend")
}
