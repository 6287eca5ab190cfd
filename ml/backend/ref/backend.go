// backend.go - Referenz-CPU-Backend: Struktur, Allokation und Shape-Inferenz
//
// Dieses Modul enthaelt:
// - Backend: Zustand des Referenz-Backends
// - New: Konstruktion aus einem dekodierten LGF-Modell
// - Allocate: Shape-Propagation und Puffer-Bindung
// - Resize: Aenderung einer Eingangs-Shape (verwirft Allokation)
// Die eigentlichen Kernel liegen in compute.go.
package ref

import (
	"fmt"
	"log/slog"
	"runtime"
	"slices"

	"github.com/JoHorni/litert/fs/lgf"
	"github.com/JoHorni/litert/ml"
)

func init() {
	ml.RegisterBackend("ref", New)
}

// Backend fuehrt LGF-Graphen rein in Go aus
type Backend struct {
	model   *lgf.Model
	threads int

	// tensors haelt pro LGF-Tensor-Index genau einen Backend-Tensor.
	// Die Pointer bleiben ueber Allocate/Resize hinweg stabil, nur
	// Shape und Data aendern sich.
	tensors []*ml.Tensor

	inputs  []*ml.Tensor
	outputs []*ml.Tensor

	// weights markiert Tensors, deren Daten aus dem Container stammen
	weights map[*ml.Tensor]bool

	allocated bool
	closed    bool
}

// New erstellt ein Referenz-Backend fuer das gegebene Modell
func New(model *lgf.Model, params ml.BackendParams) (ml.Backend, error) {
	threads := params.NumThreads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	b := &Backend{
		model:   model,
		threads: threads,
		weights: make(map[*ml.Tensor]bool),
	}

	for _, info := range model.Tensors() {
		shape := make([]int32, len(info.Shape))
		for i, d := range info.Shape {
			shape[i] = int32(d)
		}

		t := &ml.Tensor{
			Name:  info.Name,
			Kind:  info.Kind,
			Shape: shape,
			Data:  info.Data,
		}
		if info.Flags&lgf.FlagWeights != 0 {
			b.weights[t] = true
		}
		b.tensors = append(b.tensors, t)
	}

	for _, i := range model.Inputs() {
		b.inputs = append(b.inputs, b.tensors[i])
	}
	for _, i := range model.Outputs() {
		b.outputs = append(b.outputs, b.tensors[i])
	}

	slog.Debug("ref backend created",
		"tensors", len(b.tensors), "ops", len(model.Ops()), "threads", threads)

	return b, nil
}

// Inputs gibt die Graph-Eingaenge in deklarierter Reihenfolge zurueck
func (b *Backend) Inputs() []*ml.Tensor {
	return b.inputs
}

// Outputs gibt die Graph-Ausgaenge in deklarierter Reihenfolge zurueck
func (b *Backend) Outputs() []*ml.Tensor {
	return b.outputs
}

// Close gibt alle Puffer frei
func (b *Backend) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.allocated = false

	for _, t := range b.tensors {
		t.Data = nil
	}
}

// Allocate propagiert Shapes durch den Graphen und bindet Puffer.
// Gewichts-Tensors behalten ihre geladenen Daten, Aktivierungs-Tensors
// bekommen frische, genullte Puffer.
func (b *Backend) Allocate() error {
	if b.closed {
		return fmt.Errorf("backend is closed")
	}

	if err := b.inferShapes(); err != nil {
		return err
	}

	for _, t := range b.tensors {
		if b.weights[t] {
			continue
		}
		t.Data = make([]byte, t.Size())
	}

	b.allocated = true
	return nil
}

// Resize setzt die Shape eines Graph-Eingangs und verwirft die Allokation
func (b *Backend) Resize(input int, shape []int32) error {
	if b.closed {
		return fmt.Errorf("backend is closed")
	}
	if input < 0 || input >= len(b.inputs) {
		return fmt.Errorf("input index %d out of range", input)
	}
	if len(shape) == 0 {
		return fmt.Errorf("empty shape")
	}
	for _, d := range shape {
		if d <= 0 {
			return fmt.Errorf("invalid dimension %d", d)
		}
	}

	b.inputs[input].Shape = slices.Clone(shape)

	// Alte Puffer sind ab jetzt ungueltig
	for _, t := range b.tensors {
		if !b.weights[t] {
			t.Data = nil
		}
	}

	b.allocated = false
	return nil
}

// inferShapes propagiert Shapes in Op-Reihenfolge durch den Graphen
func (b *Backend) inferShapes() error {
	for _, op := range b.model.Ops() {
		in := make([]*ml.Tensor, len(op.Inputs))
		for i, idx := range op.Inputs {
			in[i] = b.tensors[idx]
		}
		out := make([]*ml.Tensor, len(op.Outputs))
		for i, idx := range op.Outputs {
			out[i] = b.tensors[idx]
		}

		if err := inferOpShape(op.Code, in, out); err != nil {
			return fmt.Errorf("op %s: %w", op.Code, err)
		}
	}
	return nil
}

// inferOpShape prueft Operanden und setzt die Ausgangs-Shape eines Ops
func inferOpShape(code lgf.OpCode, in, out []*ml.Tensor) error {
	switch code {
	case lgf.OpIdentity, lgf.OpRelu, lgf.OpSoftmax:
		if len(in) != 1 || len(out) != 1 {
			return fmt.Errorf("want 1 input and 1 output, have %d and %d", len(in), len(out))
		}
		if out[0].Kind != in[0].Kind {
			return fmt.Errorf("kind mismatch: %s vs %s", in[0].Kind, out[0].Kind)
		}
		out[0].Shape = slices.Clone(in[0].Shape)

	case lgf.OpAdd, lgf.OpMul:
		if len(in) != 2 || len(out) != 1 {
			return fmt.Errorf("want 2 inputs and 1 output, have %d and %d", len(in), len(out))
		}
		if !slices.Equal(in[0].Shape, in[1].Shape) {
			return fmt.Errorf("shape mismatch: %v vs %v", in[0].Shape, in[1].Shape)
		}
		if in[0].Kind != in[1].Kind || out[0].Kind != in[0].Kind {
			return fmt.Errorf("kind mismatch")
		}
		out[0].Shape = slices.Clone(in[0].Shape)

	case lgf.OpReshape:
		if len(in) != 1 || len(out) != 1 {
			return fmt.Errorf("want 1 input and 1 output, have %d and %d", len(in), len(out))
		}
		if out[0].Kind != in[0].Kind {
			return fmt.Errorf("kind mismatch: %s vs %s", in[0].Kind, out[0].Kind)
		}
		// Ziel-Shape ist im Graphen deklariert, nur Elementzahl pruefen
		if out[0].Elements() != in[0].Elements() {
			return fmt.Errorf("cannot reshape %v into %v", in[0].Shape, out[0].Shape)
		}

	case lgf.OpFullyConnected:
		if len(in) != 2 && len(in) != 3 {
			return fmt.Errorf("want 2 or 3 inputs, have %d", len(in))
		}
		if len(out) != 1 {
			return fmt.Errorf("want 1 output, have %d", len(out))
		}
		x, w := in[0], in[1]
		if len(x.Shape) != 2 || len(w.Shape) != 2 {
			return fmt.Errorf("want rank-2 operands, have %v and %v", x.Shape, w.Shape)
		}
		if x.Shape[1] != w.Shape[1] {
			return fmt.Errorf("inner dimension mismatch: %v vs %v", x.Shape, w.Shape)
		}
		if len(in) == 3 {
			bias := in[2]
			if bias.Elements() != int(w.Shape[0]) {
				return fmt.Errorf("bias size %d does not match %d units", bias.Elements(), w.Shape[0])
			}
		}
		out[0].Shape = []int32{x.Shape[0], w.Shape[0]}

	default:
		return fmt.Errorf("unsupported op")
	}

	return nil
}
