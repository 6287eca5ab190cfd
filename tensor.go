// tensor.go - Nicht-besitzende Tensor-Views
//
// Ein Tensor ist durch (Interpreter, Richtung, Index) bestimmt und haelt
// eine Rueckreferenz statt eigener Ressourcen. Metadaten sind jederzeit
// lesbar solange der Interpreter lebt; Datenzugriff verlangt den Zustand
// {allocated}.
package litert

import (
	"fmt"
	"slices"

	"github.com/JoHorni/litert/fs/lgf"
	"github.com/JoHorni/litert/ml"
)

type direction int

const (
	dirInput direction = iota
	dirOutput
)

// Tensor ist ein View auf einen Graph-Tensor des Interpreters
type Tensor struct {
	interp *Interpreter
	dir    direction
	index  int
}

// target loest den View gegen den Backend-Tensor auf
func (t Tensor) target() (*ml.Tensor, error) {
	if t.interp == nil || t.interp.deleted {
		return nil, fmt.Errorf("%w: owning interpreter is deleted", ErrInvalidState)
	}

	if t.dir == dirInput {
		return t.interp.backend.Inputs()[t.index], nil
	}
	return t.interp.backend.Outputs()[t.index], nil
}

// Name gibt den Graph-Namen des Tensors zurueck ("" nach Delete)
func (t Tensor) Name() string {
	target, err := t.target()
	if err != nil {
		return ""
	}
	return target.Name
}

// Kind gibt den Element-Typ des Tensors zurueck
func (t Tensor) Kind() lgf.TensorKind {
	target, err := t.target()
	if err != nil {
		return 0
	}
	return target.Kind
}

// Shape gibt eine Kopie der aktuellen Shape zurueck.
// Die Shape aendert sich nur durch ResizeInputTensor.
func (t Tensor) Shape() []int32 {
	target, err := t.target()
	if err != nil {
		return nil
	}
	return slices.Clone(target.Shape)
}

// Data gibt eine Kopie der Rohbytes des Tensors zurueck.
// Nur im Zustand {allocated} erlaubt.
func (t Tensor) Data() ([]byte, error) {
	target, err := t.target()
	if err != nil {
		return nil, err
	}
	if !t.interp.allocated {
		return nil, fmt.Errorf("%w: tensors not allocated", ErrInvalidState)
	}

	return slices.Clone(target.Data), nil
}

// SetData ueberschreibt die Rohbytes des Tensors.
// data muss exakt die aktuelle Byte-Kapazitaet haben; nur im Zustand
// {allocated} erlaubt.
func (t Tensor) SetData(data []byte) error {
	target, err := t.target()
	if err != nil {
		return err
	}
	if !t.interp.allocated {
		return fmt.Errorf("%w: tensors not allocated", ErrInvalidState)
	}
	if len(data) != len(target.Data) {
		return fmt.Errorf("%w: have %d bytes, tensor %q holds %d",
			ErrInvalidArgument, len(data), target.Name, len(target.Data))
	}

	copy(target.Data, data)
	return nil
}
