// interpreter.go - Interpreter-Handle und Lifecycle-Zustandsmaschine
//
// Dieses Modul enthaelt:
// - Interpreter: Handle auf einen Ausfuehrungskontext
// - NewInterpreter/NewInterpreterFromFile: Konstruktion
// - AllocateTensors/ResizeInputTensor/Invoke: Zustandsuebergaenge
// - InputTensors/OutputTensors/InputIndex/OutputIndex: Introspektion
// - Delete: Explizite Freigabe
//
// Die Zustandsmaschine ist {unallocated, allocated} plus deleted; genau
// dieser eine Allokationszustand entscheidet sowohl ueber die Legalitaet
// von Invoke als auch ueber den Datenzugriff der Tensor-Views.
package litert

import (
	"context"
	"fmt"

	"github.com/JoHorni/litert/envconfig"
	"github.com/JoHorni/litert/ml"

	_ "github.com/JoHorni/litert/ml/backend/ref"
)

// Interpreter haelt einen Ausfuehrungskontext fuer genau ein Model
type Interpreter struct {
	backend ml.Backend

	// ownedModel ist nur gesetzt, wenn der Interpreter sein Model selbst
	// gebaut hat (NewInterpreterFromFile); dann gibt Delete es mit frei.
	ownedModel *Model

	allocated bool
	deleted   bool
}

// NewInterpreter erstellt einen Interpreter fuer das gegebene Model.
// options darf nil sein; das Model wird referenziert, nicht uebernommen.
func NewInterpreter(model *Model, options *InterpreterOptions) (*Interpreter, error) {
	if model == nil || model.deleted {
		return nil, fmt.Errorf("%w: model is deleted", ErrInvalidState)
	}

	var threads int
	if options != nil {
		threads = options.numThreads
	}
	if threads <= 0 {
		threads = envconfig.NumThreads()
	}

	backend, err := ml.NewBackend(model.graph, ml.BackendParams{NumThreads: threads})
	if err != nil {
		return nil, fmt.Errorf("creating backend: %w", err)
	}

	return &Interpreter{backend: backend}, nil
}

// NewInterpreterFromFile ist Zucker fuer NewModelFromFile + NewInterpreter.
// Das intern gebaute Model gehoert dem Interpreter und wird bei Delete mit
// freigegeben.
func NewInterpreterFromFile(path string, options *InterpreterOptions) (*Interpreter, error) {
	model, err := NewModelFromFile(path)
	if err != nil {
		return nil, err
	}

	interp, err := NewInterpreter(model, options)
	if err != nil {
		model.Delete() //nolint:errcheck
		return nil, err
	}

	interp.ownedModel = model
	return interp, nil
}

// live prueft, ob das Handle noch benutzbar ist
func (i *Interpreter) live() error {
	if i.deleted {
		return fmt.Errorf("%w: interpreter already deleted", ErrInvalidState)
	}
	return nil
}

// AllocateTensors bindet Puffer fuer alle Tensors und wechselt nach
// {allocated}. Ein Aufruf im Zustand {allocated} meldet ErrInvalidState.
func (i *Interpreter) AllocateTensors() error {
	if err := i.live(); err != nil {
		return err
	}
	if i.allocated {
		return fmt.Errorf("%w: tensors already allocated", ErrInvalidState)
	}

	if err := i.backend.Allocate(); err != nil {
		return fmt.Errorf("%w: allocating tensors: %v", ErrInvalidArgument, err)
	}

	i.allocated = true
	return nil
}

// ResizeInputTensor setzt die Shape eines Eingangs-Tensors.
// In beiden Zustaenden erlaubt; im Zustand {allocated} faellt der
// Interpreter zurueck nach {unallocated} und muss neu allokieren.
func (i *Interpreter) ResizeInputTensor(index int, shape []int32) error {
	if err := i.live(); err != nil {
		return err
	}
	if index < 0 || index >= len(i.backend.Inputs()) {
		return fmt.Errorf("%w: input index %d out of range", ErrInvalidArgument, index)
	}

	if err := i.backend.Resize(index, shape); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	i.allocated = false
	return nil
}

// Invoke fuehrt einen blockierenden Graph-Durchlauf aus.
// Nur im Zustand {allocated} erlaubt.
func (i *Interpreter) Invoke() error {
	if err := i.live(); err != nil {
		return err
	}
	if !i.allocated {
		return fmt.Errorf("%w: tensors not allocated", ErrInvalidState)
	}

	if err := i.backend.Forward(context.Background()); err != nil {
		return fmt.Errorf("invoking graph: %w", err)
	}
	return nil
}

// InputTensors gibt Views auf die Eingangs-Tensors in Graph-Reihenfolge
// zurueck. Die Views sind nicht-besitzend und nur solange gueltig wie der
// Interpreter selbst.
func (i *Interpreter) InputTensors() []Tensor {
	if i.deleted {
		return nil
	}

	tensors := make([]Tensor, len(i.backend.Inputs()))
	for idx := range tensors {
		tensors[idx] = Tensor{interp: i, dir: dirInput, index: idx}
	}
	return tensors
}

// OutputTensors gibt Views auf die Ausgangs-Tensors in Graph-Reihenfolge
// zurueck
func (i *Interpreter) OutputTensors() []Tensor {
	if i.deleted {
		return nil
	}

	tensors := make([]Tensor, len(i.backend.Outputs()))
	for idx := range tensors {
		tensors[idx] = Tensor{interp: i, dir: dirOutput, index: idx}
	}
	return tensors
}

// InputIndex sucht einen Eingangs-Tensor per exaktem Namensvergleich.
// Unbekannte Namen melden ErrInvalidArgument.
func (i *Interpreter) InputIndex(name string) (int, error) {
	if err := i.live(); err != nil {
		return 0, err
	}
	return tensorIndex(i.backend.Inputs(), name)
}

// OutputIndex sucht einen Ausgangs-Tensor per exaktem Namensvergleich
func (i *Interpreter) OutputIndex(name string) (int, error) {
	if err := i.live(); err != nil {
		return 0, err
	}
	return tensorIndex(i.backend.Outputs(), name)
}

func tensorIndex(tensors []*ml.Tensor, name string) (int, error) {
	for idx, t := range tensors {
		if t.Name == name {
			return idx, nil
		}
	}
	return 0, fmt.Errorf("%w: no tensor named %q", ErrInvalidArgument, name)
}

// Delete gibt den Ausfuehrungskontext frei. Ein von aussen uebergebenes
// Model bleibt unberuehrt; ein intern gebautes wird mit freigegeben.
// Ein zweites Delete meldet ErrInvalidState.
func (i *Interpreter) Delete() error {
	if i.deleted {
		return fmt.Errorf("%w: interpreter already deleted", ErrInvalidState)
	}

	i.deleted = true
	i.allocated = false
	i.backend.Close()

	if i.ownedModel != nil && !i.ownedModel.deleted {
		i.ownedModel.Delete() //nolint:errcheck
	}

	return nil
}
