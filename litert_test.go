// MODUL: litert_test
// ZWECK: Tests fuer die Lifecycle-Zustandsmaschine der Binding-Schicht
// INPUT: Synthetische LGF-Modelle in temporaeren Dateien
// OUTPUT: Testresultate
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: testing, errors, fs/lgf
// HINWEISE: Deckt die beobachtbaren Vertragseigenschaften ab: Laden,
// Double-Delete, Double-Allocate, Invoke-Reihenfolge, Resize-Invalidierung,
// Tensor-Introspektion und Daten-Roundtrip

package litert

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JoHorni/litert/fs/lgf"
)

// writeIdentityModel schreibt ein U8-Identity-Modell: "input" [1,4] -> "output"
func writeIdentityModel(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "identity.lgf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	err = lgf.WriteLGF(f,
		lgf.KV{
			"general.name":  "identity-u8",
			"graph.inputs":  []int32{0},
			"graph.outputs": []int32{1},
		},
		[]*lgf.TensorInfo{
			{Name: "input", Kind: lgf.TensorKindU8, Shape: []uint64{1, 4}},
			{Name: "output", Kind: lgf.TensorKindU8, Shape: []uint64{1, 4}},
		},
		[]lgf.Op{{Code: lgf.OpIdentity, Inputs: []int32{0}, Outputs: []int32{1}}},
	)
	if err != nil {
		t.Fatalf("WriteLGF() error = %v", err)
	}
	return path
}

// newTestInterpreter baut Model und Interpreter mit Cleanup
func newTestInterpreter(t *testing.T) *Interpreter {
	t.Helper()

	model, err := NewModelFromFile(writeIdentityModel(t))
	if err != nil {
		t.Fatalf("NewModelFromFile() error = %v", err)
	}
	t.Cleanup(func() {
		if !model.deleted {
			model.Delete() //nolint:errcheck
		}
	})

	interp, err := NewInterpreter(model, nil)
	if err != nil {
		t.Fatalf("NewInterpreter() error = %v", err)
	}
	t.Cleanup(func() {
		if !interp.deleted {
			interp.Delete() //nolint:errcheck
		}
	})
	return interp
}

func TestNewModelFromFile(t *testing.T) {
	model, err := NewModelFromFile(writeIdentityModel(t))
	if err != nil {
		t.Fatalf("NewModelFromFile() error = %v", err)
	}
	if err := model.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestNewModelFromBuffer(t *testing.T) {
	data, err := os.ReadFile(writeIdentityModel(t))
	if err != nil {
		t.Fatal(err)
	}

	model, err := NewModelFromBuffer(data)
	if err != nil {
		t.Fatalf("NewModelFromBuffer() error = %v", err)
	}
	if err := model.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestNewModelMissingFile(t *testing.T) {
	_, err := NewModelFromFile(filepath.Join(t.TempDir(), "does-not-exist.lgf"))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("NewModelFromFile() error = %v, want ErrInvalidArgument", err)
	}
}

func TestNewModelCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.lgf")
	if err := os.WriteFile(path, []byte("this is not a graph"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewModelFromFile(path)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("NewModelFromFile() error = %v, want ErrInvalidArgument", err)
	}
}

func TestNewModelTruncatedFile(t *testing.T) {
	data, err := os.ReadFile(writeIdentityModel(t))
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewModelFromBuffer(data[:len(data)/2])
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("NewModelFromBuffer() error = %v, want ErrInvalidArgument", err)
	}
}

func TestModelDoubleDelete(t *testing.T) {
	model, err := NewModelFromFile(writeIdentityModel(t))
	if err != nil {
		t.Fatal(err)
	}

	if err := model.Delete(); err != nil {
		t.Fatalf("first Delete() error = %v", err)
	}
	if err := model.Delete(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second Delete() error = %v, want ErrInvalidState", err)
	}
}

func TestInterpreterFromDeletedModel(t *testing.T) {
	model, err := NewModelFromFile(writeIdentityModel(t))
	if err != nil {
		t.Fatal(err)
	}
	model.Delete() //nolint:errcheck

	if _, err := NewInterpreter(model, nil); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("NewInterpreter() error = %v, want ErrInvalidState", err)
	}
}

func TestAllocateTwice(t *testing.T) {
	interp := newTestInterpreter(t)

	if err := interp.AllocateTensors(); err != nil {
		t.Fatalf("AllocateTensors() error = %v", err)
	}
	if err := interp.AllocateTensors(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second AllocateTensors() error = %v, want ErrInvalidState", err)
	}
}

func TestInvokeBeforeAllocate(t *testing.T) {
	interp := newTestInterpreter(t)

	if err := interp.Invoke(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Invoke() error = %v, want ErrInvalidState", err)
	}

	if err := interp.AllocateTensors(); err != nil {
		t.Fatal(err)
	}
	if err := interp.Invoke(); err != nil {
		t.Fatalf("Invoke() after AllocateTensors() error = %v", err)
	}
}

func TestResizeInvalidatesAllocation(t *testing.T) {
	interp := newTestInterpreter(t)

	if err := interp.AllocateTensors(); err != nil {
		t.Fatal(err)
	}

	if err := interp.ResizeInputTensor(0, []int32{1, 8}); err != nil {
		t.Fatalf("ResizeInputTensor() error = %v", err)
	}

	if err := interp.Invoke(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Invoke() after resize error = %v, want ErrInvalidState", err)
	}

	if err := interp.AllocateTensors(); err != nil {
		t.Fatalf("AllocateTensors() after resize error = %v", err)
	}
	if err := interp.Invoke(); err != nil {
		t.Fatalf("Invoke() after re-allocate error = %v", err)
	}

	if diff := cmp.Diff([]int32{1, 8}, interp.OutputTensors()[0].Shape()); diff != "" {
		t.Errorf("output shape mismatch (-want +got):\n%s", diff)
	}
}

func TestResizeBeforeAllocate(t *testing.T) {
	interp := newTestInterpreter(t)

	if err := interp.ResizeInputTensor(0, []int32{1, 2}); err != nil {
		t.Fatalf("ResizeInputTensor() before allocation error = %v", err)
	}
}

func TestResizeBadIndex(t *testing.T) {
	interp := newTestInterpreter(t)

	if err := interp.ResizeInputTensor(1, []int32{1, 2}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("ResizeInputTensor(1) error = %v, want ErrInvalidArgument", err)
	}
}

func TestTensorCounts(t *testing.T) {
	interp := newTestInterpreter(t)

	if got := len(interp.InputTensors()); got != 1 {
		t.Errorf("len(InputTensors()) = %d, want 1", got)
	}
	if got := len(interp.OutputTensors()); got != 1 {
		t.Errorf("len(OutputTensors()) = %d, want 1", got)
	}
}

func TestTensorAttributes(t *testing.T) {
	interp := newTestInterpreter(t)

	in := interp.InputTensors()[0]
	if in.Name() != "input" {
		t.Errorf("Name() = %q, want \"input\"", in.Name())
	}
	if in.Kind() != lgf.TensorKindU8 {
		t.Errorf("Kind() = %v, want U8", in.Kind())
	}
	if diff := cmp.Diff([]int32{1, 4}, in.Shape()); diff != "" {
		t.Errorf("Shape() mismatch (-want +got):\n%s", diff)
	}
}

func TestTensorIndexLookup(t *testing.T) {
	interp := newTestInterpreter(t)

	idx, err := interp.InputIndex("input")
	if err != nil || idx != 0 {
		t.Errorf("InputIndex(\"input\") = %d, %v, want 0, nil", idx, err)
	}

	idx, err = interp.OutputIndex("output")
	if err != nil || idx != 0 {
		t.Errorf("OutputIndex(\"output\") = %d, %v, want 0, nil", idx, err)
	}

	if _, err := interp.InputIndex("no-such-tensor"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("InputIndex(\"no-such-tensor\") error = %v, want ErrInvalidArgument", err)
	}
}

func TestDataRoundTrip(t *testing.T) {
	interp := newTestInterpreter(t)

	if err := interp.AllocateTensors(); err != nil {
		t.Fatal(err)
	}

	want := []byte{0, 1, 10, 100}

	in := interp.InputTensors()[0]
	if err := in.SetData(want); err != nil {
		t.Fatalf("SetData() error = %v", err)
	}

	got, err := in.Data()
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("input round trip mismatch (-want +got):\n%s", diff)
	}

	if err := interp.Invoke(); err != nil {
		t.Fatal(err)
	}

	got, err = interp.OutputTensors()[0].Data()
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestDataAccessUnallocated(t *testing.T) {
	interp := newTestInterpreter(t)
	in := interp.InputTensors()[0]

	if _, err := in.Data(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Data() error = %v, want ErrInvalidState", err)
	}
	if err := in.SetData([]byte{1, 2, 3, 4}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SetData() error = %v, want ErrInvalidState", err)
	}
}

func TestSetDataWrongLength(t *testing.T) {
	interp := newTestInterpreter(t)
	if err := interp.AllocateTensors(); err != nil {
		t.Fatal(err)
	}

	err := interp.InputTensors()[0].SetData([]byte{1, 2})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetData() with short buffer error = %v, want ErrInvalidArgument", err)
	}
}

func TestInterpreterDelete(t *testing.T) {
	model, err := NewModelFromFile(writeIdentityModel(t))
	if err != nil {
		t.Fatal(err)
	}

	interp, err := NewInterpreter(model, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := interp.AllocateTensors(); err != nil {
		t.Fatal(err)
	}
	tensor := interp.InputTensors()[0]

	if err := interp.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := interp.Delete(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second Delete() error = %v, want ErrInvalidState", err)
	}

	// Views sind an die Lebenszeit des Interpreters gebunden
	if _, err := tensor.Data(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Data() after interpreter Delete() error = %v, want ErrInvalidState", err)
	}

	// Ein fremdes Model bleibt von Delete unberuehrt
	if model.deleted {
		t.Error("interpreter Delete() released a caller-owned model")
	}
	if err := model.Delete(); err != nil {
		t.Fatalf("model Delete() error = %v", err)
	}
}

func TestNewInterpreterFromFile(t *testing.T) {
	interp, err := NewInterpreterFromFile(writeIdentityModel(t), nil)
	if err != nil {
		t.Fatalf("NewInterpreterFromFile() error = %v", err)
	}

	if err := interp.AllocateTensors(); err != nil {
		t.Fatal(err)
	}
	if err := interp.Invoke(); err != nil {
		t.Fatal(err)
	}

	if interp.ownedModel == nil {
		t.Fatal("interpreter from file does not own its model")
	}

	if err := interp.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !interp.ownedModel.deleted {
		t.Error("Delete() left the internally built model alive")
	}
}

func TestNewInterpreterFromMissingFile(t *testing.T) {
	_, err := NewInterpreterFromFile(filepath.Join(t.TempDir(), "nope.lgf"), nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("NewInterpreterFromFile() error = %v, want ErrInvalidArgument", err)
	}
}

func TestInterpreterOptions(t *testing.T) {
	options := NewInterpreterOptions()
	options.SetNumThreads(2)

	model, err := NewModelFromFile(writeIdentityModel(t))
	if err != nil {
		t.Fatal(err)
	}
	defer model.Delete() //nolint:errcheck

	interp, err := NewInterpreter(model, options)
	if err != nil {
		t.Fatalf("NewInterpreter() with options error = %v", err)
	}
	defer interp.Delete() //nolint:errcheck

	// Optionen sind konsumiert; Delete ist gefahrlos wiederholbar
	if err := options.Delete(); err != nil {
		t.Errorf("options Delete() error = %v", err)
	}
	if err := options.Delete(); err != nil {
		t.Errorf("repeated options Delete() error = %v", err)
	}

	if err := interp.AllocateTensors(); err != nil {
		t.Fatal(err)
	}
	if err := interp.Invoke(); err != nil {
		t.Fatal(err)
	}
}
