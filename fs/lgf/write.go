// Package lgf - LGF Write Operationen
//
// Dieses Modul enthaelt Funktionen zum Schreiben von LGF-Dateien:
// - WriteLGF: Schreibt komplettes LGF-File mit KV, Tensors und Ops
// - writeLGF: Generische Write-Funktion fuer Basistypen
// - writeLGFString: String-Serialisierung
// - writeLGFArray: Array-Serialisierung
// - lgfWriteKV: Key-Value Paar Serialisierung
// - lgfWriteTensorInfo: Tensor-Metadaten Serialisierung
package lgf

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// WriteLGF schreibt ein LGF-File mit KV-Paaren, Tensors und Ops.
// Gewichtsdaten werden aus TensorInfo.Data uebernommen; Offsets werden hier
// berechnet und in die uebergebenen Tensors zurueckgeschrieben.
func WriteLGF(f *os.File, kv KV, ts []*TensorInfo, ops []Op) error {
	var weights []*TensorInfo
	for _, t := range ts {
		if t.Flags&FlagWeights == 0 {
			continue
		}
		if uint64(len(t.Data)) != t.Size() {
			return fmt.Errorf("tensor %q: have %d data bytes, want %d", t.Name, len(t.Data), t.Size())
		}
		weights = append(weights, t)
	}

	// Header
	if err := binary.Write(f, binary.LittleEndian, lgfMagic); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, lgfVersion); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, uint64(len(ts))); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, uint64(kv.Len())); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, uint64(len(ops))); err != nil {
		return err
	}

	// KV-Paare sortiert schreiben
	for _, key := range kv.SortedKeys() {
		if err := lgfWriteKV(f, key, kv[key]); err != nil {
			return err
		}
	}

	alignment := kv.Uint("general.alignment", 32)

	// Offsets berechnen und Tensor-Infos schreiben
	var s uint64
	for _, t := range weights {
		t.Offset = s
		s += t.Size()
		s += uint64(lgfPadding(int64(s), int64(alignment)))
	}
	for _, t := range ts {
		if err := lgfWriteTensorInfo(f, t); err != nil {
			return err
		}
	}

	// Ops schreiben
	for _, op := range ops {
		if err := lgfWriteOp(f, op); err != nil {
			return err
		}
	}

	offset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	offset += lgfPadding(offset, int64(alignment))

	// Gewichtsdaten parallel schreiben
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, t := range weights {
		w := io.NewOffsetWriter(f, offset+int64(t.Offset))
		g.Go(func() error {
			_, err := w.Write(t.Data)
			return err
		})
	}

	return g.Wait()
}

// writeLGF schreibt einen typisierten Wert mit Typ-Prefix
func writeLGF[V any](w io.Writer, t uint32, v V) error {
	if err := binary.Write(w, binary.LittleEndian, t); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, v)
}

// writeLGFString schreibt einen String mit Typ-Prefix und Laenge
func writeLGFString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, lgfTypeString); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(s))); err != nil {
		return err
	}
	_, err := io.Copy(w, strings.NewReader(s))
	return err
}

// writeLGFArray schreibt ein Array mit Typ-Prefix
func writeLGFArray[S ~[]E, E any](w io.Writer, t uint32, s S) error {
	if err := binary.Write(w, binary.LittleEndian, lgfTypeArray); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, t); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(s))); err != nil {
		return err
	}

	// Strings muessen einzeln geschrieben werden
	if t == lgfTypeString {
		for _, e := range any(s).([]string) {
			if err := binary.Write(w, binary.LittleEndian, uint64(len(e))); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, []byte(e)); err != nil {
				return err
			}
		}
		return nil
	}

	return binary.Write(w, binary.LittleEndian, s)
}

// lgfWriteKV schreibt ein Key-Value Paar
func lgfWriteKV(w io.Writer, k string, v any) error {
	slog.Debug(k, "type", fmt.Sprintf("%T", v))

	// Key schreiben
	if err := binary.Write(w, binary.LittleEndian, uint64(len(k))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, []byte(k)); err != nil {
		return err
	}

	// Value schreiben
	var err error
	switch v := v.(type) {
	case int32:
		err = writeLGF(w, lgfTypeInt32, v)
	case int64:
		err = writeLGF(w, lgfTypeInt64, v)
	case uint32:
		err = writeLGF(w, lgfTypeUint32, v)
	case uint64:
		err = writeLGF(w, lgfTypeUint64, v)
	case float32:
		err = writeLGF(w, lgfTypeFloat32, v)
	case float64:
		err = writeLGF(w, lgfTypeFloat64, v)
	case bool:
		err = writeLGF(w, lgfTypeBool, v)
	case string:
		err = writeLGFString(w, v)
	case []int32:
		err = writeLGFArray(w, lgfTypeInt32, v)
	case []uint32:
		err = writeLGFArray(w, lgfTypeUint32, v)
	case []int64:
		err = writeLGFArray(w, lgfTypeInt64, v)
	case []uint64:
		err = writeLGFArray(w, lgfTypeUint64, v)
	case []float32:
		err = writeLGFArray(w, lgfTypeFloat32, v)
	case []string:
		err = writeLGFArray(w, lgfTypeString, v)
	default:
		return fmt.Errorf("improper type for '%s'", k)
	}
	return err
}

// lgfWriteTensorInfo schreibt die Tensor-Metadaten
func lgfWriteTensorInfo(w io.Writer, t *TensorInfo) error {
	slog.Debug(t.Name, "kind", t.Kind, "shape", t.Shape, "offset", t.Offset)

	// Name
	if err := binary.Write(w, binary.LittleEndian, uint64(len(t.Name))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, []byte(t.Name)); err != nil {
		return err
	}

	// Dimensions
	if err := binary.Write(w, binary.LittleEndian, uint32(len(t.Shape))); err != nil {
		return err
	}
	for _, n := range t.Shape {
		if err := binary.Write(w, binary.LittleEndian, n); err != nil {
			return err
		}
	}

	// Kind + Flags + Offset
	if err := binary.Write(w, binary.LittleEndian, uint32(t.Kind)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, t.Flags); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, t.Offset)
}

// lgfWriteOp schreibt einen Operator
func lgfWriteOp(w io.Writer, op Op) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(op.Code)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(op.Inputs))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, op.Inputs); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(op.Outputs))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, op.Outputs)
}
