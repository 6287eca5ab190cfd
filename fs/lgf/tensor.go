// Package lgf - Tensor Datenstrukturen
//
// Dieses Modul enthaelt Tensor-bezogene Typen und Methoden:
// - TensorKind: Element-Typ eines Tensors (F32, F16, BF16, U8, ...)
// - TensorInfo: Einzelner Tensor mit Name, Shape, Kind, Flags und Daten
// - Float32s/PutFloat32s: Konvertierung zwischen Rohbytes und float32
package lgf

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// TensorKind ist der Element-Typ eines Tensors
type TensorKind uint32

const (
	TensorKindF32 TensorKind = iota
	TensorKindF16
	TensorKindBF16
	TensorKindU8
	TensorKindI8
	TensorKindI32
	TensorKindI64

	tensorKindCount
)

// Shape-Limits; Shapes mit mehr Dimensionen, groesseren Achsen oder mehr
// Gesamtbytes lehnt der Decoder ab, bevor Puffer angelegt werden. maxDim
// bleibt unter int32, damit jede dekodierte Achse die Backend-Shapes
// verlustfrei passiert.
const (
	maxDims       = 8
	maxDim        = math.MaxInt32
	maxTensorSize = 1 << 40
)

// Flags fuer TensorInfo
const (
	// FlagWeights markiert Tensors mit Gewichtsdaten im Datenblock.
	// Tensors ohne dieses Flag sind Aktivierungen und werden erst bei der
	// Allokation mit Speicher hinterlegt.
	FlagWeights uint32 = 1 << 0
)

// String gibt den Typ-Namen zurueck
func (k TensorKind) String() string {
	switch k {
	case TensorKindF32:
		return "F32"
	case TensorKindF16:
		return "F16"
	case TensorKindBF16:
		return "BF16"
	case TensorKindU8:
		return "U8"
	case TensorKindI8:
		return "I8"
	case TensorKindI32:
		return "I32"
	case TensorKindI64:
		return "I64"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(k))
	}
}

// ParseTensorKind parst einen Typ-Namen
func ParseTensorKind(s string) (TensorKind, error) {
	switch s {
	case "F32":
		return TensorKindF32, nil
	case "F16":
		return TensorKindF16, nil
	case "BF16":
		return TensorKindBF16, nil
	case "U8":
		return TensorKindU8, nil
	case "I8":
		return TensorKindI8, nil
	case "I32":
		return TensorKindI32, nil
	case "I64":
		return TensorKindI64, nil
	default:
		return 0, fmt.Errorf("unsupported tensor kind %q", s)
	}
}

// TypeSize gibt die Byte-Groesse pro Element zurueck
func (k TensorKind) TypeSize() uint64 {
	switch k {
	case TensorKindF32, TensorKindI32:
		return 4
	case TensorKindF16, TensorKindBF16:
		return 2
	case TensorKindU8, TensorKindI8:
		return 1
	case TensorKindI64:
		return 8
	default:
		return 0
	}
}

// TensorInfo repraesentiert einen einzelnen LGF-Tensor
type TensorInfo struct {
	Name   string     `json:"name"`
	Kind   TensorKind `json:"kind"`
	Flags  uint32     `json:"-"`
	Offset uint64     `json:"-"`

	// Shape ist die Anzahl der Elemente pro Dimension
	Shape []uint64 `json:"shape"`

	// Data enthaelt die Gewichtsdaten, nil fuer Aktivierungs-Tensors
	Data []byte `json:"-"`
}

// Elements gibt die Gesamtanzahl der Elemente zurueck
func (t *TensorInfo) Elements() uint64 {
	var count uint64 = 1
	for _, n := range t.Shape {
		count *= n
	}
	return count
}

// Size gibt die Groesse des Tensors in Bytes zurueck
func (t *TensorInfo) Size() uint64 {
	return t.Elements() * t.Kind.TypeSize()
}

// Type gibt den Typ-Namen als String zurueck
func (t *TensorInfo) Type() string {
	return t.Kind.String()
}

// Float32s dekodiert Rohbytes des gegebenen Kinds nach float32.
// Nur fuer numerische Kinds definiert; Integer-Kinds werden wertgleich
// konvertiert.
func Float32s(kind TensorKind, data []byte) ([]float32, error) {
	n := len(data) / int(kind.TypeSize())
	out := make([]float32, n)

	switch kind {
	case TensorKindF32:
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
	case TensorKindF16:
		for i := range out {
			out[i] = float16.Frombits(binary.LittleEndian.Uint16(data[i*2:])).Float32()
		}
	case TensorKindBF16:
		copy(out, bfloat16.DecodeFloat32(data))
	case TensorKindU8:
		for i := range out {
			out[i] = float32(data[i])
		}
	case TensorKindI8:
		for i := range out {
			out[i] = float32(int8(data[i]))
		}
	case TensorKindI32:
		for i := range out {
			out[i] = float32(int32(binary.LittleEndian.Uint32(data[i*4:])))
		}
	case TensorKindI64:
		for i := range out {
			out[i] = float32(int64(binary.LittleEndian.Uint64(data[i*8:])))
		}
	default:
		return nil, fmt.Errorf("cannot convert kind %s to float32", kind)
	}

	return out, nil
}

// PutFloat32s kodiert float32-Werte in Rohbytes des gegebenen Kinds.
// data muss exakt die passende Kapazitaet haben.
func PutFloat32s(kind TensorKind, values []float32, data []byte) error {
	if uint64(len(data)) != uint64(len(values))*kind.TypeSize() {
		return fmt.Errorf("buffer size %d does not match %d %s values", len(data), len(values), kind)
	}

	switch kind {
	case TensorKindF32:
		for i, v := range values {
			binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
		}
	case TensorKindF16:
		for i, v := range values {
			binary.LittleEndian.PutUint16(data[i*2:], float16.Fromfloat32(v).Bits())
		}
	case TensorKindBF16:
		copy(data, bfloat16.EncodeFloat32(values))
	case TensorKindU8:
		for i, v := range values {
			data[i] = byte(v)
		}
	case TensorKindI8:
		for i, v := range values {
			data[i] = byte(int8(v))
		}
	case TensorKindI32:
		for i, v := range values {
			binary.LittleEndian.PutUint32(data[i*4:], uint32(int32(v)))
		}
	case TensorKindI64:
		for i, v := range values {
			binary.LittleEndian.PutUint64(data[i*8:], uint64(int64(v)))
		}
	default:
		return fmt.Errorf("cannot convert float32 to kind %s", kind)
	}

	return nil
}
