// Package lgf - LGF Decode Operationen
//
// Dieses Modul enthaelt Funktionen zum Lesen von LGF-Dateien:
// - Model: Hauptstruktur fuer dekodierte LGF-Modelle
// - Decode: Deserialisierung von Header, KV-Paaren, Tensors und Ops
// - readLGF*: Lese-Funktionen fuer die verschiedenen Datentypen
//
// LGF ("Lite Graph Format") ist ein binaeres Container-Format in
// Little-Endian-Ordnung: Header, typisierte KV-Metadaten, Tensor-Infos,
// Op-Liste, Alignment-Padding, Gewichtsdaten.
package lgf

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// lgfMagic ist "LGF1" in Little-Endian-Ordnung
	lgfMagic uint32 = 0x3146474c

	// lgfVersion ist die einzige unterstuetzte Container-Version
	lgfVersion uint32 = 1
)

// Sanity-Limits fuer Header-Felder, damit kaputte Dateien frueh scheitern
// statt riesige Allokationen auszuloesen.
const (
	maxTensors   = 1 << 20
	maxOps       = 1 << 20
	maxKV        = 1 << 16
	maxStringLen = 1 << 24
	maxArrayLen  = 1 << 24
)

// LGF Value-Type Konstanten fuer die KV-Sektion
const (
	lgfTypeUint8 uint32 = iota
	lgfTypeInt8
	lgfTypeUint16
	lgfTypeInt16
	lgfTypeUint32
	lgfTypeInt32
	lgfTypeFloat32
	lgfTypeBool
	lgfTypeString
	lgfTypeArray
	lgfTypeUint64
	lgfTypeInt64
	lgfTypeFloat64
)

// Model repraesentiert ein geladenes LGF-Modell
type Model struct {
	Version uint32

	kv      KV
	tensors []*TensorInfo
	ops     []Op

	tensorOffset uint64
}

// KV gibt die Key-Value Metadaten zurueck
func (m *Model) KV() KV {
	return m.kv
}

// Tensors gibt die Tensor-Liste in Dateireihenfolge zurueck
func (m *Model) Tensors() []*TensorInfo {
	return m.tensors
}

// Ops gibt die Op-Liste in Ausfuehrungsreihenfolge zurueck
func (m *Model) Ops() []Op {
	return m.ops
}

// Inputs gibt die Indizes der Graph-Eingaenge zurueck (KV "graph.inputs")
func (m *Model) Inputs() []int32 {
	return m.kv.Ints("graph.inputs")
}

// Outputs gibt die Indizes der Graph-Ausgaenge zurueck (KV "graph.outputs")
func (m *Model) Outputs() []int32 {
	return m.kv.Ints("graph.outputs")
}

// Decode liest ein komplettes LGF-Modell aus dem Reader.
// Gewichtsdaten werden eager in die TensorInfo-Strukturen geladen, damit das
// Modell nach dem Decode nicht mehr an der Quelle haengt.
func Decode(rs io.ReadSeeker) (*Model, error) {
	var header struct {
		Magic     uint32
		Version   uint32
		NumTensor uint64
		NumKV     uint64
		NumOp     uint64
	}
	if err := binary.Read(rs, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if header.Magic != lgfMagic {
		return nil, fmt.Errorf("invalid file magic %#x", header.Magic)
	}
	if header.Version != lgfVersion {
		return nil, fmt.Errorf("unsupported version %d", header.Version)
	}
	if header.NumTensor > maxTensors || header.NumKV > maxKV || header.NumOp > maxOps {
		return nil, fmt.Errorf("implausible header counts: tensors=%d kv=%d ops=%d",
			header.NumTensor, header.NumKV, header.NumOp)
	}

	m := &Model{
		Version: header.Version,
		kv:      make(KV, header.NumKV),
	}

	// KV-Paare dekodieren
	for range header.NumKV {
		k, err := readLGFString(rs)
		if err != nil {
			return nil, fmt.Errorf("failed to read kv key: %w", err)
		}

		v, err := readLGFValue(rs)
		if err != nil {
			return nil, fmt.Errorf("failed to read value for %q: %w", k, err)
		}

		m.kv[k] = v
	}

	// Tensor-Infos dekodieren
	if err := m.decodeTensors(rs, header.NumTensor); err != nil {
		return nil, err
	}

	// Ops dekodieren
	if err := m.decodeOps(rs, header.NumOp); err != nil {
		return nil, err
	}

	if err := m.validate(); err != nil {
		return nil, err
	}

	// Offset der Gewichtsdaten berechnen
	alignment := m.kv.Uint("general.alignment", 32)

	offset, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	m.tensorOffset = uint64(offset + lgfPadding(offset, int64(alignment)))

	// Gewichtsdaten laden
	for _, t := range m.tensors {
		if t.Flags&FlagWeights == 0 {
			continue
		}

		if _, err := rs.Seek(int64(m.tensorOffset+t.Offset), io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek to tensor %q: %w", t.Name, err)
		}

		t.Data = make([]byte, t.Size())
		if _, err := io.ReadFull(rs, t.Data); err != nil {
			return nil, fmt.Errorf("failed to read tensor %q: %w", t.Name, err)
		}
	}

	return m, nil
}

// decodeTensors liest alle Tensor-Metadaten
func (m *Model) decodeTensors(rs io.ReadSeeker, n uint64) error {
	for range n {
		name, err := readLGFString(rs)
		if err != nil {
			return fmt.Errorf("failed to read tensor name: %w", err)
		}

		dims, err := readLGF[uint32](rs)
		if err != nil {
			return fmt.Errorf("failed to read tensor dimensions: %w", err)
		}
		if dims == 0 || dims > maxDims {
			return fmt.Errorf("tensor %q: invalid rank %d", name, dims)
		}

		shape := make([]uint64, dims)
		for i := range shape {
			shape[i], err = readLGF[uint64](rs)
			if err != nil {
				return fmt.Errorf("failed to read tensor shape: %w", err)
			}
			if shape[i] == 0 || shape[i] > maxDim {
				return fmt.Errorf("tensor %q: invalid dimension %d", name, shape[i])
			}
		}

		kind, err := readLGF[uint32](rs)
		if err != nil {
			return fmt.Errorf("failed to read tensor kind: %w", err)
		}
		if TensorKind(kind) >= tensorKindCount {
			return fmt.Errorf("tensor %q: unknown kind %d", name, kind)
		}

		// Gesamtgroesse ueberlaufsicher pruefen, bevor irgendwo Puffer
		// in Tensorgroesse angelegt werden
		size := TensorKind(kind).TypeSize()
		for _, d := range shape {
			if size > maxTensorSize/d {
				return fmt.Errorf("tensor %q: shape %v exceeds %d bytes", name, shape, uint64(maxTensorSize))
			}
			size *= d
		}

		flags, err := readLGF[uint32](rs)
		if err != nil {
			return fmt.Errorf("failed to read tensor flags: %w", err)
		}

		offset, err := readLGF[uint64](rs)
		if err != nil {
			return fmt.Errorf("failed to read tensor offset: %w", err)
		}

		m.tensors = append(m.tensors, &TensorInfo{
			Name:   name,
			Kind:   TensorKind(kind),
			Shape:  shape,
			Flags:  flags,
			Offset: offset,
		})
	}
	return nil
}

// decodeOps liest die Op-Liste
func (m *Model) decodeOps(rs io.ReadSeeker, n uint64) error {
	for range n {
		code, err := readLGF[uint32](rs)
		if err != nil {
			return fmt.Errorf("failed to read op code: %w", err)
		}
		if OpCode(code) >= opCodeCount {
			return fmt.Errorf("unknown op code %d", code)
		}

		inputs, err := readLGFIndices(rs)
		if err != nil {
			return fmt.Errorf("failed to read op inputs: %w", err)
		}

		outputs, err := readLGFIndices(rs)
		if err != nil {
			return fmt.Errorf("failed to read op outputs: %w", err)
		}

		m.ops = append(m.ops, Op{
			Code:    OpCode(code),
			Inputs:  inputs,
			Outputs: outputs,
		})
	}
	return nil
}

// validate prueft die Graph-Konsistenz nach dem Dekodieren der Metadaten
func (m *Model) validate() error {
	inRange := func(i int32) bool {
		return i >= 0 && int(i) < len(m.tensors)
	}

	for _, op := range m.ops {
		for _, i := range append(append([]int32{}, op.Inputs...), op.Outputs...) {
			if !inRange(i) {
				return fmt.Errorf("op %s: tensor index %d out of range", op.Code, i)
			}
		}
		if len(op.Outputs) == 0 {
			return fmt.Errorf("op %s: no outputs", op.Code)
		}
	}

	inputs := m.Inputs()
	outputs := m.Outputs()
	if len(inputs) == 0 {
		return fmt.Errorf("graph.inputs missing or empty")
	}
	if len(outputs) == 0 {
		return fmt.Errorf("graph.outputs missing or empty")
	}

	for _, i := range inputs {
		if !inRange(i) {
			return fmt.Errorf("graph input index %d out of range", i)
		}
		if m.tensors[i].Flags&FlagWeights != 0 {
			return fmt.Errorf("graph input %q carries weight data", m.tensors[i].Name)
		}
	}
	for _, i := range outputs {
		if !inRange(i) {
			return fmt.Errorf("graph output index %d out of range", i)
		}
	}

	return nil
}

// readLGF liest einen typisierten Wert aus dem Reader
func readLGF[T any](r io.Reader) (T, error) {
	var t T
	err := binary.Read(r, binary.LittleEndian, &t)
	return t, err
}

// readLGFString liest einen laengen-praefixierten String
func readLGFString(r io.Reader) (string, error) {
	length, err := readLGF[uint64](r)
	if err != nil {
		return "", err
	}
	if length > maxStringLen {
		return "", fmt.Errorf("implausible string length %d", length)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// readLGFIndices liest ein laengen-praefixiertes int32-Array
func readLGFIndices(r io.Reader) ([]int32, error) {
	n, err := readLGF[uint32](r)
	if err != nil {
		return nil, err
	}
	if n > maxArrayLen {
		return nil, fmt.Errorf("implausible index count %d", n)
	}

	indices := make([]int32, n)
	if err := binary.Read(r, binary.LittleEndian, indices); err != nil {
		return nil, err
	}
	return indices, nil
}

// readLGFValue liest einen typ-praefixierten KV-Wert
func readLGFValue(r io.Reader) (any, error) {
	t, err := readLGF[uint32](r)
	if err != nil {
		return nil, err
	}

	switch t {
	case lgfTypeUint8:
		return readLGF[uint8](r)
	case lgfTypeInt8:
		return readLGF[int8](r)
	case lgfTypeUint16:
		return readLGF[uint16](r)
	case lgfTypeInt16:
		return readLGF[int16](r)
	case lgfTypeUint32:
		return readLGF[uint32](r)
	case lgfTypeInt32:
		return readLGF[int32](r)
	case lgfTypeUint64:
		return readLGF[uint64](r)
	case lgfTypeInt64:
		return readLGF[int64](r)
	case lgfTypeFloat32:
		return readLGF[float32](r)
	case lgfTypeFloat64:
		return readLGF[float64](r)
	case lgfTypeBool:
		return readLGF[bool](r)
	case lgfTypeString:
		return readLGFString(r)
	case lgfTypeArray:
		return readLGFArray(r)
	default:
		return nil, fmt.Errorf("invalid type: %d", t)
	}
}

// readLGFArray liest ein typisiertes Array aus dem Reader
func readLGFArray(r io.Reader) (any, error) {
	t, err := readLGF[uint32](r)
	if err != nil {
		return nil, err
	}

	n, err := readLGF[uint64](r)
	if err != nil {
		return nil, err
	}
	if n > maxArrayLen {
		return nil, fmt.Errorf("implausible array length %d", n)
	}

	switch t {
	case lgfTypeInt32:
		return readLGFArrayData[int32](r, n)
	case lgfTypeUint32:
		return readLGFArrayData[uint32](r, n)
	case lgfTypeInt64:
		return readLGFArrayData[int64](r, n)
	case lgfTypeUint64:
		return readLGFArrayData[uint64](r, n)
	case lgfTypeFloat32:
		return readLGFArrayData[float32](r, n)
	case lgfTypeString:
		s := make([]string, n)
		for i := range s {
			if s[i], err = readLGFString(r); err != nil {
				return nil, err
			}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("invalid array type: %d", t)
	}
}

// readLGFArrayData liest die Werte eines Arrays mit fester Elementgroesse
func readLGFArrayData[T any](r io.Reader, n uint64) ([]T, error) {
	s := make([]T, n)
	if err := binary.Read(r, binary.LittleEndian, s); err != nil {
		return nil, err
	}
	return s, nil
}

// lgfPadding berechnet das Padding fuer Alignment
func lgfPadding(offset, align int64) int64 {
	return (align - offset%align) % align
}
