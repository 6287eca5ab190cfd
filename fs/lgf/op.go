// Package lgf - Graph-Operationen
//
// Dieses Modul enthaelt die Op-Typen des LGF-Graphen:
// - OpCode: Operator-Kennung
// - Op: Operator mit Ein- und Ausgangs-Tensor-Indizes
package lgf

import "fmt"

// OpCode identifiziert einen Graph-Operator
type OpCode uint32

const (
	OpIdentity OpCode = iota
	OpAdd
	OpMul
	OpRelu
	OpSoftmax
	OpReshape
	OpFullyConnected

	opCodeCount
)

// String gibt den Operator-Namen zurueck
func (c OpCode) String() string {
	switch c {
	case OpIdentity:
		return "IDENTITY"
	case OpAdd:
		return "ADD"
	case OpMul:
		return "MUL"
	case OpRelu:
		return "RELU"
	case OpSoftmax:
		return "SOFTMAX"
	case OpReshape:
		return "RESHAPE"
	case OpFullyConnected:
		return "FULLY_CONNECTED"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(c))
	}
}

// Op repraesentiert einen Operator im Graphen. Die Op-Liste ist bereits in
// Ausfuehrungsreihenfolge serialisiert; ein Scheduler ist nicht noetig.
type Op struct {
	Code    OpCode
	Inputs  []int32
	Outputs []int32
}
