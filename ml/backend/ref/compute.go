// compute.go - Referenz-Kernel fuer die Graph-Ausfuehrung
//
// Dieses Modul enthaelt:
// - Forward: ein blockierender Graph-Durchlauf in Op-Reihenfolge
// - opIdentity/opAdd/opMul/opRelu/opSoftmax/opReshape/opFullyConnected
// - parallel: Partitionierung elementweiser Kernel auf Worker-Goroutinen
package ref

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/JoHorni/litert/fs/lgf"
	"github.com/JoHorni/litert/ml"
)

// Forward fuehrt einen kompletten Graph-Durchlauf aus.
// Der Kontext wird zwischen Ops geprueft, nicht innerhalb eines Kernels.
func (b *Backend) Forward(ctx context.Context) error {
	if b.closed {
		return fmt.Errorf("backend is closed")
	}
	if !b.allocated {
		return fmt.Errorf("tensors not allocated")
	}

	for _, op := range b.model.Ops() {
		if err := ctx.Err(); err != nil {
			return err
		}

		in := make([]*ml.Tensor, len(op.Inputs))
		for i, idx := range op.Inputs {
			in[i] = b.tensors[idx]
		}
		out := make([]*ml.Tensor, len(op.Outputs))
		for i, idx := range op.Outputs {
			out[i] = b.tensors[idx]
		}

		var err error
		switch op.Code {
		case lgf.OpIdentity, lgf.OpReshape:
			err = opCopy(in[0], out[0])
		case lgf.OpAdd:
			err = b.opBinary(in[0], in[1], out[0], func(a, b float32) float32 { return a + b })
		case lgf.OpMul:
			err = b.opBinary(in[0], in[1], out[0], func(a, b float32) float32 { return a * b })
		case lgf.OpRelu:
			err = b.opUnary(in[0], out[0], func(v float32) float32 { return max(v, 0) })
		case lgf.OpSoftmax:
			err = b.opSoftmax(in[0], out[0])
		case lgf.OpFullyConnected:
			err = opFullyConnected(in, out[0])
		default:
			err = fmt.Errorf("unsupported op")
		}
		if err != nil {
			return fmt.Errorf("op %s: %w", op.Code, err)
		}
	}

	return nil
}

// parallel partitioniert [0,n) auf die Worker des Backends
func (b *Backend) parallel(n int, fn func(start, end int)) {
	if n == 0 {
		return
	}

	chunk := (n + b.threads - 1) / b.threads

	var g errgroup.Group
	g.SetLimit(b.threads)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	g.Wait() //nolint:errcheck
}

// opCopy kopiert Rohbytes (IDENTITY und RESHAPE)
func opCopy(src, dst *ml.Tensor) error {
	if len(src.Data) != len(dst.Data) {
		return fmt.Errorf("buffer size mismatch: %d vs %d", len(src.Data), len(dst.Data))
	}
	copy(dst.Data, src.Data)
	return nil
}

// opUnary wendet fn elementweise an
func (b *Backend) opUnary(src, dst *ml.Tensor, fn func(float32) float32) error {
	values, err := lgf.Float32s(src.Kind, src.Data)
	if err != nil {
		return err
	}

	b.parallel(len(values), func(start, end int) {
		for i := start; i < end; i++ {
			values[i] = fn(values[i])
		}
	})

	return lgf.PutFloat32s(dst.Kind, values, dst.Data)
}

// opBinary wendet fn elementweise auf zwei Operanden an
func (b *Backend) opBinary(x, y, dst *ml.Tensor, fn func(float32, float32) float32) error {
	xs, err := lgf.Float32s(x.Kind, x.Data)
	if err != nil {
		return err
	}
	ys, err := lgf.Float32s(y.Kind, y.Data)
	if err != nil {
		return err
	}
	if len(xs) != len(ys) {
		return fmt.Errorf("operand size mismatch: %d vs %d", len(xs), len(ys))
	}

	b.parallel(len(xs), func(start, end int) {
		for i := start; i < end; i++ {
			xs[i] = fn(xs[i], ys[i])
		}
	})

	return lgf.PutFloat32s(dst.Kind, xs, dst.Data)
}

// opSoftmax berechnet Softmax ueber die letzte Dimension
func (b *Backend) opSoftmax(src, dst *ml.Tensor) error {
	values, err := lgf.Float32s(src.Kind, src.Data)
	if err != nil {
		return err
	}

	width := int(src.Shape[len(src.Shape)-1])
	rows := len(values) / width

	b.parallel(rows, func(start, end int) {
		for r := start; r < end; r++ {
			row := values[r*width : (r+1)*width]

			maxv := row[0]
			for _, v := range row[1:] {
				maxv = max(maxv, v)
			}

			var sum float32
			for i, v := range row {
				row[i] = float32(math.Exp(float64(v - maxv)))
				sum += row[i]
			}
			for i := range row {
				row[i] /= sum
			}
		}
	})

	return lgf.PutFloat32s(dst.Kind, values, dst.Data)
}

// opFullyConnected berechnet out = x * W^T (+ bias) via BLAS
func opFullyConnected(in []*ml.Tensor, dst *ml.Tensor) error {
	x, w := in[0], in[1]

	xs, err := lgf.Float32s(x.Kind, x.Data)
	if err != nil {
		return err
	}
	ws, err := lgf.Float32s(w.Kind, w.Data)
	if err != nil {
		return err
	}

	m := int(x.Shape[0])
	k := int(x.Shape[1])
	n := int(w.Shape[0])

	out := make([]float32, m*n)

	if len(in) == 3 {
		bias, err := lgf.Float32s(in[2].Kind, in[2].Data)
		if err != nil {
			return err
		}
		for r := range m {
			copy(out[r*n:(r+1)*n], bias)
		}
	}

	a := blas32.General{Rows: m, Cols: k, Stride: k, Data: xs}
	bm := blas32.General{Rows: n, Cols: k, Stride: k, Data: ws}
	c := blas32.General{Rows: m, Cols: n, Stride: n, Data: out}
	blas32.Gemm(blas.NoTrans, blas.Trans, 1, a, bm, 1, c)

	return lgf.PutFloat32s(dst.Kind, out, dst.Data)
}
