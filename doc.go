/*
Package litert is a small on-device inference runtime for serialized
tensor graphs in the LGF container format.

The package exposes the classic binding-layer lifecycle around an opaque
execution context: load a Model from a file or buffer, build an Interpreter
from it, allocate tensors, bind input data, invoke, and read the outputs.
All handles are explicitly owned and explicitly released; releasing a handle
twice is an error, as is any operation performed in the wrong lifecycle
state.

	model, err := litert.NewModelFromFile("mobilenet.lgf")
	if err != nil { ... }
	defer model.Delete()

	interp, err := litert.NewInterpreter(model, nil)
	if err != nil { ... }
	defer interp.Delete()

	if err := interp.AllocateTensors(); err != nil { ... }

	input := interp.InputTensors()[0]
	if err := input.SetData(pixels); err != nil { ... }

	if err := interp.Invoke(); err != nil { ... }

	scores, err := interp.OutputTensors()[0].Data()

Graph execution happens behind the ml.Backend seam; the reference CPU
backend in ml/backend/ref is registered by importing this package.
*/
package litert
