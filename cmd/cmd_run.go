// cmd_run.go - Run Command: einen Graph-Durchlauf ausfuehren
// Hauptfunktionen: RunHandler, printOutput
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JoHorni/litert"
	"github.com/JoHorni/litert/fs/lgf"
)

// RunHandler - Laedt ein Modell, fuettert Eingaben und gibt Ausgaben aus.
// Ohne --input werden genullte Eingangspuffer verwendet.
func RunHandler(cmd *cobra.Command, args []string) error {
	threads, err := cmd.Flags().GetInt("threads")
	if err != nil {
		return err
	}
	inputs, err := cmd.Flags().GetStringArray("input")
	if err != nil {
		return err
	}

	options := litert.NewInterpreterOptions()
	defer options.Delete() //nolint:errcheck
	options.SetNumThreads(threads)

	interp, err := litert.NewInterpreterFromFile(args[0], options)
	if err != nil {
		return err
	}
	defer interp.Delete() //nolint:errcheck

	if err := interp.AllocateTensors(); err != nil {
		return err
	}

	views := interp.InputTensors()
	if len(inputs) > len(views) {
		return fmt.Errorf("have %d --input files, model has %d inputs", len(inputs), len(views))
	}

	for i, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := views[i].SetData(data); err != nil {
			return err
		}
	}

	if err := interp.Invoke(); err != nil {
		return err
	}

	for _, out := range interp.OutputTensors() {
		if err := printOutput(out); err != nil {
			return err
		}
	}

	return nil
}

// printOutput gibt einen Ausgangs-Tensor als Werteliste aus
func printOutput(t litert.Tensor) error {
	data, err := t.Data()
	if err != nil {
		return err
	}

	values, err := lgf.Float32s(t.Kind(), data)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s %v = %v\n", t.Name(), t.Kind(), t.Shape(), values)
	return nil
}

// newRunCmd - Erstellt den run Command
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run MODEL",
		Short: "Run one inference pass over an LGF model",
		Args:  cobra.ExactArgs(1),
		RunE:  RunHandler,
	}

	runCmd.Flags().Int("threads", 0, "Worker threads for the pass (default: LITERT_NUM_THREADS)")
	runCmd.Flags().StringArray("input", nil, "Raw input file, repeatable, bound to inputs in graph order")

	return runCmd
}
