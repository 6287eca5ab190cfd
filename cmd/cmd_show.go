// cmd_show.go - Show Command und Modell-Info Anzeige
// Hauptfunktionen: ShowHandler, showTensors, showOps
package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/JoHorni/litert/fs/lgf"
)

// ShowHandler - Zeigt Header, Tensors und Ops einer LGF-Datei an
func ShowHandler(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	model, err := lgf.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}

	kv := model.KV()
	fmt.Println("  Model")
	fmt.Printf("    name          %s\n", kv.Name())
	if d := kv.Description(); d != "" {
		fmt.Printf("    description   %s\n", d)
	}
	fmt.Printf("    tensors       %d\n", len(model.Tensors()))
	fmt.Printf("    ops           %d\n", len(model.Ops()))
	fmt.Printf("    inputs        %d\n", len(model.Inputs()))
	fmt.Printf("    outputs       %d\n", len(model.Outputs()))
	fmt.Println()

	showTensors(model)
	fmt.Println()
	showOps(model)

	return nil
}

// showTensors rendert die Tensor-Tabelle
func showTensors(model *lgf.Model) {
	var data [][]string
	for i, t := range model.Tensors() {
		role := "activation"
		if t.Flags&lgf.FlagWeights != 0 {
			role = "weights"
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			t.Name,
			t.Type(),
			fmt.Sprintf("%v", t.Shape),
			role,
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "NAME", "TYPE", "SHAPE", "ROLE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}

// showOps rendert die Op-Liste
func showOps(model *lgf.Model) {
	var data [][]string
	for i, op := range model.Ops() {
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			op.Code.String(),
			fmt.Sprintf("%v", op.Inputs),
			fmt.Sprintf("%v", op.Outputs),
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "OP", "INPUTS", "OUTPUTS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}

// newShowCmd - Erstellt den show Command
func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show MODEL",
		Short: "Show information for an LGF model file",
		Args:  cobra.ExactArgs(1),
		RunE:  ShowHandler,
	}
}
