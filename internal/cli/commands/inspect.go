package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tablehaus/csvlite/internal/convert"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <input.csv>",
		Short: "Show the schema that would be inferred for a CSV file",
		Long: `Scan a delimited text file and print the column types that convert
--infer-types would produce. Nothing is written; this is a dry run.`,
		Example: `  # Preview the inferred schema
  csvlite inspect people.csv

  # Tab-separated input
  csvlite inspect export.tsv --delimiter tab`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}

	return cmd
}

func runInspect(cmd *cobra.Command, inputPath string) error {
	cfg := getConfig()

	delimiter, err := cfg.DelimiterRune()
	if err != nil {
		return err
	}

	cols, err := convert.InferSchema(inputPath, delimiter)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Column", "Type"})
	for i, col := range cols {
		t.AppendRow(table.Row{i + 1, col.Name, col.Type.String()})
	}
	t.Render()

	fmt.Fprintf(cmd.OutOrStdout(), "(%d columns)\n", len(cols))
	return nil
}
