package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tablehaus/csvlite/internal/cli/config"
	"github.com/tablehaus/csvlite/internal/convert"
)

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <input.csv> <output.db>",
		Short: "Convert a CSV file into a SQLite table",
		Long: `Convert a delimited text file into a table in a SQLite database file.

The first row of the input is the header and becomes the column names.
With --infer-types, every column's values are scanned and the column is
typed INTEGER, REAL, or TEXT (widening in that order); without it, every
column is TEXT.

Rows are written in batches, each batch in its own transaction. A failed
run may leave a partially loaded table behind; the output file is not
cleaned up.`,
		Example: `  # Convert with every column stored as TEXT
  csvlite convert people.csv people.db

  # Infer column types and name the table
  csvlite convert people.csv people.db --table people --infer-types

  # Tab-separated input, skipping rows with the wrong field count
  csvlite convert export.tsv export.db --delimiter tab --skip-malformed`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], args[1])
		},
	}

	cmd.Flags().StringP("table", "t", config.DefaultTable, "Name of the table to create")
	cmd.Flags().Bool("infer-types", false, "Infer column types from the data")
	cmd.Flags().Int("batch-size", config.DefaultBatchSize, "Rows committed per transaction")
	cmd.Flags().Bool("skip-malformed", false, "Skip rows whose field count does not match the header")

	return cmd
}

func runConvert(cmd *cobra.Command, inputPath, outputPath string) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	delimiter, err := cfg.DelimiterRune()
	if err != nil {
		return err
	}

	result, err := convert.Run(cmd.Context(), convert.Options{
		InputPath:     inputPath,
		OutputPath:    outputPath,
		Table:         cfg.Table,
		Delimiter:     delimiter,
		InferTypes:    cfg.InferTypes,
		BatchSize:     cfg.BatchSize,
		SkipMalformed: cfg.SkipMalformed,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Converted %s -> %s\n", inputPath, outputPath)
	fmt.Fprintf(out, "Table: %s (%d columns)\n", result.Table, len(result.Columns))
	fmt.Fprintf(out, "Rows loaded: %d in %s\n", result.Rows, result.Elapsed.Round(time.Millisecond))
	return nil
}
