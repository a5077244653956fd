// Package convert orchestrates a CSV-to-SQLite conversion run: an optional
// type inference pass, table creation, and the batched load. Stages run
// sequentially; any stage failure halts the run. No cleanup of a partially
// written output is attempted, the tool is a one-shot converter.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tablehaus/csvlite/internal/infer"
	"github.com/tablehaus/csvlite/internal/record"
	"github.com/tablehaus/csvlite/internal/schema"
	"github.com/tablehaus/csvlite/internal/sqlite"
)

// Options configures a conversion run.
type Options struct {
	// InputPath is the delimited text file to read. It is read twice when
	// inference is enabled, so it must be a stably re-readable file.
	InputPath string
	// OutputPath is the SQLite database file to create or open.
	OutputPath string
	// Table is the name of the table to create.
	Table string
	// Delimiter is the field separator (',' if zero).
	Delimiter rune
	// InferTypes enables the inference pass; otherwise every column is TEXT.
	InferTypes bool
	// BatchSize is the rows-per-transaction threshold.
	BatchSize int
	// SkipMalformed skips short/long rows during loading instead of aborting.
	SkipMalformed bool
	// Logger is the structured logger (discard if nil).
	Logger *slog.Logger
}

// Result summarizes a successful conversion.
type Result struct {
	RunID   string
	Table   string
	Columns []schema.Column
	Rows    int64
	Elapsed time.Duration
}

// Run executes a full conversion and reports a single success or failure
// outcome. The database handle is closed on every exit path.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	runID := uuid.New().String()
	logger = logger.With("run_id", runID)

	start := time.Now()
	logger.Info("starting conversion",
		"input", opts.InputPath, "output", opts.OutputPath,
		"table", opts.Table, "infer_types", opts.InferTypes)

	cols, err := buildColumns(opts, logger)
	if err != nil {
		return nil, err
	}

	ddl, err := schema.CreateTableSQL(opts.Table, cols)
	if err != nil {
		return nil, err
	}
	insertSQL, err := schema.InsertSQL(opts.Table, cols)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(opts.OutputPath, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateTable(ctx, ddl); err != nil {
		return nil, err
	}

	r, err := record.Open(opts.InputPath, opts.Delimiter)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	loader := sqlite.NewLoader(store, sqlite.LoaderConfig{
		InsertSQL:     insertSQL,
		Types:         columnTypes(cols),
		BatchSize:     opts.BatchSize,
		SkipMalformed: opts.SkipMalformed,
		Logger:        logger,
	})

	rows, err := loader.Load(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("load failed after %d rows: %w", rows, err)
	}

	elapsed := time.Since(start)
	logger.Info("conversion complete", "rows", rows, "elapsed", elapsed.Round(time.Millisecond))

	return &Result{
		RunID:   runID,
		Table:   opts.Table,
		Columns: cols,
		Rows:    rows,
		Elapsed: elapsed,
	}, nil
}

// InferSchema runs the inference pass alone and returns the resulting
// columns. Used by the inspect command for dry runs.
func InferSchema(path string, delimiter rune) ([]schema.Column, error) {
	r, err := record.Open(path, delimiter)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	types, err := infer.Infer(r, len(r.Header()))
	if err != nil {
		return nil, err
	}
	return schema.Columns(r.Header(), types)
}

// buildColumns produces the table schema, either from an inference pass over
// the input or as all-TEXT columns from the header alone.
func buildColumns(opts Options, logger *slog.Logger) ([]schema.Column, error) {
	r, err := record.Open(opts.InputPath, opts.Delimiter)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	header := r.Header()
	types := make([]infer.Type, len(header))

	if opts.InferTypes {
		logger.Debug("inferring column types", "columns", len(header))
		var src infer.RowSource = r
		if opts.SkipMalformed {
			// Inference must see the same rows the loader will insert.
			src = skipMalformedSource{r}
		}
		if types, err = infer.Infer(src, len(header)); err != nil {
			return nil, err
		}
	} else {
		for i := range types {
			types[i] = infer.TypeText
		}
	}

	return schema.Columns(header, types)
}

// skipMalformedSource drops rows with a mismatched field count.
type skipMalformedSource struct {
	r *record.Reader
}

func (s skipMalformedSource) Next() ([]string, error) {
	for {
		rec, err := s.r.Next()
		var malformed *record.MalformedRowError
		if errors.As(err, &malformed) {
			continue
		}
		return rec, err
	}
}

func columnTypes(cols []schema.Column) []infer.Type {
	types := make([]infer.Type, len(cols))
	for i, col := range cols {
		types[i] = col.Type
	}
	return types
}
