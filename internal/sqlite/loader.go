package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tablehaus/csvlite/internal/infer"
	"github.com/tablehaus/csvlite/internal/record"
)

// DefaultBatchSize is the number of rows committed per transaction. It
// bounds transaction log growth and lock duration on large inputs while
// still amortizing per-statement overhead.
const DefaultBatchSize = 1000

// Loader streams coerced rows into a table inside a bounded set of
// transactions. The table must already exist and its schema is fixed: a
// field that fails to coerce against its column's verdict is fatal, there is
// no numeric fallback at load time.
type Loader struct {
	store         *Store
	insertSQL     string
	types         []infer.Type
	batchSize     int
	skipMalformed bool
	logger        *slog.Logger
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	// InsertSQL is the parameterized insert statement for the target table.
	InsertSQL string
	// Types holds the storage type verdict per column, in header order.
	Types []infer.Type
	// BatchSize is the rows-per-transaction threshold (DefaultBatchSize if <= 0).
	BatchSize int
	// SkipMalformed logs and skips rows with a mismatched field count
	// instead of aborting the load.
	SkipMalformed bool
	// Logger is the structured logger (discard if nil).
	Logger *slog.Logger
}

// NewLoader creates a loader writing through the given store.
func NewLoader(store *Store, cfg LoaderConfig) *Loader {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{
		store:         store,
		insertSQL:     cfg.InsertSQL,
		types:         cfg.Types,
		batchSize:     batchSize,
		skipMalformed: cfg.SkipMalformed,
		logger:        logger,
	}
}

// RowSource yields data rows and reports the 1-based index of the row most
// recently read, for error messages. *record.Reader satisfies it.
type RowSource interface {
	Next() ([]string, error)
	Row() int
}

// Load streams rows from the source into the table and returns the number of
// rows durably committed. On error the open batch is rolled back, so the
// returned count reflects only committed rows.
func (l *Loader) Load(ctx context.Context, rows RowSource) (int64, error) {
	if l.store.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	tx, stmt, err := l.begin(ctx)
	if err != nil {
		return 0, err
	}

	var committed, inBatch int64
	args := make([]any, len(l.types))

	fail := func(err error) (int64, error) {
		_ = stmt.Close()
		_ = tx.Rollback()
		return committed, err
	}

	for {
		rec, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var malformed *record.MalformedRowError
		if errors.As(err, &malformed) {
			if l.skipMalformed {
				l.logger.Warn("skipping malformed row",
					"row", malformed.Row, "expected", malformed.Expected, "actual", malformed.Actual)
				continue
			}
			return fail(err)
		}
		if err != nil {
			return fail(err)
		}

		for i, raw := range rec {
			v, err := infer.Coerce(raw, l.types[i])
			if err != nil {
				return fail(fmt.Errorf("row %d, column %d: %w", rows.Row(), i+1, err))
			}
			args[i] = v
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fail(fmt.Errorf("failed to insert row %d: %w", rows.Row(), err))
		}
		inBatch++

		if inBatch >= int64(l.batchSize) {
			if err := l.commit(tx, stmt); err != nil {
				return committed, err
			}
			committed += inBatch
			inBatch = 0
			l.logger.Debug("committed batch", "rows", committed)

			tx, stmt, err = l.begin(ctx)
			if err != nil {
				return committed, err
			}
		}
	}

	if err := l.commit(tx, stmt); err != nil {
		return committed, err
	}
	committed += inBatch
	return committed, nil
}

func (l *Loader) begin(ctx context.Context) (*sql.Tx, *sql.Stmt, error) {
	tx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, l.insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return nil, nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	return tx, stmt, nil
}

func (l *Loader) commit(tx *sql.Tx, stmt *sql.Stmt) error {
	_ = stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}
