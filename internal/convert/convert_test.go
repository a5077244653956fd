package convert

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/tablehaus/csvlite/internal/infer"
	"github.com/tablehaus/csvlite/internal/record"
	"github.com/tablehaus/csvlite/internal/schema"
	"github.com/tablehaus/csvlite/internal/testutil"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// tableSchema returns name -> declared type for the given table.
func tableSchema(t *testing.T, db *sql.DB, tableName string) map[string]string {
	t.Helper()
	rows, err := db.Query(`SELECT name, type FROM pragma_table_info(?)`, tableName)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	got := map[string]string{}
	for rows.Next() {
		var name, typ string
		require.NoError(t, rows.Scan(&name, &typ))
		got[name] = typ
	}
	require.NoError(t, rows.Err())
	return got
}

func TestRun_WithInference(t *testing.T) {
	input := writeCSV(t, "name,age,city,salary\nJohn Doe,28,New York,75000\nJane Smith,32,San Francisco,95000\n")
	output := filepath.Join(t.TempDir(), "out.db")

	result, err := Run(context.Background(), Options{
		InputPath:  input,
		OutputPath: output,
		Table:      "people",
		InferTypes: true,
		Logger:     testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.Rows)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Columns, 4)
	assert.Equal(t, infer.TypeText, result.Columns[0].Type)
	assert.Equal(t, infer.TypeInteger, result.Columns[1].Type)
	assert.Equal(t, infer.TypeText, result.Columns[2].Type)
	// All salary values are integers, so the column is INTEGER, not REAL.
	assert.Equal(t, infer.TypeInteger, result.Columns[3].Type)

	db := openDB(t, output)
	assert.Equal(t, map[string]string{
		"name":   "TEXT",
		"age":    "INTEGER",
		"city":   "TEXT",
		"salary": "INTEGER",
	}, tableSchema(t, db, "people"))

	rows, err := db.Query(`SELECT "name", "age" FROM "people" ORDER BY rowid`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var name string
	var age int64
	require.True(t, rows.Next())
	require.NoError(t, rows.Scan(&name, &age))
	assert.Equal(t, "John Doe", name)
	assert.Equal(t, int64(28), age)
	require.True(t, rows.Next())
	require.NoError(t, rows.Scan(&name, &age))
	assert.Equal(t, "Jane Smith", name)
	assert.Equal(t, int64(32), age)
	require.NoError(t, rows.Err())
}

func TestRun_WithoutInference(t *testing.T) {
	input := writeCSV(t, "a,b\n1,2.5\n")
	output := filepath.Join(t.TempDir(), "out.db")

	result, err := Run(context.Background(), Options{
		InputPath:  input,
		OutputPath: output,
		Table:      "data",
		Logger:     testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Rows)

	db := openDB(t, output)
	assert.Equal(t, map[string]string{"a": "TEXT", "b": "TEXT"}, tableSchema(t, db, "data"))

	var a, b string
	require.NoError(t, db.QueryRow(`SELECT "a", "b" FROM "data"`).Scan(&a, &b))
	assert.Equal(t, "1", a)
	assert.Equal(t, "2.5", b)
}

func TestRun_MalformedRowAborts(t *testing.T) {
	input := writeCSV(t, "a,b\n1,2\n3\n")
	output := filepath.Join(t.TempDir(), "out.db")

	_, err := Run(context.Background(), Options{
		InputPath:  input,
		OutputPath: output,
		Table:      "data",
		Logger:     testutil.NewTestLogger(t),
	})
	require.Error(t, err)
	var malformed *record.MalformedRowError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 2, malformed.Row)
}

func TestRun_SkipMalformed(t *testing.T) {
	input := writeCSV(t, "a,b\n1,x\n2\n3,y\n")
	output := filepath.Join(t.TempDir(), "out.db")

	result, err := Run(context.Background(), Options{
		InputPath:     input,
		OutputPath:    output,
		Table:         "data",
		InferTypes:    true,
		SkipMalformed: true,
		Logger:        testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Rows)
}

func TestRun_MissingInput(t *testing.T) {
	_, err := Run(context.Background(), Options{
		InputPath:  filepath.Join(t.TempDir(), "nope.csv"),
		OutputPath: filepath.Join(t.TempDir(), "out.db"),
		Table:      "data",
	})
	require.Error(t, err)
}

func TestRun_EmptyTableName(t *testing.T) {
	input := writeCSV(t, "a\n1\n")
	_, err := Run(context.Background(), Options{
		InputPath:  input,
		OutputPath: filepath.Join(t.TempDir(), "out.db"),
		Table:      "",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table name")
}

func TestRun_DuplicateHeaderFails(t *testing.T) {
	input := writeCSV(t, "id,id\n1,2\n")
	output := filepath.Join(t.TempDir(), "out.db")

	_, err := Run(context.Background(), Options{
		InputPath:  input,
		OutputPath: output,
		Table:      "data",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate column name")
	// Failed before any database write.
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_InferenceFailureCreatesNoTable(t *testing.T) {
	// Malformed row fails the inference pass before the table is created.
	input := writeCSV(t, "a,b\n1,2\n3\n")
	output := filepath.Join(t.TempDir(), "out.db")

	_, err := Run(context.Background(), Options{
		InputPath:  input,
		OutputPath: output,
		Table:      "data",
		InferTypes: true,
		Logger:     testutil.NewTestLogger(t),
	})
	require.Error(t, err)
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "output must not be created when inference fails")
}

func TestRun_NoDataRows(t *testing.T) {
	input := writeCSV(t, "a,b\n")
	output := filepath.Join(t.TempDir(), "out.db")

	result, err := Run(context.Background(), Options{
		InputPath:  input,
		OutputPath: output,
		Table:      "data",
		InferTypes: true,
		Logger:     testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Rows)

	db := openDB(t, output)
	assert.Equal(t, map[string]string{"a": "TEXT", "b": "TEXT"}, tableSchema(t, db, "data"),
		"columns with no data default to TEXT")
}

func TestRun_CustomDelimiter(t *testing.T) {
	input := writeCSV(t, "a\tb\n1\tx\n")
	output := filepath.Join(t.TempDir(), "out.db")

	result, err := Run(context.Background(), Options{
		InputPath:  input,
		OutputPath: output,
		Table:      "data",
		Delimiter:  '\t',
		InferTypes: true,
		Logger:     testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Rows)
	assert.Equal(t, []schema.Column{
		{Name: "a", Type: infer.TypeInteger},
		{Name: "b", Type: infer.TypeText},
	}, result.Columns)
}

func TestInferSchema(t *testing.T) {
	input := writeCSV(t, "id,score,label\n1,2.5,x\n2,3,y\n")

	cols, err := InferSchema(input, 0)
	require.NoError(t, err)
	assert.Equal(t, []schema.Column{
		{Name: "id", Type: infer.TypeInteger},
		{Name: "score", Type: infer.TypeReal},
		{Name: "label", Type: infer.TypeText},
	}, cols)
}
