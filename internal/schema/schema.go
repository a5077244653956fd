// Package schema renders inferred column types and header names into SQLite
// DDL and parameterized insert statements. Identifiers are always quoted, so
// arbitrary header text (spaces, reserved words, quote characters) cannot
// break a statement or inject SQL.
package schema

import (
	"fmt"
	"strings"

	"github.com/tablehaus/csvlite/internal/infer"
)

// Column pairs a header name with its inferred storage type.
type Column struct {
	Name string
	Type infer.Type
}

// Columns zips header names with type verdicts. The two slices must be the
// same length; they both derive from the same header read.
func Columns(header []string, types []infer.Type) ([]Column, error) {
	if len(header) != len(types) {
		return nil, fmt.Errorf("header has %d columns but %d type verdicts", len(header), len(types))
	}
	cols := make([]Column, len(header))
	for i, name := range header {
		cols[i] = Column{Name: name, Type: types[i]}
	}
	return cols, nil
}

// QuoteIdentifier quotes an identifier for SQLite, doubling any embedded
// double quotes.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateTableSQL builds the CREATE TABLE statement for the given columns.
// Duplicate column names are a hard error rather than a silent dedup: the
// header is the contract for the output schema.
func CreateTableSQL(table string, cols []Column) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("table name must not be empty")
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("table %s must have at least one column", table)
	}

	seen := make(map[string]struct{}, len(cols))
	defs := make([]string, len(cols))
	for i, col := range cols {
		if _, dup := seen[col.Name]; dup {
			return "", fmt.Errorf("duplicate column name %q in header", col.Name)
		}
		seen[col.Name] = struct{}{}
		defs[i] = QuoteIdentifier(col.Name) + " " + col.Type.String()
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdentifier(table), strings.Join(defs, ", ")), nil
}

// InsertSQL builds the parameterized insert statement matching CreateTableSQL.
func InsertSQL(table string, cols []Column) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("table name must not be empty")
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("table %s must have at least one column", table)
	}

	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		names[i] = QuoteIdentifier(col.Name)
		placeholders[i] = "?"
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdentifier(table),
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
	), nil
}
