// Package infer implements column type inference and load-time coercion for
// delimited text data.
//
// Every column starts at the most specific storage type, INTEGER, and is
// widened monotonically toward TEXT as values are observed:
//
//	INTEGER < REAL < TEXT
//
// Inference is a full scan: sampling would risk a verdict the data doesn't
// support, which would surface later as a coercion failure during loading.
package infer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Type is a column storage type verdict.
type Type int

// Verdicts in widening order. The ordering is load-bearing: Widen relies on
// the integer values to take the least restrictive of two types.
const (
	TypeInteger Type = iota
	TypeReal
	TypeText
)

func (t Type) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// CoercionError reports a field that could not be converted to its column's
// inferred storage type.
type CoercionError struct {
	Value string
	Type  Type
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %q to %s", e.Value, e.Type)
}

// RowSource yields rows of raw text fields. io.EOF terminates iteration.
type RowSource interface {
	Next() ([]string, error)
}

// Classify returns the most specific type that can represent the value.
// Integers that overflow int64 classify as REAL; non-finite float tokens
// (NaN, Inf) classify as TEXT since they have no REAL literal in SQLite.
func Classify(raw string) Type {
	s := strings.TrimSpace(raw)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return TypeInteger
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return TypeReal
	}
	return TypeText
}

// Widen returns the least restrictive of the two types. It never narrows:
// Widen(cur, obs) >= cur for all obs.
func Widen(cur, obs Type) Type {
	if obs > cur {
		return obs
	}
	return cur
}

// Infer folds Classify and Widen over every row of the source and returns
// one verdict per column, aligned to header order. Empty fields neither
// widen nor narrow a verdict; a column that never sees a non-empty value
// defaults to TEXT. A source failure aborts inference.
func Infer(rows RowSource, width int) ([]Type, error) {
	verdicts := make([]Type, width)
	seen := make([]bool, width)

	for {
		rec, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("type inference failed: %w", err)
		}
		for i, raw := range rec {
			if i >= width {
				break
			}
			// TEXT is terminal, nothing left to learn about this column.
			if verdicts[i] == TypeText && seen[i] {
				continue
			}
			if strings.TrimSpace(raw) == "" {
				continue
			}
			seen[i] = true
			verdicts[i] = Widen(verdicts[i], Classify(raw))
		}
	}

	for i := range verdicts {
		if !seen[i] {
			verdicts[i] = TypeText
		}
	}
	return verdicts, nil
}

// Coerce converts a raw field into a driver-ready value for its column's
// storage type: nil for empty fields, int64 for INTEGER, float64 for REAL,
// and the verbatim string for TEXT. It is pure and does no I/O.
func Coerce(raw string, t Type) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	switch t {
	case TypeInteger:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &CoercionError{Value: raw, Type: t}
		}
		return n, nil
	case TypeReal:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, &CoercionError{Value: raw, Type: t}
		}
		return f, nil
	default:
		return raw, nil
	}
}
