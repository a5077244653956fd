// Package record provides streaming access to delimited text files.
// A Reader exposes the header row up front and yields data rows one at a
// time, so arbitrarily large inputs can be processed in constant memory.
package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// MalformedRowError reports a data row whose field count does not match the
// header. It is row-scoped: the Reader remains usable after returning one,
// so callers can choose to abort or skip.
type MalformedRowError struct {
	Row      int // 1-based data row index
	Expected int
	Actual   int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("row %d: expected %d fields, got %d", e.Row, e.Expected, e.Actual)
}

// Reader streams data rows from a delimited text file. The header is read
// once at Open time; iteration never re-reads it. Re-reading the data (for
// a second pass) is done by opening a new Reader on the same path.
type Reader struct {
	f      *os.File
	csv    *csv.Reader
	header []string
	row    int
}

// Open opens the file at path and reads its header row.
// The input must be a stably re-readable regular file, not a pipe.
func Open(path string, delimiter rune) (*Reader, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the CLI user
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("input %s is not a regular file (re-readable source required)", path)
	}

	cr := csv.NewReader(f)
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	// Rows are coerced and discarded immediately, so the record buffer can
	// be reused across reads.
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		_ = f.Close()
		return nil, fmt.Errorf("input %s is empty: missing header row", path)
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Excel on Windows prepends a UTF-8 BOM; strip it from the first cell.
	header = append([]string(nil), header...)
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	return &Reader{f: f, csv: cr, header: header}, nil
}

// Header returns the header fields in file order.
func (r *Reader) Header() []string {
	return r.header
}

// Next returns the next data row. It returns io.EOF at end of input and a
// *MalformedRowError when the row's field count differs from the header.
// The returned slice is only valid until the next call.
func (r *Reader) Next() ([]string, error) {
	rec, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	r.row++
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) && errors.Is(pe.Err, csv.ErrFieldCount) {
			return nil, &MalformedRowError{Row: r.row, Expected: len(r.header), Actual: len(rec)}
		}
		return nil, fmt.Errorf("failed to read row %d: %w", r.row, err)
	}
	return rec, nil
}

// Row returns the 1-based index of the most recently read data row.
func (r *Reader) Row() int {
	return r.row
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
