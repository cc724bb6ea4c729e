package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMissingInput signals a required table or column that is absent or
// unreadable. Fatal for the invocation it belongs to; batch callers stop.
var ErrMissingInput = errors.New("missing input")

// Table is an in-memory CSV export: ordered header plus rows, every field
// kept as text. Tables are read-only once loaded.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// New creates a table from a header and rows
func New(columns []string, rows [][]string) *Table {
	t := &Table{Columns: columns, Rows: rows}
	t.buildIndex()
	return t
}

// Load reads a CSV file into a Table. A UTF-8 BOM on the header is
// stripped; ragged rows are tolerated and padded on access.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingInput, err)
	}
	defer file.Close()

	return Read(file)
}

// Read parses CSV from r into a Table
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMissingInput, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		rows = append(rows, record)
	}

	return New(header, rows), nil
}

// Save writes the table back to a CSV file, UTF-8 with BOM to match the
// source exports.
func (t *Table) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteString("\uFEFF"); err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether a column exists, matching case-insensitively
// on trimmed header names.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[normalize(name)]
	return ok
}

// Field returns the value of a column in the given row, or "" when the
// column is unknown or the row is too short.
func (t *Table) Field(row []string, column string) string {
	i, ok := t.index[normalize(column)]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[normalize(c)] = i
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
