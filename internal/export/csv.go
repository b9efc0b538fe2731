// Package export serializes filtered expense views into downloadable
// artifacts. The only format is CSV, matching the fixed column layout the
// original expense manager produced.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"

	"finman/internal/core"
)

// ErrNothingToExport signals an empty input view. It is a usability guard
// for the caller to surface, not a data error.
var ErrNothingToExport = errors.New("nothing to export")

// Header is the fixed CSV column layout.
var Header = []string{"Amount", "Category", "Description", "Date"}

// CSV encodes the expenses as a UTF-8 CSV document: the fixed header row
// followed by one row per record, preserving input order. Fields containing
// delimiters, quotes or newlines are quoted with doubled internal quotes
// (standard RFC 4180 behavior from encoding/csv).
func CSV(expenses []core.Expense) ([]byte, error) {
	if len(expenses) == 0 {
		return nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, e := range expenses {
		row := []string{e.Amount.String(), e.Category, e.Description, e.Date.String()}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the artifact name for an export performed on the given
// day, e.g. expenses_export_2024-01-31.csv.
func Filename(day core.Date) string {
	return fmt.Sprintf("expenses_export_%s.csv", day)
}
