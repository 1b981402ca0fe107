// Package export writes per-file size rows to CSV or XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/idelchi/dirsize/internal/dirsize"
)

// TimeLayout is the layout of the time columns.
const TimeLayout = "2006-01-02 15:04:05"

// SheetName is the name of the single worksheet of XLSX exports.
const SheetName = "Sheet1"

// Header is the first row of every export.
//
//nolint:gochecknoglobals // Column layout constant
var Header = []string{"File path", "Size", "Creation time", "Modified time", "Owner ID", "Permissions"}

// Row is one exported file.
type Row struct {
	Path        string
	Size        string
	Created     time.Time
	Modified    time.Time
	OwnerID     uint32
	Permissions string
}

// Rows converts entries to rows, formatting sizes with the given unit floor.
func Rows(entries []dirsize.FileEntry, unit dirsize.Unit) []Row {
	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, Row{
			Path:        entry.Path,
			Size:        dirsize.FormatSize(entry.Size, unit),
			Created:     entry.ChangeTime,
			Modified:    entry.ModTime,
			OwnerID:     entry.OwnerID,
			Permissions: entry.Permissions(),
		})
	}

	return rows
}

// fields renders the row as strings in Header order.
func (r Row) fields() []string {
	return []string{
		r.Path,
		r.Size,
		r.Created.Format(TimeLayout),
		r.Modified.Format(TimeLayout),
		strconv.FormatUint(uint64(r.OwnerID), 10),
		r.Permissions,
	}
}

// Supported reports whether path has an extension Write knows.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return true
	default:
		return false
	}
}

// Write exports rows to path, choosing the format from its extension.
// Paths with an unsupported extension are ignored: no file is written and
// written is false.
func Write(path string, rows []Row) (written bool, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return true, WriteCSV(path, rows)
	case ".xlsx":
		return true, WriteXLSX(path, rows)
	default:
		return false, nil
	}
}

// WriteCSV writes rows to a CSV file at path.
func WriteCSV(path string, rows []Row) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %q: %w", path, closeErr)
		}
	}()

	writer := csv.NewWriter(file)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, row := range rows {
		if err := writer.Write(row.fields()); err != nil {
			return fmt.Errorf("writing CSV row for %q: %w", row.Path, err)
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}

	return nil
}

// WriteXLSX writes rows to a single-sheet workbook at path.
func WriteXLSX(path string, rows []Row) (err error) {
	book := excelize.NewFile()

	defer func() {
		if closeErr := book.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing workbook: %w", closeErr)
		}
	}()

	if err := appendRow(book, 1, toCells(Header)); err != nil {
		return err
	}

	for i, row := range rows {
		cells := []any{
			row.Path,
			row.Size,
			row.Created.Format(TimeLayout),
			row.Modified.Format(TimeLayout),
			row.OwnerID,
			row.Permissions,
		}

		if err := appendRow(book, i+2, cells); err != nil { //nolint:mnd // header occupies row 1
			return err
		}
	}

	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %q: %w", path, err)
	}

	return nil
}

// appendRow writes cells into the given 1-based row of the sheet.
func appendRow(book *excelize.File, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("addressing row %d: %w", row, err)
	}

	if err := book.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}

	return nil
}

// toCells converts strings to workbook cell values.
func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}

	return cells
}
