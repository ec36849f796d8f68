// =============================================================================
// Order Report Bot - Report Builder
// =============================================================================
//
// This module turns a batch of field records into a single-sheet XLSX report.
//
// REPORT LAYOUT:
//   Row 1      : localized headers in the fixed column order (types.Columns)
//   Row 2..n   : one field record per row, absent fields written as ""
//
// LIFECYCLES:
//   1. Build  : a fresh file is created from the records
//   2. Append : an existing report is read, the new rows are added after the
//               existing ones, and the combined table is rewritten in full
//
// Both paths finish by running the Formatter over the written file.
//
// =============================================================================

package report

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/docx-order-report/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotReport is returned when an existing workbook does not carry the
// report header row.
var ErrNotReport = errors.New("workbook is not an order report")

// ExistingReportError reports a failure to read an existing report on the
// append path. It is never returned for a file that does not exist.
type ExistingReportError struct {
	Path string
	Err  error
}

func (e *ExistingReportError) Error() string {
	return fmt.Sprintf("failed to read existing report %s: %v", e.Path, e.Err)
}

func (e *ExistingReportError) Unwrap() error {
	return e.Err
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder writes report files.
type Builder struct {
	formatter *Formatter
}

// NewBuilder creates a Builder that formats with the default Formatter.
func NewBuilder() *Builder {
	return &Builder{formatter: NewFormatter()}
}

// Build writes records to a new report at path, replacing any file there.
//
// PARAMETERS:
//   - records: The accepted field records, in extraction order.
//   - path: The destination .xlsx path.
//
// RETURNS:
//   - An error if the workbook cannot be written or formatted.
func (b *Builder) Build(records []types.FieldRecord, path string) error {
	return b.write(path, Project(records))
}

// Append adds records after the rows of the report at path.
// If path does not exist it behaves exactly like Build. Any other failure to
// read the existing report is returned as *ExistingReportError and nothing is
// written.
func (b *Builder) Append(records []types.FieldRecord, path string) error {
	existing, err := ReadRows(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return b.Build(records, path)
		}
		return &ExistingReportError{Path: path, Err: err}
	}

	return b.write(path, append(existing, Project(records)...))
}

// Project maps records onto the fixed column order.
func Project(records []types.FieldRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Values())
	}
	return rows
}

// write serializes the header row plus rows to path and formats the result.
func (b *Builder) write(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", toCells(types.Headers())); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, toCells(row)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}

	if err := b.formatter.Format(path); err != nil {
		return fmt.Errorf("failed to format report %s: %w", path, err)
	}

	return nil
}

// toCells converts a row to the slice type SetSheetRow expects.
// Values are written as strings so they read back unchanged.
func toCells(row []string) *[]interface{} {
	cells := make([]interface{}, len(types.Columns))
	for i := range cells {
		if i < len(row) {
			cells[i] = row[i]
		} else {
			cells[i] = ""
		}
	}
	return &cells
}

// =============================================================================
// READER
// =============================================================================

// ReadRows returns the data rows of an existing report, each padded to the
// fixed column count. The header row is checked and dropped.
//
// RETURNS:
//   - The data rows in sheet order.
//   - An error wrapping os.ErrNotExist when path does not exist, ErrNotReport
//     when the header row does not match, or the workbook read error.
func ReadRows(path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 || !isHeaderRow(rows[0]) {
		return nil, ErrNotReport
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}
		data = append(data, padRow(row))
	}

	return data, nil
}

// isHeaderRow checks a row against the localized header set.
func isHeaderRow(row []string) bool {
	headers := types.Headers()
	if len(row) < len(headers) {
		return false
	}
	for i, h := range headers {
		if strings.TrimSpace(row[i]) != h {
			return false
		}
	}
	return true
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// padRow fills trailing cells that GetRows trims, and drops extra columns.
func padRow(row []string) []string {
	out := make([]string, len(types.Columns))
	copy(out, row)
	return out
}
