package report

import (
	"fmt"

	"github.com/ginjaninja78/docx-order-report/internal/types"
	"github.com/xuri/excelize/v2"
)

// Layout constants for the report sheet.
const (
	HeaderFillColor = "366092"
	HeaderFontColor = "FFFFFF"
	HeaderFontSize  = 12
	DataRowHeight   = 40
)

// Formatter applies the fixed report layout to a written workbook in place.
//
// Running it twice leaves the workbook in the same state as running it once:
// every style is assigned, never merged with what the cell already has.
type Formatter struct {
	borders []excelize.Border
}

// NewFormatter returns a Formatter with thin black borders.
func NewFormatter() *Formatter {
	return &Formatter{
		borders: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	}
}

// Format opens the workbook at path, styles the first sheet and saves it.
func (fm *Formatter) Format(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}
	lastRow := len(rows)
	if lastRow == 0 {
		lastRow = 1
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Border: fm.borders,
		Fill:   excelize.Fill{Type: "pattern", Color: []string{HeaderFillColor}, Pattern: 1},
		Font:   &excelize.Font{Bold: true, Color: HeaderFontColor, Size: HeaderFontSize},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	dataStyle, err := f.NewStyle(&excelize.Style{
		Border: fm.borders,
		Alignment: &excelize.Alignment{
			Horizontal: "right",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create data style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(types.Columns))
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header row: %w", err)
	}

	if lastRow > 1 {
		end := fmt.Sprintf("%s%d", lastCol, lastRow)
		if err := f.SetCellStyle(sheet, "A2", end, dataStyle); err != nil {
			return fmt.Errorf("failed to style data rows: %w", err)
		}
	}

	for i, col := range types.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, col.Width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", name, err)
		}
	}

	for row := 2; row <= lastRow; row++ {
		if err := f.SetRowHeight(sheet, row, DataRowHeight); err != nil {
			return fmt.Errorf("failed to set height of row %d: %w", row, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}
