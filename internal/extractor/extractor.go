// =============================================================================
// Order Report Bot - Field Extractor
// =============================================================================
//
// This module reads one uploaded order document and pulls out the six tracked
// fields. The batch processor only depends on the Extractor interface, so the
// DOCX implementation below can be swapped for another document parser.
//
// EXTRACTION STRATEGY (DOCX):
//   1. Open the document as a zip archive and read word/document.xml
//   2. Collect text lines: every table row becomes a list of cells, every
//      paragraph outside a table becomes a one-cell line
//   3. For each field, find the first cell containing one of its labels
//        - the value is the text after the label in that cell, or
//        - the next non-empty, non-label cell on the same line
//
// EXAMPLE (table row):
//   | رقم الأمر | 123 | التاريخ | 1/10/2025 |
//   -> OrderNumber = "123", Date = "1/10/2025"
//
// EXAMPLE (paragraph):
//   "اسم الشركة: عالم البطاريات والاطارات"
//   -> CompanyName = "عالم البطاريات والاطارات"
//
// =============================================================================

package extractor

import (
	"context"
	"errors"

	"github.com/ginjaninja78/docx-order-report/internal/types"
)

// ErrNoData is returned when a document was read but carries no order number.
var ErrNoData = errors.New("document has no order number")

// Extractor produces a field record from one document.
//
// Implementations return an error for any document they cannot use,
// including one without an order number. They must not panic on malformed
// input; callers still guard against it.
type Extractor interface {
	Extract(ctx context.Context, path string) (types.FieldRecord, error)
}

// Func adapts a function to the Extractor interface.
type Func func(ctx context.Context, path string) (types.FieldRecord, error)

// Extract calls fn.
func (fn Func) Extract(ctx context.Context, path string) (types.FieldRecord, error) {
	return fn(ctx, path)
}

// =============================================================================
// FIELD LABELS
// =============================================================================

// Labels lists the captions that introduce each field in a document.
// Within a field, longer labels come first so "اسم الشركة" wins over "الشركة".
//
// CUSTOMIZATION: Add captions used by other order templates here.
var Labels = map[types.FieldKey][]string{
	types.FieldOrderNumber:          {"رقم أمر التوريد", "رقم الأمر", "رقم أمر", "Order Number", "Order No"},
	types.FieldDate:                 {"التاريخ", "تاريخ", "Date"},
	types.FieldCompanyName:          {"اسم الشركة", "الشركة", "Company Name", "Company"},
	types.FieldDescription:          {"البيان", "Description"},
	types.FieldRequestingDepartment: {"الجهة الطالبة", "Requesting Department", "Department"},
	types.FieldTotalAmount:          {"المبلغ الإجمالي", "الإجمالي", "Total Amount", "Total"},
}
