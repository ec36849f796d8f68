// =============================================================================
// Order Report Bot - Shared Types
// =============================================================================
//
// This package contains the types shared by the extractor, the report builder
// and the batch processor. Keeping them here avoids import cycles between:
//   - extractor
//   - report
//   - batch
//
// REPORT COLUMNS (fixed order):
//   | A         | B       | C            | D           | E                    | F            |
//   |-----------|---------|--------------|-------------|----------------------|--------------|
//   | OrderNo   | Date    | CompanyName  | Description | RequestingDepartment | TotalAmount  |
//
// =============================================================================

package types

import "strings"

// =============================================================================
// FIELD RECORD
// =============================================================================

// FieldRecord is the structured result of extracting the six tracked fields
// from one uploaded document. Absent fields are empty strings.
type FieldRecord struct {
	// OrderNumber identifies the order. A record without it carries no data.
	OrderNumber string `yaml:"order_number"`

	// Date is kept exactly as written in the document (no date parsing).
	Date string `yaml:"date"`

	// CompanyName is the supplier the order was issued to.
	CompanyName string `yaml:"company_name"`

	// Description is the free-text statement of what was ordered.
	Description string `yaml:"description"`

	// RequestingDepartment is the department that raised the order.
	RequestingDepartment string `yaml:"requesting_department"`

	// TotalAmount is kept as text so "20800.00" round-trips unchanged.
	TotalAmount string `yaml:"total_amount"`
}

// Valid reports whether the record has an order number.
// Records that are not valid are dropped from every report.
func (r FieldRecord) Valid() bool {
	return strings.TrimSpace(r.OrderNumber) != ""
}

// Values projects the record onto the fixed column order.
func (r FieldRecord) Values() []string {
	return []string{
		r.OrderNumber,
		r.Date,
		r.CompanyName,
		r.Description,
		r.RequestingDepartment,
		r.TotalAmount,
	}
}

// Set assigns the field identified by key. Unknown keys are ignored.
func (r *FieldRecord) Set(key FieldKey, value string) {
	switch key {
	case FieldOrderNumber:
		r.OrderNumber = value
	case FieldDate:
		r.Date = value
	case FieldCompanyName:
		r.CompanyName = value
	case FieldDescription:
		r.Description = value
	case FieldRequestingDepartment:
		r.RequestingDepartment = value
	case FieldTotalAmount:
		r.TotalAmount = value
	}
}

// =============================================================================
// COLUMN DEFINITIONS
// =============================================================================

// FieldKey names one of the six tracked fields.
type FieldKey string

const (
	FieldOrderNumber          FieldKey = "order_number"
	FieldDate                 FieldKey = "date"
	FieldCompanyName          FieldKey = "company_name"
	FieldDescription          FieldKey = "description"
	FieldRequestingDepartment FieldKey = "requesting_department"
	FieldTotalAmount          FieldKey = "total_amount"
)

// Column describes one report column.
type Column struct {
	// Key is the field projected into this column.
	Key FieldKey

	// Header is the localized header written to row 1.
	Header string

	// Width is the fixed column width applied by the formatter.
	Width float64
}

// Columns is the fixed report layout. Order here is the order on the sheet.
var Columns = []Column{
	{Key: FieldOrderNumber, Header: "رقم الأمر", Width: 10},
	{Key: FieldDate, Header: "التاريخ", Width: 12},
	{Key: FieldCompanyName, Header: "اسم الشركة", Width: 30},
	{Key: FieldDescription, Header: "البيان", Width: 50},
	{Key: FieldRequestingDepartment, Header: "الجهة الطالبة", Width: 25},
	{Key: FieldTotalAmount, Header: "المبلغ الإجمالي", Width: 15},
}

// Headers returns the localized header row in column order.
func Headers() []string {
	headers := make([]string, len(Columns))
	for i, col := range Columns {
		headers[i] = col.Header
	}
	return headers
}
