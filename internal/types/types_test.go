package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldRecord_Valid(t *testing.T) {
	tests := []struct {
		name   string
		record FieldRecord
		want   bool
	}{
		{"with order number", FieldRecord{OrderNumber: "123"}, true},
		{"empty order number", FieldRecord{Date: "1/10/2025"}, false},
		{"whitespace order number", FieldRecord{OrderNumber: "  \t"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Valid())
		})
	}
}

func TestFieldRecord_ValuesFollowColumnOrder(t *testing.T) {
	r := FieldRecord{
		TotalAmount:          "20800.00",
		OrderNumber:          "123",
		Description:          "tyres",
		Date:                 "1/10/2025",
		RequestingDepartment: "south",
		CompanyName:          "acme",
	}

	assert.Equal(t, []string{"123", "1/10/2025", "acme", "tyres", "south", "20800.00"}, r.Values())
}

func TestFieldRecord_Set(t *testing.T) {
	var r FieldRecord
	for i, col := range Columns {
		r.Set(col.Key, string(rune('a'+i)))
	}
	r.Set("unknown", "dropped")

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, r.Values())
}

func TestHeaders(t *testing.T) {
	assert.Equal(t, []string{
		"رقم الأمر", "التاريخ", "اسم الشركة", "البيان", "الجهة الطالبة", "المبلغ الإجمالي",
	}, Headers())
}
