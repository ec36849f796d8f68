package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/docx-order-report/internal/extractor"
	"github.com/ginjaninja78/docx-order-report/internal/types"
)

func TestExtractFiles_KeepsArgumentOrder(t *testing.T) {
	ext := extractor.Func(func(_ context.Context, path string) (types.FieldRecord, error) {
		switch {
		case strings.HasPrefix(path, "bad"):
			return types.FieldRecord{}, errors.New("corrupt")
		case strings.HasPrefix(path, "blank"):
			return types.FieldRecord{CompanyName: "ACME"}, nil
		default:
			return types.FieldRecord{OrderNumber: strings.TrimSuffix(path, ".docx")}, nil
		}
	})

	paths := []string{"3.docx", "bad.docx", "1.docx", "blank.docx", "2.docx"}
	records, skipped := extractFiles(context.Background(), ext, paths, 2)

	var got []string
	for _, r := range records {
		got = append(got, r.OrderNumber)
	}
	assert.Equal(t, []string{"3", "1", "2"}, got)
	assert.Equal(t, []string{"bad.docx: corrupt", "blank.docx: no order number"}, skipped)
}

func TestRunReport_AppendRequiresOutput(t *testing.T) {
	prevAppend, prevOutput := reportAppend, reportOutput
	t.Cleanup(func() { reportAppend, reportOutput = prevAppend, prevOutput })

	reportAppend, reportOutput = true, ""

	err := runReport(reportCmd, []string{"a.docx"})
	require.ErrorIs(t, err, errAppendNeedsOutput)
}
