package extractor

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/docx-order-report/internal/types"
)

// documentPart is the main body part of a WordprocessingML package.
const documentPart = "word/document.xml"

// maxDocumentSize caps how much of document.xml is parsed.
const maxDocumentSize = 32 << 20

// DocxExtractor extracts field records from .docx order documents.
type DocxExtractor struct {
	labels map[types.FieldKey][]string
	logger *zap.Logger
}

// NewDocxExtractor returns a DocxExtractor using the default Labels.
func NewDocxExtractor(logger *zap.Logger) *DocxExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocxExtractor{labels: Labels, logger: logger}
}

// Extract reads the document at path and returns its field record.
// ErrNoData is returned when no order number could be found.
func (e *DocxExtractor) Extract(ctx context.Context, path string) (types.FieldRecord, error) {
	if err := ctx.Err(); err != nil {
		return types.FieldRecord{}, err
	}

	lines, err := readLines(path)
	if err != nil {
		return types.FieldRecord{}, err
	}

	record := e.match(lines)
	e.logger.Debug("extracted fields",
		zap.String("path", path),
		zap.Int("lines", len(lines)),
		zap.String("order_number", record.OrderNumber))

	if !record.Valid() {
		return record, ErrNoData
	}
	return record, nil
}

// =============================================================================
// FIELD MATCHING
// =============================================================================

// match fills each field from the first line that carries one of its labels.
func (e *DocxExtractor) match(lines [][]string) types.FieldRecord {
	var record types.FieldRecord

	for _, col := range types.Columns {
		value, ok := e.find(lines, col.Key)
		if ok {
			record.Set(col.Key, value)
		}
	}

	return record
}

func (e *DocxExtractor) find(lines [][]string, key types.FieldKey) (string, bool) {
	for _, cells := range lines {
		for i, cell := range cells {
			rest, ok := cutLabel(cell, e.labels[key])
			if !ok {
				continue
			}
			if rest != "" {
				return rest, true
			}
			for _, next := range cells[i+1:] {
				if next == "" {
					continue
				}
				if e.isLabel(next) {
					break
				}
				return next, true
			}
		}
	}
	return "", false
}

// isLabel reports whether cell is nothing but a label of some field.
func (e *DocxExtractor) isLabel(cell string) bool {
	for _, labels := range e.labels {
		if rest, ok := cutLabel(cell, labels); ok && rest == "" {
			return true
		}
	}
	return false
}

// cutLabel returns the text after the first label that prefixes cell, with
// separators trimmed.
func cutLabel(cell string, labels []string) (string, bool) {
	for _, label := range labels {
		if len(cell) < len(label) || !strings.EqualFold(cell[:len(label)], label) {
			continue
		}
		rest := strings.TrimLeft(cell[len(label):], " \t:：-–")
		return strings.TrimSpace(rest), true
	}
	return "", false
}

// =============================================================================
// DOCUMENT READING
// =============================================================================

// readLines opens a .docx file and returns its text as lines of cells.
func readLines(path string) ([][]string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer archive.Close()

	for _, file := range archive.File {
		if file.Name != documentPart {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", documentPart, err)
		}
		defer rc.Close()
		return parseBody(io.LimitReader(rc, maxDocumentSize))
	}

	return nil, fmt.Errorf("missing %s", documentPart)
}

// parseBody walks WordprocessingML and collects table rows and paragraphs.
// Nested tables are flattened into the cell of the outer table.
func parseBody(r io.Reader) ([][]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		lines     [][]string
		row       []string
		cell      strings.Builder
		paragraph strings.Builder
		tblDepth  int
		inText    bool
	)

	flushParagraph := func() {
		text := strings.Join(strings.Fields(paragraph.String()), " ")
		paragraph.Reset()
		if text == "" {
			return
		}
		if tblDepth > 0 {
			if cell.Len() > 0 {
				cell.WriteByte(' ')
			}
			cell.WriteString(text)
			return
		}
		lines = append(lines, []string{text})
	}

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "tr":
				if tblDepth == 1 {
					row = nil
				}
			case "tc":
				if tblDepth == 1 {
					cell.Reset()
				}
			case "t":
				inText = true
			case "tab", "br":
				paragraph.WriteByte(' ')
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flushParagraph()
			case "tc":
				if tblDepth == 1 {
					row = append(row, strings.TrimSpace(cell.String()))
					cell.Reset()
				}
			case "tr":
				if tblDepth == 1 && len(row) > 0 {
					lines = append(lines, row)
					row = nil
				}
			case "tbl":
				if tblDepth > 0 {
					tblDepth--
				}
			}

		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}

	return lines, nil
}
