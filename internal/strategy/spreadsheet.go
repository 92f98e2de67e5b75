package strategy

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
)

// previewRows is how many rows of each sheet are serialized into a text
// block so the scalar field patterns can still see spreadsheet content.
const previewRows = 5

// SpreadsheetStrategy extracts one table per sheet (XLSX) or per file (CSV).
// All cells are coerced to string; missing cells become "".
type SpreadsheetStrategy struct {
	logger *slog.Logger
}

func NewSpreadsheet(logger *slog.Logger) *SpreadsheetStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpreadsheetStrategy{logger: logger}
}

func (s *SpreadsheetStrategy) Name() string             { return "spreadsheet" }
func (s *SpreadsheetStrategy) Format() constants.Format { return constants.SPREADSHEET }

func (s *SpreadsheetStrategy) Supports(mimeType, _ string) bool {
	switch baseMIME(mimeType) {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel",
		"text/csv":
		return true
	}
	return false
}

func (s *SpreadsheetStrategy) Extract(ctx context.Context, path string) (*extract.ExtractionOutput, error) {
	out := &extract.ExtractionOutput{}

	switch constants.NormalizeExt(filepath.Ext(path)) {
	case "csv":
		s.extractCSV(path, out)
	case "xls":
		out.Warnf("legacy .xls binary format is not supported; no tables extracted")
	default:
		s.extractXLSX(path, out)
	}

	out.Finalize()
	return out, nil
}

func (s *SpreadsheetStrategy) extractXLSX(path string, out *extract.ExtractionOutput) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		out.Warnf("open workbook: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("workbook close error", "path", path, "error", err)
		}
	}()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			out.Warnf("read sheet %q: %v", sheet, err)
			continue
		}
		s.appendGrid(out, sheet, rows)
	}
}

func (s *SpreadsheetStrategy) extractCSV(path string, out *extract.ExtractionOutput) {
	fh, err := os.Open(path)
	if err != nil {
		out.Warnf("open csv: %v", err)
		return
	}
	defer func() { _ = fh.Close() }()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		out.Warnf("read csv: %v", err)
		return
	}
	s.appendGrid(out, filepath.Base(path), rows)
}

// appendGrid converts a raw cell grid into one table plus a short preview
// block for downstream text-pattern matching.
func (s *SpreadsheetStrategy) appendGrid(out *extract.ExtractionOutput, sheet string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}

	var t extract.Table
	for _, cells := range rows[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) > 0 {
		out.Tables = append(out.Tables, t)
	}

	// preview block: native cell values, full confidence
	n := len(rows)
	if n > previewRows {
		n = previewRows
	}
	var lines []string
	for _, cells := range rows[:n] {
		lines = append(lines, strings.Join(cells, " | "))
	}
	out.AddBlock(extract.TextBlock{
		Text:       strings.Join(lines, "\n"),
		Confidence: 1.0,
		Metadata: map[string]string{
			"source": "sheet",
			"sheet":  sheet,
		},
	})
}
