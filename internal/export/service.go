// Package export renders a DocumentExtractionResult into an XLSX report for
// reviewers: one sheet of scalar fields, one of comparable sales, one of
// repair lines.
package export

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
)

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

var comparableColumns = []string{
	"comp_number", "address", "sale_price", "list_price", "sale_date",
	"square_feet", "bedrooms", "bathrooms", "year_built", "days_on_market",
	"distance", "condition",
}

var repairColumns = []string{
	"repair_number", "description", "category", "estimated_cost",
	"priority", "quantity", "notes",
}

// ResultWorkbook returns an XLSX workbook (as bytes) for one extraction
// result.
func (s *Service) ResultWorkbook(res *extract.DocumentExtractionResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()

	if err := s.writeFieldsSheet(f, res); err != nil {
		return nil, err
	}
	if err := s.writeRowSheet(f, "Comparables", comparableColumns, res, constants.RecordComparable); err != nil {
		return nil, err
	}
	if err := s.writeRowSheet(f, "Repairs", repairColumns, res, constants.RecordRepair); err != nil {
		return nil, err
	}

	// the default sheet excelize creates is replaced by Fields
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	s.logger.Info("export.workbook.ok",
		"source", res.SourcePath,
		"records", len(res.Records),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeFieldsSheet(f *excelize.File, res *extract.DocumentExtractionResult) error {
	const sheet = "Fields"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Record Type", "Field", "Value", "Confidence", "Method", "Requires Review", "Raw Text"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}

	row := 2
	for _, r := range res.Records {
		if r.Method == constants.MethodTable {
			continue // table rows get their own sheets
		}
		cells := []any{
			r.RecordType, r.Field, fmt.Sprintf("%v", r.Value),
			r.Confidence, r.Method, r.RequiresReview, r.RawText,
		}
		if err := writeRowAny(f, sheet, row, cells); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (s *Service) writeRowSheet(f *excelize.File, sheet string, columns []string, res *extract.DocumentExtractionResult, recordType string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	headers := append([]string{}, columns...)
	headers = append(headers, "confidence", "requires_review")
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}

	rows := rowRecords(res.Records, recordType)
	for i, r := range rows {
		value, _ := r.Value.(map[string]any)
		cells := make([]any, 0, len(headers))
		for _, c := range columns {
			if v, ok := value[c]; ok {
				cells = append(cells, fmt.Sprintf("%v", v))
			} else {
				cells = append(cells, "")
			}
		}
		cells = append(cells, r.Confidence, r.RequiresReview)
		if err := writeRowAny(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

// rowRecords selects the table-derived records of one type, ordered by their
// 1-based row number.
func rowRecords(records []extract.FieldRecord, recordType string) []extract.FieldRecord {
	var out []extract.FieldRecord
	for _, r := range records {
		if r.RecordType == recordType && r.Method == constants.MethodTable {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return rowNumber(out[i]) < rowNumber(out[j]) })
	return out
}

func rowNumber(r extract.FieldRecord) int {
	m, ok := r.Value.(map[string]any)
	if !ok {
		return 0
	}
	for _, k := range []string{"comp_number", "repair_number"} {
		if n, ok := m[k].(int); ok {
			return n
		}
	}
	return 0
}

func writeRow(f *excelize.File, sheet string, row int, cells []string) error {
	anyCells := make([]any, len(cells))
	for i, c := range cells {
		anyCells[i] = c
	}
	return writeRowAny(f, sheet, row, anyCells)
}

func writeRowAny(f *excelize.File, sheet string, row int, cells []any) error {
	for i, c := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, c); err != nil {
			return err
		}
	}
	return nil
}
