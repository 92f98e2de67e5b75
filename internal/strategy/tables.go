package strategy

import (
	"regexp"
	"strings"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
)

// cellSplit breaks a layout-preserved line into cells on runs of two or more
// spaces (pdftotext -layout aligns columns with space padding).
var cellSplit = regexp.MustCompile(`\t| {2,}`)

// detectLayoutTables scans layout-preserved page text for contiguous runs of
// multi-cell lines. The first line of a run is taken as the header row; data
// rows are reconciled against the header column count and malformed rows are
// dropped.
func detectLayoutTables(pageText string) []extract.Table {
	var tables []extract.Table
	var run [][]string

	flush := func() {
		if len(run) >= 2 {
			if t, ok := buildTable(run); ok {
				tables = append(tables, t)
			}
		}
		run = nil
	}

	for _, line := range strings.Split(pageText, "\n") {
		cells := splitCells(line)
		if len(cells) >= 2 {
			run = append(run, cells)
			continue
		}
		flush()
	}
	flush()
	return tables
}

func splitCells(line string) []string {
	var cells []string
	for _, c := range cellSplit.Split(strings.TrimSpace(line), -1) {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func buildTable(run [][]string) (extract.Table, bool) {
	headers := run[0]
	var t extract.Table
	for _, cells := range run[1:] {
		if len(cells) != len(headers) {
			continue // malformed row
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			row[h] = cells[i]
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return extract.Table{}, false
	}
	return t, true
}
