package strategy

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
)

const paragraphConfidence = 0.95

// WordStrategy extracts paragraph text and tables from DOCX documents.
// Legacy binary .doc files are not parseable; they degrade to a warning.
type WordStrategy struct {
	logger *slog.Logger
}

func NewWord(logger *slog.Logger) *WordStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &WordStrategy{logger: logger}
}

func (s *WordStrategy) Name() string             { return "word" }
func (s *WordStrategy) Format() constants.Format { return constants.WORD }

func (s *WordStrategy) Supports(mimeType, _ string) bool {
	switch baseMIME(mimeType) {
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword":
		return true
	}
	return false
}

func (s *WordStrategy) Extract(ctx context.Context, path string) (*extract.ExtractionOutput, error) {
	out := &extract.ExtractionOutput{}

	if constants.NormalizeExt(filepath.Ext(path)) == "doc" {
		out.Warnf("legacy .doc binary format is not supported; no text extracted")
		out.Finalize()
		return out, nil
	}

	paras, tables, err := parseDOCX(path)
	if err != nil {
		out.Warnf("docx parse failed: %v", err)
		out.Finalize()
		return out, nil
	}

	for i, p := range paras {
		out.AddBlock(extract.TextBlock{
			Text:       p,
			Confidence: paragraphConfidence,
			Metadata: map[string]string{
				"source":    "docx",
				"paragraph": fmt.Sprintf("%d", i+1),
			},
		})
	}
	for _, grid := range tables {
		if t, ok := gridToTable(grid); ok {
			out.Tables = append(out.Tables, t)
		}
	}

	out.Finalize()
	return out, nil
}

// gridToTable converts a cell grid into a row-mapping table. The first row
// supplies header labels; unlabeled columns get synthesized names.
func gridToTable(grid [][]string) (extract.Table, bool) {
	if len(grid) < 2 {
		return extract.Table{}, false
	}
	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}
	var t extract.Table
	for _, cells := range grid[1:] {
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
	return t, true
}

// parseDOCX streams word/document.xml, collecting body paragraphs and table
// cell grids. Nested tables are flattened into their parent cell's text.
func parseDOCX(path string) (paras []string, tables [][][]string, err error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open docx: %w", err)
	}
	defer func() { _ = zr.Close() }()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return nil, nil, fmt.Errorf("word/document.xml not found")
	}

	rc, err := doc.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer func() { _ = rc.Close() }()

	dec := xml.NewDecoder(rc)

	var (
		tblDepth int
		inText   bool
		para     strings.Builder
		cell     strings.Builder
		curRow   []string
		curTbl   [][]string
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "tr":
				if tblDepth == 1 {
					curRow = nil
				}
			case "tc":
				if tblDepth == 1 {
					cell.Reset()
				}
			case "t":
				inText = true
			case "tab":
				writeActive(&para, &cell, tblDepth, "\t")
			case "br":
				writeActive(&para, &cell, tblDepth, "\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth--
				if tblDepth == 0 {
					tables = append(tables, curTbl)
					curTbl = nil
				}
			case "tr":
				if tblDepth == 1 {
					curTbl = append(curTbl, curRow)
				}
			case "tc":
				if tblDepth == 1 {
					curRow = append(curRow, strings.TrimSpace(cell.String()))
				}
			case "p":
				if tblDepth == 0 {
					if text := strings.TrimSpace(para.String()); text != "" {
						paras = append(paras, text)
					}
					para.Reset()
				} else {
					cell.WriteString(" ")
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				writeActive(&para, &cell, tblDepth, string(t))
			}
		}
	}
	return paras, tables, nil
}

func writeActive(para, cell *strings.Builder, tblDepth int, s string) {
	if tblDepth > 0 {
		cell.WriteString(s)
	} else {
		para.WriteString(s)
	}
}
