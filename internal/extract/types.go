package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
)

// TextBlock is one contiguous unit of recognized text. Immutable once
// produced; owned by the ExtractionOutput that created it.
type TextBlock struct {
	Text       string            `json:"text"`
	Confidence float64           `json:"confidence"` // 0..1, extraction-method-derived
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Table is one extracted table: an ordered sequence of row-mappings from
// column name to cell value. All rows of a table share the same key set.
type Table struct {
	Rows []map[string]string `json:"rows"`
}

// ExtractionOutput is the result of running one strategy on one document.
// Created once per Process call, read-only afterward.
type ExtractionOutput struct {
	FullText       string      `json:"full_text"`
	Blocks         []TextBlock `json:"blocks"`
	Tables         []Table     `json:"tables,omitempty"`
	Warnings       []string    `json:"warnings,omitempty"`
	InferredSource string      `json:"inferred_source,omitempty"` // set by the orchestrator
}

// AddBlock appends a text block.
func (o *ExtractionOutput) AddBlock(b TextBlock) {
	o.Blocks = append(o.Blocks, b)
}

// Warnf records a human-readable warning describing degraded extraction.
func (o *ExtractionOutput) Warnf(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// Finalize rebuilds FullText from the block texts, order-preserving.
// Strategies call this once all blocks are appended.
func (o *ExtractionOutput) Finalize() {
	texts := make([]string, 0, len(o.Blocks))
	for _, b := range o.Blocks {
		texts = append(texts, b.Text)
	}
	o.FullText = strings.Join(texts, "\n")
}

// FieldRecord is one extracted value. Value is a typed scalar for pattern
// matches or a structured mapping for table-derived rows.
type FieldRecord struct {
	RecordType     string         `json:"record_type"`
	Field          string         `json:"field"`
	Value          any            `json:"value"`
	RawText        string         `json:"raw_text,omitempty"` // exact matched substring, for audit
	Confidence     float64        `json:"confidence"`
	Method         string         `json:"method"` // constants.MethodRule | MethodTable | MethodAI
	RequiresReview bool           `json:"requires_review"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Key is the merge key: at most one record per key survives a pipeline run.
func (r FieldRecord) Key() string {
	return r.RecordType + "." + r.Field
}

// DocumentExtractionResult is the pipeline's output contract, handed to the
// external persistence collaborator. Created once per Process invocation.
type DocumentExtractionResult struct {
	ID             uuid.UUID         `json:"id"`
	SourcePath     string            `json:"source_path"`
	Format         constants.Format  `json:"format"`
	MIMEType       string            `json:"mime_type"`
	ExtractedAt    time.Time         `json:"extracted_at"`
	Output         *ExtractionOutput `json:"output"`
	Records        []FieldRecord     `json:"records"`
	Warnings       []string          `json:"warnings,omitempty"`
	InferredSource string            `json:"inferred_source,omitempty"`
}
