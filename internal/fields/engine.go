// Package fields is the stateless rule engine that turns normalized
// extraction output into field records: ordered regex patterns over the full
// text, plus shape-classified table rows projected into comparable-sale and
// repair-line records. An Engine is read-only after construction and safe to
// share across concurrent pipeline runs.
package fields

import (
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
)

// reviewBelow presets requires_review on rule matches under this confidence.
// The orchestrator applies its own (configurable) threshold afterwards.
const reviewBelow = 0.8

type Engine struct {
	patterns   []FieldPattern
	compCols   map[string]string
	repairCols map[string]string
}

type Option func(*Engine)

// WithPatterns replaces the default pattern list.
func WithPatterns(ps []FieldPattern) Option {
	return func(e *Engine) { e.patterns = ps }
}

// WithComparableColumns replaces the comparable-sale header vocabulary.
func WithComparableColumns(m map[string]string) Option {
	return func(e *Engine) { e.compCols = m }
}

// WithRepairColumns replaces the repair-line header vocabulary.
func WithRepairColumns(m map[string]string) Option {
	return func(e *Engine) { e.repairCols = m }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		patterns:   defaultPatterns(),
		compCols:   defaultComparableColumns(),
		repairCols: defaultRepairColumns(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract runs the scalar pattern pass then the table classification pass.
// Deterministic: identical input always yields an identical record list.
func (e *Engine) Extract(out *extract.ExtractionOutput) []extract.FieldRecord {
	records := e.extractScalars(out.FullText)
	records = append(records, e.extractTables(out.Tables)...)
	return records
}

// extractScalars applies every pattern in list order against the full text.
// First match per (record-type, field) key wins; a cleaning failure skips the
// match without surfacing an error.
func (e *Engine) extractScalars(fullText string) []extract.FieldRecord {
	var records []extract.FieldRecord
	seen := make(map[string]bool, len(e.patterns))

	for _, p := range e.patterns {
		key := p.RecordType + "." + p.Field
		if seen[key] {
			continue
		}
		m := p.Pattern.FindStringSubmatch(fullText)
		if m == nil {
			continue
		}
		raw := m[0]
		captured := m[len(m)-1]
		value, err := p.Clean(captured)
		if err != nil {
			continue
		}
		seen[key] = true
		records = append(records, extract.FieldRecord{
			RecordType:     p.RecordType,
			Field:          p.Field,
			Value:          value,
			RawText:        raw,
			Confidence:     p.Confidence,
			Method:         constants.MethodRule,
			RequiresReview: p.Confidence < reviewBelow,
			Metadata:       map[string]any{"context": p.Context},
		})
	}
	return records
}
