package fields

import (
	"fmt"
	"sort"
	"strings"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
)

// Row confidences per shape: higher when the price/cost column is populated.
const (
	comparableConfidence     = 0.8
	comparableWeakConfidence = 0.6
	repairConfidence         = 0.7
	repairWeakConfidence     = 0.55
)

// salePriceHeaders is the price-column part of the comparable-sale shape
// predicate.
var salePriceHeaders = map[string]bool{
	"sale price":    true,
	"sold price":    true,
	"list price":    true,
	"closing price": true,
}

// costHeaders is the cost-column part of the repair-line shape predicate.
var costHeaders = map[string]bool{
	"cost":     true,
	"estimate": true,
	"amount":   true,
}

// extractTables classifies every table by header shape and projects matching
// rows into structured records. Tables matching neither shape are ignored.
func (e *Engine) extractTables(tables []extract.Table) []extract.FieldRecord {
	var records []extract.FieldRecord
	compN, repairN := 0, 0

	for ti, t := range tables {
		if len(t.Rows) == 0 {
			continue
		}
		headers := normalizedHeaders(t.Rows[0])

		switch {
		case e.isComparableShape(headers):
			for ri, row := range t.Rows {
				if rec, ok := e.comparableRecord(row, ti, ri, compN+1); ok {
					compN++
					records = append(records, rec)
				}
			}
		case e.isRepairShape(headers):
			for ri, row := range t.Rows {
				if rec, ok := e.repairRecord(row, ti, ri, repairN+1); ok {
					repairN++
					records = append(records, rec)
				}
			}
		}
	}
	return records
}

// normalizedHeaders returns the trimmed, lowercased header names of a table,
// sorted for deterministic iteration.
func normalizedHeaders(row map[string]string) []string {
	headers := make([]string, 0, len(row))
	for h := range row {
		headers = append(headers, normalizeHeader(h))
	}
	sort.Strings(headers)
	return headers
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// isComparableShape: an address-like column plus at least one sale-price-like
// column.
func (e *Engine) isComparableShape(headers []string) bool {
	hasAddr, hasPrice := false, false
	for _, h := range headers {
		if e.compCols[h] == "address" {
			hasAddr = true
		}
		if salePriceHeaders[h] {
			hasPrice = true
		}
	}
	return hasAddr && hasPrice
}

// isRepairShape: a repair/description-like column plus at least one cost-like
// column.
func (e *Engine) isRepairShape(headers []string) bool {
	hasDesc, hasCost := false, false
	for _, h := range headers {
		if e.repairCols[h] == "description" {
			hasDesc = true
		}
		if costHeaders[h] {
			hasCost = true
		}
	}
	return hasDesc && hasCost
}

// project maps a raw row through a column vocabulary. Later duplicate headers
// do not clobber an earlier non-empty value.
func project(row map[string]string, cols map[string]string) map[string]any {
	out := make(map[string]any)
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		field, ok := cols[normalizeHeader(k)]
		if !ok {
			continue
		}
		if existing, dup := out[field]; dup && existing != "" {
			continue
		}
		out[field] = row[k]
	}
	return out
}

// comparableRecord projects one row into a comparable-sale record. Rows with
// no address key at all are dropped; an empty-string address still produces a
// record (matches the historical drop-only-when-absent policy).
func (e *Engine) comparableRecord(row map[string]string, tableIdx, rowIdx, compNumber int) (extract.FieldRecord, bool) {
	value := project(row, e.compCols)
	if _, ok := value["address"]; !ok {
		return extract.FieldRecord{}, false
	}
	value["comp_number"] = compNumber

	conf := comparableWeakConfidence
	if s, ok := value["sale_price"].(string); ok && s != "" {
		conf = comparableConfidence
	}

	return extract.FieldRecord{
		RecordType:     constants.RecordComparable,
		Field:          fmt.Sprintf("%s_%d", constants.RecordComparable, compNumber),
		Value:          value,
		RawText:        serializeRow(row),
		Confidence:     conf,
		Method:         constants.MethodTable,
		RequiresReview: conf < reviewBelow,
		Metadata:       map[string]any{"table_index": tableIdx, "row_index": rowIdx},
	}, true
}

// repairRecord projects one row into a repair-line record. Repair rows always
// require review: line-item costs need human sign-off.
func (e *Engine) repairRecord(row map[string]string, tableIdx, rowIdx, repairNumber int) (extract.FieldRecord, bool) {
	value := project(row, e.repairCols)
	if len(value) == 0 {
		return extract.FieldRecord{}, false
	}
	value["repair_number"] = repairNumber

	conf := repairWeakConfidence
	if s, ok := value["estimated_cost"].(string); ok && s != "" {
		conf = repairConfidence
	}

	return extract.FieldRecord{
		RecordType:     constants.RecordRepair,
		Field:          fmt.Sprintf("%s_%d", constants.RecordRepair, repairNumber),
		Value:          value,
		RawText:        serializeRow(row),
		Confidence:     conf,
		Method:         constants.MethodTable,
		RequiresReview: true,
		Metadata:       map[string]any{"table_index": tableIdx, "row_index": rowIdx},
	}, true
}

func serializeRow(row map[string]string) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, row[k])
	}
	return strings.Join(parts, " | ")
}
