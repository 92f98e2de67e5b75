package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
)

// FieldPattern is one scalar extraction rule. Patterns are static
// configuration, loaded once at engine construction and never mutated.
type FieldPattern struct {
	RecordType string
	Field      string
	Pattern    *regexp.Regexp
	Clean      func(string) (any, error)
	Confidence float64
	Context    string // human-readable hint, carried into record metadata
}

// defaultPatterns is the valuation-document vocabulary, ordered. For fields
// matched by more than one pattern, list order decides (first match kept).
func defaultPatterns() []FieldPattern {
	v := constants.RecordValuation
	return []FieldPattern{
		{v, "loan_number",
			regexp.MustCompile(`(?i)loan\s*(?:number|no\.?|#)\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9-]{3,})`),
			cleanUpper, 0.95, "loan number label"},
		{v, "property_address",
			regexp.MustCompile(`(?i)(?:property|subject)\s+address\s*[:\-]\s*([^\n]+)`),
			cleanText, 0.90, "labeled property address"},
		{v, "property_address",
			regexp.MustCompile(`(?im)^\s*address\s*[:\-]\s*([^\n]+)`),
			cleanText, 0.75, "bare address label"},
		{v, "city",
			regexp.MustCompile(`(?i)\bcity\s*[:\-]\s*([A-Za-z .'\-]+)`),
			cleanText, 0.80, "city label"},
		{v, "state",
			regexp.MustCompile(`(?i)\bstate\s*[:\-]\s*([A-Za-z]{2})\b`),
			cleanUpper, 0.85, "two-letter state label"},
		{v, "zip_code",
			regexp.MustCompile(`(?i)\bzip(?:\s*code)?\s*[:\-]?\s*(\d{5}(?:-\d{4})?)`),
			cleanText, 0.85, "zip code label"},
		{v, "as_is_value",
			regexp.MustCompile(`(?i)as[\s\-]?is\s+(?:market\s+)?value\s*[:\-]?\s*\$?\s*([\d,]+(?:\.\d{1,2})?)`),
			cleanMoney, 0.90, "as-is value label"},
		{v, "arv",
			regexp.MustCompile(`(?i)(?:after[\s\-]?repair(?:ed)?\s+value|\bARV\b)\s*[:\-]?\s*\$?\s*([\d,]+(?:\.\d{1,2})?)`),
			cleanMoney, 0.90, "after-repair value label"},
		{v, "land_value",
			regexp.MustCompile(`(?i)land\s+value\s*[:\-]?\s*\$?\s*([\d,]+(?:\.\d{1,2})?)`),
			cleanMoney, 0.80, "land value label"},
		{v, "total_repair_cost",
			regexp.MustCompile(`(?i)(?:total\s+)?repair\s+(?:cost|estimate)s?\s*[:\-]?\s*\$?\s*([\d,]+(?:\.\d{1,2})?)`),
			cleanMoney, 0.75, "repair cost total"},
		{v, "effective_date",
			regexp.MustCompile(`(?i)effective\s+date\s*[:\-]?\s*([A-Za-z0-9,./\- ]{4,20}?\d{4})`),
			cleanDate, 0.85, "valuation effective date"},
		{v, "inspection_date",
			regexp.MustCompile(`(?i)inspection\s+date\s*[:\-]?\s*([A-Za-z0-9,./\- ]{4,20}?\d{4})`),
			cleanDate, 0.80, "inspection date"},
		{v, "agent_name",
			regexp.MustCompile(`(?i)(?:agent|broker|appraiser)\s+name\s*[:\-]\s*([^\n]+)`),
			cleanText, 0.70, "preparer name"},
	}
}

var spaceRun = regexp.MustCompile(`\s+`)

func cleanText(s string) (any, error) {
	s = strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
	if s == "" {
		return nil, fmt.Errorf("empty value")
	}
	return s, nil
}

func cleanUpper(s string) (any, error) {
	v, err := cleanText(s)
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(v.(string)), nil
}

// cleanMoney parses a currency amount, stripping thousands separators.
func cleanMoney(s string) (any, error) {
	s = strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", ""))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return f, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"January 2 2006",
}

// cleanDate normalizes a matched date to ISO-8601 (YYYY-MM-DD).
func cleanDate(s string) (any, error) {
	s = strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}
