package pipeline

import (
	"strings"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
)

// inferSource classifies the document type from its full text via ordered
// keyword checks. Returns "" when no family keyword is present.
func inferSource(fullText string) string {
	text := strings.ToLower(fullText)

	switch {
	case strings.Contains(text, "broker price opinion") || strings.Contains(text, "broker's price opinion"):
		switch {
		case strings.Contains(text, "interior"):
			return constants.SourceBPOInterior
		case strings.Contains(text, "exterior"):
			return constants.SourceBPOExterior
		}
		return constants.SourceBPO
	case strings.Contains(text, "appraisal report"),
		strings.Contains(text, "uniform residential appraisal"),
		strings.Contains(text, "appraisal"):
		return constants.SourceAppraisal
	case strings.Contains(text, "desktop valuation"):
		return constants.SourceDesktopValuation
	case strings.Contains(text, "internal valuation"):
		return constants.SourceInternalValuation
	}
	return ""
}
