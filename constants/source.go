package constants

// Document-source labels inferred from full text by the orchestrator.
// Stable values.
const (
	SourceBPOInterior       = "bpo_interior"
	SourceBPOExterior       = "bpo_exterior"
	SourceBPO               = "bpo"
	SourceAppraisal         = "appraisal"
	SourceDesktopValuation  = "desktop_valuation"
	SourceInternalValuation = "internal_valuation"
)
