package constants

// Method tags how a field value was produced. Stable values: these strings
// are written into downstream records and audit logs.
const (
	MethodRule  = "rule"
	MethodTable = "table"
	MethodAI    = "ai"
)

// Record types for extracted field records.
const (
	RecordValuation  = "valuation"
	RecordComparable = "comparable"
	RecordRepair     = "repair"
)
