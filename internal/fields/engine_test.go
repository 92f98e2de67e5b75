package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
)

const sampleBPOText = `BROKER PRICE OPINION - EXTERIOR

Loan Number: AB-1234567
Property Address: 123 Main St
City: Springfield   State: IL   Zip Code: 62704

As-Is Value: $245,000
After Repair Value: $310,000.50
Total Repair Costs: $42,500
Effective Date: 03/15/2026
Agent Name: Jane Smith
`

func findRecord(recs []extract.FieldRecord, field string) (extract.FieldRecord, bool) {
	for _, r := range recs {
		if r.Field == field {
			return r, true
		}
	}
	return extract.FieldRecord{}, false
}

func TestExtractScalars(t *testing.T) {
	e := NewEngine()
	out := &extract.ExtractionOutput{FullText: sampleBPOText}

	recs := e.Extract(out)

	loan, ok := findRecord(recs, "loan_number")
	require.True(t, ok)
	assert.Equal(t, "AB-1234567", loan.Value)
	assert.Equal(t, 0.95, loan.Confidence)
	assert.Equal(t, constants.MethodRule, loan.Method)
	assert.False(t, loan.RequiresReview)

	addr, ok := findRecord(recs, "property_address")
	require.True(t, ok)
	assert.Equal(t, "123 Main St", addr.Value)
	assert.Equal(t, 0.90, addr.Confidence)

	state, ok := findRecord(recs, "state")
	require.True(t, ok)
	assert.Equal(t, "IL", state.Value)

	asIs, ok := findRecord(recs, "as_is_value")
	require.True(t, ok)
	assert.Equal(t, 245000.0, asIs.Value)

	arv, ok := findRecord(recs, "arv")
	require.True(t, ok)
	assert.Equal(t, 310000.50, arv.Value)

	date, ok := findRecord(recs, "effective_date")
	require.True(t, ok)
	assert.Equal(t, "2026-03-15", date.Value)

	agent, ok := findRecord(recs, "agent_name")
	require.True(t, ok)
	assert.Equal(t, "Jane Smith", agent.Value)
	assert.True(t, agent.RequiresReview)
}

func TestExtractScalarsFirstPatternWins(t *testing.T) {
	// Both address patterns match; the higher-priority labeled variant must
	// win and the bare variant must not emit a duplicate.
	text := "Property Address: 456 Oak Ave\nAddress: 999 Wrong St\n"
	recs := NewEngine().Extract(&extract.ExtractionOutput{FullText: text})

	var addrs []extract.FieldRecord
	for _, r := range recs {
		if r.Field == "property_address" {
			addrs = append(addrs, r)
		}
	}
	require.Len(t, addrs, 1)
	assert.Equal(t, "456 Oak Ave", addrs[0].Value)
	assert.Equal(t, 0.90, addrs[0].Confidence)
}

func TestExtractScalarsBareAddressFallback(t *testing.T) {
	text := "Some header\nAddress: 789 Pine Rd\n"
	recs := NewEngine().Extract(&extract.ExtractionOutput{FullText: text})

	addr, ok := findRecord(recs, "property_address")
	require.True(t, ok)
	assert.Equal(t, "789 Pine Rd", addr.Value)
	assert.Equal(t, 0.75, addr.Confidence)
	assert.True(t, addr.RequiresReview)
}

func TestExtractScalarsCleaningFailureSkipsMatch(t *testing.T) {
	text := "Effective Date: sometime in 9999\n"
	recs := NewEngine().Extract(&extract.ExtractionOutput{FullText: text})

	_, ok := findRecord(recs, "effective_date")
	assert.False(t, ok)
}

func TestExtractIsDeterministic(t *testing.T) {
	e := NewEngine()
	out := &extract.ExtractionOutput{
		FullText: sampleBPOText,
		Tables: []extract.Table{{Rows: []map[string]string{
			{"Address": "1 First St", "Sale Price": "$200,000"},
			{"Address": "2 Second St", "Sale Price": ""},
		}}},
	}

	a := e.Extract(out)
	b := e.Extract(out)
	assert.Equal(t, a, b)
}

func TestExtractComparableTable(t *testing.T) {
	e := NewEngine()
	out := &extract.ExtractionOutput{Tables: []extract.Table{{
		Rows: []map[string]string{
			{"Address": "1 First St", "Sale Price": "$200,000", "Beds": "3"},
			{"Address": "2 Second St", "Sale Price": "", "Beds": "4"},
			{"Notes": "no address column value", "Sale Price": "$1"},
		},
	}}}

	recs := e.Extract(out)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, constants.RecordComparable, first.RecordType)
	assert.Equal(t, "comparable_1", first.Field)
	assert.Equal(t, 0.8, first.Confidence)
	assert.Equal(t, constants.MethodTable, first.Method)
	assert.False(t, first.RequiresReview)

	value, ok := first.Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1 First St", value["address"])
	assert.Equal(t, "3", value["bedrooms"])
	assert.Equal(t, 1, value["comp_number"])

	second := recs[1]
	assert.Equal(t, "comparable_2", second.Field)
	assert.Equal(t, 0.6, second.Confidence)
	assert.True(t, second.RequiresReview)
}

func TestExtractComparableEmptyAddressKept(t *testing.T) {
	e := NewEngine()
	out := &extract.ExtractionOutput{Tables: []extract.Table{{
		Rows: []map[string]string{
			{"Address": "", "Sale Price": "$150,000"},
		},
	}}}

	recs := e.Extract(out)
	require.Len(t, recs, 1)
	value := recs[0].Value.(map[string]any)
	assert.Equal(t, "", value["address"])
}

func TestExtractRepairTable(t *testing.T) {
	e := NewEngine()
	out := &extract.ExtractionOutput{Tables: []extract.Table{{
		Rows: []map[string]string{
			{"Description": "Roof replacement", "Cost": "$12,000"},
			{"Description": "Paint interior", "Cost": ""},
		},
	}}}

	recs := e.Extract(out)
	require.Len(t, recs, 2)

	first := recs[0]
	assert.Equal(t, constants.RecordRepair, first.RecordType)
	assert.Equal(t, "repair_1", first.Field)
	assert.Equal(t, 0.7, first.Confidence)
	assert.True(t, first.RequiresReview)

	value := first.Value.(map[string]any)
	assert.Equal(t, "Roof replacement", value["description"])
	assert.Equal(t, "$12,000", value["estimated_cost"])
	assert.Equal(t, 1, value["repair_number"])

	second := recs[1]
	assert.Equal(t, 0.55, second.Confidence)
	assert.True(t, second.RequiresReview)
}

func TestExtractIgnoresUnclassifiedTables(t *testing.T) {
	e := NewEngine()
	out := &extract.ExtractionOutput{Tables: []extract.Table{{
		Rows: []map[string]string{
			{"Month": "January", "Rainfall": "3.2"},
		},
	}}}

	assert.Empty(t, e.Extract(out))
}

func TestExtractNumbersRowsAcrossTables(t *testing.T) {
	e := NewEngine()
	out := &extract.ExtractionOutput{Tables: []extract.Table{
		{Rows: []map[string]string{
			{"Address": "1 First St", "Sale Price": "$100"},
		}},
		{Rows: []map[string]string{
			{"Address": "2 Second St", "Sold Price": "$200"},
		}},
	}}

	recs := e.Extract(out)
	require.Len(t, recs, 2)
	assert.Equal(t, "comparable_1", recs[0].Field)
	assert.Equal(t, "comparable_2", recs[1].Field)
}

func TestCleanMoney(t *testing.T) {
	v, err := cleanMoney("1,234,567.89")
	require.NoError(t, err)
	assert.Equal(t, 1234567.89, v)

	_, err = cleanMoney("n/a")
	assert.Error(t, err)
}

func TestCleanDate(t *testing.T) {
	for _, in := range []string{"2026-03-15", "03/15/2026", "March 15, 2026", "Mar 15, 2026"} {
		v, err := cleanDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, "2026-03-15", v)
	}
}
