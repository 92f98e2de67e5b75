package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/augment"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/common"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/fields"
)

// fakeStrategy is a canned extractor for dispatch and orchestration tests.
type fakeStrategy struct {
	name    string
	format  constants.Format
	mimes   []string
	out     *extract.ExtractionOutput
	err     error
	invoked int
}

func (f *fakeStrategy) Name() string             { return f.name }
func (f *fakeStrategy) Format() constants.Format { return f.format }

func (f *fakeStrategy) Supports(mimeType, _ string) bool {
	for _, m := range f.mimes {
		if m == mimeType {
			return true
		}
	}
	return false
}

func (f *fakeStrategy) Extract(_ context.Context, _ string) (*extract.ExtractionOutput, error) {
	f.invoked++
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

// fakeClient is a canned augmentation backend.
type fakeClient struct {
	candidates map[string]augment.Candidate
	err        error
}

func (c *fakeClient) Complete(_ context.Context, _ string, opts augment.Options) (augment.Candidate, error) {
	if c.err != nil {
		return augment.Candidate{}, c.err
	}
	return c.candidates[opts.Field], nil
}

func textOutput(text string) *extract.ExtractionOutput {
	out := &extract.ExtractionOutput{}
	out.AddBlock(extract.TextBlock{Text: text, Confidence: 0.99})
	out.Finalize()
	return out
}

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestResolveStrategyByDeclaredMIME(t *testing.T) {
	pdf := &fakeStrategy{name: "pdf", format: constants.PDF, mimes: []string{"application/pdf"}}
	p := NewProcessor([]extract.Strategy{pdf}, fields.NewEngine(), nil, Config{}, nil)

	s, mime, err := p.resolveStrategy("doc.bin", "application/pdf; charset=binary")
	require.NoError(t, err)
	assert.Equal(t, "pdf", s.Name())
	assert.Equal(t, "application/pdf", mime)
}

func TestResolveStrategyBySniffedContent(t *testing.T) {
	path := writeTemp(t, "doc.bin", []byte("%PDF-1.4\n%test content\n"))
	pdf := &fakeStrategy{name: "pdf", format: constants.PDF, mimes: []string{"application/pdf"}}
	p := NewProcessor([]extract.Strategy{pdf}, fields.NewEngine(), nil, Config{}, nil)

	s, mime, err := p.resolveStrategy(path, "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "pdf", s.Name())
	assert.Equal(t, "application/pdf", mime)
}

func TestResolveStrategyByExtensionTiebreak(t *testing.T) {
	path := writeTemp(t, "report.xlsx", []byte("not really a workbook"))
	sheet := &fakeStrategy{name: "spreadsheet", format: constants.SPREADSHEET,
		mimes: []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}}
	p := NewProcessor([]extract.Strategy{sheet}, fields.NewEngine(), nil, Config{}, nil)

	s, _, err := p.resolveStrategy(path, "")
	require.NoError(t, err)
	assert.Equal(t, "spreadsheet", s.Name())
}

func TestResolveStrategyUnsupported(t *testing.T) {
	path := writeTemp(t, "notes.xyz", []byte("plain text"))
	p := NewProcessor(nil, fields.NewEngine(), nil, Config{}, nil)

	_, _, err := p.resolveStrategy(path, "application/x-unknown")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnsupportedFormat))
}

func TestProcessUnsupportedFormatIsFatal(t *testing.T) {
	path := writeTemp(t, "notes.xyz", []byte("plain text"))
	p := NewProcessor(nil, fields.NewEngine(), nil, Config{}, nil)

	res, err := p.Process(context.Background(), path, "")
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, common.ErrUnsupportedFormat))
}

func TestProcessEndToEnd(t *testing.T) {
	out := textOutput("BROKER PRICE OPINION - EXTERIOR\nLoan Number: XY-100\nAs-Is Value: $200,000\n")
	out.Warnf("page 3 was blank")
	strat := &fakeStrategy{name: "pdf", format: constants.PDF, mimes: []string{"application/pdf"}, out: out}
	p := NewProcessor([]extract.Strategy{strat}, fields.NewEngine(), nil, Config{}, nil)

	res, err := p.Process(context.Background(), "doc.pdf", "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, 1, strat.invoked)
	assert.Equal(t, constants.PDF, res.Format)
	assert.Equal(t, constants.SourceBPOExterior, res.InferredSource)
	assert.Contains(t, res.Warnings, "page 3 was blank")
	assert.NotEqual(t, "", res.ID.String())
	assert.False(t, res.ExtractedAt.IsZero())

	var loan extract.FieldRecord
	found := false
	for _, r := range res.Records {
		if r.Field == "loan_number" {
			loan, found = r, true
		}
	}
	require.True(t, found)
	assert.Equal(t, "XY-100", loan.Value)
}

func TestProcessExtractErrorPropagates(t *testing.T) {
	strat := &fakeStrategy{name: "pdf", format: constants.PDF,
		mimes: []string{"application/pdf"}, err: errors.New("corrupt xref")}
	p := NewProcessor([]extract.Strategy{strat}, fields.NewEngine(), nil, Config{}, nil)

	_, err := p.Process(context.Background(), "doc.pdf", "application/pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt xref")
}

func TestProcessAugmentsLowConfidenceScalars(t *testing.T) {
	// agent_name extracts at 0.70, below the 0.85 escalation threshold; the
	// fake backend answers with higher confidence, so its value must win.
	out := textOutput("Agent Name: J Smith\n")
	strat := &fakeStrategy{name: "pdf", format: constants.PDF, mimes: []string{"application/pdf"}, out: out}
	client := &fakeClient{candidates: map[string]augment.Candidate{
		"agent_name": {Value: "Jane Smith", Confidence: 0.92},
	}}
	aug := augment.NewService(client, augment.Config{Model: "test-model"}, nil)
	p := NewProcessor([]extract.Strategy{strat}, fields.NewEngine(), aug, Config{}, nil)

	res, err := p.Process(context.Background(), "doc.pdf", "application/pdf")
	require.NoError(t, err)

	for _, r := range res.Records {
		if r.Field == "agent_name" {
			assert.Equal(t, "Jane Smith", r.Value)
			assert.Equal(t, 0.92, r.Confidence)
			assert.Equal(t, constants.MethodAI, r.Method)
			return
		}
	}
	t.Fatal("agent_name record missing")
}

func TestProcessAugmentFailureBecomesWarning(t *testing.T) {
	out := textOutput("Agent Name: J Smith\n")
	strat := &fakeStrategy{name: "pdf", format: constants.PDF, mimes: []string{"application/pdf"}, out: out}
	aug := augment.NewService(&fakeClient{err: errors.New("rate limited")}, augment.Config{}, nil)
	p := NewProcessor([]extract.Strategy{strat}, fields.NewEngine(), aug, Config{}, nil)

	res, err := p.Process(context.Background(), "doc.pdf", "application/pdf")
	require.NoError(t, err)

	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "rate limited") {
			found = true
		}
	}
	assert.True(t, found)

	for _, r := range res.Records {
		if r.Field == "agent_name" {
			assert.Equal(t, "J Smith", r.Value)
			assert.Equal(t, constants.MethodRule, r.Method)
		}
	}
}

func TestMergeRecordsHigherConfidenceWins(t *testing.T) {
	base := []extract.FieldRecord{
		{RecordType: "valuation", Field: "city", Value: "Springfeld", Confidence: 0.5, Method: constants.MethodRule},
		{RecordType: "valuation", Field: "state", Value: "IL", Confidence: 0.85, Method: constants.MethodRule},
	}
	overrides := []extract.FieldRecord{
		{RecordType: "valuation", Field: "city", Value: "Springfield", Confidence: 0.7, Method: constants.MethodAI},
		{RecordType: "valuation", Field: "state", Value: "IN", Confidence: 0.5, Method: constants.MethodAI},
	}

	merged := mergeRecords(base, overrides)
	require.Len(t, merged, 2)

	assert.Equal(t, "Springfield", merged[0].Value)
	assert.Equal(t, constants.MethodAI, merged[0].Method)

	assert.Equal(t, "IL", merged[1].Value)
	assert.Equal(t, constants.MethodRule, merged[1].Method)
}

func TestMergeRecordsTieKeepsOriginal(t *testing.T) {
	base := []extract.FieldRecord{
		{RecordType: "valuation", Field: "zip_code", Value: "62704", Confidence: 0.85, Method: constants.MethodRule},
	}
	overrides := []extract.FieldRecord{
		{RecordType: "valuation", Field: "zip_code", Value: "62705", Confidence: 0.85, Method: constants.MethodAI},
	}

	merged := mergeRecords(base, overrides)
	require.Len(t, merged, 1)
	assert.Equal(t, "62704", merged[0].Value)
	assert.Equal(t, constants.MethodRule, merged[0].Method)
}

func TestFinalizeThresholds(t *testing.T) {
	p := NewProcessor(nil, fields.NewEngine(), nil, Config{}, nil)
	records := []extract.FieldRecord{
		{Field: "low", Confidence: 0.5},
		{Field: "mid", Confidence: 0.9},
		{Field: "high", Confidence: 0.99},
	}

	p.finalize(records)

	assert.True(t, records[0].RequiresReview)
	assert.False(t, records[1].RequiresReview)
	assert.Nil(t, records[1].Metadata)
	assert.Equal(t, true, records[2].Metadata["finalised"])
}

func TestInferSource(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"BROKER PRICE OPINION\nInterior Inspection", constants.SourceBPOInterior},
		{"Broker's Price Opinion - Exterior Only", constants.SourceBPOExterior},
		{"broker price opinion form 1001", constants.SourceBPO},
		{"Uniform Residential Appraisal Report", constants.SourceAppraisal},
		{"This desktop valuation was prepared for...", constants.SourceDesktopValuation},
		{"Internal Valuation Memo", constants.SourceInternalValuation},
		{"monthly rent roll", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, inferSource(tc.text), tc.text)
	}
}
