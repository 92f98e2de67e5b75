// Package augment escalates low-confidence field records to an external AI
// service for a second opinion. The pipeline is fully functional without it,
// and nothing in this package ever fails a run: every problem becomes a
// warning and the field keeps its rule-based result.
package augment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
)

// DefaultConfidence is assumed when the service returns a value but omits a
// confidence.
const DefaultConfidence = 0.6

// Options carry per-call settings to a Client.
type Options struct {
	Model string
	Field string
}

// Candidate is one override suggestion from the external service. An empty
// Value means the service had nothing to offer.
type Candidate struct {
	Value      string
	Confidence float64
	RawText    string
	Metadata   map[string]any
}

// Client is the single function-like contract to the external augmentation
// service.
type Client interface {
	Complete(ctx context.Context, prompt string, opts Options) (Candidate, error)
}

type Config struct {
	Model            string
	Timeout          time.Duration // per-field call budget
	MaxContextBlocks int           // text blocks included in the prompt
	MaxContextChars  int           // cap on prompt context size
}

type Service struct {
	client Client
	cfg    Config
	logger *slog.Logger
}

func NewService(client Client, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxContextBlocks <= 0 {
		cfg.MaxContextBlocks = 3
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 2000
	}
	return &Service{client: client, cfg: cfg, logger: logger}
}

// Augment asks the service for an override candidate for each low-confidence
// record. Returns override records (method "ai") plus warnings for every
// failed or discarded call. Never returns an error.
func (s *Service) Augment(ctx context.Context, records []extract.FieldRecord, out *extract.ExtractionOutput) ([]extract.FieldRecord, []string) {
	var overrides []extract.FieldRecord
	var warnings []string

	docContext := s.promptContext(out)

	for _, rec := range records {
		rid := uuid.New().String()
		start := time.Now()

		prompt := s.buildPrompt(rec, docContext)
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		cand, err := s.client.Complete(callCtx, prompt, Options{Model: s.cfg.Model, Field: rec.Field})
		cancel()

		if err != nil {
			s.logger.Warn("augment.failed",
				"req_id", rid, "field", rec.Field,
				"error", err, "elapsed_ms", time.Since(start).Milliseconds())
			warnings = append(warnings, fmt.Sprintf("augment %s: %v", rec.Field, err))
			continue
		}
		if strings.TrimSpace(cand.Value) == "" {
			s.logger.Debug("augment.empty", "req_id", rid, "field", rec.Field)
			continue
		}

		conf := cand.Confidence
		if conf <= 0 {
			conf = DefaultConfidence
		}

		meta := map[string]any{"model": s.cfg.Model}
		for k, v := range cand.Metadata {
			meta[k] = v
		}

		overrides = append(overrides, extract.FieldRecord{
			RecordType: rec.RecordType,
			Field:      rec.Field,
			Value:      strings.TrimSpace(cand.Value),
			RawText:    cand.RawText,
			Confidence: conf,
			Method:     constants.MethodAI,
			Metadata:   meta,
		})

		s.logger.Info("augment.ok",
			"req_id", rid, "field", rec.Field,
			"confidence", conf, "elapsed_ms", time.Since(start).Milliseconds())
	}
	return overrides, warnings
}

// promptContext serializes the first few text blocks, capped.
func (s *Service) promptContext(out *extract.ExtractionOutput) string {
	var b strings.Builder
	for i, blk := range out.Blocks {
		if i >= s.cfg.MaxContextBlocks || b.Len() >= s.cfg.MaxContextChars {
			break
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(blk.Text)
	}
	text := b.String()
	if len(text) > s.cfg.MaxContextChars {
		text = text[:s.cfg.MaxContextChars]
	}
	return text
}

func (s *Service) buildPrompt(rec extract.FieldRecord, docContext string) string {
	var b strings.Builder
	b.WriteString("Extract the value of the field ")
	b.WriteString(fmt.Sprintf("%q", rec.Field))
	b.WriteString(" from the following valuation document text. ")
	b.WriteString(`Return ONLY JSON: {"value": string, "confidence": number between 0 and 1}. `)
	b.WriteString("If the field is not present, return an empty value.\n\nDocument text:\n")
	b.WriteString(docContext)
	return b.String()
}
