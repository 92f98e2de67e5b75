// Package pipeline is the orchestrator: it selects the extraction strategy
// for a document, runs the field engine, escalates low-confidence fields to
// the AI augmenter, merges, and assembles the final result. One Process call
// is strictly linear; a Processor is safe for concurrent use.
package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/augment"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/fields"
)

// Config holds the pipeline thresholds.
type Config struct {
	HighConfidenceThreshold float64 // marks a field finalised, default 0.98
	AIThreshold             float64 // gates AI escalation, default 0.85
	ReviewThreshold         float64 // forces manual review below, default 0.75
}

func (c Config) withDefaults() Config {
	if c.HighConfidenceThreshold <= 0 {
		c.HighConfidenceThreshold = 0.98
	}
	if c.AIThreshold <= 0 {
		c.AIThreshold = 0.85
	}
	if c.ReviewThreshold <= 0 {
		c.ReviewThreshold = 0.75
	}
	return c
}

type Processor struct {
	strategies []extract.Strategy
	engine     *fields.Engine
	augmenter  *augment.Service // nil when no AI collaborator is configured
	cfg        Config
	logger     *slog.Logger
}

func NewProcessor(strategies []extract.Strategy, engine *fields.Engine, augmenter *augment.Service, cfg Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		strategies: strategies,
		engine:     engine,
		augmenter:  augmenter,
		cfg:        cfg.withDefaults(),
		logger:     logger,
	}
}

// Process runs the full extraction pipeline on one document. The only hard
// failure is an unresolvable format; everything else degrades to warnings on
// the result.
func (p *Processor) Process(ctx context.Context, path, declaredMIME string) (*extract.DocumentExtractionResult, error) {
	start := time.Now()

	strat, mimeType, err := p.resolveStrategy(path, declaredMIME)
	if err != nil {
		p.logger.Error("pipeline.dispatch.failed", "path", path, "mime", declaredMIME, "error", err)
		return nil, err
	}
	p.logger.Info("pipeline.dispatch.ok", "path", path, "strategy", strat.Name(), "mime", mimeType)

	out, err := strat.Extract(ctx, path)
	if err != nil {
		p.logger.Error("pipeline.extract.failed", "path", path, "strategy", strat.Name(), "error", err)
		return nil, err
	}
	warnings := slices.Clone(out.Warnings)

	out.InferredSource = inferSource(out.FullText)

	records := p.engine.Extract(out)

	if p.augmenter != nil {
		if low := p.lowConfidenceScalars(records); len(low) > 0 {
			overrides, warns := p.augmenter.Augment(ctx, low, out)
			warnings = append(warnings, warns...)
			records = mergeRecords(records, overrides)
		}
	}

	p.finalize(records)

	result := &extract.DocumentExtractionResult{
		ID:             uuid.New(),
		SourcePath:     path,
		Format:         strat.Format(),
		MIMEType:       mimeType,
		ExtractedAt:    time.Now().UTC(),
		Output:         out,
		Records:        records,
		Warnings:       warnings,
		InferredSource: out.InferredSource,
	}

	p.logger.Info("pipeline.process.ok",
		"path", path,
		"strategy", strat.Name(),
		"blocks", len(out.Blocks),
		"tables", len(out.Tables),
		"records", len(records),
		"warnings", len(warnings),
		"inferred_source", out.InferredSource,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// lowConfidenceScalars selects the rule-derived records under the escalation
// threshold. Table rows are never escalated.
func (p *Processor) lowConfidenceScalars(records []extract.FieldRecord) []extract.FieldRecord {
	var low []extract.FieldRecord
	for _, r := range records {
		if r.Method == constants.MethodRule && r.Confidence < p.cfg.AIThreshold {
			low = append(low, r)
		}
	}
	return low
}

// finalize applies the review and finalised thresholds in place.
func (p *Processor) finalize(records []extract.FieldRecord) {
	for i := range records {
		if records[i].Confidence < p.cfg.ReviewThreshold {
			records[i].RequiresReview = true
		}
		if records[i].Confidence >= p.cfg.HighConfidenceThreshold {
			if records[i].Metadata == nil {
				records[i].Metadata = map[string]any{}
			}
			records[i].Metadata["finalised"] = true
		}
	}
}
