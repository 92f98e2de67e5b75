// Package strategy holds the format-specific extractors. Each strategy turns
// a raw file into a normalized ExtractionOutput; recoverable problems become
// warnings on the output, never errors.
package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/ocr"
)

const (
	textLayerConfidence = 0.99
	altLayerConfidence  = 0.95

	// ocrFallbackBelow triggers the OCR pass when every vector block landed
	// under this confidence.
	ocrFallbackBelow = 0.5
)

// PDFStrategy extracts vector text, table regions, and falls back to OCR for
// scanned documents with no usable text layer.
type PDFStrategy struct {
	tools  *ocr.Engine
	logger *slog.Logger
}

func NewPDF(tools *ocr.Engine, logger *slog.Logger) *PDFStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFStrategy{tools: tools, logger: logger}
}

func (s *PDFStrategy) Name() string             { return "pdf" }
func (s *PDFStrategy) Format() constants.Format { return constants.PDF }

func (s *PDFStrategy) Supports(mimeType, _ string) bool {
	return baseMIME(mimeType) == "application/pdf"
}

func (s *PDFStrategy) Extract(ctx context.Context, path string) (*extract.ExtractionOutput, error) {
	out := &extract.ExtractionOutput{}

	s.extractTextLayer(ctx, path, out)

	if needsOCR(out) {
		s.ocrFallback(ctx, path, out)
	}

	out.Finalize()
	return out, nil
}

// extractTextLayer runs the primary backend page by page, retrying with the
// secondary backend at lower confidence when the primary produced nothing.
func (s *PDFStrategy) extractTextLayer(ctx context.Context, path string, out *extract.ExtractionOutput) {
	if !s.tools.HasTextLayerTool() {
		out.Warnf("pdftotext unavailable; skipping text-layer extraction")
	} else {
		pages, warns, err := s.tools.PageTexts(ctx, path)
		out.Warnings = append(out.Warnings, warns...)
		if err != nil {
			out.Warnf("text-layer extraction failed: %v", err)
		} else {
			s.appendPages(out, pages, "pdftotext", textLayerConfidence)
		}
	}

	if len(out.Blocks) == 0 && s.tools.HasAltTextTool() {
		pages, warns, err := s.tools.AltPageTexts(ctx, path)
		out.Warnings = append(out.Warnings, warns...)
		if err != nil {
			out.Warnf("secondary text-layer extraction failed: %v", err)
			return
		}
		s.appendPages(out, pages, "mutool", altLayerConfidence)
	}
}

func (s *PDFStrategy) appendPages(out *extract.ExtractionOutput, pages []string, backend string, conf float64) {
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		out.AddBlock(extract.TextBlock{
			Text:       strings.TrimSpace(page),
			Confidence: conf,
			Metadata: map[string]string{
				"source":  "pdf-text",
				"backend": backend,
				"page":    fmt.Sprintf("%d", i+1),
			},
		})
		// table regions are detected independently of the text blocks
		out.Tables = append(out.Tables, detectLayoutTables(page)...)
	}
}

// needsOCR reports whether the vector pass produced nothing usable: zero
// blocks, or every block below the fallback threshold.
func needsOCR(out *extract.ExtractionOutput) bool {
	if len(out.Blocks) == 0 {
		return true
	}
	for _, b := range out.Blocks {
		if b.Confidence >= ocrFallbackBelow {
			return false
		}
	}
	return true
}

func (s *PDFStrategy) ocrFallback(ctx context.Context, path string, out *extract.ExtractionOutput) {
	if !s.tools.HasRasterizer() || !s.tools.HasOCR() {
		out.Warnf("OCR fallback unavailable (rasterizer or tesseract missing); no text extracted")
		return
	}

	imgs, cleanup, warns, err := s.tools.RasterizePDF(ctx, path)
	if cleanup != nil {
		defer cleanup()
	}
	out.Warnings = append(out.Warnings, warns...)
	if err != nil {
		out.Warnf("rasterization failed: %v", err)
		return
	}

	for i, img := range imgs {
		toks, w, err := s.tools.RecognizeTokens(ctx, img)
		out.Warnings = append(out.Warnings, w...)
		if err != nil {
			out.Warnf("ocr failed on page %d: %v", i+1, err)
			continue
		}
		text := ocr.JoinTokens(toks)
		if text == "" {
			continue
		}
		out.AddBlock(extract.TextBlock{
			Text:       text,
			Confidence: ocr.MeanConfidence(toks),
			Metadata: map[string]string{
				"source": "ocr",
				"page":   fmt.Sprintf("%d", i+1),
				"lang":   s.tools.Lang(),
			},
		})
	}
	s.logger.Debug("pdf ocr fallback complete", "path", path, "pages", len(imgs), "blocks", len(out.Blocks))
}

// baseMIME strips any parameters from a MIME type string.
func baseMIME(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(base))
}
