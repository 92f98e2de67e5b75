package strategy

import (
	"context"
	"log/slog"
	"strings"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/ocr"
)

// ImageStrategy runs whole-image OCR on scanned raster documents.
type ImageStrategy struct {
	tools  *ocr.Engine
	logger *slog.Logger
}

func NewImage(tools *ocr.Engine, logger *slog.Logger) *ImageStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageStrategy{tools: tools, logger: logger}
}

func (s *ImageStrategy) Name() string             { return "image" }
func (s *ImageStrategy) Format() constants.Format { return constants.IMAGE }

func (s *ImageStrategy) Supports(mimeType, _ string) bool {
	return strings.HasPrefix(baseMIME(mimeType), "image/")
}

func (s *ImageStrategy) Extract(ctx context.Context, path string) (*extract.ExtractionOutput, error) {
	out := &extract.ExtractionOutput{}

	if !s.tools.HasOCR() {
		out.Warnf("tesseract unavailable; image cannot be read")
		out.Finalize()
		return out, nil
	}

	toks, warns, err := s.tools.RecognizeTokens(ctx, path)
	out.Warnings = append(out.Warnings, warns...)
	if err != nil {
		out.Warnf("image ocr failed: %v", err)
		out.Finalize()
		return out, nil
	}

	text := ocr.JoinTokens(toks)
	if text == "" {
		out.Warnf("image ocr produced no text")
		out.Finalize()
		return out, nil
	}

	out.AddBlock(extract.TextBlock{
		Text:       text,
		Confidence: ocr.MeanConfidence(toks),
		Metadata: map[string]string{
			"source": "ocr",
			"lang":   s.tools.Lang(),
		},
	})
	out.Finalize()
	return out, nil
}
