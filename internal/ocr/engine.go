// Package ocr wraps the native tooling the extraction strategies depend on:
// pdftotext/mutool for vector text layers, pdftoppm for rasterization, and
// tesseract for character recognition. Every tool is optional; callers check
// availability and degrade to a warning when a binary is missing.
package ocr

import (
	"log/slog"
	"os/exec"
)

// DefaultConfidence is assigned to an OCR block when the engine returned no
// valid per-token confidences.
const DefaultConfidence = 0.55

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Mutool    string // secondary text-layer backend; if empty -> "mutool"
	Pdftoppm  string // if empty -> "pdftoppm"
	Tesseract string // if empty -> "tesseract"

	Lang     string  // tesseract language, default "eng"
	Scale    float64 // raster scale over the 72dpi page box, default 2.0
	MaxPages int     // 0 = no limit
}

type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	// lookPath is swapped in tests so availability checks do not depend on
	// the host environment.
	lookPath func(string) (string, error)
}

// Option overrides an Engine collaborator, used by tests to stub the
// command runner and binary lookup.
type Option func(*Engine)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithLookPath replaces the binary availability check.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(e *Engine) { e.lookPath = fn }
}

func NewEngine(cfg Config, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Mutool == "" {
		cfg.Mutool = "mutool"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 2.0
	}
	e := &Engine{cfg: cfg, runner: execRunner{}, logger: logger, lookPath: exec.LookPath}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) available(bin string) bool {
	_, err := e.lookPath(bin)
	return err == nil
}

// HasTextLayerTool reports whether the primary vector-text backend is usable.
func (e *Engine) HasTextLayerTool() bool { return e.available(e.cfg.Pdftotext) }

// HasAltTextTool reports whether the secondary vector-text backend is usable.
func (e *Engine) HasAltTextTool() bool { return e.available(e.cfg.Mutool) }

// HasRasterizer reports whether PDF pages can be rendered to images.
func (e *Engine) HasRasterizer() bool { return e.available(e.cfg.Pdftoppm) }

// HasOCR reports whether character recognition is usable.
func (e *Engine) HasOCR() bool { return e.available(e.cfg.Tesseract) }

// Lang returns the configured recognition language.
func (e *Engine) Lang() string { return e.cfg.Lang }
