package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PageTexts extracts the vector text layer of a PDF, one string per page.
// pdftotext separates pages with a form feed.
func (e *Engine) PageTexts(ctx context.Context, path string) ([]string, []string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext,
		"-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, []string{string(errb)}, fmt.Errorf("pdftotext: %w", err)
	}
	return splitPages(string(out)), nil, nil
}

// AltPageTexts extracts the text layer with the secondary backend. Used when
// the primary produced nothing; callers tag the resulting blocks with the
// backend name and a slightly lower confidence.
func (e *Engine) AltPageTexts(ctx context.Context, path string) ([]string, []string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Mutool,
		"draw", "-F", "text", "-o", "-", path)
	if err != nil {
		return nil, []string{string(errb)}, fmt.Errorf("mutool draw: %w", err)
	}
	return splitPages(string(out)), nil, nil
}

func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	// drop a trailing empty page produced by a terminal form feed
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages
}

// RasterizePDF renders each page to a PNG at the configured scale and returns
// the sorted image paths. Call cleanup to remove the temporary directory.
func (e *Engine) RasterizePDF(ctx context.Context, path string) (imgs []string, cleanup func(), warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "pa-raster-*")
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup = func() { _ = os.RemoveAll(tmpDir) }

	dpi := int(72 * e.cfg.Scale)
	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", dpi), "-png", path, prefix)
	if err != nil {
		return nil, cleanup, []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, cleanup, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}
	return matches, cleanup, nil, nil
}
