package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/common"
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
)

// resolveStrategy picks the extractor for a document: declared MIME first,
// then content sniffing, then the extension-family tiebreak. No match is the
// pipeline's one fatal error.
func (p *Processor) resolveStrategy(path, declaredMIME string) (extract.Strategy, string, error) {
	mimeType := normalizeMIME(declaredMIME)

	if mimeType != "" && mimeType != "application/octet-stream" {
		for _, s := range p.strategies {
			if s.Supports(mimeType, path) {
				return s, mimeType, nil
			}
		}
	}

	// ambiguous or unrecognized declaration: sniff the content
	if mt, err := mimetype.DetectFile(path); err == nil {
		sniffed := normalizeMIME(mt.String())
		for _, s := range p.strategies {
			if s.Supports(sniffed, path) {
				return s, sniffed, nil
			}
		}
	}

	// extension tiebreak across the four canonical families
	ext := constants.NormalizeExt(filepath.Ext(path))
	if format := constants.MapExtToFormat(ext); format != "" {
		for _, s := range p.strategies {
			if s.Format() == format {
				return s, mimeType, nil
			}
		}
	}

	return nil, "", fmt.Errorf("%w: mime=%q ext=%q", common.ErrUnsupportedFormat, declaredMIME, ext)
}

func normalizeMIME(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(base))
}
