package extract

import (
	"context"

	"github.com/garrett-k18/ProjectAlpha-v1-sub001/constants"
)

// Strategy is a format-specific extractor: raw file -> normalized output.
//
// Strategies never fail on recoverable problems; they append a warning and
// return whatever partial output they produced (possibly empty blocks and
// tables). The returned error is reserved for hard failures such as an
// unreadable file.
type Strategy interface {
	// Name is a short tag used in logs and block metadata.
	Name() string

	// Format is the family this strategy handles, used as the
	// extension-based dispatch tiebreak when MIME resolution fails.
	Format() constants.Format

	// Supports reports whether this strategy handles the given MIME type.
	Supports(mimeType, path string) bool

	Extract(ctx context.Context, path string) (*ExtractionOutput, error)
}
