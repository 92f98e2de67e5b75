package pipeline

import (
	"github.com/garrett-k18/ProjectAlpha-v1-sub001/internal/extract"
)

// mergeRecords folds AI overrides into the base record list by (record-type,
// field) key, keeping whichever side has the higher confidence. Ties keep the
// original. Base order is preserved; overrides for unknown keys are dropped
// (the augmenter only sees existing records).
func mergeRecords(base, overrides []extract.FieldRecord) []extract.FieldRecord {
	if len(overrides) == 0 {
		return base
	}

	byKey := make(map[string]extract.FieldRecord, len(overrides))
	for _, o := range overrides {
		byKey[o.Key()] = o
	}

	merged := make([]extract.FieldRecord, len(base))
	for i, r := range base {
		if o, ok := byKey[r.Key()]; ok && o.Confidence > r.Confidence {
			merged[i] = o
			continue
		}
		merged[i] = r
	}
	return merged
}
