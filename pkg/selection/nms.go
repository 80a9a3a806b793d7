package selection

import (
	"cmp"
	"slices"

	"github.com/teslashibe/go-facetarget/pkg/detection"
)

// IoU returns the intersection-over-union of two boxes.
func IoU(a, b detection.Box) float64 {
	inter := a.Intersect(b).Area()
	if inter <= 0 {
		return 0
	}
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Deduplicate applies greedy non-maximum suppression. Boxes are visited by
// descending confidence (equal confidence keeps input order); every box whose
// IoU with an already kept box exceeds threshold is dropped. The result is
// ordered by descending confidence and the input is left untouched.
func Deduplicate(dets []detection.RawDetection, threshold float64) []detection.RawDetection {
	if len(dets) <= 1 {
		return slices.Clone(dets)
	}

	order := slices.Clone(dets)
	slices.SortStableFunc(order, func(a, b detection.RawDetection) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})

	kept := make([]detection.RawDetection, 0, len(order))
	for _, cand := range order {
		suppressed := false
		for _, k := range kept {
			if IoU(cand.Box, k.Box) > threshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, cand)
		}
	}
	return kept
}
