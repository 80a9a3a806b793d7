package selection

import (
	"math"

	"github.com/teslashibe/go-facetarget/pkg/detection"
)

// Factors are the per-face quality components, each in [0,1].
type Factors struct {
	Size       float64 `json:"size"`       // Box area relative to the frame, saturating
	Sharpness  float64 `json:"sharpness"`  // Focus proxy over the face crop
	Centrality float64 `json:"centrality"` // Closeness of the box center to the frame center
}

// Scorer computes quality factors for detections in one image.
type Scorer struct {
	policy Policy
}

// NewScorer creates a scorer for the given policy.
func NewScorer(p Policy) *Scorer {
	return &Scorer{policy: p}
}

// Score returns the factors and the composite quality of a detection.
func (s *Scorer) Score(img *detection.Image, box detection.Box) (Factors, float64) {
	w, h := float64(img.Width()), float64(img.Height())

	f := Factors{
		Size:       SizeFactor(box.Area()/(w*h), s.policy.SizeScale),
		Sharpness:  SharpnessFactor(LaplacianVariance(img.Gray(), box.Rect()), s.policy.SharpnessScale),
		Centrality: CentralityFactor(box, w, h),
	}
	return f, s.policy.Combine(f)
}

// SizeFactor maps an area ratio to 1 - exp(-ratio/scale). It grows
// monotonically and flattens out, so a face filling the frame scores only
// slightly above one filling a third of it.
func SizeFactor(areaRatio, scale float64) float64 {
	if areaRatio <= 0 || scale <= 0 {
		return 0
	}
	return clamp01(1 - math.Exp(-areaRatio/scale))
}

// SharpnessFactor maps a Laplacian variance onto [0,1].
func SharpnessFactor(variance, scale float64) float64 {
	if scale <= 0 {
		return 0
	}
	return clamp01(variance / scale)
}

// CentralityFactor is 1 at the frame center and falls linearly to 0 at
// the corners (half the diagonal away).
func CentralityFactor(box detection.Box, width, height float64) float64 {
	cx, cy := box.Center()
	halfDiag := math.Hypot(width, height) / 2
	if halfDiag == 0 {
		return 0
	}
	dist := math.Hypot(cx-width/2, cy-height/2)
	return clamp01(1 - dist/halfDiag)
}
