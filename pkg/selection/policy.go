package selection

import (
	"errors"
	"fmt"
	"math"
)

// Policy holds the tunable thresholds and weights. It is passed explicitly
// to every stage; nothing reads it from package state.
type Policy struct {
	// Deduplication
	IoUThreshold float64 `mapstructure:"iou_threshold"` // Suppress boxes overlapping a kept one by more than this

	// Composite weights (normalized to sum to 1)
	SizeWeight       float64 `mapstructure:"size_weight"`
	SharpnessWeight  float64 `mapstructure:"sharpness_weight"`
	CentralityWeight float64 `mapstructure:"centrality_weight"`

	// Factor curves
	SizeScale      float64 `mapstructure:"size_scale"`      // Area ratio at which size reaches ~63%
	SharpnessScale float64 `mapstructure:"sharpness_scale"` // Laplacian variance that counts as fully sharp
}

// DefaultPolicy returns the recommended policy.
func DefaultPolicy() Policy {
	return Policy{
		IoUThreshold: 0.3, // Merges duplicates, keeps adjacent faces apart

		SizeWeight:       0.4,
		SharpnessWeight:  0.3,
		CentralityWeight: 0.3,

		SizeScale:      0.1,    // A third of the frame scores ~0.96
		SharpnessScale: 1000.0, // Variance of Laplacian on 8-bit gray
	}
}

// StrictPolicy merges more aggressively and favors sharp faces, for
// detectors that emit many near-duplicate boxes.
func StrictPolicy() Policy {
	p := DefaultPolicy()
	p.IoUThreshold = 0.2
	p.SharpnessWeight = 0.45
	p.SizeWeight = 0.35
	p.CentralityWeight = 0.2
	return p
}

// LenientPolicy keeps close faces apart (group photos) and leans on size.
func LenientPolicy() Policy {
	p := DefaultPolicy()
	p.IoUThreshold = 0.4
	p.SizeWeight = 0.5
	p.SharpnessWeight = 0.2
	p.CentralityWeight = 0.3
	return p
}

// PolicyByName returns a preset by name.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "default":
		return DefaultPolicy(), nil
	case "strict":
		return StrictPolicy(), nil
	case "lenient":
		return LenientPolicy(), nil
	default:
		return Policy{}, fmt.Errorf("selection: unknown policy preset %q", name)
	}
}

// Validate checks thresholds and weights.
func (p Policy) Validate() error {
	if !inUnit(p.IoUThreshold) || p.IoUThreshold == 0 {
		return fmt.Errorf("selection: iou threshold %v outside (0, 1]", p.IoUThreshold)
	}
	for _, w := range []float64{p.SizeWeight, p.SharpnessWeight, p.CentralityWeight} {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("selection: weight %v must be a finite non-negative number", w)
		}
	}
	if p.SizeWeight+p.SharpnessWeight+p.CentralityWeight == 0 {
		return errors.New("selection: at least one weight must be positive")
	}
	if !(p.SizeScale > 0) || !(p.SharpnessScale > 0) {
		return errors.New("selection: factor scales must be positive")
	}
	return nil
}

// Combine returns the convex combination of the clamped factors.
// Raising any factor never lowers the result.
func (p Policy) Combine(f Factors) float64 {
	sum := p.SizeWeight + p.SharpnessWeight + p.CentralityWeight
	if sum <= 0 {
		return 0
	}
	score := (p.SizeWeight*clamp01(f.Size) +
		p.SharpnessWeight*clamp01(f.Sharpness) +
		p.CentralityWeight*clamp01(f.Centrality)) / sum
	return clamp01(score)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
