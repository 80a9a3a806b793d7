package selection

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/teslashibe/go-facetarget/pkg/detection"
)

// Point is a position in the normalized unit square: (0,0) is the top-left
// of the image, (1,1) the bottom-right.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// String formats the point the way the generation CLI expects it.
func (p Point) String() string {
	return fmt.Sprintf("%.3f,%.3f", p.X, p.Y)
}

// Candidate is a deduplicated, scored and normalized face.
type Candidate struct {
	Index     int                    `json:"index"` // 1-based display index, left to right
	Detection detection.RawDetection `json:"-"`
	Center    Point                  `json:"center"`
	Width     float64                `json:"width"`  // Box width as a fraction of the image width
	Height    float64                `json:"height"` // Box height as a fraction of the image height
	Factors   Factors                `json:"factors"`
	Quality   float64                `json:"quality"`
}

// Normalize maps each candidate's pixel box into the unit square and
// assigns display indices ordered by X, then Y. Equal positions keep their
// incoming order. The returned slice is sorted by index.
func Normalize(cands []Candidate, width, height int) []Candidate {
	out := slices.Clone(cands)
	w, h := float64(width), float64(height)

	for i := range out {
		cx, cy := out[i].Detection.Center()
		out[i].Center = Point{X: clamp01(cx / w), Y: clamp01(cy / h)}
		out[i].Width = clamp01(out[i].Detection.W / w)
		out[i].Height = clamp01(out[i].Detection.H / h)
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		if c := cmp.Compare(a.Center.X, b.Center.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Center.Y, b.Center.Y)
	})

	for i := range out {
		out[i].Index = i + 1
	}
	return out
}

// Analyze runs deduplication, scoring and normalization over raw detections.
// Boxes without area or entirely outside the image are discarded first.
func Analyze(img *detection.Image, raw []detection.RawDetection, p Policy) []Candidate {
	frame := detection.Box{W: float64(img.Width()), H: float64(img.Height())}

	valid := make([]detection.RawDetection, 0, len(raw))
	for _, d := range raw {
		if !d.Valid() || !frame.Intersect(d.Box).Valid() {
			continue
		}
		d.Confidence = clamp01(d.Confidence)
		valid = append(valid, d)
	}

	kept := Deduplicate(valid, p.IoUThreshold)

	scorer := NewScorer(p)
	cands := make([]Candidate, len(kept))
	for i, d := range kept {
		f, q := scorer.Score(img, d.Box)
		cands[i] = Candidate{Detection: d, Factors: f, Quality: q}
	}

	return Normalize(cands, img.Width(), img.Height())
}

// Best returns the candidate with the highest quality. Ties go to the lower
// display index. cands must be in display order.
func Best(cands []Candidate) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Quality > best.Quality {
			best = c
		}
	}
	return best, true
}

// ByIndex returns the candidate with the given display index.
func ByIndex(cands []Candidate, index int) (Candidate, bool) {
	for _, c := range cands {
		if c.Index == index {
			return c, true
		}
	}
	return Candidate{}, false
}
