package detection

import (
	"fmt"
	"os"
	"sync"

	pigo "github.com/esimov/pigo/core"
	"github.com/teslashibe/go-facetarget/pkg/debug"
)

// pigoQualityScale maps pigo's unbounded detection quality onto 0-1.
const pigoQualityScale = 100.0

// PigoDetector runs the pigo cascade entirely in Go.
type PigoDetector struct {
	classifier *pigo.Pigo
	config     Config
	mu         sync.Mutex
}

// NewPigo loads and unpacks the cascade at cfg.CascadePath.
func NewPigo(cfg Config) (*PigoDetector, error) {
	cascade, err := os.ReadFile(cfg.CascadePath)
	if err != nil {
		return nil, fmt.Errorf("%w: read cascade: %v", ErrUnavailable, err)
	}

	classifier, err := unpackCascade(cascade)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack cascade %s: %v", ErrUnavailable, cfg.CascadePath, err)
	}

	return &PigoDetector{classifier: classifier, config: cfg}, nil
}

// unpackCascade guards pigo's unpacker, which indexes past the end of
// truncated files instead of returning an error.
func unpackCascade(data []byte) (p *pigo.Pigo, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("corrupt cascade: %v", r)
		}
	}()
	return pigo.NewPigo().Unpack(data)
}

// Detect runs the cascade over the grayscale pixels. Overlapping boxes are
// returned as-is.
func (d *PigoDetector) Detect(img *Image) ([]RawDetection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.classifier == nil {
		return nil, fmt.Errorf("%w: pigo detector closed", ErrUnavailable)
	}

	gray := img.Gray()
	params := pigo.CascadeParams{
		MinSize:     d.config.MinSize,
		MaxSize:     d.config.MaxSize,
		ShiftFactor: d.config.ShiftFactor,
		ScaleFactor: d.config.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: gray.Pix,
			Rows:   img.Height(),
			Cols:   img.Width(),
			Dim:    gray.Stride,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	out := convertPigo(dets, d.config.ConfidenceThresh)

	debug.TrackLog("👁️  pigo: %d raw, %d above threshold in %s\n", len(dets), len(out), img.Name())
	return out, nil
}

// convertPigo turns pigo's (row, col, scale) circles into boxes.
func convertPigo(dets []pigo.Detection, thresh float64) []RawDetection {
	out := make([]RawDetection, 0, len(dets))
	for _, det := range dets {
		conf := min(float64(det.Q)/pigoQualityScale, 1)
		if conf < thresh || det.Scale <= 0 {
			continue
		}
		half := float64(det.Scale) / 2
		out = append(out, RawDetection{
			Box: Box{
				X: float64(det.Col) - half,
				Y: float64(det.Row) - half,
				W: float64(det.Scale),
				H: float64(det.Scale),
			},
			Confidence: conf,
		})
	}
	return out
}

// Close releases the classifier.
func (d *PigoDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.classifier = nil
	return nil
}
