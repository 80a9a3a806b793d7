// Package detection provides face detection backends behind a single interface.
//
// Backends only turn pixels into raw boxes. Overlap removal, scoring and
// selection happen downstream in package selection.
package detection

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrUnavailable is returned when a detection capability is missing or
// failed to initialize. It is distinct from "no faces found", which is an
// empty result with a nil error.
var ErrUnavailable = errors.New("detection: detector unavailable")

// Box is an axis-aligned rectangle in pixel coordinates.
type Box struct {
	X, Y float64 // Top-left corner
	W, H float64 // Width and height (> 0)
}

// Center returns the center point of the box
func (b Box) Center() (x, y float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Area returns the area of the box
func (b Box) Area() float64 {
	return b.W * b.H
}

// Right returns the x coordinate of the right edge.
func (b Box) Right() float64 { return b.X + b.W }

// Bottom returns the y coordinate of the bottom edge.
func (b Box) Bottom() float64 { return b.Y + b.H }

// Intersect returns the overlapping region of two boxes.
// The result has zero size when they do not overlap.
func (b Box) Intersect(o Box) Box {
	x1 := max(b.X, o.X)
	y1 := max(b.Y, o.Y)
	x2 := min(b.Right(), o.Right())
	y2 := min(b.Bottom(), o.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Box{X: x1, Y: y1}
	}
	return Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Rect rounds the box outward to an integer rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(
		int(math.Floor(b.X)), int(math.Floor(b.Y)),
		int(math.Ceil(b.Right())), int(math.Ceil(b.Bottom())),
	)
}

// Valid reports whether the box has positive size.
func (b Box) Valid() bool {
	return b.W > 0 && b.H > 0
}

// RawDetection is a face box as reported by a backend, before deduplication.
type RawDetection struct {
	Box
	Confidence float64 // Detector confidence (0-1)
}

// String formats the detection for logs.
func (d RawDetection) String() string {
	return fmt.Sprintf("(%.0f,%.0f %.0fx%.0f conf=%.2f)", d.X, d.Y, d.W, d.H, d.Confidence)
}

// Detector is the interface for face detection backends
type Detector interface {
	// Detect finds faces in the image. It must not modify img.
	// An empty slice with a nil error means no faces were found.
	Detect(img *Image) ([]RawDetection, error)

	// Close releases resources
	Close() error
}

// Opener creates a Detector on demand. Opening is deferred so callers that
// never need detection (manual coordinates) never load a model.
type Opener func() (Detector, error)

// Backend identifies a detection implementation.
type Backend string

const (
	// BackendPigo is the pure-Go pixel intensity comparison cascade.
	BackendPigo Backend = "pigo"

	// BackendHaar is the OpenCV Haar cascade classifier.
	BackendHaar Backend = "haar"

	// BackendYuNet is OpenCV's FaceDetectorYN with the YuNet ONNX model.
	BackendYuNet Backend = "yunet"
)

// Config holds detector configuration
type Config struct {
	Backend          Backend
	CascadePath      string  // Pigo cascade or Haar XML
	ModelPath        string  // Path to ONNX model (yunet)
	ConfidenceThresh float64 // Minimum confidence (0-1)
	MinSize          int     // Smallest face side in pixels
	MaxSize          int     // Largest face side in pixels
	ScaleFactor      float64 // Image pyramid step
	ShiftFactor      float64 // Sliding window step (pigo)
	MinNeighbors     int     // Haar neighbour requirement
}

// DefaultConfig returns defaults for the pure-Go backend.
func DefaultConfig() Config {
	return Config{
		Backend:          BackendPigo,
		CascadePath:      "cascade/facefinder",
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.05,
		MinSize:          40,
		MaxSize:          1000,
		ScaleFactor:      1.1,
		ShiftFactor:      0.1,
		MinNeighbors:     6,
	}
}

// HaarConfig returns the classic frontal-face cascade settings.
func HaarConfig() Config {
	cfg := DefaultConfig()
	cfg.Backend = BackendHaar
	cfg.CascadePath = "cascade/haarcascade_frontalface_default.xml"
	cfg.ScaleFactor = 1.15
	cfg.MinSize = 40
	cfg.MaxSize = 400
	return cfg
}

// YuNetConfig returns production defaults for YuNet.
func YuNetConfig() Config {
	cfg := DefaultConfig()
	cfg.Backend = BackendYuNet
	cfg.ConfidenceThresh = 0.5
	return cfg
}

// ConfigFor returns the defaults for a backend.
func ConfigFor(b Backend) (Config, error) {
	switch b {
	case BackendPigo, "":
		return DefaultConfig(), nil
	case BackendHaar:
		return HaarConfig(), nil
	case BackendYuNet:
		return YuNetConfig(), nil
	default:
		return Config{}, fmt.Errorf("detection: unknown backend %q", b)
	}
}

// Open creates the detector selected by cfg.Backend.
// Every failure wraps ErrUnavailable.
func Open(cfg Config) (Detector, error) {
	switch cfg.Backend {
	case BackendPigo, "":
		d, err := NewPigo(cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case BackendHaar:
		return newHaar(cfg)
	case BackendYuNet:
		return newYuNet(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrUnavailable, cfg.Backend)
	}
}

// NewOpener returns an Opener bound to cfg.
func NewOpener(cfg Config) Opener {
	return func() (Detector, error) {
		return Open(cfg)
	}
}
