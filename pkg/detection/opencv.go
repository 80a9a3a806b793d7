//go:build opencv

package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/teslashibe/go-facetarget/pkg/debug"
	"gocv.io/x/gocv"
)

// HaarDetector uses OpenCV's cascade classifier.
type HaarDetector struct {
	classifier gocv.CascadeClassifier
	config     Config
	mu         sync.Mutex
}

func newHaar(cfg Config) (Detector, error) {
	if _, err := os.Stat(cfg.CascadePath); err != nil {
		return nil, fmt.Errorf("%w: cascade file not found: %s", ErrUnavailable, cfg.CascadePath)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cfg.CascadePath) {
		classifier.Close()
		return nil, fmt.Errorf("%w: failed to load cascade %s", ErrUnavailable, cfg.CascadePath)
	}

	return &HaarDetector{classifier: classifier, config: cfg}, nil
}

// Detect finds faces with DetectMultiScale. The classifier reports no
// scores, so confidence is the box area relative to the largest box.
func (d *HaarDetector) Detect(img *Image) ([]RawDetection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	mat, err := gocv.ImageGrayToMatGray(img.Gray())
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	rects := d.classifier.DetectMultiScaleWithParams(
		mat,
		d.config.ScaleFactor,
		d.config.MinNeighbors,
		0,
		image.Pt(d.config.MinSize, d.config.MinSize),
		image.Pt(d.config.MaxSize, d.config.MaxSize),
	)

	maxArea := 0
	for _, r := range rects {
		maxArea = max(maxArea, r.Dx()*r.Dy())
	}

	out := make([]RawDetection, 0, len(rects))
	for _, r := range rects {
		out = append(out, RawDetection{
			Box: Box{
				X: float64(r.Min.X),
				Y: float64(r.Min.Y),
				W: float64(r.Dx()),
				H: float64(r.Dy()),
			},
			Confidence: float64(r.Dx()*r.Dy()) / float64(maxArea),
		})
	}

	debug.TrackLog("👁️  haar found %d box(es) in %s\n", len(out), img.Name())
	return out, nil
}

// Close releases the classifier.
func (d *HaarDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.Close()
}

// YuNetDetector uses OpenCV's FaceDetectorYN for face detection
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	config   Config
	mu       sync.Mutex // Protects inference
}

func newYuNet(cfg Config) (Detector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: model file not found: %s", ErrUnavailable, cfg.ModelPath)
	}

	// NMS threshold 1.0 keeps every box; overlap removal happens downstream.
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",
		image.Pt(320, 320),
		float32(cfg.ConfidenceThresh),
		1.0,
		5000,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &YuNetDetector{detector: detector, config: cfg}, nil
}

// Detect finds faces in the image
func (d *YuNetDetector) Detect(img *Image) ([]RawDetection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	mat, err := gocv.ImageToMatRGB(img.Pixels())
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	d.detector.SetInputSize(image.Pt(mat.Cols(), mat.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()

	d.detector.Detect(mat, &faces)

	// YuNet rows: 0-3 box in pixels, 4-13 landmarks, 14 score.
	out := make([]RawDetection, 0, faces.Rows())
	for r := 0; r < faces.Rows(); r++ {
		out = append(out, RawDetection{
			Box: Box{
				X: float64(faces.GetFloatAt(r, 0)),
				Y: float64(faces.GetFloatAt(r, 1)),
				W: float64(faces.GetFloatAt(r, 2)),
				H: float64(faces.GetFloatAt(r, 3)),
			},
			Confidence: float64(faces.GetFloatAt(r, 14)),
		})
	}

	debug.TrackLog("👁️  YuNet found %d face(s) in %s\n", len(out), img.Name())
	return out, nil
}

// Close releases the detector resources
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
