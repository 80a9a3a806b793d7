package detection

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

// TestPigoDetect_SolidImage tests detection on a solid color image (no faces)
func TestPigoDetect_SolidImage(t *testing.T) {
	cascadePath := findAsset("cascade", "facefinder")
	if cascadePath == "" {
		t.Skip("pigo cascade not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.CascadePath = cascadePath

	detector, err := NewPigo(cfg)
	if err != nil {
		t.Fatalf("NewPigo failed: %v", err)
	}
	defer detector.Close()

	img := solidImage(t, 320, 240, color.RGBA{0, 0, 255, 255})

	detections, err := detector.Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(detections) > 0 {
		t.Errorf("Expected no detections in solid color image, got %d", len(detections))
	}
}

// TestPigoDetect_AfterClose tests that a closed detector reports unavailable
func TestPigoDetect_AfterClose(t *testing.T) {
	cascadePath := findAsset("cascade", "facefinder")
	if cascadePath == "" {
		t.Skip("pigo cascade not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.CascadePath = cascadePath

	detector, err := NewPigo(cfg)
	if err != nil {
		t.Fatalf("NewPigo failed: %v", err)
	}

	if err := detector.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	if _, err := detector.Detect(solidImage(t, 64, 64, color.White)); err == nil {
		t.Error("Expected error after Close")
	}
}

// TestPigoConcurrency tests thread safety
func TestPigoConcurrency(t *testing.T) {
	cascadePath := findAsset("cascade", "facefinder")
	if cascadePath == "" {
		t.Skip("pigo cascade not found, skipping test")
	}

	cfg := DefaultConfig()
	cfg.CascadePath = cascadePath

	detector, err := NewPigo(cfg)
	if err != nil {
		t.Fatalf("NewPigo failed: %v", err)
	}
	defer detector.Close()

	img := solidImage(t, 320, 240, color.RGBA{100, 100, 100, 255})

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			if _, err := detector.Detect(img); err != nil {
				t.Errorf("Concurrent detection failed: %v", err)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

// Helper functions

// findAsset walks up from the test directory looking for dir/name.
func findAsset(dir, name string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for d := cwd; d != "/" && d != "."; d = filepath.Dir(d) {
		p := filepath.Join(d, dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func solidImage(t *testing.T, width, height int, c color.Color) *Image {
	t.Helper()
	px := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px.Set(x, y, c)
		}
	}
	img, err := NewImage("solid", px)
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}
	return img
}
