package detection

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
)

// Image is a decoded picture shared read-only by every pipeline stage.
type Image struct {
	name string
	px   image.Image
	gray *image.Gray
}

// NewImage wraps already decoded pixels.
func NewImage(name string, px image.Image) (*Image, error) {
	if px == nil {
		return nil, fmt.Errorf("image %s: no pixels", name)
	}
	b := px.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("image %s: empty bounds %v", name, b)
	}
	return &Image{name: name, px: px, gray: toGray(px)}, nil
}

// DecodeImage decodes JPEG, PNG or GIF bytes.
func DecodeImage(name string, data []byte) (*Image, error) {
	px, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return NewImage(name, px)
}

// LoadImage reads and decodes an image file.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return DecodeImage(filepath.Base(path), data)
}

// Name returns the source name the image was loaded from.
func (im *Image) Name() string { return im.name }

// Width returns the width in pixels.
func (im *Image) Width() int { return im.px.Bounds().Dx() }

// Height returns the height in pixels.
func (im *Image) Height() int { return im.px.Bounds().Dy() }

// Pixels returns the original pixels. Callers must not modify them.
func (im *Image) Pixels() image.Image { return im.px }

// Gray returns a grayscale copy with origin (0,0). Callers must not modify it.
func (im *Image) Gray() *image.Gray { return im.gray }

// toGray converts to an 8-bit luminance image anchored at the origin so
// pixel offsets match detector coordinates.
func toGray(px image.Image) *image.Gray {
	b := px.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), px, b.Min, draw.Src)
	return gray
}
