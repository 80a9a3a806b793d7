package selection

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/teslashibe/go-facetarget/pkg/detection"
)

var (
	colorChosen = color.RGBA{0, 255, 0, 255}
	colorOther  = color.RGBA{255, 255, 0, 255}
	colorLabel  = color.RGBA{0, 0, 0, 255}
)

// Annotate returns a copy of img with every candidate boxed and labeled.
// The chosen candidate (nil for none) is drawn green and thicker, the rest
// yellow.
func Annotate(img *detection.Image, cands []Candidate, chosen *Candidate) *image.RGBA {
	src := img.Pixels()
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	for _, c := range cands {
		if chosen != nil && c.Index == chosen.Index {
			continue
		}
		drawCandidate(rgba, c, colorOther, 2)
	}
	if chosen != nil {
		drawCandidate(rgba, *chosen, colorChosen, 3)
	}
	return rgba
}

// WriteAnnotated encodes the annotated image to path, as PNG unless the
// extension asks for JPEG.
func WriteAnnotated(path string, img *detection.Image, cands []Candidate, chosen *Candidate) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create annotated image: %w", err)
	}

	if err := encodeByExt(f, filepath.Ext(path), Annotate(img, cands, chosen)); err != nil {
		f.Close()
		return fmt.Errorf("encode annotated image: %w", err)
	}
	return f.Close()
}

func encodeByExt(w io.Writer, ext string, img image.Image) error {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	default:
		return png.Encode(w, img)
	}
}

func drawCandidate(img *image.RGBA, c Candidate, col color.RGBA, thickness int) {
	r := c.Detection.Rect()
	drawRect(img, r, col, thickness)

	label := fmt.Sprintf("Face %d (%s)", c.Index, c.Center)
	drawLabel(img, r.Min.X, r.Min.Y, label, col)
}

// drawRect outlines r, clipped to the image.
func drawRect(img *image.RGBA, r image.Rectangle, col color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			setClipped(img, x, r.Min.Y+t, col)
			setClipped(img, x, r.Max.Y-1-t, col)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			setClipped(img, r.Min.X+t, y, col)
			setClipped(img, r.Max.X-1-t, y, col)
		}
	}
}

// drawLabel writes text on a filled strip above (x, y), or inside the box
// when there is no room above.
func drawLabel(img *image.RGBA, x, y int, text string, bg color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Metrics().Height.Ceil()

	top := y - height
	if top < 0 {
		top = max(y, 0)
	}
	strip := image.Rect(x, top, x+width+4, top+height).Intersect(img.Bounds())
	draw.Draw(img, strip, image.NewUniform(bg), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colorLabel),
		Face: face,
		Dot:  fixed.P(x+2, top+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

func setClipped(img *image.RGBA, x, y int, col color.RGBA) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.SetRGBA(x, y, col)
	}
}
