//go:build opencv

package selection

import (
	"image"
	"image/draw"

	"gocv.io/x/gocv"
)

// LaplacianVariance returns the variance of OpenCV's Laplacian (ksize 1,
// the 4-neighbour kernel) over r clipped to the image. Regions smaller than
// 3x3 yield 0.
func LaplacianVariance(gray *image.Gray, r image.Rectangle) float64 {
	r = r.Intersect(gray.Bounds())
	if r.Dx() < 3 || r.Dy() < 3 {
		return 0
	}

	crop := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(crop, crop.Bounds(), gray, r.Min, draw.Src)

	mat, err := gocv.ImageGrayToMatGray(crop)
	if err != nil {
		return 0
	}
	defer mat.Close()

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(mat, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(lap, &mean, &stddev)

	sd := stddev.GetDoubleAt(0, 0)
	return sd * sd
}
