//go:build !opencv

package selection

import "image"

// LaplacianVariance returns the variance of the 4-neighbour Laplacian over
// r clipped to the image. Regions smaller than 3x3 yield 0.
func LaplacianVariance(gray *image.Gray, r image.Rectangle) float64 {
	r = r.Intersect(gray.Bounds())
	if r.Dx() < 3 || r.Dy() < 3 {
		return 0
	}

	var sum, sumSq float64
	n := 0
	for y := r.Min.Y + 1; y < r.Max.Y-1; y++ {
		for x := r.Min.X + 1; x < r.Max.X-1; x++ {
			i := gray.PixOffset(x, y)
			lap := float64(gray.Pix[i-gray.Stride]) + float64(gray.Pix[i+gray.Stride]) +
				float64(gray.Pix[i-1]) + float64(gray.Pix[i+1]) - 4*float64(gray.Pix[i])
			sum += lap
			sumSq += lap * lap
			n++
		}
	}

	mean := sum / float64(n)
	return max(sumSq/float64(n)-mean*mean, 0)
}
