package coarse

import (
	"image"

	"github.com/ironsheep/pupil-detect-mcp/internal/geometry"
)

// Downsample copies every scale-th pixel of the ROI of gray into a new
// zero-origin image. The output is ceil(W/scale) × ceil(H/scale), matching a
// [::scale, ::scale] slice.
func Downsample(gray *image.Gray, roi geometry.ROI, scale int) *image.Gray {
	if scale < 1 {
		scale = 1
	}
	w := (roi.Width + scale - 1) / scale
	h := (roi.Height + scale - 1) / scale
	dst := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		src := gray.PixOffset(roi.X, roi.Y+y*scale)
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range row {
			row[x] = gray.Pix[src+x*scale]
		}
	}
	return dst
}

// Integral is a summed-area table with one leading row and column of zeros:
// At(x, y) is the sum of all pixels in [0,x) × [0,y).
type Integral struct {
	Width  int
	Height int
	sums   []uint64
}

// NewIntegral builds the summed-area table of a zero-origin gray image.
func NewIntegral(gray *image.Gray) *Integral {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := w + 1
	sums := make([]uint64, stride*(h+1))

	for y := 0; y < h; y++ {
		var rowSum uint64
		src := gray.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			rowSum += uint64(gray.Pix[src+x])
			sums[(y+1)*stride+x+1] = sums[y*stride+x+1] + rowSum
		}
	}

	return &Integral{Width: w, Height: h, sums: sums}
}

// At returns the sum of the pixels above and to the left of (x, y).
func (ii *Integral) At(x, y int) uint64 {
	return ii.sums[y*(ii.Width+1)+x]
}

// Sum returns the pixel sum inside b after clamping it to the image.
func (ii *Integral) Sum(b geometry.Box) uint64 {
	b = b.Clamp(ii.Width, ii.Height)
	if b.Empty() {
		return 0
	}
	return ii.At(b.X2, b.Y2) + ii.At(b.X1, b.Y1) - ii.At(b.X2, b.Y1) - ii.At(b.X1, b.Y2)
}

// Mean returns the mean intensity inside b after clamping, and the clamped
// area. The mean is 0 for an empty box.
func (ii *Integral) Mean(b geometry.Box) (float64, int) {
	b = b.Clamp(ii.Width, ii.Height)
	area := b.Width() * b.Height()
	if b.Empty() {
		return 0, 0
	}
	return float64(ii.Sum(b)) / float64(area), area
}
