package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createSquareImage draws a dark square [x0,x1)×[x0,x1) on a light background.
func createSquareImage(size, x0, x1 int, fg, bg uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := bg
			if x >= x0 && x < x1 && y >= x0 && y < x1 {
				v = fg
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestCanny(t *testing.T) {
	img := createSquareImage(60, 20, 40, 0, 200)

	edges := Canny(img, 50, 150, 3)

	require.Len(t, edges, 60)
	require.Len(t, edges[0], 60)

	// Left side of the square, away from the corners
	for y := 24; y < 36; y++ {
		assert.True(t, edges[y][19] || edges[y][20], "row %d: missing left edge", y)
	}

	// Interior and background stay empty
	assert.False(t, edges[30][30])
	assert.False(t, edges[5][5])
}

func TestCanny_ThinEdges(t *testing.T) {
	img := createSquareImage(60, 20, 40, 0, 200)

	edges := Canny(img, 50, 150, 3)

	for y := 24; y < 36; y++ {
		n := 0
		for x := 15; x < 25; x++ {
			if edges[y][x] {
				n++
			}
		}
		assert.Equal(t, 1, n, "row %d: edge must be one pixel wide", y)
	}
}

func TestCanny_UniformImage(t *testing.T) {
	img := createSquareImage(40, 0, 0, 0, 128)

	edges := Canny(img, 10, 20, 5)

	assert.Zero(t, edges.Count())
}

func TestCanny_Aperture(t *testing.T) {
	img := createSquareImage(60, 20, 40, 0, 200)

	// A 5x5 Sobel kernel has a much larger gain than a 3x3 one.
	assert.Zero(t, Canny(img, 1000, 1000, 3).Count())
	assert.NotZero(t, Canny(img, 1000, 1000, 5).Count())

	// Unsupported apertures fall back to 3.
	assert.Equal(t, Canny(img, 50, 150, 3), Canny(img, 50, 150, 7))
}

func TestCanny_SwappedThresholds(t *testing.T) {
	img := createSquareImage(60, 20, 40, 0, 200)

	assert.Equal(t, Canny(img, 50, 150, 3), Canny(img, 150, 50, 3))
}

func TestCanny_Hysteresis(t *testing.T) {
	suppressed := [][]float64{
		{0, 0, 0, 0, 0, 0},
		{0, 9, 5, 5, 0, 5},
		{0, 0, 0, 0, 0, 0},
	}

	edges := hysteresis(suppressed, 6, 3, 4, 8)

	// Weak pixels connected to the strong one survive; the isolated one does not.
	assert.Equal(t, EdgeMap{
		{false, false, false, false, false, false},
		{false, true, true, true, false, false},
		{false, false, false, false, false, false},
	}, edges)
}

func TestCanny_SmallImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 3))

	// Should not panic on small images
	edges := Canny(img, 50, 150, 5)
	assert.Zero(t, edges.Count())
}

func TestEdgeMap_Mask(t *testing.T) {
	edges := EdgeMap{
		{true, true},
		{true, false},
	}
	mask := image.NewGray(image.Rect(0, 0, 2, 2))
	mask.SetGray(0, 0, color.Gray{Y: 255})

	edges.Mask(mask)

	assert.Equal(t, 1, edges.Count())
	assert.True(t, edges[0][0])
}

func TestEdgeMap_Gray(t *testing.T) {
	img := EdgeMap{{false, true}}.Gray()

	assert.Equal(t, image.Rect(0, 0, 2, 1), img.Bounds())
	assert.Equal(t, uint8(0), img.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), img.GrayAt(1, 0).Y)
}

func TestGaussianBlur(t *testing.T) {
	// Create a uniform image
	width, height := 10, 10
	img := make([][]float64, height)
	for y := 0; y < height; y++ {
		img[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			img[y][x] = 0.5
		}
	}

	result := gaussianBlur(img, width, height)

	// Blurring a uniform image should produce the same values
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			assert.InDelta(t, 0.5, result[y][x], 0.001, "pixel (%d,%d)", x, y)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, clamp(tt.val, tt.min, tt.max))
	}
}
