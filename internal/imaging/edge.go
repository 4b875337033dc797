package imaging

import (
	"image"
	"math"
)

// EdgeMap is a binary edge image indexed [y][x]. True marks an edge pixel.
type EdgeMap [][]bool

// Count returns the number of edge pixels.
func (e EdgeMap) Count() int {
	n := 0
	for _, row := range e {
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	return n
}

// At reports whether (x, y) is an edge pixel. Points outside the map are not.
func (e EdgeMap) At(x, y int) bool {
	return y >= 0 && y < len(e) && x >= 0 && x < len(e[y]) && e[y][x]
}

// Mask clears every edge pixel whose mask pixel is zero. The mask must have
// the same size as the edge map; it is read in its own bounds.
func (e EdgeMap) Mask(mask *image.Gray) {
	b := mask.Bounds()
	for y, row := range e {
		for x := range row {
			if row[x] && mask.Pix[mask.PixOffset(b.Min.X+x, b.Min.Y+y)] == 0 {
				row[x] = false
			}
		}
	}
}

// Gray renders the map as a grayscale image with edges in white.
func (e EdgeMap) Gray() *image.Gray {
	h := len(e)
	w := 0
	if h > 0 {
		w = len(e[0])
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y, row := range e {
		for x, v := range row {
			if v {
				img.Pix[y*img.Stride+x] = 255
			}
		}
	}
	return img
}

// sobel kernels are separable: smoothing along one axis and the derivative
// along the other.
var (
	sobelSmooth = map[int][]float64{
		3: {1, 2, 1},
		5: {1, 4, 6, 4, 1},
	}
	sobelDeriv = map[int][]float64{
		3: {-1, 0, 1},
		5: {-1, -2, 0, 2, 1},
	}
)

// Canny performs Canny edge detection on a grayscale image.
//
// Parameters:
//   - gray: Source image. Any origin; the result is zero-origin.
//   - low: Low hysteresis threshold. Weak edges between low and high are
//     kept only when connected to a strong edge.
//   - high: High hysteresis threshold. Edges at or above it are always kept.
//   - aperture: Sobel kernel size, 3 or 5. Other values fall back to 3.
//
// Thresholds apply to the unnormalized gradient magnitude on the 0-255
// intensity scale, so a 5×5 aperture produces much larger magnitudes than a
// 3×3 one for the same edge.
//
// # Algorithm
//
//  1. Gaussian blur: 5x5 kernel to reduce noise
//
//  2. Gradient computation: Sobel operators for X and Y gradients
//     magnitude = sqrt(Gx² + Gy²)
//     direction = atan2(Gy, Gx)
//
//  3. Non-maximum suppression: Thin edges to 1-pixel width by keeping only
//     local maxima in the gradient direction
//
//  4. Hysteresis thresholding: strong pixels seed a flood that follows
//     8-connected weak pixels
func Canny(gray *image.Gray, low, high float64, aperture int) EdgeMap {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if low > high {
		low, high = high, low
	}
	if _, ok := sobelSmooth[aperture]; !ok {
		aperture = 3
	}

	values := make([][]float64, height)
	for y := 0; y < height; y++ {
		values[y] = make([]float64, width)
		row := gray.Pix[gray.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := 0; x < width; x++ {
			values[y][x] = float64(row[x])
		}
	}

	blurred := gaussianBlur(values, width, height)
	magnitude, direction := sobel(blurred, width, height, aperture)

	// Non-maximum suppression
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]

			// Determine neighbors to compare based on gradient direction
			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			}

			// Strict on one side so a ridge between two equal pixels stays thin.
			if mag > n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	return hysteresis(suppressed, width, height, low, high)
}

// sobel returns the gradient magnitude and direction of img using a
// separable Sobel kernel of the given aperture. Borders are replicated.
func sobel(img [][]float64, width, height, aperture int) (magnitude, direction [][]float64) {
	smooth := sobelSmooth[aperture]
	deriv := sobelDeriv[aperture]
	r := aperture / 2

	magnitude = make([][]float64, height)
	direction = make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)

		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -r; ky <= r; ky++ {
				py := clamp(y+ky, 0, height-1)
				for kx := -r; kx <= r; kx++ {
					px := clamp(x+kx, 0, width-1)
					v := img[py][px]
					gx += v * deriv[kx+r] * smooth[ky+r]
					gy += v * smooth[kx+r] * deriv[ky+r]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}
	return magnitude, direction
}

// hysteresis keeps every pixel at or above high and every pixel at or above
// low that is 8-connected to one.
func hysteresis(suppressed [][]float64, width, height int, low, high float64) EdgeMap {
	edges := make(EdgeMap, height)
	for y := range edges {
		edges[y] = make([]bool, width)
	}

	stack := make([]image.Point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if suppressed[y][x] >= high && suppressed[y][x] > 0 {
				edges[y][x] = true
				stack = append(stack, image.Pt(x, y))
			}
		}
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height || edges[ny][nx] {
					continue
				}
				if v := suppressed[ny][nx]; v >= low && v > 0 {
					edges[ny][nx] = true
					stack = append(stack, image.Pt(nx, ny))
				}
			}
		}
	}
	return edges
}

// gaussianBlur applies a 5x5 Gaussian blur to reduce noise before edge detection.
//
// Uses a standard 5x5 Gaussian kernel with sigma ≈ 1.4:
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
//
// Total kernel sum = 273, used for normalization.
// Border pixels use clamped (replicated) edge values.
func gaussianBlur(img [][]float64, width, height int) [][]float64 {
	kernel := [][]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	kernelSum := 273.0

	result := make([][]float64, height)
	for y := 0; y < height; y++ {
		result[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					sum += img[py][px] * kernel[ky+2][kx+2]
				}
			}
			result[y][x] = sum / kernelSum
		}
	}
	return result
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
