package detection

import (
	"github.com/ironsheep/pupil-detect-mcp/internal/imaging"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Contour is an 8-connected group of edge pixels.
type Contour []Point

// Bounds returns the inclusive bounding box of the contour as min and max
// corners. An empty contour yields zero points.
func (c Contour) Bounds() (lo, hi Point) {
	if len(c) == 0 {
		return Point{}, Point{}
	}
	lo, hi = c[0], c[0]
	for _, p := range c[1:] {
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}
	return lo, hi
}

// pointSet is a contour indexed for membership tests.
type pointSet map[Point]struct{}

// At reports whether (x, y) is in the set.
func (s pointSet) At(x, y int) bool {
	_, ok := s[Point{X: x, Y: y}]
	return ok
}

func (c Contour) set() pointSet {
	s := make(pointSet, len(c))
	for _, p := range c {
		s[p] = struct{}{}
	}
	return s
}

// findContours finds connected components (contours) in a binary edge image.
//
// Uses flood-fill to group connected edge pixels into contours.
// Connectivity is 8-connected (includes diagonals). Contours with fewer than
// minSize pixels are discarded as noise.
func findContours(edges imaging.EdgeMap, minSize int) []Contour {
	height := len(edges)
	if height == 0 {
		return nil
	}
	width := len(edges[0])

	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		visited[y] = make([]bool, width)
	}

	contours := make([]Contour, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges[y][x] && !visited[y][x] {
				contour := make(Contour, 0)
				floodFill(edges, visited, x, y, width, height, &contour)
				if len(contour) >= minSize {
					contours = append(contours, contour)
				}
			}
		}
	}

	return contours
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large contours. Marks visited pixels and appends them to the contour.
// Uses 8-connectivity (includes diagonal neighbors).
func floodFill(edges imaging.EdgeMap, visited [][]bool, startX, startY, width, height int, contour *Contour) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !edges[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		*contour = append(*contour, p)

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}

// edgePoints returns every edge pixel as one point set.
func edgePoints(edges imaging.EdgeMap) []Point {
	points := make([]Point, 0)
	for y, row := range edges {
		for x, v := range row {
			if v {
				points = append(points, Point{X: x, Y: y})
			}
		}
	}
	return points
}
