package detection

import (
	"testing"

	"github.com/ironsheep/pupil-detect-mcp/internal/imaging"
)

func newEdgeMap(width, height int) imaging.EdgeMap {
	edges := make(imaging.EdgeMap, height)
	for y := range edges {
		edges[y] = make([]bool, width)
	}
	return edges
}

func TestFindContours(t *testing.T) {
	edges := newEdgeMap(30, 30)

	// A diagonal run, connected only through corners
	for i := 0; i < 12; i++ {
		edges[2+i][2+i] = true
	}
	// A short horizontal run
	for x := 20; x < 24; x++ {
		edges[25][x] = true
	}

	contours := findContours(edges, 5)

	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	if len(contours[0]) != 12 {
		t.Errorf("contour size: got %d, want 12", len(contours[0]))
	}

	if got := findContours(edges, 1); len(got) != 2 {
		t.Errorf("minSize 1: expected 2 contours, got %d", len(got))
	}
}

func TestFindContours_Empty(t *testing.T) {
	if got := findContours(newEdgeMap(10, 10), 1); len(got) != 0 {
		t.Errorf("expected 0 contours for empty edges, got %d", len(got))
	}
	if got := findContours(nil, 1); len(got) != 0 {
		t.Errorf("expected 0 contours for nil edges, got %d", len(got))
	}
}

func TestFloodFill(t *testing.T) {
	edges := newEdgeMap(10, 10)
	edges[5][5] = true
	edges[5][6] = true
	edges[6][5] = true
	edges[0][0] = true

	visited := make([][]bool, 10)
	for y := range visited {
		visited[y] = make([]bool, 10)
	}

	var contour Contour
	floodFill(edges, visited, 5, 5, 10, 10, &contour)

	if len(contour) != 3 {
		t.Errorf("expected 3 points, got %d", len(contour))
	}
	if visited[0][0] {
		t.Error("flood fill reached a disconnected pixel")
	}
}

func TestContour_Bounds(t *testing.T) {
	c := Contour{{X: 4, Y: 9}, {X: 1, Y: 3}, {X: 7, Y: 5}}

	lo, hi := c.Bounds()

	if lo != (Point{X: 1, Y: 3}) || hi != (Point{X: 7, Y: 9}) {
		t.Errorf("bounds: got %v-%v", lo, hi)
	}

	lo, hi = Contour{}.Bounds()
	if lo != (Point{}) || hi != (Point{}) {
		t.Errorf("empty bounds: got %v-%v", lo, hi)
	}
}

func TestEdgePoints(t *testing.T) {
	edges := newEdgeMap(4, 3)
	edges[0][3] = true
	edges[2][1] = true

	points := edgePoints(edges)

	want := []Point{{X: 3, Y: 0}, {X: 1, Y: 2}}
	if len(points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(points))
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d: got %v, want %v", i, points[i], want[i])
		}
	}
}
