package detection

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// minFitPoints is the number of points a conic fit needs to be overdetermined.
const minFitPoints = 6

var (
	// ErrTooFewPoints is returned when a fit has fewer than minFitPoints points.
	ErrTooFewPoints = errors.New("too few points for an ellipse fit")

	// ErrNotEllipse is returned when the best-fitting conic is a hyperbola,
	// a parabola, a degenerate conic, or an imaginary ellipse.
	ErrNotEllipse = errors.New("conic is not an ellipse")
)

// Ellipse is an ellipse in pixel coordinates.
type Ellipse struct {
	CX float64 `json:"cx"`
	CY float64 `json:"cy"`

	// Major and Minor are the semi-axes; Major >= Minor.
	Major float64 `json:"major"`
	Minor float64 `json:"minor"`

	// Angle is the orientation of the major axis in radians, in [0, π),
	// measured from +X toward +Y (clockwise on screen).
	Angle float64 `json:"angle"`
}

// Area returns π·a·b.
func (e Ellipse) Area() float64 {
	return math.Pi * e.Major * e.Minor
}

// Circumference approximates the perimeter with Ramanujan's second formula.
func (e Ellipse) Circumference() float64 {
	a, b := e.Major, e.Minor
	if a+b == 0 {
		return 0
	}
	h := (a - b) * (a - b) / ((a + b) * (a + b))
	return math.Pi * (a + b) * (1 + 3*h/(10+math.Sqrt(4-3*h)))
}

// Roundness returns Minor/Major, 1 for a circle.
func (e Ellipse) Roundness() float64 {
	if e.Major == 0 {
		return 0
	}
	return e.Minor / e.Major
}

// Distance approximates the distance from (x, y) to the outline, measured
// along the ray from the center through the point.
func (e Ellipse) Distance(x, y float64) float64 {
	dx, dy := x-e.CX, y-e.CY
	cos, sin := math.Cos(e.Angle), math.Sin(e.Angle)
	u := dx*cos + dy*sin
	v := -dx*sin + dy*cos

	rho := math.Sqrt(u*u/(e.Major*e.Major) + v*v/(e.Minor*e.Minor))
	if rho == 0 {
		return e.Minor
	}
	return math.Hypot(dx, dy) * math.Abs(1-1/rho)
}

// FitEllipse fits an ellipse to points by algebraic least squares.
//
// Points are centered and scaled before building the n×6 design matrix
// [x², xy, y², x, y, 1]; the conic is the right singular vector of the
// smallest singular value. The conic's quadratic part is then diagonalized to
// recover the axes and orientation.
func FitEllipse(points []Point) (Ellipse, error) {
	n := len(points)
	if n < minFitPoints {
		return Ellipse{}, ErrTooFewPoints
	}

	var mx, my float64
	for _, p := range points {
		mx += float64(p.X)
		my += float64(p.Y)
	}
	mx /= float64(n)
	my /= float64(n)

	var scale float64
	for _, p := range points {
		scale += math.Hypot(float64(p.X)-mx, float64(p.Y)-my)
	}
	scale /= float64(n)
	if scale == 0 {
		return Ellipse{}, ErrNotEllipse
	}

	design := mat.NewDense(n, 6, nil)
	for i, p := range points {
		x := (float64(p.X) - mx) / scale
		y := (float64(p.Y) - my) / scale
		design.SetRow(i, []float64{x * x, x * y, y * y, x, y, 1})
	}

	var svd mat.SVD
	if !svd.Factorize(design, mat.SVDThinV) {
		return Ellipse{}, ErrNotEllipse
	}
	var v mat.Dense
	svd.VTo(&v)

	// Singular values are sorted in descending order.
	conic := mat.Col(nil, 5, &v)

	e, err := conicToEllipse(conic)
	if err != nil {
		return Ellipse{}, err
	}

	e.CX = e.CX*scale + mx
	e.CY = e.CY*scale + my
	e.Major *= scale
	e.Minor *= scale
	return e, nil
}

// conicToEllipse converts Ax² + Bxy + Cy² + Dx + Ey + F = 0 to center, axes
// and orientation.
func conicToEllipse(c []float64) (Ellipse, error) {
	a, b, cc, d, e, f := c[0], c[1], c[2], c[3], c[4], c[5]

	den := 4*a*cc - b*b
	if den <= 0 {
		return Ellipse{}, ErrNotEllipse
	}
	x0 := (b*e - 2*cc*d) / den
	y0 := (b*d - 2*a*e) / den
	f0 := f + (d*x0+e*y0)/2

	var eig mat.EigenSym
	if !eig.Factorize(mat.NewSymDense(2, []float64{a, b / 2, b / 2, cc}), true) {
		return Ellipse{}, ErrNotEllipse
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// λ1·u² + λ2·v² = -f0 in the eigenbasis.
	s1 := -f0 / values[0]
	s2 := -f0 / values[1]
	if !(s1 > 0 && s2 > 0) || math.IsInf(s1, 0) || math.IsInf(s2, 0) {
		return Ellipse{}, ErrNotEllipse
	}

	major := 0
	if s2 > s1 {
		major = 1
	}
	angle := math.Atan2(vectors.At(1, major), vectors.At(0, major))
	if angle < 0 {
		angle += math.Pi
	}
	if angle >= math.Pi {
		angle -= math.Pi
	}

	return Ellipse{
		CX:    x0,
		CY:    y0,
		Major: math.Sqrt(math.Max(s1, s2)),
		Minor: math.Sqrt(math.Min(s1, s2)),
		Angle: angle,
	}, nil
}
