package geometry

import "image"

// Transform maps scaled, origin-relative coordinates to full-frame
// coordinates: p' = p*Scale + Origin.
type Transform struct {
	Scale  int
	Origin image.Point
}

// NewTransform returns the transform for a region starting at origin that was
// downsampled by scale.
func NewTransform(origin image.Point, scale int) Transform {
	if scale < 1 {
		scale = 1
	}
	return Transform{Scale: scale, Origin: origin}
}

// Point maps p to full-frame coordinates.
func (t Transform) Point(p image.Point) image.Point {
	return p.Mul(t.Scale).Add(t.Origin)
}

// Inverse maps a full-frame point back. The boolean is false when p does not
// fall exactly on the scaled grid; the returned point is then truncated toward
// the region origin.
func (t Transform) Inverse(p image.Point) (image.Point, bool) {
	d := p.Sub(t.Origin)
	exact := d.X%t.Scale == 0 && d.Y%t.Scale == 0
	return d.Div(t.Scale), exact
}

// PointF maps a sub-pixel point to full-frame coordinates.
func (t Transform) PointF(x, y float64) (float64, float64) {
	s := float64(t.Scale)
	return x*s + float64(t.Origin.X), y*s + float64(t.Origin.Y)
}

// InverseF maps a full-frame sub-pixel point back.
func (t Transform) InverseF(x, y float64) (float64, float64) {
	s := float64(t.Scale)
	return (x - float64(t.Origin.X)) / s, (y - float64(t.Origin.Y)) / s
}

// Box maps a scaled box to a full-frame ROI. Width and height are
// (X2-X1)*Scale and (Y2-Y1)*Scale.
func (t Transform) Box(b Box) ROI {
	tl := t.Point(image.Pt(b.X1, b.Y1))
	return ROI{
		X:      tl.X,
		Y:      tl.Y,
		Width:  b.Width() * t.Scale,
		Height: b.Height() * t.Scale,
	}
}
