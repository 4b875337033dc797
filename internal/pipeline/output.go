package pipeline

import (
	"math"

	"github.com/ironsheep/pupil-detect-mcp/internal/detection"
	"github.com/ironsheep/pupil-detect-mcp/internal/geometry"
)

// angleOffset rotates the fitter's major-axis angle into the consumer
// convention, in degrees.
const angleOffset = -90

// Ellipse is the public ellipse description.
type Ellipse struct {
	// Center is (x, y) in the coordinates of the fine-stage ROI.
	Center [2]float64 `json:"center"`

	// Axes are full diameters, minor first.
	Axes [2]float64 `json:"axes"`

	// Angle is in degrees.
	Angle float64 `json:"angle"`
}

// Output is the result of one Detect call. A fresh value is returned per
// call and never modified afterwards.
type Output struct {
	// Location is the ellipse center truncated toward zero.
	Location [2]int `json:"location"`

	// Diameter is the larger of the two axes.
	Diameter float64 `json:"diameter"`

	// Confidence is copied from the fine detector; 0 means nothing was found.
	Confidence float64 `json:"confidence"`

	Ellipse Ellipse `json:"ellipse"`

	// ROI is the full-frame region handed to the fine stage. Center and
	// Location are relative to its origin.
	ROI geometry.ROI `json:"roi"`
}

// Normalize converts a native fit into the public schema. ROI is left zero
// for the caller to fill in.
func Normalize(r detection.EllipseResult) Output {
	axes := [2]float64{2 * r.MinorRadius, 2 * r.MajorRadius}

	return Output{
		Location:   [2]int{int(r.CenterX), int(r.CenterY)},
		Diameter:   math.Max(axes[0], axes[1]),
		Confidence: r.Confidence,
		Ellipse: Ellipse{
			Center: [2]float64{r.CenterX, r.CenterY},
			Axes:   axes,
			Angle:  r.Angle*180/math.Pi + angleOffset,
		},
	}
}

// Absolute returns the ellipse center in full-frame coordinates.
func (o *Output) Absolute() (x, y float64) {
	return geometry.NewTransform(o.ROI.Origin(), 1).PointF(o.Ellipse.Center[0], o.Ellipse.Center[1])
}
