package detection

import (
	"image"
	"image/draw"

	"github.com/ironsheep/pupil-detect-mcp/internal/config"
	"github.com/ironsheep/pupil-detect-mcp/internal/geometry"
)

// EllipseResult is the native output of a fine detector.
//
// Coordinates are relative to the ROI the detector was called with, not to
// the full frame.
type EllipseResult struct {
	// CenterX, CenterY is the ellipse center in ROI pixels.
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`

	// MinorRadius and MajorRadius are the semi-axes in pixels.
	MinorRadius float64 `json:"minor_radius"`
	MajorRadius float64 `json:"major_radius"`

	// Angle is the orientation of the major axis in radians.
	Angle float64 `json:"angle"`

	// Confidence is the fit certainty in [0, 1]; 0 when nothing was found.
	Confidence float64 `json:"confidence"`
}

// Found reports whether the result holds a fitted ellipse.
func (r EllipseResult) Found() bool {
	return r.Confidence > 0 && r.MajorRadius > 0
}

// FineDetector fits the pupil ellipse inside an ROI of a grayscale frame.
//
// gray is the full frame and roi is in its coordinates. color is the full
// color frame, or nil; when visualize is set and color is non-nil the
// detector may draw its result onto it. Implementations must treat gray as
// read-only.
type FineDetector interface {
	Detect(params config.Params, gray *image.Gray, color draw.Image, roi geometry.ROI, visualize bool) (EllipseResult, error)
}

// FineDetectorFunc adapts a function to the FineDetector interface.
type FineDetectorFunc func(params config.Params, gray *image.Gray, color draw.Image, roi geometry.ROI, visualize bool) (EllipseResult, error)

// Detect calls f.
func (f FineDetectorFunc) Detect(params config.Params, gray *image.Gray, color draw.Image, roi geometry.ROI, visualize bool) (EllipseResult, error) {
	return f(params, gray, color, roi, visualize)
}
