package coarse

import (
	"image"

	"github.com/ironsheep/pupil-detect-mcp/internal/geometry"
)

const (
	// Scale is the stride used to downsample the ROI.
	Scale = 2

	// MinArea is the ROI area (320×240) at or below which the coarse search
	// is skipped.
	MinArea = 320 * 240
)

// ShouldRun reports whether the coarse search applies to roi.
func ShouldRun(enabled bool, roi geometry.ROI) bool {
	return enabled && roi.Area() > MinArea
}

// Result is the outcome of one coarse search.
type Result struct {
	// Box is the bounding box of the good cluster in coarse coordinates.
	Box geometry.Box `json:"box"`

	// Found is false when no dark blob was found; ROI then equals the input.
	Found bool `json:"found"`

	// Good and Bad are the classified candidates in coarse coordinates.
	Good []Candidate `json:"good"`
	Bad  []Candidate `json:"bad"`

	// Transform maps coarse coordinates to full-frame coordinates.
	Transform geometry.Transform `json:"-"`

	// ROI is the narrowed full-frame region for the fine stage.
	ROI geometry.ROI `json:"roi"`
}

// Search runs the coarse stage over the ROI of gray. filterMin and filterMax
// are the expected pupil diameters at full resolution; they are divided by
// Scale before filtering. The narrowed ROI never leaves the input ROI.
func Search(gray *image.Gray, roi geometry.ROI, filterMin, filterMax int) *Result {
	small := Downsample(gray, roi, Scale)
	ii := NewIntegral(small)

	box, found, good, bad := CenterSurround(ii, filterMin/Scale, filterMax/Scale)

	res := &Result{
		Box:       box,
		Found:     found,
		Good:      good,
		Bad:       bad,
		Transform: geometry.NewTransform(roi.Origin(), Scale),
		ROI:       roi,
	}
	if !found {
		return res
	}

	// An odd ROI side gains one pixel from the ceil in Downsample.
	narrowed := res.Transform.Box(box).Rect().Intersect(roi.Rect())
	if narrowed.Empty() {
		res.Found = false
		return res
	}
	res.ROI = geometry.ROI{X: narrowed.Min.X, Y: narrowed.Min.Y, Width: narrowed.Dx(), Height: narrowed.Dy()}
	return res
}

// FullFrame maps a candidate's inner window to full-frame coordinates.
func (r *Result) FullFrame(c Candidate) geometry.ROI {
	return r.Transform.Box(c.Box())
}
