package geometry

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedInput reports buffers or regions the detector cannot process:
// non-positive ROI sizes, ROIs leaving the frame, mismatched frame sizes.
var ErrMalformedInput = errors.New("malformed input")

var validate = validator.New()

// ROI is a rectangular sub-window of a frame in full-frame pixel coordinates.
type ROI struct {
	// X is the left edge (inclusive).
	X int `json:"x" validate:"gte=0"`

	// Y is the top edge (inclusive).
	Y int `json:"y" validate:"gte=0"`

	// Width is the horizontal extent in pixels. Must be positive.
	Width int `json:"width" validate:"gt=0"`

	// Height is the vertical extent in pixels. Must be positive.
	Height int `json:"height" validate:"gt=0"`
}

// FullFrame returns the ROI covering bounds.
func FullFrame(bounds image.Rectangle) ROI {
	return ROI{X: bounds.Min.X, Y: bounds.Min.Y, Width: bounds.Dx(), Height: bounds.Dy()}
}

// Area returns Width × Height.
func (r ROI) Area() int {
	return r.Width * r.Height
}

// XMax returns the right edge (exclusive).
func (r ROI) XMax() int { return r.X + r.Width }

// YMax returns the bottom edge (exclusive).
func (r ROI) YMax() int { return r.Y + r.Height }

// Origin returns the top-left corner.
func (r ROI) Origin() image.Point {
	return image.Pt(r.X, r.Y)
}

// Rect returns the slicing descriptor for this ROI, usable with SubImage.
func (r ROI) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.XMax(), r.YMax())
}

// Contains reports whether o lies entirely inside r.
func (r ROI) Contains(o ROI) bool {
	return o.Rect().In(r.Rect())
}

// Slice returns the ROI of gray as a sub-image sharing gray's pixels.
func (r ROI) Slice(gray *image.Gray) *image.Gray {
	return gray.SubImage(r.Rect()).(*image.Gray)
}

// Validate checks that the ROI has a positive size and lies within frame.
// Failures wrap ErrMalformedInput.
func (r ROI) Validate(frame image.Rectangle) error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: roi %s: %v", ErrMalformedInput, r, err)
	}
	if !FullFrame(frame).Contains(r) {
		return fmt.Errorf("%w: roi %s outside frame %v", ErrMalformedInput, r, frame)
	}
	return nil
}

func (r ROI) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Box is a corner-based rectangle: (X1,Y1) inclusive, (X2,Y2) exclusive.
type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Width returns X2 - X1.
func (b Box) Width() int { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Empty reports whether the box has no area.
func (b Box) Empty() bool {
	return b.X2 <= b.X1 || b.Y2 <= b.Y1
}

// Union returns the smallest box containing b and o. An empty operand is
// ignored.
func (b Box) Union(o Box) Box {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return Box{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}

// Clamp restricts the box to [0,width) × [0,height).
func (b Box) Clamp(width, height int) Box {
	return Box{
		X1: clamp(b.X1, 0, width),
		Y1: clamp(b.Y1, 0, height),
		X2: clamp(b.X2, 0, width),
		Y2: clamp(b.Y2, 0, height),
	}
}

// Overlaps reports whether the two boxes share any pixel.
func (b Box) Overlaps(o Box) bool {
	return b.X1 < o.X2 && o.X1 < b.X2 && b.Y1 < o.Y2 && o.Y1 < b.Y2
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
