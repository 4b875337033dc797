// Package imaging provides the image operations shared by the pupil detector
// and the MCP server.
//
// It covers frame loading and caching, grayscale conversion, ROI cropping,
// Canny edge detection, intensity histograms, and debug overlays. All
// operations work with standard Go image types and use a coordinate system
// where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Functions that derive a new image (ToGray, CropROI, Canny, ThresholdBelow)
// return it with a zero origin regardless of the input's bounds.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Cached frames are shared and
// must be treated as read-only; overlays are drawn on Frame.Overlay copies.
// Individual image operations are stateless.
//
// # Overlays
//
// Drawing helpers clip to the destination bounds, so callers may pass shapes
// that extend past the image. The palette is defined with go-colorful and
// candidate strength is rendered as a blend between the bad and good colors.
package imaging
