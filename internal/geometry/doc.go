// Package geometry provides the region-of-interest type and the coordinate
// transforms shared by the coarse and fine detection stages.
//
// # Coordinate Frames
//
// Three frames are in play during one detection call:
//   - full frame: pixel coordinates of the input image
//   - ROI-relative: origin at the ROI's top-left corner
//   - coarse: ROI-relative coordinates divided by the downsample scale
//
// A Transform maps coarse coordinates back to the full frame as
// (p * scale + origin). All arithmetic is integral for integral inputs so no
// rounding drift accumulates when transforms are composed.
//
// # Boxes and ROIs
//
// A Box is a corner-based rectangle (X1,Y1 inclusive, X2,Y2 exclusive) used
// for search results. An ROI is the origin-plus-size rectangle handed to the
// fine detector. Both follow the image convention of the standard library:
// (0,0) at the top-left, X rightward, Y downward.
package geometry
