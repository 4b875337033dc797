// Package detection fits the pupil ellipse inside a region of interest.
//
// The package defines the FineDetector contract used by the pipeline and a
// reference implementation, Fitter, that fits ellipses to the edges of the
// darkest region of the ROI.
//
// # Fine Detection
//
// A fine detector receives the full grayscale frame, the ROI to search and,
// optionally, a color frame to draw on. It returns an EllipseResult in ROI
// coordinates:
//
//   - CenterX, CenterY: ellipse center relative to the ROI origin
//   - MinorRadius, MajorRadius: semi-axes, minor first
//   - Angle: orientation of the major axis in radians, in [0, π)
//   - Confidence: 0 when no ellipse was found, otherwise in (0, 1]
//
// Any FineDetector can replace Fitter; FineDetectorFunc adapts plain
// functions, which is how tests inject fixed results.
//
// # Ellipse Fitting
//
// FitEllipse solves the general conic a·x² + b·xy + c·y² + d·x + e·y + f = 0
// in the least-squares sense with a singular value decomposition, then
// converts the conic to center, semi-axes and angle through the eigenvectors
// of its quadratic part. Points are normalized before the solve so that the
// design matrix stays well conditioned. Conics that are not real ellipses
// return ErrNotEllipse.
//
// # Candidate Scoring
//
// Each contour's fit is sampled about once per pixel of circumference. A
// sample counts as supported when an edge pixel lies within
// ellipse_true_support_min_dist of it. The support ratio is the share of
// supported samples; it is also the reported confidence, capped at 1.
//
// # Coordinate System
//
// Coordinates follow the image convention: origin at the top-left, X to the
// right and Y downward. Angles are measured from +X toward +Y.
package detection
