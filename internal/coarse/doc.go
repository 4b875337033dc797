// Package coarse narrows the pupil search region before the fine ellipse fit.
//
// The search runs on a stride-downsampled copy of the ROI (every Scale-th
// pixel, no averaging) and answers rectangle-sum queries from an integral
// image in constant time. A center-surround filter compares the mean of a
// square window with the mean of the ring around it; dark, blob-like regions
// such as the pupil produce a strong positive response.
//
// # Activation
//
// Narrowing only pays off on large regions. ShouldRun gates the search on the
// coarse_detection flag and on the ROI being larger than MinArea pixels
// (320×240). Smaller regions go straight to the fine stage.
//
// # Coordinates
//
// Candidates and boxes are expressed in coarse coordinates: relative to the
// ROI origin and divided by Scale. Result.Transform maps them back to the
// full frame.
package coarse
