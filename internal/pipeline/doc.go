// Package pipeline orchestrates pupil detection for a single frame.
//
// A call to Detector.Detect runs four stages in order and never goes back:
//
//  1. Validate: take the current configuration snapshot, resolve the ROI
//     (full frame when absent) and check it against the frame.
//  2. Coarse: when coarse_detection is enabled and the ROI is larger than
//     320×240, search a downsampled copy for a dark blob and narrow the ROI to
//     it. The narrowed ROI never leaves the original one.
//  3. Fine: hand the frame and ROI to the FineDetector.
//  4. Normalize: convert the native ellipse into Output.
//
// Fine-stage coordinates are relative to the ROI the fine detector received
// and are not shifted back to the full frame. Output.ROI carries that ROI so
// callers can do it themselves (see Output.Absolute).
//
// Nothing is kept between calls except the configuration store.
package pipeline
