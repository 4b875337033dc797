package detection

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"sort"
	"strconv"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/pupil-detect-mcp/internal/config"
	"github.com/ironsheep/pupil-detect-mcp/internal/geometry"
	"github.com/ironsheep/pupil-detect-mcp/internal/imaging"
)

// maskDilation is the radius by which the dark-pixel mask grows so that edge
// pixels on the bright side of the pupil boundary survive masking.
const maskDilation = 2

// Candidate is an ellipse that passed the plausibility filters.
type Candidate struct {
	Ellipse Ellipse `json:"ellipse"`

	// Support is the number of outline samples with an edge pixel within the
	// support distance; SupportRatio divides it by the number of samples.
	Support      int     `json:"support"`
	SupportRatio float64 `json:"support_ratio"`

	// PerimeterRatio is the share of the outline covered by the source
	// contour alone. AreaRatio compares the area of the ellipse inscribed in
	// the contour's bounding box with the fitted area. Both are zero for the
	// fallback fit over all edges.
	PerimeterRatio float64 `json:"perimeter_ratio"`
	AreaRatio      float64 `json:"area_ratio"`

	// Strong is set when both contour ratios fall in their strong ranges.
	Strong bool `json:"strong"`

	// Score ranks candidates: Support · SupportRatio^exponent.
	Score float64 `json:"score"`
}

// Confidence is the support ratio capped at 1.
func (c Candidate) Confidence() float64 {
	return math.Min(1, c.SupportRatio)
}

// FitReport describes one run of the reference fitter.
type FitReport struct {
	// Spike is the darkest significant intensity; pixels up to
	// Spike+intensity_range form the pupil mask.
	Spike int `json:"spike"`

	// EdgeCount is the number of Canny edge pixels inside the mask.
	EdgeCount int `json:"edge_count"`

	// Contours is the number of contours long enough to fit.
	Contours int `json:"contours"`

	// Fallback is set when no single contour produced a candidate and all
	// edges were fitted together.
	Fallback bool `json:"fallback"`

	// Candidates holds the accepted candidates, best first.
	Candidates []Candidate `json:"candidates"`
}

// Best returns the winning candidate.
func (r *FitReport) Best() (Candidate, bool) {
	if len(r.Candidates) == 0 {
		return Candidate{}, false
	}
	return r.Candidates[0], true
}

// Fitter is the reference fine detector. It fits ellipses to the edges of
// the darkest region of the ROI.
//
// # Algorithm
//
//  1. Crop the ROI and median blur it (blur_size)
//  2. Mask pixels at most intensity_range above the darkest histogram spike,
//     then dilate the mask
//  3. Canny edges (canny_treshold, canny_treshold/canny_ration,
//     canny_aperture) restricted to the mask
//  4. Split the edges into 8-connected contours of at least contour_size_min
//     pixels and fit an ellipse to each
//  5. Keep fits within the pupil size range, rounder than
//     ellipse_roundness_ratio, with a mean residual below
//     initial_ellipse_fit_treshhold and a support ratio inside the final
//     perimeter range
//  6. Rank strong candidates first, then by score
//
// When no contour yields a candidate, all masked edges are fitted once.
//
// Fitter is stateless and safe for concurrent use.
type Fitter struct{}

// NewFitter returns the reference fine detector.
func NewFitter() *Fitter {
	return &Fitter{}
}

// Detect implements FineDetector. It returns a zero result with confidence
// 0 when no candidate survives.
func (f *Fitter) Detect(params config.Params, gray *image.Gray, color draw.Image, roi geometry.ROI, visualize bool) (EllipseResult, error) {
	report, err := f.Fit(params, gray, roi)
	if err != nil {
		return EllipseResult{}, err
	}

	best, ok := report.Best()
	if !ok {
		return EllipseResult{}, nil
	}

	if visualize && color != nil {
		drawCandidate(color, roi, best)
	}

	e := best.Ellipse
	return EllipseResult{
		CenterX:     e.CX,
		CenterY:     e.CY,
		MinorRadius: e.Minor,
		MajorRadius: e.Major,
		Angle:       e.Angle,
		Confidence:  best.Confidence(),
	}, nil
}

// Fit runs the fitter and reports every accepted candidate in ROI
// coordinates.
func (f *Fitter) Fit(params config.Params, gray *image.Gray, roi geometry.ROI) (*FitReport, error) {
	if gray == nil {
		return nil, fmt.Errorf("%w: nil gray frame", geometry.ErrMalformedInput)
	}
	if err := roi.Validate(gray.Bounds()); err != nil {
		return nil, err
	}

	blurred := medianBlur(imaging.ToGray(roi.Slice(gray)), params.BlurSize)

	report := &FitReport{
		Spike: imaging.DarkestSpike(imaging.IntensityHistogram(blurred)),
	}
	mask := dilate(imaging.ThresholdBelow(blurred, report.Spike+params.IntensityRange), maskDilation)

	high := float64(params.CannyThreshold)
	low := high / float64(max(1, params.CannyRatio))
	edges := imaging.Canny(blurred, low, high, params.CannyAperture)
	edges.Mask(mask)
	report.EdgeCount = edges.Count()

	frame := blurred.Bounds()

	contours := findContours(edges, max(params.ContourSizeMin, minFitPoints))
	report.Contours = len(contours)

	for _, c := range contours {
		e, err := FitEllipse(c)
		if err != nil || !plausible(params, e, frame) {
			continue
		}
		if meanResidual(e, c) > params.InitialEllipseFitThreshold {
			continue
		}

		cand := score(params, e, edges)
		hits, samples := coverage(e, c.set(), params.EllipseTrueSupportMinDist)
		cand.PerimeterRatio = float64(hits) / float64(samples)
		cand.AreaRatio = contourArea(c) / e.Area()
		cand.Strong = inRange(cand.PerimeterRatio, params.StrongPerimeterRatioRangeMin, params.StrongPerimeterRatioRangeMax) &&
			inRange(cand.AreaRatio, params.StrongAreaRatioRangeMin, params.StrongAreaRatioRangeMax)

		if accepted(params, cand) {
			report.Candidates = append(report.Candidates, cand)
		}
	}

	if len(report.Candidates) == 0 && report.EdgeCount >= minFitPoints {
		report.Fallback = true
		if e, err := FitEllipse(edgePoints(edges)); err == nil && plausible(params, e, frame) {
			if cand := score(params, e, edges); accepted(params, cand) {
				report.Candidates = append(report.Candidates, cand)
			}
		}
	}

	sort.SliceStable(report.Candidates, func(i, j int) bool {
		a, b := report.Candidates[i], report.Candidates[j]
		if a.Strong != b.Strong {
			return a.Strong
		}
		return a.Score > b.Score
	})

	return report, nil
}

// plausible applies the size, roundness and position limits.
func plausible(params config.Params, e Ellipse, frame image.Rectangle) bool {
	if 2*e.Minor < float64(params.PupilSizeMin) || 2*e.Major > float64(params.PupilSizeMax) {
		return false
	}
	if e.Roundness() < params.EllipseRoundnessRatio {
		return false
	}
	return e.CX >= 0 && e.CY >= 0 && e.CX < float64(frame.Dx()) && e.CY < float64(frame.Dy())
}

func accepted(params config.Params, c Candidate) bool {
	return inRange(c.SupportRatio, params.FinalPerimeterRatioRangeMin, params.FinalPerimeterRatioRangeMax)
}

// pixelSet answers whether a pixel belongs to a set of edge pixels.
type pixelSet interface {
	At(x, y int) bool
}

// score measures how much of e's outline the edges support.
func score(params config.Params, e Ellipse, edges pixelSet) Candidate {
	hits, samples := coverage(e, edges, params.EllipseTrueSupportMinDist)

	c := Candidate{Ellipse: e, Support: hits}
	c.SupportRatio = float64(hits) / float64(samples)
	c.Score = float64(hits) * math.Pow(c.SupportRatio, params.SupportPixelRatioExponent)
	return c
}

// coverage samples the outline of e about once per pixel of circumference
// and counts the samples with a pixel of set within maxDist.
func coverage(e Ellipse, set pixelSet, maxDist float64) (hits, samples int) {
	samples = max(minFitPoints, int(math.Round(e.Circumference())))
	r := int(math.Ceil(maxDist))
	cos, sin := math.Cos(e.Angle), math.Sin(e.Angle)

	for i := 0; i < samples; i++ {
		t := 2 * math.Pi * float64(i) / float64(samples)
		u, v := e.Major*math.Cos(t), e.Minor*math.Sin(t)
		x := e.CX + u*cos - v*sin
		y := e.CY + u*sin + v*cos

		cx, cy := int(math.Round(x)), int(math.Round(y))
	search:
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				px, py := cx+dx, cy+dy
				if set.At(px, py) && math.Hypot(float64(px)-x, float64(py)-y) <= maxDist {
					hits++
					break search
				}
			}
		}
	}
	return hits, samples
}

func meanResidual(e Ellipse, points []Point) float64 {
	if len(points) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for _, p := range points {
		sum += e.Distance(float64(p.X), float64(p.Y))
	}
	return sum / float64(len(points))
}

// contourArea is the area of the ellipse inscribed in the contour's
// bounding box.
func contourArea(c Contour) float64 {
	lo, hi := c.Bounds()
	return math.Pi / 4 * float64(hi.X-lo.X) * float64(hi.Y-lo.Y)
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// medianBlur applies a size×size median filter. Sizes below 2 return the
// input unchanged.
func medianBlur(gray *image.Gray, size int) *image.Gray {
	if size < 2 {
		return gray
	}
	return imaging.ToGray(effect.Median(gray, float64(size/2)))
}

// dilate grows the white regions of mask by radius pixels.
func dilate(mask *image.Gray, radius int) *image.Gray {
	if radius < 1 {
		return mask
	}
	return imaging.ToGray(effect.Dilate(mask, float64(radius)))
}

// drawCandidate draws c onto the full-frame color image.
func drawCandidate(dst draw.Image, roi geometry.ROI, c Candidate) {
	e := c.Ellipse
	cx := e.CX + float64(roi.X)
	cy := e.CY + float64(roi.Y)

	imaging.DrawEllipse(dst, cx, cy, e.Major, e.Minor, e.Angle, imaging.ColorEllipse)
	imaging.DrawCross(dst, image.Pt(int(cx), int(cy)), 3, imaging.ColorEllipse)
	imaging.DrawLabel(dst, int(cx+e.Major)+3, int(cy), strconv.FormatFloat(c.Confidence(), 'f', 2, 64))
}
