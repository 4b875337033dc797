package coarse

import (
	"sort"

	"github.com/ironsheep/pupil-detect-mcp/internal/geometry"
)

const (
	// goodResponseRatio is the fraction of the best response a candidate must
	// reach to count as good.
	goodResponseRatio = 0.5

	// maxCandidates caps the local maxima kept for classification.
	maxCandidates = 64
)

// Candidate is a pupil-like dark blob found by the center-surround filter.
// Coordinates are coarse (downsampled, ROI-relative).
type Candidate struct {
	// X, Y is the top-left corner of the inner window.
	X int `json:"x"`
	Y int `json:"y"`

	// Size is the inner window's side length.
	Size int `json:"size"`

	// Response is surround mean minus center mean; larger is darker.
	Response float64 `json:"response"`
}

// Box returns the inner window.
func (c Candidate) Box() geometry.Box {
	return geometry.Box{X1: c.X, Y1: c.Y, X2: c.X + c.Size, Y2: c.Y + c.Size}
}

// Surround returns the window including the surrounding ring: the inner
// window grown by Size/2 on every side.
func (c Candidate) Surround() geometry.Box {
	pad := c.Size / 2
	return geometry.Box{X1: c.X - pad, Y1: c.Y - pad, X2: c.X + c.Size + pad, Y2: c.Y + c.Size + pad}
}

// CenterSurround evaluates the center-surround response over ii for window
// sizes from minSize to maxSize and returns the bounding box of the best
// cluster.
//
// Window sizes grow by a quarter per step and positions are sampled on a grid
// with a quarter-window stride. Per size, only local maxima of the response
// grid become candidates. The strongest candidate anchors the cluster: every
// candidate reaching half its response and overlapping its surround is good,
// all others are bad. The returned box is the union of the good candidates'
// surround windows clamped to the image. found is false when no window has a
// positive response.
func CenterSurround(ii *Integral, minSize, maxSize int) (box geometry.Box, found bool, good, bad []Candidate) {
	if minSize > maxSize {
		minSize, maxSize = maxSize, minSize
	}
	if minSize < 1 {
		minSize = 1
	}

	candidates := make([]Candidate, 0)
	for w := minSize; w <= maxSize; w += max(1, w/4) {
		if w > ii.Width || w > ii.Height {
			break
		}
		candidates = append(candidates, localMaxima(ii, w)...)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Response > candidates[j].Response
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	if len(candidates) == 0 || candidates[0].Response <= 0 {
		return geometry.Box{}, false, nil, candidates
	}

	best := candidates[0]
	anchor := best.Surround()
	threshold := best.Response * goodResponseRatio

	good = make([]Candidate, 0)
	bad = make([]Candidate, 0)
	for _, c := range candidates {
		if c.Response >= threshold && c.Surround().Overlaps(anchor) {
			good = append(good, c)
			box = box.Union(c.Surround())
		} else {
			bad = append(bad, c)
		}
	}

	return box.Clamp(ii.Width, ii.Height), true, good, bad
}

// localMaxima samples the response of window size w on a grid and returns the
// positions that are not exceeded by any of their 8 grid neighbours.
func localMaxima(ii *Integral, w int) []Candidate {
	step := max(1, w/4)
	cols := (ii.Width-w)/step + 1
	rows := (ii.Height-w)/step + 1

	grid := make([]float64, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			grid[r*cols+c] = response(ii, c*step, r*step, w)
		}
	}

	out := make([]Candidate, 0)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := grid[r*cols+c]
			if v <= 0 {
				continue
			}
			isMax := true
			for dr := -1; dr <= 1 && isMax; dr++ {
				for dc := -1; dc <= 1 && isMax; dc++ {
					if dr == 0 && dc == 0 {
						continue
					}
					nr, nc := r+dr, c+dc
					if nr >= 0 && nr < rows && nc >= 0 && nc < cols && grid[nr*cols+nc] > v {
						isMax = false
					}
				}
			}
			if isMax {
				out = append(out, Candidate{X: c * step, Y: r * step, Size: w, Response: v})
			}
		}
	}
	return out
}

// response is the surround ring mean minus the inner window mean. Windows at
// the image border use the part of the ring that lies inside the image.
func response(ii *Integral, x, y, w int) float64 {
	c := Candidate{X: x, Y: y, Size: w}
	inner := c.Box()
	outer := c.Surround().Clamp(ii.Width, ii.Height)

	innerMean, innerArea := ii.Mean(inner)
	ringArea := outer.Width()*outer.Height() - innerArea
	if ringArea <= 0 {
		return 0
	}
	ringSum := float64(ii.Sum(outer)) - innerMean*float64(innerArea)

	return ringSum/float64(ringArea) - innerMean
}
