package pipeline

import (
	"fmt"
	"image"

	"github.com/ironsheep/pupil-detect-mcp/internal/coarse"
	"github.com/ironsheep/pupil-detect-mcp/internal/geometry"
)

// Window is a coarse candidate mapped to full-frame coordinates.
type Window struct {
	ROI      geometry.ROI `json:"roi"`
	Response float64      `json:"response"`
}

// CoarseReport describes the coarse search over one ROI.
type CoarseReport struct {
	// Active reports whether Detect would run the coarse stage for this ROI
	// with the current properties.
	Active bool `json:"active"`

	// Found is false when no dark blob stood out; ROI then equals the input.
	Found bool `json:"found"`

	// ROI is the narrowed region the fine stage would receive.
	ROI geometry.ROI `json:"roi"`

	Good []Window `json:"good"`
	Bad  []Window `json:"bad"`
}

// CoarseCandidates runs the coarse search over roi (the full frame when nil)
// regardless of the activation rule and reports its candidates in full-frame
// coordinates.
func (d *Detector) CoarseCandidates(gray *image.Gray, roi *geometry.ROI) (*CoarseReport, error) {
	params := d.store.Snapshot().Params()

	work, err := resolve(gray, nil, roi)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	res := coarse.Search(gray, work, params.CoarseFilterMin, params.CoarseFilterMax)

	report := &CoarseReport{
		Active: coarse.ShouldRun(params.CoarseDetection, work),
		Found:  res.Found,
		ROI:    res.ROI,
		Good:   windows(res, res.Good),
		Bad:    windows(res, res.Bad),
	}
	return report, nil
}

func windows(res *coarse.Result, cands []coarse.Candidate) []Window {
	out := make([]Window, 0, len(cands))
	for _, c := range cands {
		out = append(out, Window{ROI: res.FullFrame(c), Response: c.Response})
	}
	return out
}
