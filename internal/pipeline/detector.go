package pipeline

import (
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pupil-detect-mcp/internal/coarse"
	"github.com/ironsheep/pupil-detect-mcp/internal/config"
	"github.com/ironsheep/pupil-detect-mcp/internal/detection"
	"github.com/ironsheep/pupil-detect-mcp/internal/geometry"
	"github.com/ironsheep/pupil-detect-mcp/internal/imaging"
	"github.com/ironsheep/pupil-detect-mcp/internal/logging"
)

// Option configures a Detector.
type Option func(*Detector)

// WithStore makes the detector read and update s instead of a private store.
func WithStore(s *config.Store) Option {
	return func(d *Detector) {
		d.store = s
	}
}

// WithFineDetector replaces the reference ellipse fitter.
func WithFineDetector(f detection.FineDetector) Option {
	return func(d *Detector) {
		d.fine = f
	}
}

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Detector) {
		d.log = l
	}
}

// Detector runs the coarse-to-fine pupil pipeline on single frames.
//
// A Detector is safe for concurrent use: every Detect call works on the
// configuration snapshot current at its start.
type Detector struct {
	store *config.Store
	fine  detection.FineDetector
	log   logrus.FieldLogger
}

// New creates a detector with factory defaults, the reference fitter and the
// process logger unless overridden by opts.
func New(opts ...Option) *Detector {
	d := &Detector{}
	for _, opt := range opts {
		opt(d)
	}
	if d.store == nil {
		d.store = config.NewStore()
	}
	if d.fine == nil {
		d.fine = detection.NewFitter()
	}
	if d.log == nil {
		d.log = logging.Default()
	}
	return d
}

// With returns a detector sharing d's store and fine detector that logs
// through l.
func (d *Detector) With(l logrus.FieldLogger) *Detector {
	c := *d
	c.log = l
	return &c
}

// Detect locates the pupil in gray.
//
// color is optional. When non-nil it must have gray's bounds; it then
// receives the debug overlays of both stages and the fine detector is asked
// to visualize. roi defaults to the full frame.
//
// The returned ellipse is relative to Output.ROI, the region the fine stage
// searched. A frame without a pupil yields confidence 0 and no error.
func (d *Detector) Detect(gray *image.Gray, color draw.Image, roi *geometry.ROI) (*Output, error) {
	start := time.Now()
	params := d.store.Snapshot().Params()

	// Validate
	work, err := resolve(gray, color, roi)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	visualize := color != nil

	// Coarse
	if coarse.ShouldRun(params.CoarseDetection, work) {
		t := time.Now()
		res := coarse.Search(gray, work, params.CoarseFilterMin, params.CoarseFilterMax)
		if visualize {
			drawCoarse(color, res)
		}
		d.log.WithFields(logging.Fields{
			"stage":   "coarse",
			"found":   res.Found,
			"good":    len(res.Good),
			"bad":     len(res.Bad),
			"roi_in":  work.String(),
			"roi_out": res.ROI.String(),
			"elapsed": time.Since(t),
		}).Debug("coarse search finished")
		work = res.ROI
	} else {
		d.log.WithFields(logging.Fields{
			"stage":   "coarse",
			"enabled": params.CoarseDetection,
			"area":    work.Area(),
		}).Debug("coarse search skipped")
	}

	// Fine
	t := time.Now()
	native, err := d.fine.Detect(params, gray, color, work, visualize)
	if err != nil {
		return nil, fmt.Errorf("fine stage: %w", err)
	}
	d.log.WithFields(logging.Fields{
		"stage":      "fine",
		"roi":        work.String(),
		"confidence": native.Confidence,
		"elapsed":    time.Since(t),
	}).Debug("fine fit finished")

	// Normalize
	out := Normalize(native)
	out.ROI = work

	d.log.WithFields(logging.Fields{
		"stage":    "normalize",
		"location": out.Location,
		"diameter": out.Diameter,
		"elapsed":  time.Since(start),
	}).Debug("frame done")

	return &out, nil
}

// resolve returns the working ROI after checking the buffers.
func resolve(gray *image.Gray, color draw.Image, roi *geometry.ROI) (geometry.ROI, error) {
	if gray == nil {
		return geometry.ROI{}, fmt.Errorf("%w: nil gray frame", geometry.ErrMalformedInput)
	}
	frame := gray.Bounds()
	if color != nil && color.Bounds() != frame {
		return geometry.ROI{}, fmt.Errorf("%w: color bounds %v differ from gray bounds %v",
			geometry.ErrMalformedInput, color.Bounds(), frame)
	}

	work := geometry.FullFrame(frame)
	if roi != nil {
		work = *roi
	}
	if err := work.Validate(frame); err != nil {
		return geometry.ROI{}, err
	}
	return work, nil
}

// drawCoarse outlines the good candidates, brighter green for stronger
// responses, and the narrowed ROI.
func drawCoarse(dst draw.Image, res *coarse.Result) {
	if !res.Found || len(res.Good) == 0 {
		return
	}
	best := res.Good[0].Response
	for _, c := range res.Good {
		imaging.DrawRect(dst, res.FullFrame(c).Rect(), imaging.StrengthColor(c.Response/best))
	}
	imaging.DrawRect(dst, res.ROI.Rect(), imaging.ColorROI)
}

// Params returns the typed view of the current properties.
func (d *Detector) Params() config.Params {
	return d.store.Snapshot().Params()
}

// Properties returns {namespace: current values}.
func (d *Detector) Properties() map[string]config.Properties {
	return d.store.Export()
}

// UpdateProperties applies update to the detector's store. See config.Store
// Apply for the validation and ordering rules.
func (d *Detector) UpdateProperties(update map[string]config.Properties) error {
	err := d.store.Apply(update)
	fields := logging.Fields{"namespaces": len(update)}
	if err != nil {
		d.log.WithFields(fields).WithError(err).Warn("property update rejected")
		return err
	}
	d.log.WithFields(fields).Debug("properties updated")
	return nil
}

// PropertyNamespaces lists the configuration namespaces this detector reads.
func (d *Detector) PropertyNamespaces() []string {
	return d.store.Namespaces()
}
