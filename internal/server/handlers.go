package server

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pupil-detect-mcp/internal/config"
	"github.com/ironsheep/pupil-detect-mcp/internal/detection"
	"github.com/ironsheep/pupil-detect-mcp/internal/geometry"
	"github.com/ironsheep/pupil-detect-mcp/internal/imaging"
	"github.com/ironsheep/pupil-detect-mcp/internal/logging"
	"github.com/ironsheep/pupil-detect-mcp/internal/pipeline"
)

// errInvalidArguments marks argument decoding and validation failures. They
// are reported with the JSON-RPC invalid params code.
var errInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "pupil_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments jsoniter.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Every call is logged under a fresh trace ID, which failed calls also return
// in the error data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	entry, traceID := logging.WithTrace(s.log)
	entry = entry.WithField("tool", params.Name)
	start := time.Now()

	result, err := s.executeTool(entry, params.Name, params.Arguments)
	entry = entry.WithField("elapsed", time.Since(start))
	if err != nil {
		entry.WithError(err).Warn("tool failed")
		code := codeToolFailed
		if errors.Is(err, errInvalidArguments) {
			code = codeInvalidParams
		}
		return s.errorResponse(req.ID, code, "Tool execution failed", map[string]string{
			"error":    err.Error(),
			"trace_id": traceID,
		})
	}
	entry.Info("tool done")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Decodes and validates its arguments
//  2. Loads the frame from the cache as needed
//  3. Calls the detector or imaging helpers with the current properties
//  4. Returns the result or error
func (s *Server) executeTool(log *logrus.Entry, name string, args jsoniter.RawMessage) (interface{}, error) {
	detector := s.detector.With(log)

	switch name {
	// Frame Operations
	case "frame_load":
		return s.handleFrameLoad(args)
	case "frame_crop":
		return s.handleFrameCrop(args)
	case "frame_histogram":
		return s.handleFrameHistogram(detector, args)
	case "frame_edges":
		return s.handleFrameEdges(detector, args)
	case "frame_unload":
		return s.handleFrameUnload(log, args)

	// Pupil Detection
	case "pupil_detect":
		return s.handlePupilDetect(detector, args)
	case "pupil_coarse_candidates":
		return s.handlePupilCoarseCandidates(detector, args)
	case "pupil_fit_report":
		return s.handlePupilFitReport(detector, args)

	// Properties
	case "pupil_get_properties":
		return detector.Properties(), nil
	case "pupil_update_properties":
		return s.handlePupilUpdateProperties(detector, args)
	case "pupil_property_namespaces":
		return detector.PropertyNamespaces(), nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals args into v and validates its tags. Missing arguments
// decode as an empty object.
func (s *Server) decodeArgs(args jsoniter.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = jsoniter.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}

// loadRegion loads the frame at path and resolves roi against it.
func (s *Server) loadRegion(path string, roi *geometry.ROI) (*imaging.Frame, geometry.ROI, error) {
	frame, err := s.cache.LoadFrame(path)
	if err != nil {
		return nil, geometry.ROI{}, err
	}
	region := geometry.FullFrame(frame.Bounds())
	if roi != nil {
		region = *roi
	}
	if err := region.Validate(frame.Bounds()); err != nil {
		return nil, geometry.ROI{}, err
	}
	return frame, region, nil
}

// === Frame Operation Handlers ===

type frameArgs struct {
	Path string        `json:"path" validate:"required"`
	ROI  *geometry.ROI `json:"roi"`
}

func (s *Server) handleFrameLoad(args jsoniter.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}

// UnloadResult reports the cache size after an unload.
type UnloadResult struct {
	Cached int `json:"cached"`
}

func (s *Server) handleFrameUnload(log *logrus.Entry, args jsoniter.RawMessage) (interface{}, error) {
	var a struct {
		Path string `json:"path"`
	}
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		s.cache.Clear()
	} else {
		s.cache.Evict(a.Path)
	}
	res := &UnloadResult{Cached: s.cache.Len()}
	log.WithField("cached", res.Cached).Debug("frame cache trimmed")
	return res, nil
}

type frameCropArgs struct {
	Path  string       `json:"path" validate:"required"`
	ROI   geometry.ROI `json:"roi"`
	Scale float64      `json:"scale" validate:"omitempty,gt=0,lte=4"`
}

func (s *Server) handleFrameCrop(args jsoniter.RawMessage) (interface{}, error) {
	var a frameCropArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.cache.LoadFrame(a.Path)
	if err != nil {
		return nil, err
	}
	crop, err := imaging.CropROI(frame.Color, a.ROI)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(crop, a.Scale)
}

// HistogramResult is the result of frame_histogram.
type HistogramResult struct {
	ROI geometry.ROI `json:"roi"`

	// Bins holds the pixel count per intensity 0..255.
	Bins []int `json:"bins"`

	// Spike is the darkest significant intensity.
	Spike int `json:"spike"`

	// Threshold is Spike + intensity_range, the pupil mask cut-off.
	Threshold int `json:"threshold"`
}

func (s *Server) handleFrameHistogram(d *pipeline.Detector, args jsoniter.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	frame, region, err := s.loadRegion(a.Path, a.ROI)
	if err != nil {
		return nil, err
	}

	bins := imaging.IntensityHistogram(imaging.ToGray(region.Slice(frame.Gray)))
	spike := imaging.DarkestSpike(bins)
	return &HistogramResult{
		ROI:       region,
		Bins:      bins,
		Spike:     spike,
		Threshold: spike + d.Params().IntensityRange,
	}, nil
}

type frameEdgesArgs struct {
	Path  string        `json:"path" validate:"required"`
	ROI   *geometry.ROI `json:"roi"`
	Color string        `json:"color"`
	Scale float64       `json:"scale" validate:"omitempty,gt=0,lte=4"`
}

// EdgesResult is the result of frame_edges.
type EdgesResult struct {
	ROI       geometry.ROI          `json:"roi"`
	EdgeCount int                   `json:"edge_count"`
	Low       float64               `json:"low_threshold"`
	High      float64               `json:"high_threshold"`
	Aperture  int                   `json:"aperture"`
	Image     *imaging.EncodedImage `json:"image"`
}

func (s *Server) handleFrameEdges(d *pipeline.Detector, args jsoniter.RawMessage) (interface{}, error) {
	var a frameEdgesArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}

	edgeColor := imaging.ColorEllipse
	if a.Color != "" {
		c, err := imaging.ParseHexColor(a.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
		}
		edgeColor = c
	}

	frame, region, err := s.loadRegion(a.Path, a.ROI)
	if err != nil {
		return nil, err
	}

	params := d.Params()
	high := float64(params.CannyThreshold)
	low := high / float64(max(1, params.CannyRatio))
	edges := imaging.Canny(region.Slice(frame.Gray), low, high, params.CannyAperture)

	canvas, err := imaging.CropROI(frame.Color, region)
	if err != nil {
		return nil, err
	}
	// Gray is opaque as a mask; reinterpret the edge pixels as alpha.
	g := edges.Gray()
	mask := &image.Alpha{Pix: g.Pix, Stride: g.Stride, Rect: g.Rect}
	draw.DrawMask(canvas, canvas.Bounds(), image.NewUniform(edgeColor), image.Point{}, mask, image.Point{}, draw.Over)

	encoded, err := imaging.EncodePNG(canvas, a.Scale)
	if err != nil {
		return nil, err
	}
	return &EdgesResult{
		ROI:       region,
		EdgeCount: edges.Count(),
		Low:       low,
		High:      high,
		Aperture:  params.CannyAperture,
		Image:     encoded,
	}, nil
}

// === Pupil Detection Handlers ===

type pupilDetectArgs struct {
	Path      string        `json:"path" validate:"required"`
	ROI       *geometry.ROI `json:"roi"`
	Visualize bool          `json:"visualize"`
	Scale     float64       `json:"scale" validate:"omitempty,gt=0,lte=4"`
}

// DetectResult is the result of pupil_detect.
type DetectResult struct {
	*pipeline.Output

	// AbsoluteCenter is the ellipse center in full-frame pixels.
	AbsoluteCenter [2]float64 `json:"absolute_center"`

	// Overlay is set when visualize was requested.
	Overlay *imaging.EncodedImage `json:"overlay,omitempty"`
}

func (s *Server) handlePupilDetect(d *pipeline.Detector, args jsoniter.RawMessage) (interface{}, error) {
	var a pupilDetectArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.cache.LoadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	var canvas draw.Image
	var overlay *image.NRGBA
	if a.Visualize {
		overlay = frame.Overlay()
		canvas = overlay
	}

	out, err := d.Detect(frame.Gray, canvas, a.ROI)
	if err != nil {
		return nil, err
	}

	res := &DetectResult{Output: out}
	res.AbsoluteCenter[0], res.AbsoluteCenter[1] = out.Absolute()
	if overlay != nil {
		if res.Overlay, err = imaging.EncodePNG(overlay, a.Scale); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Server) handlePupilCoarseCandidates(d *pipeline.Detector, args jsoniter.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.cache.LoadFrame(a.Path)
	if err != nil {
		return nil, err
	}
	return d.CoarseCandidates(frame.Gray, a.ROI)
}

// FitReportResult is the result of pupil_fit_report.
type FitReportResult struct {
	ROI geometry.ROI `json:"roi"`
	*detection.FitReport
}

func (s *Server) handlePupilFitReport(d *pipeline.Detector, args jsoniter.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	frame, region, err := s.loadRegion(a.Path, a.ROI)
	if err != nil {
		return nil, err
	}

	report, err := detection.NewFitter().Fit(d.Params(), frame.Gray, region)
	if err != nil {
		return nil, err
	}
	return &FitReportResult{ROI: region, FitReport: report}, nil
}

// === Property Handlers ===

type updatePropertiesArgs struct {
	Properties map[string]map[string]interface{} `json:"properties" validate:"required"`
}

func (s *Server) handlePupilUpdateProperties(d *pipeline.Detector, args jsoniter.RawMessage) (interface{}, error) {
	var a updatePropertiesArgs
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: properties is required", errInvalidArguments)
	}
	// Numbers must keep their literal kind: 7 is an int, 7.0 a float.
	if err := config.JSON.Unmarshal(args, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	if err := s.validate.Struct(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArguments, err)
	}

	if err := d.UpdateProperties(config.CoerceDocument(a.Properties)); err != nil {
		return nil, err
	}
	return d.Properties(), nil
}
