package server

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pupil-detect-mcp/internal/config"
)

// createEyeImageFile writes a white frame with a dark filled ellipse and
// returns its path.
func createEyeImageFile(t *testing.T, width, height int, cx, cy, a, b float64) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := (float64(x)-cx)/a, (float64(y)-cy)/b
			c := color.RGBA{250, 250, 250, 255}
			if dx*dx+dy*dy <= 1 {
				c = color.RGBA{10, 10, 10, 255}
			}
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "eye.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// callTool sends a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, err := json.Marshal(params)
	require.NoError(t, err)

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	require.NotNil(t, resp)
	return resp
}

// decodeResult unmarshals the text content of a successful tool response.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	require.Len(t, content, 1)
	require.NoError(t, json.Unmarshal([]byte(content[0]["text"].(string)), v))
}

func TestHandleToolsCall_FrameLoad(t *testing.T) {
	s := newTestServer()
	path := createEyeImageFile(t, 100, 80, 50, 40, 10, 8)

	var info struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
		Pixels int    `json:"pixels"`
	}
	decodeResult(t, callTool(t, s, "frame_load", map[string]interface{}{"path": path}), &info)

	assert.Equal(t, 100, info.Width)
	assert.Equal(t, 80, info.Height)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 8000, info.Pixels)
	assert.Equal(t, 1, s.cache.Len())
}

func TestHandleToolsCall_FrameUnload(t *testing.T) {
	s := newTestServer()
	first := createEyeImageFile(t, 40, 30, 20, 15, 5, 4)
	second := createEyeImageFile(t, 40, 30, 20, 15, 6, 5)
	for _, p := range []string{first, second} {
		decodeResult(t, callTool(t, s, "frame_load", map[string]interface{}{"path": p}), &struct{}{})
	}
	require.Equal(t, 2, s.cache.Len())

	var res UnloadResult
	decodeResult(t, callTool(t, s, "frame_unload", map[string]interface{}{"path": first}), &res)
	assert.Equal(t, 1, res.Cached)

	// Unknown paths are ignored.
	decodeResult(t, callTool(t, s, "frame_unload", map[string]interface{}{"path": "/nope.png"}), &res)
	assert.Equal(t, 1, res.Cached)

	decodeResult(t, callTool(t, s, "frame_unload", nil), &res)
	assert.Equal(t, 0, res.Cached)
}

func TestHandleToolsCall_FrameLoad_Errors(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name string
		args interface{}
		code int
	}{
		{"missing path", map[string]interface{}{}, codeInvalidParams},
		{"no arguments", nil, codeInvalidParams},
		{"wrong type", map[string]interface{}{"path": 3}, codeInvalidParams},
		{"missing file", map[string]interface{}{"path": "/nonexistent/eye.png"}, codeToolFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "frame_load", tt.args)

			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			data := resp.Error.Data.(map[string]string)
			assert.NotEmpty(t, data["trace_id"])
			assert.NotEmpty(t, data["error"])
		})
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	resp := callTool(t, newTestServer(), "frame_rotate", nil)

	require.NotNil(t, resp.Error)
	assert.Equal(t, codeToolFailed, resp.Error.Code)
	assert.Contains(t, resp.Error.Data.(map[string]string)["error"], "unknown tool")
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer()

	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: []byte(`[1,2]`)})

	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestHandleToolsCall_FrameCrop(t *testing.T) {
	s := newTestServer()
	path := createEyeImageFile(t, 100, 80, 50, 40, 10, 8)

	var img struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	decodeResult(t, callTool(t, s, "frame_crop", map[string]interface{}{
		"path":  path,
		"roi":   map[string]int{"x": 10, "y": 20, "width": 30, "height": 25},
		"scale": 2.0,
	}), &img)

	assert.Equal(t, 60, img.Width)
	assert.Equal(t, 50, img.Height)
	assert.Equal(t, "image/png", img.MimeType)
	assert.NotEmpty(t, img.ImageBase64)
}

func TestHandleToolsCall_FrameCrop_Invalid(t *testing.T) {
	s := newTestServer()
	path := createEyeImageFile(t, 100, 80, 50, 40, 10, 8)

	tests := []struct {
		name string
		args map[string]interface{}
		code int
	}{
		{"zero roi", map[string]interface{}{"path": path, "roi": map[string]int{"x": 0, "y": 0, "width": 0, "height": 5}}, codeInvalidParams},
		{"negative scale", map[string]interface{}{"path": path, "roi": map[string]int{"x": 0, "y": 0, "width": 5, "height": 5}, "scale": -1}, codeInvalidParams},
		{"outside frame", map[string]interface{}{"path": path, "roi": map[string]int{"x": 90, "y": 0, "width": 20, "height": 5}}, codeToolFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "frame_crop", tt.args)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHandleToolsCall_FrameHistogram(t *testing.T) {
	s := newTestServer()
	path := createEyeImageFile(t, 100, 80, 50, 40, 20, 15)

	var res HistogramResult
	decodeResult(t, callTool(t, s, "frame_histogram", map[string]interface{}{"path": path}), &res)

	require.Len(t, res.Bins, 256)
	total := 0
	for _, n := range res.Bins {
		total += n
	}
	assert.Equal(t, 8000, total)
	assert.Equal(t, 10, res.Spike)
	assert.Equal(t, 10+23, res.Threshold)
	assert.Equal(t, 100, res.ROI.Width)
}

func TestHandleToolsCall_FrameEdges(t *testing.T) {
	s := newTestServer()
	path := createEyeImageFile(t, 100, 80, 50, 40, 20, 15)

	var res EdgesResult
	decodeResult(t, callTool(t, s, "frame_edges", map[string]interface{}{
		"path":  path,
		"color": "#FF0000",
	}), &res)

	assert.Positive(t, res.EdgeCount)
	assert.Equal(t, 160.0, res.High)
	assert.Equal(t, 80.0, res.Low)
	assert.Equal(t, 5, res.Aperture)
	require.NotNil(t, res.Image)
	assert.Equal(t, 100, res.Image.Width)

	resp := callTool(t, s, "frame_edges", map[string]interface{}{"path": path, "color": "red"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestHandleToolsCall_PupilDetect(t *testing.T) {
	s := newTestServer()
	path := createEyeImageFile(t, 200, 160, 110, 70, 26, 20)

	var res struct {
		Location       [2]int     `json:"location"`
		Diameter       float64    `json:"diameter"`
		Confidence     float64    `json:"confidence"`
		AbsoluteCenter [2]float64 `json:"absolute_center"`
		Ellipse        struct {
			Center [2]float64 `json:"center"`
			Axes   [2]float64 `json:"axes"`
			Angle  float64    `json:"angle"`
		} `json:"ellipse"`
		ROI struct {
			X, Y, Width, Height int
		} `json:"roi"`
		Overlay *struct {
			ImageBase64 string `json:"image_base64"`
		} `json:"overlay"`
	}
	decodeResult(t, callTool(t, s, "pupil_detect", map[string]interface{}{
		"path": path,
		"roi":  map[string]int{"x": 40, "y": 20, "width": 140, "height": 120},
	}), &res)

	assert.Equal(t, 40, res.ROI.X)
	assert.InDelta(t, 70, res.Ellipse.Center[0], 2, "center is ROI-relative")
	assert.InDelta(t, 50, res.Ellipse.Center[1], 2, "center is ROI-relative")
	assert.InDelta(t, 110, res.AbsoluteCenter[0], 2)
	assert.InDelta(t, 70, res.AbsoluteCenter[1], 2)
	assert.InDelta(t, 52, res.Diameter, 3)
	assert.InDelta(t, 40, res.Ellipse.Axes[0], 3)
	// The major axis is horizontal: native angle 0 or π, so -90 or 90.
	assert.InDelta(t, 90, math.Abs(res.Ellipse.Angle), 5)
	assert.Greater(t, res.Confidence, 0.5)
	assert.Nil(t, res.Overlay)
}

func TestHandleToolsCall_PupilDetect_Visualize(t *testing.T) {
	s := newTestServer()
	path := createEyeImageFile(t, 120, 100, 60, 50, 18, 18)

	var res DetectResult
	decodeResult(t, callTool(t, s, "pupil_detect", map[string]interface{}{
		"path":      path,
		"visualize": true,
		"scale":     0.5,
	}), &res)

	require.NotNil(t, res.Overlay)
	assert.Equal(t, 60, res.Overlay.Width)
	assert.NotEmpty(t, res.Overlay.ImageBase64)

	// The cached frame must stay clean for later calls.
	frame, err := s.cache.LoadFrame(path)
	require.NoError(t, err)
	assert.Equal(t, uint8(250), frame.Color.Pix[0])
}

func TestHandleToolsCall_PupilDetect_BadROI(t *testing.T) {
	s := newTestServer()
	path := createEyeImageFile(t, 100, 80, 50, 40, 10, 8)

	resp := callTool(t, s, "pupil_detect", map[string]interface{}{
		"path": path,
		"roi":  map[string]int{"x": 50, "y": 0, "width": 60, "height": 10},
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, codeToolFailed, resp.Error.Code)
	assert.Contains(t, resp.Error.Data.(map[string]string)["error"], "malformed input")
}

func TestHandleToolsCall_PupilCoarseCandidates(t *testing.T) {
	s := newTestServer()
	path := createEyeImageFile(t, 640, 480, 400, 260, 40, 40)

	var res struct {
		Active bool `json:"active"`
		Found  bool `json:"found"`
		Good   []struct {
			Response float64 `json:"response"`
		} `json:"good"`
	}
	decodeResult(t, callTool(t, s, "pupil_coarse_candidates", map[string]interface{}{"path": path}), &res)

	assert.True(t, res.Active)
	assert.True(t, res.Found)
	assert.NotEmpty(t, res.Good)
}

func TestHandleToolsCall_PupilFitReport(t *testing.T) {
	s := newTestServer()
	path := createEyeImageFile(t, 200, 160, 100, 80, 25, 18)

	var res FitReportResult
	decodeResult(t, callTool(t, s, "pupil_fit_report", map[string]interface{}{"path": path}), &res)

	require.NotNil(t, res.FitReport)
	require.NotEmpty(t, res.Candidates)
	best := res.Candidates[0]
	assert.InDelta(t, 100, best.Ellipse.CX, 1.5)
	assert.InDelta(t, 80, best.Ellipse.CY, 1.5)
	assert.Equal(t, 200, res.ROI.Width)
}

func TestHandleToolsCall_Properties(t *testing.T) {
	s := newTestServer()

	var namespaces []string
	decodeResult(t, callTool(t, s, "pupil_property_namespaces", nil), &namespaces)
	assert.Equal(t, []string{config.Namespace}, namespaces)

	var props map[string]map[string]interface{}
	decodeResult(t, callTool(t, s, "pupil_update_properties", map[string]interface{}{
		"properties": map[string]interface{}{
			"2d": map[string]interface{}{"blur_size": 7, "nonexistent_key": 1},
		},
	}), &props)
	assert.Equal(t, float64(7), props["2d"]["blur_size"])
	assert.NotContains(t, props["2d"], "nonexistent_key")

	decodeResult(t, callTool(t, s, "pupil_get_properties", nil), &props)
	assert.Equal(t, float64(7), props["2d"]["blur_size"])
	assert.Equal(t, float64(160), props["2d"]["canny_treshold"])
	assert.Equal(t, true, props["2d"]["coarse_detection"])
}

func TestHandleToolsCall_UpdateProperties_Mismatch(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name  string
		value interface{}
	}{
		{"string for int", "seven"},
		{"float literal for int", 7.5},
		{"bool for int", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "pupil_update_properties", map[string]interface{}{
				"properties": map[string]interface{}{"2d": map[string]interface{}{"blur_size": tt.value}},
			})

			require.NotNil(t, resp.Error)
			assert.Equal(t, codeToolFailed, resp.Error.Code)
			assert.Contains(t, resp.Error.Data.(map[string]string)["error"], "blur_size")
			assert.Equal(t, 5, s.detector.Properties()[config.Namespace][config.KeyBlurSize])
		})
	}
}

func TestHandleToolsCall_UpdateProperties_Float(t *testing.T) {
	s := newTestServer()

	resp := callTool(t, s, "pupil_update_properties", map[string]interface{}{
		"properties": map[string]interface{}{"2d": map[string]interface{}{"support_pixel_ratio_exponent": 3.5}},
	})
	require.Nil(t, resp.Error)
	assert.Equal(t, 3.5, s.detector.Properties()[config.Namespace][config.KeySupportPixelRatioExponent])

	resp = callTool(t, s, "pupil_update_properties", map[string]interface{}{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}
