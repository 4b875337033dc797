package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the eye image (PNG, JPEG or GIF)",
}

var roiProperty = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"x":      map[string]interface{}{"type": "integer", "description": "Left edge (0-based)"},
		"y":      map[string]interface{}{"type": "integer", "description": "Top edge (0-based)"},
		"width":  map[string]interface{}{"type": "integer", "description": "Width in pixels (> 0)"},
		"height": map[string]interface{}{"type": "integer", "description": "Height in pixels (> 0)"},
	},
	"required":    []string{"x", "y", "width", "height"},
	"description": "Region of interest in full-frame pixels. Defaults to the whole frame.",
}

var scaleProperty = map[string]interface{}{
	"type":        "number",
	"description": "Optional scale factor for the returned image (0 < scale <= 4). Default 1.0",
	"default":     1.0,
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Frame Operations
		{
			Name:        "frame_load",
			Description: "Load an eye image and return its dimensions and format. The frame is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_crop",
			Description: "Crop a region of interest and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty,
					"roi":   roiProperty,
					"scale": scaleProperty,
				},
				"required": []string{"path", "roi"},
			},
		},
		{
			Name:        "frame_histogram",
			Description: "Return the 256-bin intensity histogram of a region, the darkest significant intensity and the resulting pupil mask threshold.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"roi":  roiProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_edges",
			Description: "Run Canny edge detection with the current canny_* properties and return the edges painted over the region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"roi":  roiProperty,
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Edge color as #RRGGBB or #RRGGBBAA. Default yellow.",
					},
					"scale": scaleProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_unload",
			Description: "Drop a frame from the cache so the next call re-reads it from disk. Without a path, every cached frame is dropped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
			},
		},

		// Pupil Detection
		{
			Name:        "pupil_detect",
			Description: "Locate the pupil ellipse. Returns location, diameter, confidence and ellipse (center, axes as diameters, angle in degrees). Ellipse coordinates are relative to the returned roi; absolute_center is in full-frame pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"roi":  roiProperty,
					"visualize": map[string]interface{}{
						"type":        "boolean",
						"description": "Return a PNG overlay with coarse candidates and the fitted ellipse",
						"default":     false,
					},
					"scale": scaleProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pupil_coarse_candidates",
			Description: "Run only the coarse dark-blob search and return the narrowed region and the good and bad candidate windows in full-frame pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"roi":  roiProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pupil_fit_report",
			Description: "Run the reference ellipse fitter on a region and return every accepted candidate with its support ratios, best first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"roi":  roiProperty,
				},
				"required": []string{"path"},
			},
		},

		// Properties
		{
			Name:        "pupil_get_properties",
			Description: "Return the detector properties as {namespace: {key: value}}.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "pupil_update_properties",
			Description: "Update detector properties. Values must keep their type (7 is an integer, 7.0 a float). Unknown keys are ignored. Keys are applied in name order; on a type mismatch earlier keys stay applied.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"properties": map[string]interface{}{
						"type":        "object",
						"description": "Mapping {namespace: {key: value}}, e.g. {\"2d\": {\"blur_size\": 7}}",
					},
				},
				"required": []string{"properties"},
			},
		},
		{
			Name:        "pupil_property_namespaces",
			Description: "List the configuration namespaces the detector reads.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
