// Package server implements the MCP (Model Context Protocol) server for pupil
// detection.
//
// The server exposes the detection pipeline and its diagnostics as MCP tools
// so that an MCP client can locate pupils in eye-camera frames, inspect the
// intermediate stages and tune the detector properties.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Frame Operations:
//   - frame_load: Load a frame and get its metadata
//   - frame_crop: Extract a region as PNG
//   - frame_histogram: Intensity histogram and darkest spike
//   - frame_edges: Canny edges with the current properties
//   - frame_unload: Drop one or all frames from the cache
//
// Pupil Detection:
//   - pupil_detect: Run the full coarse-to-fine pipeline
//   - pupil_coarse_candidates: Run only the coarse blob search
//   - pupil_fit_report: List every candidate of the reference fitter
//
// Properties:
//   - pupil_get_properties: Read {namespace: values}
//   - pupil_update_properties: Update values (types must match)
//   - pupil_property_namespaces: List the namespaces read
//
// # Frame Caching
//
// Frames are decoded once and cached by path until frame_unload drops them.
// Tools that draw overlays work on a copy, so cached frames never change.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses with:
//   - code: -32602 for invalid arguments, -32000 for other tool failures
//   - message: "Tool execution failed"
//   - data: {"error": <Go error string>, "trace_id": <id>}
//
// The trace ID matches the log entries written for the call.
//
// # Usage
//
//	srv := server.New(server.WithDetector(detector))
//	if err := srv.Run(); err != nil {
//	    logger.Fatal(err)
//	}
package server
