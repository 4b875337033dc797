package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// maxFileSize bounds configuration documents read from disk.
const maxFileSize = 1 * 1024 * 1024

// JSON decodes numbers as json.Number so integral and fractional literals
// keep their kind.
var JSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// LoadFile builds a Store from a JSON document shaped {"2d": {...}}.
//
// The file must have a .json extension and be at most 1 MiB. Values are
// applied on top of the factory defaults with the same rules as Apply, so a
// partial document is fine and a mistyped value is an error.
func LoadFile(path string, opts ...Option) (*Store, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var doc map[string]map[string]any
	if err := JSON.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	store := NewStore(opts...)
	if err := store.Apply(CoerceDocument(doc)); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return store, nil
}

// CoerceDocument applies CoerceJSON to every value of a decoded document.
func CoerceDocument(doc map[string]map[string]any) map[string]Properties {
	out := make(map[string]Properties, len(doc))
	for ns, values := range doc {
		props := make(Properties, len(values))
		for k, v := range values {
			props[k] = CoerceJSON(v)
		}
		out[ns] = props
	}
	return out
}

// CoerceJSON converts a json.Number into int when the literal is integral and
// into float64 otherwise. Other values are returned unchanged.
func CoerceJSON(v any) any {
	var lit string
	switch n := v.(type) {
	case json.Number:
		lit = string(n)
	case jsoniter.Number:
		lit = string(n)
	default:
		return v
	}

	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.Atoi(lit); err == nil {
			return i
		}
	}
	if f, err := strconv.ParseFloat(lit, 64); err == nil {
		return f
	}
	return v
}
