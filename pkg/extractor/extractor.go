// Package extractor pulls values out of nested source-record payloads by
// dot-notation path, so per-source field mappings stay configuration.
package extractor

import (
	"fmt"
	"strconv"
	"strings"
)

// Extractor resolves dot-notation paths against decoded JSON data.
type Extractor struct{}

// New creates a new Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract resolves a path like "owner.name" or "parcels[0].address"
// against nested maps and arrays. A missing segment yields nil, not an
// error; errors are reserved for paths that cannot be parsed.
func (e *Extractor) Extract(data any, path string) (any, error) {
	if path == "" {
		return data, nil
	}

	current := data
	for _, segment := range strings.Split(path, ".") {
		if current == nil {
			return nil, nil
		}

		key, index, hasIndex, err := parseSegment(segment)
		if err != nil {
			return nil, err
		}

		if key != "" {
			m, ok := current.(map[string]any)
			if !ok {
				return nil, nil
			}
			current = m[key]
		}

		if hasIndex {
			arr, ok := current.([]any)
			if !ok || index < 0 || index >= len(arr) {
				return nil, nil
			}
			current = arr[index]
		}
	}

	return current, nil
}

// ExtractString resolves a path and renders the value as a string.
// Returns nil for missing values.
func (e *Extractor) ExtractString(data any, path string) (*string, error) {
	value, err := e.Extract(data, path)
	if err != nil || value == nil {
		return nil, err
	}

	var s string
	switch v := value.(type) {
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(v)
	default:
		s = fmt.Sprintf("%v", v)
	}
	return &s, nil
}

// parseSegment splits "key[2]" into its key and optional array index.
func parseSegment(segment string) (key string, index int, hasIndex bool, err error) {
	open := strings.IndexByte(segment, '[')
	if open < 0 {
		return segment, 0, false, nil
	}
	if !strings.HasSuffix(segment, "]") {
		return "", 0, false, fmt.Errorf("malformed path segment: %q", segment)
	}

	key = segment[:open]
	index, err = strconv.Atoi(segment[open+1 : len(segment)-1])
	if err != nil {
		return "", 0, false, fmt.Errorf("malformed array index in segment: %q", segment)
	}
	return key, index, true, nil
}
