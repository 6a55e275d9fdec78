// Package fingerprint produces deterministic content hashes for source
// records so re-ingested unchanged records are recognized and skipped.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Generate hashes a record's canonical form. Key order never affects the
// result.
func Generate(data map[string]any) string {
	canonical := canonicalize(data)
	hash := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(hash[:])
}

// GenerateFromJSON hashes raw JSON after canonicalization.
func GenerateFromJSON(data json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return "", err
	}
	return Generate(m), nil
}

// HasChanged compares two fingerprints.
func HasChanged(oldFingerprint, newFingerprint string) bool {
	return oldFingerprint != newFingerprint
}

func canonicalize(data any) string {
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		result := "{"
		for i, k := range keys {
			if i > 0 {
				result += ","
			}
			keyJSON, _ := json.Marshal(k)
			result += string(keyJSON) + ":" + canonicalize(v[k])
		}
		return result + "}"
	case []any:
		result := "["
		for i, item := range v {
			if i > 0 {
				result += ","
			}
			result += canonicalize(item)
		}
		return result + "]"
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}
