// Package fingerprint derives stable identifiers and integrity hashes for
// extracted records.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// SupporterKey derives a stable synthetic natural key from a supporter name.
// The source data carries no id for supporters, so the trimmed name is the
// identity. Truncated hex keeps the key readable in junction tables.
func SupporterKey(name string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(name)))
	return hex.EncodeToString(hash[:])[:16]
}

// RecordHash computes a deterministic SHA256 over the canonicalized record,
// used by the lineage table for integrity verification.
func RecordHash(record map[string]any) string {
	canonical := canonicalize(record)
	hash := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(hash[:])
}

// canonicalize creates a deterministic string representation of a value
// by sorting map keys and recursively processing nested structures
func canonicalize(data any) string {
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sb strings.Builder
		sb.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(",")
			}
			keyJSON, _ := json.Marshal(k)
			sb.Write(keyJSON)
			sb.WriteString(":")
			sb.WriteString(canonicalize(v[k]))
		}
		sb.WriteString("}")
		return sb.String()
	case []any:
		var sb strings.Builder
		sb.WriteString("[")
		for i, item := range v {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(canonicalize(item))
		}
		sb.WriteString("]")
		return sb.String()
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}
