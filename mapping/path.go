package mapping

import (
	"strings"
)

// Payload is the decoded webhook body. It is never mutated after decoding;
// every lookup walks the raw object graph.
type Payload map[string]any

// Resolve extracts a value by dotted path (e.g. "call.agreements.client_name").
// It returns nil for an empty path, for the reserved "static"/"multiple"
// sentinels, and the moment any intermediate key is missing, nil or not an
// object. Absence is always representable as nil; Resolve never panics.
func (p Payload) Resolve(path string) any {
	if path == "" || path == SourceStatic || path == SourceMultiple {
		return nil
	}

	var current any = map[string]any(p)
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		value, ok := obj[key]
		if !ok || value == nil {
			return nil
		}
		current = value
	}
	return current
}

// String resolves the path and returns the trimmed string value,
// or "" when the value is absent or not a string.
func (p Payload) String(path string) string {
	if s, ok := p.Resolve(path).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// Bool resolves the path and returns the boolean value, false when absent.
func (p Payload) Bool(path string) bool {
	b, _ := p.Resolve(path).(bool)
	return b
}

// Float resolves the path and returns the numeric value. JSON numbers decode
// as float64; anything else reports ok=false.
func (p Payload) Float(path string) (float64, bool) {
	f, ok := p.Resolve(path).(float64)
	return f, ok
}
