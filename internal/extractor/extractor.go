// Package extractor pulls machine-readable payloads out of assistant prose.
// The contract with the model is a fenced json code block containing a single
// object; everything else in the reply is display text.
package extractor

import (
	"encoding/json"
	"regexp"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// Payload is one decoded structured object from an assistant reply.
type Payload map[string]interface{}

// Has reports whether the key is present, regardless of value.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the value at key if it is a non-empty string.
func (p Payload) String(key string) (string, bool) {
	s, ok := p[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Extract scans reply text for fenced json blocks and returns the first one
// that parses as an object. Blocks that fail to parse are skipped silently;
// a reply with no parsable block is a normal conversational turn, not an
// error.
func Extract(text string) (Payload, bool) {
	matches := fencedJSON.FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		var payload Payload
		if err := json.Unmarshal([]byte(m[1]), &payload); err != nil {
			continue
		}
		return payload, true
	}
	return nil, false
}
