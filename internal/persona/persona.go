// Package persona defines the two conversational fronts the concierge can
// present: a sales qualifier and a support intake agent. A persona bundles
// its display identity, its system instruction, the key that identifies its
// structured payloads, and the schema of the record it submits downstream.
package persona

import (
	"fmt"
)

type Persona string

const (
	Sales   Persona = "sales"
	Support Persona = "support"
)

// All lists the personas the UI can offer.
func All() []Persona {
	return []Persona{Sales, Support}
}

// Parse maps a user-supplied name to a persona.
func Parse(name string) (Persona, error) {
	switch Persona(name) {
	case Sales:
		return Sales, nil
	case Support:
		return Support, nil
	default:
		return "", fmt.Errorf("unknown persona %q", name)
	}
}

func (p Persona) Valid() bool {
	return p == Sales || p == Support
}

// DisplayName is the name the persona introduces itself with.
func (p Persona) DisplayName() string {
	switch p {
	case Sales:
		return "Rhys"
	case Support:
		return "Pete"
	default:
		return string(p)
	}
}

// Placeholder is the input hint shown to the user before the first message.
func (p Persona) Placeholder() string {
	switch p {
	case Sales:
		return "Ask about our printers, materials, or pricing"
	case Support:
		return "Describe the problem with your printer"
	default:
		return "Type a message"
	}
}

// DiscriminatorKey is the payload field whose presence marks a payload as
// actionable for this persona.
func (p Persona) DiscriminatorKey() string {
	switch p {
	case Sales:
		return "is_qualified"
	case Support:
		return "printer_serial"
	default:
		return ""
	}
}

// RecordSchema is the JSON schema of the record this persona submits to its
// webhook. Used for advisory validation before delivery.
func (p Persona) RecordSchema() map[string]interface{} {
	switch p {
	case Sales:
		return map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"email":                     map[string]interface{}{"type": "string"},
				"customer_initial_question": map[string]interface{}{"type": "string"},
				"overview":                  map[string]interface{}{"type": "string"},
				"budget":                    map[string]interface{}{"type": "integer"},
				"estimated_purchase_date":   map[string]interface{}{"type": "string"},
				"is_qualified": map[string]interface{}{
					"type": "string",
					"enum": []interface{}{"Yes", "No"},
				},
			},
			"required": []interface{}{"email", "is_qualified"},
		}
	case Support:
		return map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"email":          map[string]interface{}{"type": "string"},
				"customer_issue": map[string]interface{}{"type": "string"},
				"printer_serial": map[string]interface{}{"type": "string"},
				"job_name":       map[string]interface{}{"type": "string"},
			},
			"required": []interface{}{"email", "printer_serial", "job_name"},
		}
	default:
		return map[string]interface{}{"type": "object"}
	}
}
