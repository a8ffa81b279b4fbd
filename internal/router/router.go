// Package router maps an extracted payload to the downstream action it
// implies. Decide is pure: it inspects the payload and names the effect, and
// the pipeline carries the effect out.
package router

import (
	"chat-concierge/internal/extractor"
	"chat-concierge/internal/persona"
)

type ActionKind string

const (
	// ActionNone means the payload carried nothing actionable for the persona.
	ActionNone ActionKind = "none"
	// ActionSubmitOpportunity posts the sales record to the CRM webhook.
	ActionSubmitOpportunity ActionKind = "submit_opportunity"
	// ActionSubmitCase posts the support record to the case webhook.
	ActionSubmitCase ActionKind = "submit_case"
	// ActionLookupJobs queries recent print jobs for a printer serial.
	ActionLookupJobs ActionKind = "lookup_jobs"
)

// Messages surfaced to the user alongside an action's effect.
const (
	MsgQualified    = "Ok we have everything we need. A sales rep will get back to you"
	MsgVisitStore   = "Thank you for your inquiry. Please visit our website for any future purchases"
	MsgUploadLogs   = "It does not appear that we have logs for your printer. Can you please upload them?"
	MsgPrintsPrefix = "Are these any of your prints?\n\n"
)

// Action is the routing verdict for one payload.
type Action struct {
	Kind    ActionKind
	Message string
	Record  extractor.Payload
	Serial  string
}

// Decide applies the persona's decision table to the payload.
//
// Sales payloads act when the qualification verdict is present. Support
// payloads act on a job name when one is given; a bare printer serial is the
// probe form and triggers a job lookup instead.
func Decide(p persona.Persona, payload extractor.Payload) Action {
	if payload == nil {
		return Action{Kind: ActionNone}
	}

	switch p {
	case persona.Sales:
		if !payload.Has("is_qualified") {
			return Action{Kind: ActionNone}
		}
		msg := MsgVisitStore
		if verdict, _ := payload.String("is_qualified"); verdict == "Yes" {
			msg = MsgQualified
		}
		return Action{Kind: ActionSubmitOpportunity, Message: msg, Record: payload}

	case persona.Support:
		if _, ok := payload.String("job_name"); ok {
			return Action{Kind: ActionSubmitCase, Record: payload}
		}
		if serial, ok := payload.String("printer_serial"); ok {
			return Action{Kind: ActionLookupJobs, Serial: serial}
		}
		return Action{Kind: ActionNone}

	default:
		return Action{Kind: ActionNone}
	}
}
