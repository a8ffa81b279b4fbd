package router

import (
	"testing"

	"chat-concierge/internal/extractor"
	"chat-concierge/internal/persona"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		persona persona.Persona
		payload extractor.Payload
		want    Action
	}{
		{
			name:    "nil payload is inert",
			persona: persona.Sales,
			payload: nil,
			want:    Action{Kind: ActionNone},
		},
		{
			name:    "sales payload without verdict is inert",
			persona: persona.Sales,
			payload: extractor.Payload{"email": "a@b.com"},
			want:    Action{Kind: ActionNone},
		},
		{
			name:    "qualified lead submits with rep message",
			persona: persona.Sales,
			payload: extractor.Payload{"is_qualified": "Yes", "email": "a@b.com"},
			want: Action{
				Kind:    ActionSubmitOpportunity,
				Message: MsgQualified,
				Record:  extractor.Payload{"is_qualified": "Yes", "email": "a@b.com"},
			},
		},
		{
			name:    "unqualified lead submits with store message",
			persona: persona.Sales,
			payload: extractor.Payload{"is_qualified": "No"},
			want: Action{
				Kind:    ActionSubmitOpportunity,
				Message: MsgVisitStore,
				Record:  extractor.Payload{"is_qualified": "No"},
			},
		},
		{
			name:    "non-string verdict still submits, treated as unqualified",
			persona: persona.Sales,
			payload: extractor.Payload{"is_qualified": true},
			want: Action{
				Kind:    ActionSubmitOpportunity,
				Message: MsgVisitStore,
				Record:  extractor.Payload{"is_qualified": true},
			},
		},
		{
			name:    "support record with job name opens a case",
			persona: persona.Support,
			payload: extractor.Payload{"printer_serial": "CalmOtter", "job_name": "bracket.form", "email": "a@b.com"},
			want: Action{
				Kind:   ActionSubmitCase,
				Record: extractor.Payload{"printer_serial": "CalmOtter", "job_name": "bracket.form", "email": "a@b.com"},
			},
		},
		{
			name:    "bare serial probes the print log",
			persona: persona.Support,
			payload: extractor.Payload{"printer_serial": "Form4-CalmOtter"},
			want:    Action{Kind: ActionLookupJobs, Serial: "Form4-CalmOtter"},
		},
		{
			name:    "empty job name falls back to lookup",
			persona: persona.Support,
			payload: extractor.Payload{"printer_serial": "CalmOtter", "job_name": ""},
			want:    Action{Kind: ActionLookupJobs, Serial: "CalmOtter"},
		},
		{
			name:    "empty serial is inert",
			persona: persona.Support,
			payload: extractor.Payload{"printer_serial": ""},
			want:    Action{Kind: ActionNone},
		},
		{
			name:    "support payload without serial is inert",
			persona: persona.Support,
			payload: extractor.Payload{"email": "a@b.com"},
			want:    Action{Kind: ActionNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.persona, tt.payload)
			assert.Equal(t, tt.want, got)
		})
	}
}
