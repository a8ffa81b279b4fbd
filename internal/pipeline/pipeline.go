// Package pipeline runs one conversational turn end to end: resolve the
// session, relay the user text, mine the reply for a structured payload, and
// carry out whatever effect the payload implies.
package pipeline

import (
	"context"
	"time"

	"chat-concierge/internal/common/errors"
	"chat-concierge/internal/common/logger"
	"chat-concierge/internal/common/metrics"
	"chat-concierge/internal/common/validation"
	"chat-concierge/internal/connectors"
	"chat-concierge/internal/extractor"
	"chat-concierge/internal/persona"
	"chat-concierge/internal/router"
	"chat-concierge/internal/session"
)

type Dependencies struct {
	Manager           *session.Manager
	Webhooks          *connectors.WebhookSubmitter
	PrintLogs         *connectors.PrintLogStore
	SalesWebhookURL   string
	SupportWebhookURL string
	Logger            logger.Logger
}

type Pipeline struct {
	manager    *session.Manager
	webhooks   *connectors.WebhookSubmitter
	printLogs  *connectors.PrintLogStore
	salesURL   string
	supportURL string
	logger     logger.Logger
}

func New(deps Dependencies) *Pipeline {
	return &Pipeline{
		manager:    deps.Manager,
		webhooks:   deps.Webhooks,
		printLogs:  deps.PrintLogs,
		salesURL:   deps.SalesWebhookURL,
		supportURL: deps.SupportWebhookURL,
		logger:     deps.Logger.With(map[string]interface{}{"component": "pipeline"}),
	}
}

// TurnResult is everything the UI layer needs to render one completed turn.
// OutcomeMessage is empty when the turn was purely conversational.
type TurnResult struct {
	AssistantText  string
	OutcomeMessage string
	Payload        extractor.Payload
	Jobs           []connectors.PrintJob
}

// HandleTurn processes one user message. Configuration and provider failures
// abort the turn; downstream failures are logged and the turn still
// completes with the assistant text intact.
func (p *Pipeline) HandleTurn(ctx context.Context, pers persona.Persona, cfg session.ProviderConfig, userText string) (*TurnResult, error) {
	start := time.Now()

	chat, err := p.manager.GetOrCreate(ctx, pers, cfg)
	if err != nil {
		metrics.TurnsFailed.WithLabelValues(string(pers), errors.Code(err)).Inc()
		return nil, err
	}

	reply, err := chat.Send(ctx, userText)
	if err != nil {
		metrics.TurnsFailed.WithLabelValues(string(pers), errors.Code(err)).Inc()
		return nil, err
	}

	result := &TurnResult{AssistantText: reply}

	payload, ok := extractor.Extract(reply)
	if ok {
		metrics.PayloadsExtracted.WithLabelValues(string(pers)).Inc()
		result.Payload = payload
		p.dispatch(ctx, pers, router.Decide(pers, payload), result)
	} else {
		p.logger.Debug("no structured payload in reply", map[string]interface{}{
			"persona": string(pers),
		})
	}

	metrics.TurnsCompleted.WithLabelValues(string(pers)).Inc()
	metrics.TurnDuration.WithLabelValues(string(pers)).Observe(time.Since(start).Seconds())
	p.logger.Info("turn completed", map[string]interface{}{
		"persona":    string(pers),
		"durationMs": time.Since(start).Milliseconds(),
		"hasPayload": ok,
	})
	return result, nil
}

func (p *Pipeline) dispatch(ctx context.Context, pers persona.Persona, action router.Action, result *TurnResult) {
	switch action.Kind {
	case router.ActionSubmitOpportunity:
		p.submit(ctx, pers, p.salesURL, action.Record)
		result.OutcomeMessage = action.Message

	case router.ActionSubmitCase:
		p.submit(ctx, pers, p.supportURL, action.Record)
		result.OutcomeMessage = action.Message

	case router.ActionLookupJobs:
		jobs, summary := p.printLogs.RecentJobs(ctx, action.Serial)
		result.Jobs = jobs
		switch summary {
		case connectors.SummaryNoJobs:
			result.OutcomeMessage = router.MsgUploadLogs
		case connectors.SummaryLookupError:
			result.OutcomeMessage = summary
		default:
			result.OutcomeMessage = router.MsgPrintsPrefix + summary
		}
	}
}

// submit validates and delivers a record. Validation is advisory and
// delivery failures are swallowed here: the record may be lost but the
// conversation is not.
func (p *Pipeline) submit(ctx context.Context, pers persona.Persona, endpoint string, record extractor.Payload) {
	if res, err := validation.Validate(record, pers.RecordSchema()); err != nil {
		p.logger.WithError(err).Warn("record validation errored", map[string]interface{}{
			"persona": string(pers),
		})
	} else if !res.Valid {
		p.logger.Warn("record failed schema validation", map[string]interface{}{
			"persona": string(pers),
			"errors":  res.GetErrorMessages(),
		})
	}

	if err := p.webhooks.Submit(ctx, endpoint, record); err != nil {
		p.logger.WithError(err).Warn("record delivery failed", map[string]interface{}{
			"persona":  string(pers),
			"endpoint": endpoint,
		})
	}
}
