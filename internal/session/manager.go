package session

import (
	"context"
	"sync"

	"chat-concierge/internal/common/errors"
	"chat-concierge/internal/common/logger"
	"chat-concierge/internal/common/metrics"
	"chat-concierge/internal/genai"
	"chat-concierge/internal/persona"
)

// Chat is the slice of a live session the rest of the pipeline needs.
type Chat interface {
	Send(ctx context.Context, text string) (string, error)
	Typing() bool
}

// ChatFactory performs the session-construction handshake. The api key is the
// per-session credential; an empty key means use the factory's default.
type ChatFactory interface {
	CreateChat(ctx context.Context, apiKey, instruction string, tools []genai.Tool) (Chat, error)
}

// GenAIFactory adapts the genai client to the factory contract.
type GenAIFactory struct {
	Client *genai.Client
}

func (f GenAIFactory) CreateChat(ctx context.Context, apiKey, instruction string, tools []genai.Tool) (Chat, error) {
	client := f.Client
	if apiKey != "" {
		client = client.WithAPIKey(apiKey)
	}
	return client.CreateChat(ctx, instruction, tools)
}

// Manager holds at most one live session and replaces it whenever the
// requested persona or provider configuration drifts from the one the
// session was created with.
type Manager struct {
	factory ChatFactory
	logger  logger.Logger

	mu          sync.Mutex
	current     Chat
	fingerprint string
}

func NewManager(factory ChatFactory, log logger.Logger) *Manager {
	return &Manager{
		factory: factory,
		logger:  log.With(map[string]interface{}{"component": "session-manager"}),
	}
}

// GetOrCreate returns the current session when it still matches the request,
// otherwise discards it and performs a fresh handshake. No session is created
// until the first turn needs one. Validation failures and handshake failures
// leave the manager with no session.
func (m *Manager) GetOrCreate(ctx context.Context, p persona.Persona, cfg ProviderConfig) (Chat, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fp := fingerprint(p, cfg)
	if m.current != nil && m.fingerprint == fp {
		return m.current, nil
	}

	if m.current != nil {
		m.logger.Debug("configuration changed, discarding session", map[string]interface{}{
			"persona": string(p),
			"mode":    string(cfg.Mode),
		})
	}
	m.current = nil
	m.fingerprint = ""

	chat, err := m.factory.CreateChat(ctx, cfg.Credentials.APIKey, p.Instruction(), cfg.Tools())
	if err != nil {
		return nil, errors.NewSessionHandshakeError(err)
	}

	m.current = chat
	m.fingerprint = fp
	metrics.SessionsCreated.WithLabelValues(string(p), string(cfg.Mode)).Inc()
	m.logger.Info("chat session ready", map[string]interface{}{
		"persona": string(p),
		"mode":    string(cfg.Mode),
	})
	return chat, nil
}

// Invalidate drops the current session so the next turn starts fresh.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.fingerprint = ""
}

// Active reports whether a live session is held.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}
