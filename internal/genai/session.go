package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"chat-concierge/internal/common/errors"
)

// Turn is one entry in the local mirror of the conversation history. The
// service owns the authoritative history; the mirror exists for display and
// diagnostics only.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatSession is a live conversation bound to an instruction and tool set
// fixed at creation. Sessions are not safe for concurrent Send calls; the
// conversational surface is strictly one turn at a time.
type ChatSession struct {
	client *Client
	id     string

	mu      sync.RWMutex
	history []Turn
	typing  bool
}

// ID returns the service-assigned session identifier.
func (s *ChatSession) ID() string {
	return s.id
}

// Typing reports whether a Send is in flight. Advisory only, for UI
// affordances such as a spinner.
func (s *ChatSession) Typing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typing
}

// History returns a copy of the local turn mirror.
func (s *ChatSession) History() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Send delivers one user message and blocks until the full reply text is
// available. There is no internal timeout; cancellation is the caller's ctx.
// Failures are provider errors and leave the history mirror untouched.
func (s *ChatSession) Send(ctx context.Context, text string) (string, error) {
	s.setTyping(true)
	defer s.setTyping(false)

	reqBody := map[string]interface{}{
		"content": text,
	}
	body, _ := json.Marshal(reqBody)

	url := fmt.Sprintf("%s/v1/chats/%s/messages", s.client.baseURL, s.id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", errors.NewProviderError(fmt.Errorf("build message request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if s.client.apiKey != "" {
		req.Header.Set("x-api-key", s.client.apiKey)
	}

	resp, err := s.client.client.Do(req)
	if err != nil {
		return "", errors.NewProviderError(fmt.Errorf("send message: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.NewProviderError(fmt.Errorf("send message: status %d: %s", resp.StatusCode, string(snippet)))
	}

	var reply struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", errors.NewProviderError(fmt.Errorf("decode reply: %w", err))
	}

	now := time.Now().UTC()
	s.mu.Lock()
	s.history = append(s.history,
		Turn{Role: RoleUser, Content: text, Timestamp: now},
		Turn{Role: RoleAssistant, Content: reply.Text, Timestamp: time.Now().UTC()},
	)
	s.mu.Unlock()

	return reply.Text, nil
}

func (s *ChatSession) setTyping(v bool) {
	s.mu.Lock()
	s.typing = v
	s.mu.Unlock()
}
