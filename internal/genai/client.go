// Package genai is the boundary to the hosted generation service. The service
// is treated as an opaque capability: create a chat bound to an instruction
// and a tool set, send text, receive text. Request/response bodies are plain
// JSON; conversation history is held server-side and mirrored locally.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chat-concierge/internal/common/config"
	"chat-concierge/internal/common/logger"
)

const (
	ToolKindGoogleSearch = "google_search"
	ToolKindRetrieval    = "retrieval"
)

// Tool selects a generation capability for a chat session.
type Tool struct {
	Kind      string `json:"kind"`
	RagCorpus string `json:"rag_corpus,omitempty"`
}

// GoogleSearchTool augments generation with live web search.
func GoogleSearchTool() Tool {
	return Tool{Kind: ToolKindGoogleSearch}
}

// RetrievalTool augments generation with a retrieval corpus. The corpus name
// is the fully qualified resource path, e.g.
// projects/{project}/locations/{location}/ragCorpora/{corpus}.
func RetrievalTool(corpusName string) Tool {
	return Tool{Kind: ToolKindRetrieval, RagCorpus: corpusName}
}

type Client struct {
	baseURL          string
	apiKey           string
	model            string
	handshakeTimeout time.Duration
	client           *http.Client
	logger           logger.Logger
}

func NewClient(cfg config.ProviderConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:          cfg.BaseURL,
		apiKey:           cfg.APIKey,
		model:            cfg.Model,
		handshakeTimeout: config.GetDuration(cfg.Timeout),
		// No client timeout: turns are unbounded-wait, callers cancel via ctx.
		client: &http.Client{},
		logger: log.With(map[string]interface{}{"component": "genai"}),
	}
}

// WithAPIKey returns a copy of the client bound to a different credential,
// used when the UI collaborator supplies a key that differs from the startup
// default.
func (c *Client) WithAPIKey(apiKey string) *Client {
	clone := *c
	clone.apiKey = apiKey
	return &clone
}

// CreateChat performs the session-construction handshake: the instruction and
// tool set are registered with the service once and are immutable for the
// lifetime of the returned session. Unlike Send, the handshake is bounded by
// the configured timeout so a dead provider fails fast.
func (c *Client) CreateChat(ctx context.Context, instruction string, tools []Tool) (*ChatSession, error) {
	if c.handshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.handshakeTimeout)
		defer cancel()
	}

	reqBody := map[string]interface{}{
		"model":              c.model,
		"system_instruction": instruction,
		"tools":              tools,
	}

	body, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chats", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("build handshake request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat handshake: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chat handshake: status %d: %s", resp.StatusCode, string(snippet))
	}

	var handshake struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&handshake); err != nil {
		return nil, fmt.Errorf("chat handshake: decode: %w", err)
	}
	if handshake.SessionID == "" {
		return nil, fmt.Errorf("chat handshake: empty session id")
	}

	c.logger.Info("chat session created", map[string]interface{}{
		"sessionId": handshake.SessionID,
		"toolCount": len(tools),
	})

	return &ChatSession{
		client: c,
		id:     handshake.SessionID,
	}, nil
}
