package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"chat-concierge/internal/common/config"
	"chat-concierge/internal/common/errors"
	"chat-concierge/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	return NewClient(config.ProviderConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "gemini-2.5-pro",
	}, logger.NewTestLogger(t))
}

func TestCreateChatHandshake(t *testing.T) {
	var gotBody map[string]interface{}
	var gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/chats", r.URL.Path)
		gotAPIKey = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"session_id": "sess-1"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	chat, err := client.CreateChat(context.Background(), "You are Rhys.", []Tool{GoogleSearchTool()})
	require.NoError(t, err)

	assert.Equal(t, "sess-1", chat.ID())
	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "gemini-2.5-pro", gotBody["model"])
	assert.Equal(t, "You are Rhys.", gotBody["system_instruction"])

	tools, ok := gotBody["tools"].([]interface{})
	require.True(t, ok)
	require.Len(t, tools, 1)
}

func TestCreateChatRetrievalTool(t *testing.T) {
	var gotBody struct {
		Tools []Tool `json:"tools"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"session_id": "sess-2"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	corpus := "projects/p/locations/l/ragCorpora/c"
	_, err := client.CreateChat(context.Background(), "You are Pete.", []Tool{RetrievalTool(corpus)})
	require.NoError(t, err)

	require.Len(t, gotBody.Tools, 1)
	assert.Equal(t, ToolKindRetrieval, gotBody.Tools[0].Kind)
	assert.Equal(t, corpus, gotBody.Tools[0].RagCorpus)
}

func TestCreateChatRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.CreateChat(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestCreateChatEmptySessionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.CreateChat(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty session id")
}

func TestSendMirrorsHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/chats" {
			json.NewEncoder(w).Encode(map[string]string{"session_id": "sess-3"})
			return
		}
		require.Equal(t, "/v1/chats/sess-3/messages", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(map[string]string{
			"text": fmt.Sprintf("you said: %s", req["content"]),
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	chat, err := client.CreateChat(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Empty(t, chat.History())

	reply, err := chat.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "you said: hello", reply)
	assert.False(t, chat.Typing())

	history := chat.History()
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, RoleAssistant, history[1].Role)
	assert.Equal(t, "you said: hello", history[1].Content)
}

func TestSendProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/chats" {
			json.NewEncoder(w).Encode(map[string]string{"session_id": "sess-4"})
			return
		}
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	chat, err := client.CreateChat(context.Background(), "x", nil)
	require.NoError(t, err)

	_, err = chat.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, errors.IsProvider(err))
	assert.Equal(t, string(errors.ErrCodeProviderCallFailed), errors.Code(err))
	assert.Empty(t, chat.History())
	assert.False(t, chat.Typing())
}
