package session

import (
	"context"
	"fmt"
	"testing"

	"chat-concierge/internal/common/errors"
	"chat-concierge/internal/common/logger"
	"chat-concierge/internal/genai"
	"chat-concierge/internal/persona"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChat struct {
	reply string
}

func (c *stubChat) Send(ctx context.Context, text string) (string, error) {
	return c.reply, nil
}

func (c *stubChat) Typing() bool { return false }

type stubFactory struct {
	calls        int
	err          error
	lastAPIKey   string
	lastTools    []genai.Tool
	lastInstruct string
}

func (f *stubFactory) CreateChat(ctx context.Context, apiKey, instruction string, tools []genai.Tool) (Chat, error) {
	f.calls++
	f.lastAPIKey = apiKey
	f.lastInstruct = instruction
	f.lastTools = tools
	if f.err != nil {
		return nil, f.err
	}
	return &stubChat{reply: fmt.Sprintf("session %d", f.calls)}, nil
}

func searchConfig() ProviderConfig {
	return ProviderConfig{
		Mode:        ModeSearch,
		Credentials: Credentials{APIKey: "test-key"},
	}
}

func retrievalConfig() ProviderConfig {
	return ProviderConfig{
		Mode: ModeRetrieval,
		Credentials: Credentials{
			ProjectID: "proj-1",
			Location:  "us-central1",
			CorpusID:  "corpus-9",
		},
	}
}

func TestGetOrCreateLazyAndReused(t *testing.T) {
	factory := &stubFactory{}
	mgr := NewManager(factory, logger.NewTestLogger(t))

	assert.False(t, mgr.Active())
	assert.Equal(t, 0, factory.calls)

	first, err := mgr.GetOrCreate(context.Background(), persona.Sales, searchConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, factory.calls)
	assert.Equal(t, "test-key", factory.lastAPIKey)
	assert.True(t, mgr.Active())

	second, err := mgr.GetOrCreate(context.Background(), persona.Sales, searchConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, factory.calls)
	assert.Same(t, first.(*stubChat), second.(*stubChat))
}

func TestGetOrCreateRebuildsOnDrift(t *testing.T) {
	tests := []struct {
		name   string
		first  persona.Persona
		second persona.Persona
		mutate func(*ProviderConfig)
	}{
		{
			name:   "persona change",
			first:  persona.Sales,
			second: persona.Support,
		},
		{
			name:   "api key change",
			first:  persona.Sales,
			second: persona.Sales,
			mutate: func(c *ProviderConfig) { c.Credentials.APIKey = "rotated" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := &stubFactory{}
			mgr := NewManager(factory, logger.NewTestLogger(t))

			cfg := searchConfig()
			_, err := mgr.GetOrCreate(context.Background(), tt.first, cfg)
			require.NoError(t, err)

			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			_, err = mgr.GetOrCreate(context.Background(), tt.second, cfg)
			require.NoError(t, err)
			assert.Equal(t, 2, factory.calls)
		})
	}
}

func TestGetOrCreateRebuildsOnModeChange(t *testing.T) {
	factory := &stubFactory{}
	mgr := NewManager(factory, logger.NewTestLogger(t))

	_, err := mgr.GetOrCreate(context.Background(), persona.Sales, searchConfig())
	require.NoError(t, err)
	require.Len(t, factory.lastTools, 1)
	assert.Equal(t, genai.ToolKindGoogleSearch, factory.lastTools[0].Kind)

	_, err = mgr.GetOrCreate(context.Background(), persona.Sales, retrievalConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, factory.calls)
	require.Len(t, factory.lastTools, 1)
	assert.Equal(t, genai.ToolKindRetrieval, factory.lastTools[0].Kind)
	assert.Equal(t, "projects/proj-1/locations/us-central1/ragCorpora/corpus-9", factory.lastTools[0].RagCorpus)
}

func TestGetOrCreateValidatesBeforeHandshake(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProviderConfig
		details string
	}{
		{
			name:    "search mode without api key",
			cfg:     ProviderConfig{Mode: ModeSearch},
			details: "api key",
		},
		{
			name: "retrieval mode missing corpus",
			cfg: ProviderConfig{
				Mode:        ModeRetrieval,
				Credentials: Credentials{ProjectID: "p", Location: "l"},
			},
			details: "corpus id",
		},
		{
			name:    "retrieval mode missing everything",
			cfg:     ProviderConfig{Mode: ModeRetrieval},
			details: "project id, location, corpus id",
		},
		{
			name: "unknown mode",
			cfg:  ProviderConfig{Mode: "hybrid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := &stubFactory{}
			mgr := NewManager(factory, logger.NewTestLogger(t))

			_, err := mgr.GetOrCreate(context.Background(), persona.Sales, tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.IsConfiguration(err))
			assert.Equal(t, string(errors.ErrCodeConfigurationMissing), errors.Code(err))
			assert.Equal(t, 0, factory.calls)
			assert.False(t, mgr.Active())

			var stdErr *errors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Contains(t, stdErr.Details, tt.details)
		})
	}
}

func TestGetOrCreateHandshakeFailure(t *testing.T) {
	factory := &stubFactory{err: fmt.Errorf("upstream said no")}
	mgr := NewManager(factory, logger.NewTestLogger(t))

	_, err := mgr.GetOrCreate(context.Background(), persona.Support, searchConfig())
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeSessionHandshakeFailed), errors.Code(err))
	assert.False(t, mgr.Active())

	// Next turn retries the handshake instead of reusing a broken session.
	factory.err = nil
	_, err = mgr.GetOrCreate(context.Background(), persona.Support, searchConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, factory.calls)
	assert.True(t, mgr.Active())
}

func TestInvalidate(t *testing.T) {
	factory := &stubFactory{}
	mgr := NewManager(factory, logger.NewTestLogger(t))

	_, err := mgr.GetOrCreate(context.Background(), persona.Sales, searchConfig())
	require.NoError(t, err)
	mgr.Invalidate()
	assert.False(t, mgr.Active())

	_, err = mgr.GetOrCreate(context.Background(), persona.Sales, searchConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, factory.calls)
}

func TestInstructionPassedToFactory(t *testing.T) {
	factory := &stubFactory{}
	mgr := NewManager(factory, logger.NewTestLogger(t))

	_, err := mgr.GetOrCreate(context.Background(), persona.Support, searchConfig())
	require.NoError(t, err)
	assert.Contains(t, factory.lastInstruct, "Pete")
}
