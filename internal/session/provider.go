// Package session owns the lifecycle of the live chat session: lazy creation
// on the first turn, reuse while the configuration is stable, and silent
// replacement when the persona, mode, or credentials change.
package session

import (
	"fmt"
	"strings"

	"chat-concierge/internal/common/errors"
	"chat-concierge/internal/genai"
	"chat-concierge/internal/persona"
)

type ProviderMode string

const (
	// ModeSearch backs generation with live web search and needs an API key.
	ModeSearch ProviderMode = "search"
	// ModeRetrieval backs generation with a retrieval corpus and needs the
	// full corpus coordinates. The two modes are mutually exclusive.
	ModeRetrieval ProviderMode = "retrieval"
)

// Credentials are supplied by the UI layer per turn and may change between
// turns.
type Credentials struct {
	APIKey    string
	ProjectID string
	Location  string
	CorpusID  string
}

// ProviderConfig is the effective generation configuration for a turn.
type ProviderConfig struct {
	Mode        ProviderMode
	Credentials Credentials
}

// Validate checks that the credentials required by the selected mode are
// present. Failures are configuration errors: the turn must not reach the
// provider.
func (c ProviderConfig) Validate() error {
	switch c.Mode {
	case ModeSearch:
		if c.Credentials.APIKey == "" {
			return errors.NewConfigurationError("api key is required for search mode")
		}
	case ModeRetrieval:
		var missing []string
		if c.Credentials.ProjectID == "" {
			missing = append(missing, "project id")
		}
		if c.Credentials.Location == "" {
			missing = append(missing, "location")
		}
		if c.Credentials.CorpusID == "" {
			missing = append(missing, "corpus id")
		}
		if len(missing) > 0 {
			return errors.NewConfigurationError(fmt.Sprintf("retrieval mode requires %s", strings.Join(missing, ", ")))
		}
	default:
		return errors.NewConfigurationError(fmt.Sprintf("unknown provider mode %q", c.Mode))
	}
	return nil
}

// CorpusName renders the fully qualified retrieval corpus resource path.
func (c ProviderConfig) CorpusName() string {
	return fmt.Sprintf("projects/%s/locations/%s/ragCorpora/%s",
		c.Credentials.ProjectID, c.Credentials.Location, c.Credentials.CorpusID)
}

// Tools maps the mode to the tool set registered at session creation.
func (c ProviderConfig) Tools() []genai.Tool {
	if c.Mode == ModeRetrieval {
		return []genai.Tool{genai.RetrievalTool(c.CorpusName())}
	}
	return []genai.Tool{genai.GoogleSearchTool()}
}

// fingerprint identifies the session-relevant inputs. Any difference between
// two fingerprints means the current session no longer matches what the user
// asked for.
func fingerprint(p persona.Persona, c ProviderConfig) string {
	return strings.Join([]string{
		string(p),
		string(c.Mode),
		c.Credentials.APIKey,
		c.Credentials.ProjectID,
		c.Credentials.Location,
		c.Credentials.CorpusID,
	}, "\x1f")
}
