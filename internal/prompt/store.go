package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/revisehub/revisehub/config"
	"github.com/rs/zerolog/log"
)

// Store is the external prompt-template store the resolver consults before
// falling back to the built-in templates. Absence is not an error: ok=false
// with a nil error means the store has no template under that name.
type Store interface {
	Lookup(ctx context.Context, name, environment string) (text string, ok bool, err error)
}

// HTTPStore fetches templates from a Langfuse-style prompt management API.
type HTTPStore struct {
	baseURL   string
	publicKey string
	secretKey string
	client    *http.Client
}

func NewHTTPStore(cfg *config.Config) *HTTPStore {
	return &HTTPStore{
		baseURL:   cfg.PromptStore.URL,
		publicKey: cfg.PromptStore.PublicKey,
		secretKey: cfg.PromptStore.SecretKey,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *HTTPStore) Lookup(ctx context.Context, name, environment string) (string, bool, error) {
	if s.baseURL == "" {
		return "", false, nil
	}

	u := fmt.Sprintf("%s/api/public/v2/prompts/%s?label=%s",
		s.baseURL, url.PathEscape(name), url.QueryEscape(environment))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", false, err
	}
	req.SetBasicAuth(s.publicKey, s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("prompt store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("prompt store returned status %d for %q", resp.StatusCode, name)
	}

	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false, fmt.Errorf("prompt store returned malformed body for %q: %w", name, err)
	}
	if body.Prompt == "" {
		log.Warn().Str("name", name).Msg("Prompt store returned an empty template, treating as absent")
		return "", false, nil
	}
	return body.Prompt, true, nil
}

// StaticStore serves templates from a fixed map. Used in tests and for
// offline deployments that pin their prompts in configuration.
type StaticStore struct {
	Templates map[string]string
}

func (s *StaticStore) Lookup(_ context.Context, name, _ string) (string, bool, error) {
	text, ok := s.Templates[name]
	return text, ok, nil
}
