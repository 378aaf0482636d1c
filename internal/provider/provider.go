package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/revisehub/revisehub/config"
	"github.com/revisehub/revisehub/internal/apperr"
	"github.com/rs/zerolog/log"
)

// Provider is the external generative-text service used for both question
// generation and answer marking.
type Provider interface {
	// Complete sends one prompt and returns the raw text reply.
	Complete(ctx context.Context, prompt, systemMessage string) (string, error)
}

// callTimeout bounds a single provider call so a caller is never left
// hanging; one retry follows a transient failure.
const callTimeout = 30 * time.Second

// New builds the provider selected by configuration.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.Provider.Name {
	case "gemini":
		return NewGemini(cfg)
	case "openai", "":
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}

// CompleteWithRetry calls the provider with a bounded timeout and retries
// exactly once on a transient failure. A well-formed but unusable response is
// the caller's concern; only transport-level errors are retried here.
func CompleteWithRetry(ctx context.Context, p Provider, prompt, systemMessage string) (string, error) {
	attempt := func() (string, error) {
		cctx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()
		return p.Complete(cctx, prompt, systemMessage)
	}

	text, err := attempt()
	if err == nil {
		return text, nil
	}
	if errors.Is(err, context.Canceled) {
		return "", err
	}

	log.Warn().Err(err).Msg("Provider call failed, retrying once")
	text, err = attempt()
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperr.ErrProvider, err)
	}
	return text, nil
}
