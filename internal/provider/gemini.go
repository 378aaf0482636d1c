package provider

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/revisehub/revisehub/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// GeminiProvider completes prompts through the Gemini API.
type GeminiProvider struct {
	model *genai.GenerativeModel
}

func NewGemini(cfg *config.Config) (*GeminiProvider, error) {
	if cfg.Provider.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Gemini provider will be non-functional.")
		return &GeminiProvider{model: nil}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Provider.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &GeminiProvider{model: client.GenerativeModel("gemini-1.5-flash")}, nil
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt, systemMessage string) (string, error) {
	if p.model == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	full := prompt
	if systemMessage != "" {
		full = systemMessage + "\n\n" + prompt
	}

	resp, err := p.model.GenerateContent(ctx, genai.Text(full))
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}

	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text += string(txt)
		}
	}
	if text == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return text, nil
}
