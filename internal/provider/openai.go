package provider

import (
	"context"
	"fmt"

	"github.com/revisehub/revisehub/config"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider completes prompts through the OpenAI chat completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAI(cfg *config.Config) *OpenAIProvider {
	if cfg.Provider.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set. OpenAI provider will be non-functional.")
		return &OpenAIProvider{client: nil, model: cfg.Provider.OpenAIModel}
	}
	return &OpenAIProvider{
		client: openai.NewClient(cfg.Provider.OpenAIAPIKey),
		model:  cfg.Provider.OpenAIModel,
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt, systemMessage string) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("openai client not initialized")
	}

	messages := []openai.ChatCompletionMessage{}
	if systemMessage != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemMessage,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
