package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/revisehub/revisehub/config"
	"github.com/rs/zerolog/log"
)

// MaxFileSize caps a single uploaded file at 10MB.
const MaxFileSize = 10 << 20

const extractionPrompt = "Extract all text content from this image. Return only the extracted text, with no commentary. If the image contains diagrams or figures, describe them briefly in square brackets."

var supportedMIMETypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

// Result is the outcome for one uploaded file.
type Result struct {
	Filename string
	Text     string
	Err      error
}

// Extractor pulls text out of uploaded study-material images via the OpenAI
// vision endpoint.
type Extractor interface {
	// ExtractAll processes every file; one file failing never fails the batch.
	ExtractAll(ctx context.Context, files []*multipart.FileHeader) []Result
}

type openAIExtractor struct {
	client *openai.Client
	model  string
}

func New(cfg *config.Config) Extractor {
	if cfg.Provider.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set. Text extraction from uploads will be non-functional.")
		return &openAIExtractor{client: nil}
	}
	return &openAIExtractor{
		client: openai.NewClient(cfg.Provider.OpenAIAPIKey),
		model:  openai.GPT4o,
	}
}

func (e *openAIExtractor) ExtractAll(ctx context.Context, files []*multipart.FileHeader) []Result {
	results := make([]Result, 0, len(files))
	for _, fh := range files {
		text, err := e.extractOne(ctx, fh)
		if err != nil {
			log.Warn().Err(err).Str("filename", fh.Filename).Msg("Text extraction failed for uploaded file")
		}
		results = append(results, Result{Filename: fh.Filename, Text: text, Err: err})
	}
	return results
}

func (e *openAIExtractor) extractOne(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if e.client == nil {
		return "", fmt.Errorf("extraction unavailable: no API key configured")
	}
	if fh.Size > MaxFileSize {
		return "", fmt.Errorf("file %s exceeds the %d byte limit", fh.Filename, MaxFileSize)
	}

	mimeType, err := sniffMIMEType(fh)
	if err != nil {
		return "", err
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	if len(data) > MaxFileSize {
		return "", fmt.Errorf("file %s exceeds the %d byte limit", fh.Filename, MaxFileSize)
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: extractionPrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision extraction for %s: %w", fh.Filename, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision extraction for %s returned no choices", fh.Filename)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// sniffMIMEType resolves the file's mime type from the declared content type
// first, the filename extension second.
func sniffMIMEType(fh *multipart.FileHeader) (string, error) {
	var mimeType string
	if contentType := fh.Header.Get("Content-Type"); contentType != "" {
		if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
			mimeType = parsed
		}
	}
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		mimeType = mime.TypeByExtension(ext)
	}
	if !supportedMIMETypes[mimeType] {
		return "", fmt.Errorf("unsupported file type %q for %s", mimeType, fh.Filename)
	}
	return mimeType, nil
}

// JoinMaterial combines the description with every successfully extracted
// text into the revision's material blob.
func JoinMaterial(description string, results []Result) string {
	parts := []string{}
	if d := strings.TrimSpace(description); d != "" {
		parts = append(parts, d)
	}
	for _, r := range results {
		if r.Err == nil && strings.TrimSpace(r.Text) != "" {
			parts = append(parts, strings.TrimSpace(r.Text))
		}
	}
	return strings.Join(parts, "\n\n")
}
