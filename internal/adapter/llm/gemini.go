package llm

import (
	"context"
	"strings"

	"study-byte/internal/config"
	"study-byte/internal/domain"

	"google.golang.org/genai"
)

const jsonMIMEType = "application/json"

// GeminiGateway uses the Google Gen AI SDK against the Gemini API.
type GeminiGateway struct {
	client *genai.Client
	model  string
}

func NewGeminiGateway(ctx context.Context, cfg config.LLMConfig) (*GeminiGateway, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(cfg),
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, domain.NewError(domain.CodeConfiguration, "failed to create Gemini client", err)
	}
	return &GeminiGateway{client: client, model: cfg.Model}, nil
}

func (g *GeminiGateway) Model() string { return g.model }

// request moves system messages into the system instruction; the rest become user turns.
func (g *GeminiGateway) request(messages []domain.Message, jsonMode bool) ([]*genai.Content, *genai.GenerateContentConfig) {
	system, rest := splitSystem(messages)

	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		contents = append(contents, &genai.Content{
			Role:  "user",
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](temperature),
	}
	if system != "" {
		genConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if jsonMode {
		genConfig.ResponseMIMEType = jsonMIMEType
	}
	return contents, genConfig
}

func (g *GeminiGateway) Generate(ctx context.Context, messages []domain.Message, jsonMode bool) (string, error) {
	contents, genConfig := g.request(messages, jsonMode)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, genConfig)
	if err != nil {
		return "", domain.NewGenerationFailedError(config.ProviderGemini, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", domain.NewGenerationFailedError(config.ProviderGemini, errEmptyResponse)
	}
	return responseText(resp), nil
}

func (g *GeminiGateway) GenerateStream(ctx context.Context, messages []domain.Message) domain.ChunkStream {
	contents, genConfig := g.request(messages, false)
	return newChunkStream(ctx, config.ProviderGemini, func(ctx context.Context, emit func(string) bool) error {
		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, genConfig) {
			if err != nil {
				return err
			}
			if !emit(responseText(resp)) {
				return nil
			}
		}
		return nil
	})
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

var _ domain.ModelGateway = (*GeminiGateway)(nil)
