package llm

import (
	"context"
	"errors"
	"io"

	"study-byte/internal/config"
	"study-byte/internal/domain"

	"github.com/sashabaranov/go-openai"
)

// OpenAIGateway uses go-openai chat completions.
type OpenAIGateway struct {
	client *openai.Client
	model  string
}

func NewOpenAIGateway(cfg config.LLMConfig) (*OpenAIGateway, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = newHTTPClient(cfg)

	return &OpenAIGateway{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

func (g *OpenAIGateway) Model() string { return g.model }

func (g *OpenAIGateway) request(messages []domain.Message) openai.ChatCompletionRequest {
	chat := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == domain.RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		chat = append(chat, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    chat,
		Temperature: temperature,
	}
}

func (g *OpenAIGateway) Generate(ctx context.Context, messages []domain.Message, jsonMode bool) (string, error) {
	req := g.request(messages)
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", domain.NewGenerationFailedError(config.ProviderOpenAI, err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewGenerationFailedError(config.ProviderOpenAI, errEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGateway) GenerateStream(ctx context.Context, messages []domain.Message) domain.ChunkStream {
	req := g.request(messages)
	return newChunkStream(ctx, config.ProviderOpenAI, func(ctx context.Context, emit func(string) bool) error {
		stream, err := g.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			return err
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			for _, choice := range resp.Choices {
				if !emit(choice.Delta.Content) {
					return nil
				}
			}
		}
	})
}

var _ domain.ModelGateway = (*OpenAIGateway)(nil)
