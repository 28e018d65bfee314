package llm

import (
	"context"

	"study-byte/internal/config"
	"study-byte/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangchainGateway talks to any OpenAI-compatible endpoint through langchaingo.
type LangchainGateway struct {
	llm   *openai.LLM
	model string
}

func NewLangchainGateway(cfg config.LLMConfig) (*LangchainGateway, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithHTTPClient(newHTTPClient(cfg)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, domain.NewError(domain.CodeConfiguration, "failed to create langchain OpenAI client", err)
	}
	return &LangchainGateway{llm: llm, model: cfg.Model}, nil
}

func (g *LangchainGateway) Model() string { return g.model }

func (g *LangchainGateway) Generate(ctx context.Context, messages []domain.Message, jsonMode bool) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(temperature)}
	if jsonMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := g.llm.GenerateContent(ctx, toMessageContent(messages), opts...)
	if err != nil {
		return "", domain.NewGenerationFailedError(config.ProviderLangchain, err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewGenerationFailedError(config.ProviderLangchain, errEmptyResponse)
	}
	return resp.Choices[0].Content, nil
}

// GenerateStream bridges langchaingo's streaming callback to a pull sequence.
// The call runs on its own goroutine and blocks on each chunk until the
// consumer takes it or the stream is cancelled.
func (g *LangchainGateway) GenerateStream(ctx context.Context, messages []domain.Message) domain.ChunkStream {
	content := toMessageContent(messages)
	return newChunkStream(ctx, config.ProviderLangchain, func(ctx context.Context, emit func(string) bool) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		chunks := make(chan string)
		errc := make(chan error, 1)
		go func() {
			defer close(chunks)
			_, err := g.llm.GenerateContent(ctx, content,
				llms.WithTemperature(temperature),
				llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
					select {
					case chunks <- string(chunk):
						return nil
					case <-ctx.Done():
						// An error here stops langchaingo reading its response channel
						// and strands its scanner goroutine; nil lets it drain.
						return nil
					}
				}))
			errc <- err
		}()

		for chunk := range chunks {
			if !emit(chunk) {
				cancel()
				for range chunks {
				}
				return nil
			}
		}
		return <-errc
	})
}

func toMessageContent(messages []domain.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		role := llms.ChatMessageTypeHuman
		if m.Role == domain.RoleSystem {
			role = llms.ChatMessageTypeSystem
		}
		out = append(out, llms.TextParts(role, m.Content))
	}
	return out
}

var _ domain.ModelGateway = (*LangchainGateway)(nil)
