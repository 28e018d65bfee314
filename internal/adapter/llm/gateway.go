// Package llm implements domain.ModelGateway against hosted language models.
//
// Three backends share the same behavior: a blocking call that can request
// strict JSON output, and a lazy single-use stream of text fragments.
//
//   - langchain (default): langchaingo's OpenAI-compatible client
//   - openai: go-openai chat completions
//   - gemini: the Google Gen AI SDK
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"study-byte/internal/config"
	"study-byte/internal/domain"

	"go.uber.org/zap"
)

// temperature is used for every request
const temperature = 0.7

var errEmptyResponse = errors.New("model returned no choices")

// New builds the gateway selected by cfg.Provider. Configuration problems are
// reported as CONFIGURATION_ERROR before any network activity.
func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (domain.ModelGateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		gw  domain.ModelGateway
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", config.ProviderLangchain:
		gw, err = NewLangchainGateway(cfg)
	case config.ProviderOpenAI:
		gw, err = NewOpenAIGateway(cfg)
	case config.ProviderGemini:
		gw, err = NewGeminiGateway(ctx, cfg)
	default:
		return nil, domain.NewConfigurationError("unknown LLM provider: " + cfg.Provider).
			WithContext("provider", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Model gateway initialized",
		zap.String("provider", providerName(cfg.Provider)),
		zap.String("model", gw.Model()),
		zap.String("base_url", cfg.BaseURL))
	return withLogging(gw, providerName(cfg.Provider), logger), nil
}

func providerName(p string) string {
	if p == "" {
		return config.ProviderLangchain
	}
	return strings.ToLower(p)
}

func validateConfig(cfg config.LLMConfig) error {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return domain.NewConfigurationError("LLM API key is not configured (set llm.api_key, LLM_API_KEY or OPENAI_API_KEY)")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return domain.NewConfigurationError("LLM model is not configured")
	}
	return nil
}

func newHTTPClient(cfg config.LLMConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

func splitSystem(messages []domain.Message) (system string, rest []domain.Message) {
	var parts []string
	for _, m := range messages {
		if m.Role == domain.RoleSystem {
			parts = append(parts, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(parts, "\n\n"), rest
}
