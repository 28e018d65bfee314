package llm

import (
	"context"
	"time"

	"study-byte/internal/domain"

	"go.uber.org/zap"
)

type loggingGateway struct {
	next     domain.ModelGateway
	provider string
	logger   *zap.Logger
}

func withLogging(next domain.ModelGateway, provider string, logger *zap.Logger) domain.ModelGateway {
	return &loggingGateway{next: next, provider: provider, logger: logger}
}

func (g *loggingGateway) Model() string { return g.next.Model() }

func (g *loggingGateway) Generate(ctx context.Context, messages []domain.Message, jsonMode bool) (string, error) {
	start := time.Now()
	out, err := g.next.Generate(ctx, messages, jsonMode)
	fields := []zap.Field{
		zap.String("provider", g.provider),
		zap.String("model", g.next.Model()),
		zap.Bool("json_mode", jsonMode),
		zap.Int("prompt_chars", promptChars(messages)),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		g.logger.Warn("Model request failed", append(fields, zap.Error(err))...)
		return "", err
	}
	g.logger.Debug("Model request completed", append(fields, zap.Int("response_chars", len(out)))...)
	return out, nil
}

func (g *loggingGateway) GenerateStream(ctx context.Context, messages []domain.Message) domain.ChunkStream {
	inner := g.next.GenerateStream(ctx, messages)
	return func(yield func(string, error) bool) {
		start := time.Now()
		chunks, chars := 0, 0
		fields := func() []zap.Field {
			return []zap.Field{
				zap.String("provider", g.provider),
				zap.String("model", g.next.Model()),
				zap.Int("chunks", chunks),
				zap.Int("response_chars", chars),
				zap.Duration("duration", time.Since(start)),
			}
		}

		for chunk, err := range inner {
			if err != nil {
				g.logger.Warn("Model stream failed", append(fields(), zap.Error(err))...)
				yield("", err)
				return
			}
			chunks++
			chars += len(chunk)
			if !yield(chunk, nil) {
				g.logger.Debug("Model stream stopped by consumer", fields()...)
				return
			}
		}
		g.logger.Debug("Model stream completed", fields()...)
	}
}

func promptChars(messages []domain.Message) int {
	n := 0
	for _, m := range messages {
		n += len(m.Content)
	}
	return n
}
