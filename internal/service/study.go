package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"study-byte/internal/config"
	"study-byte/internal/domain"
	"study-byte/internal/logger"
	"study-byte/internal/parser"
	"study-byte/internal/prompt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Bounds for every requested item count
const (
	MinItemCount = 1
	MaxItemCount = 50
)

// StudyPackOptions selects the parameters of each artifact in a study pack.
// Zero values fall back to the configured defaults.
type StudyPackOptions struct {
	SummaryLength     domain.SummaryLength
	FlashcardCount    int
	QuizQuestionCount int
}

// StudyService turns documents into study artifacts
type StudyService interface {
	Extract(ctx context.Context, r io.Reader, filename string) (string, error)
	Summarize(ctx context.Context, text string, length domain.SummaryLength) (*domain.Summary, error)
	SummarizeStream(ctx context.Context, text string) (domain.ChunkStream, error)
	GenerateFlashcards(ctx context.Context, text string, count int) ([]domain.Flashcard, error)
	GenerateQuiz(ctx context.Context, text string, count int) (*domain.Quiz, error)
	GenerateScenarioExam(ctx context.Context, text string, count int, difficulty domain.ScenarioDifficulty) (*domain.ScenarioExamResult, error)
	GenerateStudyPack(ctx context.Context, text string, opts StudyPackOptions) (*domain.StudyPack, error)
}

// studyService implements StudyService
type studyService struct {
	extractor domain.DocumentExtractor
	gateway   domain.ModelGateway
	defaults  config.DefaultsConfig
}

// NewStudyService creates a new instance of studyService
func NewStudyService(extractor domain.DocumentExtractor, gateway domain.ModelGateway, defaults config.DefaultsConfig) StudyService {
	return &studyService{
		extractor: extractor,
		gateway:   gateway,
		defaults:  defaults,
	}
}

// Extract implements StudyService
func (s *studyService) Extract(ctx context.Context, r io.Reader, filename string) (string, error) {
	text, err := s.extractor.Extract(ctx, r, filename)
	if err != nil {
		return "", err
	}
	logger.Get().Info("Document extracted",
		zap.String("filename", filename),
		zap.Int("characters", len(text)))
	return text, nil
}

// Summarize implements StudyService
func (s *studyService) Summarize(ctx context.Context, text string, length domain.SummaryLength) (*domain.Summary, error) {
	if err := requireText(text); err != nil {
		return nil, err
	}
	length, err := s.summaryLength(length)
	if err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, domain.ArtifactSummary, prompt.Summary(text, length))
	if err != nil {
		return nil, err
	}
	summary, err := parser.ParseSummary(raw, text)
	if err != nil {
		logMalformed(domain.ArtifactSummary, raw, err)
		return nil, err
	}
	return summary, nil
}

// SummarizeStream implements StudyService. Nothing is sent to the model until
// the returned stream is ranged over.
func (s *studyService) SummarizeStream(ctx context.Context, text string) (domain.ChunkStream, error) {
	if err := requireText(text); err != nil {
		return nil, err
	}
	logger.Get().Info("Starting summary stream",
		zap.String("model", s.gateway.Model()),
		zap.Int("text_chars", len(text)))
	return s.gateway.GenerateStream(ctx, prompt.SummaryStream(text)), nil
}

// GenerateFlashcards implements StudyService
func (s *studyService) GenerateFlashcards(ctx context.Context, text string, count int) ([]domain.Flashcard, error) {
	if err := requireText(text); err != nil {
		return nil, err
	}
	count, err := resolveCount("count", count, s.defaults.FlashcardCount)
	if err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, domain.ArtifactFlashcards, prompt.Flashcards(text, count))
	if err != nil {
		return nil, err
	}
	cards, err := parser.ParseFlashcards(raw)
	if err != nil {
		logMalformed(domain.ArtifactFlashcards, raw, err)
		return nil, err
	}
	if len(cards) != count {
		logger.Get().Warn("Model returned a different number of flashcards than requested",
			zap.Int("requested", count),
			zap.Int("received", len(cards)))
	}
	return cards, nil
}

// GenerateQuiz implements StudyService
func (s *studyService) GenerateQuiz(ctx context.Context, text string, count int) (*domain.Quiz, error) {
	if err := requireText(text); err != nil {
		return nil, err
	}
	count, err := resolveCount("count", count, s.defaults.QuizQuestionCount)
	if err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, domain.ArtifactQuiz, prompt.Quiz(text, count))
	if err != nil {
		return nil, err
	}
	quiz, err := parser.ParseQuiz(raw)
	if err != nil {
		logMalformed(domain.ArtifactQuiz, raw, err)
		return nil, err
	}
	checkDistribution(quiz, count)
	return quiz, nil
}

// GenerateScenarioExam implements StudyService
func (s *studyService) GenerateScenarioExam(ctx context.Context, text string, count int, difficulty domain.ScenarioDifficulty) (*domain.ScenarioExamResult, error) {
	if err := requireText(text); err != nil {
		return nil, err
	}
	count, err := resolveCount("count", count, s.defaults.ScenarioCount)
	if err != nil {
		return nil, err
	}
	difficulty, err = s.scenarioDifficulty(difficulty)
	if err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, domain.ArtifactScenarioExam, prompt.ScenarioExam(text, count, difficulty))
	if err != nil {
		return nil, err
	}
	exam, err := parser.ParseScenarioExam(raw)
	if err != nil {
		logMalformed(domain.ArtifactScenarioExam, raw, err)
		return nil, err
	}
	return exam, nil
}

// GenerateStudyPack implements StudyService. The three artifacts are generated
// concurrently; the first failure cancels the others and no partial pack is returned.
func (s *studyService) GenerateStudyPack(ctx context.Context, text string, opts StudyPackOptions) (*domain.StudyPack, error) {
	if err := requireText(text); err != nil {
		return nil, err
	}
	length, err := s.summaryLength(opts.SummaryLength)
	if err != nil {
		return nil, err
	}
	cardCount, err := resolveCount("flashcard_count", opts.FlashcardCount, s.defaults.FlashcardCount)
	if err != nil {
		return nil, err
	}
	quizCount, err := resolveCount("quiz_count", opts.QuizQuestionCount, s.defaults.QuizQuestionCount)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pack := &domain.StudyPack{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.Summarize(gctx, text, length)
		pack.Summary = summary
		return err
	})
	g.Go(func() error {
		cards, err := s.GenerateFlashcards(gctx, text, cardCount)
		pack.Flashcards = cards
		return err
	})
	g.Go(func() error {
		quiz, err := s.GenerateQuiz(gctx, text, quizCount)
		pack.Quiz = quiz
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Get().Warn("Study pack generation failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	pack.CreatedAt = time.Now()
	logger.Get().Info("Study pack generated",
		zap.Int("flashcards", len(pack.Flashcards)),
		zap.Int("quiz_questions", len(pack.Quiz.Questions)),
		zap.Duration("duration", time.Since(start)))
	return pack, nil
}

func (s *studyService) generate(ctx context.Context, artifact domain.ArtifactType, messages []domain.Message) (string, error) {
	start := time.Now()
	raw, err := s.gateway.Generate(ctx, messages, true)
	if err != nil {
		logger.Get().Error("Generation failed",
			zap.String("artifact", string(artifact)),
			zap.String("model", s.gateway.Model()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return "", err
	}
	logger.Get().Info("Generation completed",
		zap.String("artifact", string(artifact)),
		zap.String("model", s.gateway.Model()),
		zap.Int("response_chars", len(raw)),
		zap.Duration("duration", time.Since(start)))
	return raw, nil
}

func (s *studyService) summaryLength(length domain.SummaryLength) (domain.SummaryLength, error) {
	if length == "" {
		length = domain.SummaryLength(s.defaults.SummaryLength)
	}
	parsed, ok := domain.ParseSummaryLength(string(length))
	if !ok {
		return "", domain.NewInvalidInputError(fmt.Sprintf("Unknown summary length %q", length)).
			WithContext("length", string(length))
	}
	return parsed, nil
}

func (s *studyService) scenarioDifficulty(difficulty domain.ScenarioDifficulty) (domain.ScenarioDifficulty, error) {
	if difficulty == "" {
		difficulty = domain.ScenarioDifficulty(s.defaults.ScenarioDifficulty)
	}
	parsed, ok := domain.ParseScenarioDifficulty(string(difficulty))
	if !ok {
		return "", domain.NewInvalidInputError(fmt.Sprintf("Unknown scenario difficulty %q", difficulty)).
			WithContext("difficulty", string(difficulty))
	}
	return parsed, nil
}

func requireText(text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.NewInvalidInputError("Document text is empty")
	}
	return nil
}

// resolveCount applies the default for 0 and enforces MinItemCount..MaxItemCount.
func resolveCount(field string, count, def int) (int, error) {
	if count == 0 {
		count = def
	}
	if count < MinItemCount || count > MaxItemCount {
		return 0, domain.NewError(domain.CodeInvalidInput,
			fmt.Sprintf("%s must be between %d and %d", field, MinItemCount, MaxItemCount),
			domain.NewOutOfRangeError(field, count, MinItemCount, MaxItemCount))
	}
	return count, nil
}

// checkDistribution logs when the model ignored the requested kind split.
func checkDistribution(quiz *domain.Quiz, requested int) {
	got := quiz.CountByKind()
	for _, want := range prompt.SplitQuestionCount(requested) {
		if got[want.Kind] != want.Count {
			logger.Get().Warn("Quiz kind distribution differs from request",
				zap.Int("requested_total", requested),
				zap.Int("received_total", len(quiz.Questions)),
				zap.Any("requested", prompt.SplitQuestionCount(requested)),
				zap.Any("received", got))
			return
		}
	}
	if len(quiz.Questions) != requested {
		logger.Get().Warn("Quiz question count differs from request",
			zap.Int("requested_total", requested),
			zap.Int("received_total", len(quiz.Questions)))
	}
}

func logMalformed(artifact domain.ArtifactType, raw string, err error) {
	const maxLogged = 500
	if len(raw) > maxLogged {
		raw = raw[:maxLogged]
	}
	logger.Get().Warn("Model response failed validation",
		zap.String("artifact", string(artifact)),
		zap.String("response_prefix", raw),
		zap.Error(err))
}
