package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"study-byte/internal/config"
	"study-byte/internal/domain"
	"study-byte/internal/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const docText = "Photosynthesis converts light energy into chemical energy stored in glucose."

var testDefaults = config.DefaultsConfig{
	FlashcardCount:     10,
	QuizQuestionCount:  12,
	ScenarioCount:      10,
	ScenarioDifficulty: "medium",
	SummaryLength:      "detailed",
}

func newTestService() (*MockExtractor, *MockGateway, StudyService) {
	extractor := new(MockExtractor)
	gateway := new(MockGateway)
	return extractor, gateway, NewStudyService(extractor, gateway, testDefaults)
}

// quizJSON builds a quiz response with perKind questions of every kind.
func quizJSON(perKind int) string {
	var questions []map[string]interface{}
	for i := 0; i < perKind; i++ {
		questions = append(questions,
			map[string]interface{}{"type": "MultipleChoice", "question": fmt.Sprintf("mc %d", i), "options": []string{"a", "b"}, "correctIndex": 0},
			map[string]interface{}{"type": "TrueFalse", "question": fmt.Sprintf("tf %d", i), "correctBoolean": true},
			map[string]interface{}{"type": "Identification", "question": fmt.Sprintf("id %d", i), "correctAnswer": "x"},
			map[string]interface{}{"type": "ScenarioBased", "question": fmt.Sprintf("sb %d", i), "options": []string{"a", "b"}, "correctIndex": 1},
		)
	}
	b, _ := json.Marshal(map[string]interface{}{"questions": questions})
	return string(b)
}

func flashcardsJSON(n int) string {
	cards := make([]map[string]string, n)
	for i := range cards {
		cards[i] = map[string]string{"front": fmt.Sprintf("front %d", i), "back": fmt.Sprintf("back %d", i)}
	}
	b, _ := json.Marshal(map[string]interface{}{"flashcards": cards})
	return string(b)
}

func TestStudyService_Extract(t *testing.T) {
	extractor, _, svc := newTestService()
	r := strings.NewReader("raw")
	extractor.On("Extract", mock.Anything, r, "notes.txt").Return("raw", nil).Once()

	text, err := svc.Extract(context.Background(), r, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "raw", text)

	unsupported := domain.NewUnsupportedFormatError(".pptx")
	extractor.On("Extract", mock.Anything, mock.Anything, "slides.pptx").Return("", unsupported).Once()
	_, err = svc.Extract(context.Background(), strings.NewReader(""), "slides.pptx")
	assert.ErrorIs(t, err, unsupported)
	extractor.AssertExpectations(t)
}

func TestStudyService_Summarize(t *testing.T) {
	_, gateway, svc := newTestService()
	gateway.On("Generate", mock.Anything, prompt.Summary(docText, domain.SummaryDetailed), true).
		Return(`{"summaryText":"Plants make sugar.","keyPoints":["light"],"keyTakeaways":"sun"}`, nil).Once()

	summary, err := svc.Summarize(context.Background(), docText, "")
	require.NoError(t, err)
	assert.Equal(t, docText, summary.OriginalText)
	assert.Equal(t, "Plants make sugar.", summary.SummaryText)
	assert.Equal(t, []string{"light"}, summary.KeyPoints)
	gateway.AssertExpectations(t)
}

func TestStudyService_InvalidInputNeverReachesModel(t *testing.T) {
	_, gateway, svc := newTestService()
	ctx := context.Background()

	tests := map[string]func() error{
		"empty summary text": func() error { _, err := svc.Summarize(ctx, "  \n", ""); return err },
		"unknown length":     func() error { _, err := svc.Summarize(ctx, docText, "epic"); return err },
		"empty stream text":  func() error { _, err := svc.SummarizeStream(ctx, ""); return err },
		"negative cards":     func() error { _, err := svc.GenerateFlashcards(ctx, docText, -1); return err },
		"too many cards":     func() error { _, err := svc.GenerateFlashcards(ctx, docText, MaxItemCount+1); return err },
		"too many questions": func() error { _, err := svc.GenerateQuiz(ctx, docText, 51); return err },
		"empty quiz text":    func() error { _, err := svc.GenerateQuiz(ctx, "", 4); return err },
		"unknown difficulty": func() error { _, err := svc.GenerateScenarioExam(ctx, docText, 3, "brutal"); return err },
		"pack bad quiz size": func() error {
			_, err := svc.GenerateStudyPack(ctx, docText, StudyPackOptions{QuizQuestionCount: 100})
			return err
		},
	}
	for name, call := range tests {
		t.Run(name, func(t *testing.T) {
			assert.True(t, domain.HasCode(call(), domain.CodeInvalidInput))
		})
	}
	gateway.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	gateway.AssertNotCalled(t, "GenerateStream", mock.Anything, mock.Anything)
}

func TestStudyService_GenerateFlashcards_DefaultCount(t *testing.T) {
	_, gateway, svc := newTestService()
	gateway.On("Generate", mock.Anything, prompt.Flashcards(docText, 10), true).Return(flashcardsJSON(10), nil).Once()

	cards, err := svc.GenerateFlashcards(context.Background(), docText, 0)
	require.NoError(t, err)
	assert.Len(t, cards, 10)
	assert.Equal(t, domain.Flashcard{Front: "front 0", Back: "back 0"}, cards[0])
	gateway.AssertExpectations(t)
}

func TestStudyService_GenerateQuiz_EvenSplit(t *testing.T) {
	for _, n := range []int{4, 8, 12, 20} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			_, gateway, svc := newTestService()
			gateway.On("Generate", mock.Anything, prompt.Quiz(docText, n), true).Return(quizJSON(n/4), nil).Once()

			quiz, err := svc.GenerateQuiz(context.Background(), docText, n)
			require.NoError(t, err)
			assert.Len(t, quiz.Questions, n)
			for _, kind := range domain.QuestionKinds {
				assert.Equal(t, n/4, quiz.CountByKind()[kind], kind)
			}
			gateway.AssertExpectations(t)
		})
	}
}

func TestStudyService_GenerateQuiz_DistributionMismatchIsNotAnError(t *testing.T) {
	_, gateway, svc := newTestService()
	gateway.On("Generate", mock.Anything, prompt.Quiz(docText, 10), true).Return(quizJSON(1), nil).Once()

	quiz, err := svc.GenerateQuiz(context.Background(), docText, 10)
	require.NoError(t, err)
	assert.Len(t, quiz.Questions, 4)
}

func TestStudyService_GenerateQuiz_Errors(t *testing.T) {
	t.Run("GenerationFailed", func(t *testing.T) {
		_, gateway, svc := newTestService()
		gateway.On("Generate", mock.Anything, mock.Anything, true).
			Return("", domain.NewGenerationFailedError("langchain", errors.New("timeout"))).Once()

		_, err := svc.GenerateQuiz(context.Background(), docText, 4)
		assert.True(t, domain.HasCode(err, domain.CodeGenerationFailed))
	})

	t.Run("MalformedResponse", func(t *testing.T) {
		_, gateway, svc := newTestService()
		gateway.On("Generate", mock.Anything, mock.Anything, true).
			Return(`{"questions":[{"type":"MultipleChoice","options":["a"],"correctIndex":3}]}`, nil).Once()

		_, err := svc.GenerateQuiz(context.Background(), docText, 1)
		assert.True(t, domain.HasCode(err, domain.CodeMalformedResponse))
	})
}

func TestStudyService_GenerateScenarioExam(t *testing.T) {
	_, gateway, svc := newTestService()
	gateway.On("Generate", mock.Anything, prompt.ScenarioExam(docText, 10, domain.DifficultyMedium), true).
		Return(`{"questions":[{"scenario":"s","question":"q","suggestedAnswer":"a","keyConcepts":["x","X"]}]}`, nil).Once()

	exam, err := svc.GenerateScenarioExam(context.Background(), docText, 0, "")
	require.NoError(t, err)
	require.Len(t, exam.Questions, 1)
	assert.Equal(t, []string{"x"}, exam.Questions[0].KeyConcepts)
	gateway.AssertExpectations(t)
}

func TestStudyService_SummarizeStream(t *testing.T) {
	_, gateway, svc := newTestService()
	gateway.On("GenerateStream", mock.Anything, prompt.SummaryStream(docText)).
		Return(chunks("**Summary:**", " Plants", " make sugar.")).Once()

	stream, err := svc.SummarizeStream(context.Background(), docText)
	require.NoError(t, err)

	var sb strings.Builder
	for chunk, err := range stream {
		require.NoError(t, err)
		sb.WriteString(chunk)
	}
	assert.Equal(t, "**Summary:** Plants make sugar.", sb.String())
	gateway.AssertExpectations(t)
}

func TestStudyService_GenerateStudyPack(t *testing.T) {
	_, gateway, svc := newTestService()
	gateway.On("Generate", mock.Anything, prompt.Summary(docText, domain.SummaryBrief), true).
		Return(`{"summaryText":"short"}`, nil).Once()
	gateway.On("Generate", mock.Anything, prompt.Flashcards(docText, 3), true).
		Return(flashcardsJSON(3), nil).Once()
	gateway.On("Generate", mock.Anything, prompt.Quiz(docText, 8), true).
		Return(quizJSON(2), nil).Once()

	pack, err := svc.GenerateStudyPack(context.Background(), docText, StudyPackOptions{
		SummaryLength:     domain.SummaryBrief,
		FlashcardCount:    3,
		QuizQuestionCount: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, "short", pack.Summary.SummaryText)
	assert.Len(t, pack.Flashcards, 3)
	assert.Len(t, pack.Quiz.Questions, 8)
	assert.False(t, pack.CreatedAt.IsZero())
	gateway.AssertExpectations(t)
}

func TestStudyService_GenerateStudyPack_AllOrNothing(t *testing.T) {
	_, gateway, svc := newTestService()
	gateway.On("Generate", mock.Anything, prompt.Summary(docText, domain.SummaryDetailed), true).
		Return(`{"summaryText":"ok"}`, nil).Maybe()
	gateway.On("Generate", mock.Anything, prompt.Flashcards(docText, 10), true).
		Return(flashcardsJSON(10), nil).Maybe()
	gateway.On("Generate", mock.Anything, prompt.Quiz(docText, 12), true).
		Return("not json", nil).Once()

	pack, err := svc.GenerateStudyPack(context.Background(), docText, StudyPackOptions{})
	assert.Nil(t, pack)
	assert.True(t, domain.HasCode(err, domain.CodeMalformedResponse))
}
