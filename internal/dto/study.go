package dto

import "study-byte/internal/domain"

// Every generation endpoint takes its document either as a multipart `file`
// upload or as raw `text`. The upload wins when both are present.

// SummaryRequest represents the parameters of POST /api/summary
type SummaryRequest struct {
	Text   string `json:"text" form:"text"`
	Length string `json:"length" form:"length" validate:"omitempty,summary_length"`
}

// SummaryStreamRequest represents the parameters of POST /api/summary/stream
type SummaryStreamRequest struct {
	Text string `json:"text" form:"text"`
}

// FlashcardsRequest represents the parameters of POST /api/flashcards.
// A zero count uses the configured default.
type FlashcardsRequest struct {
	Text  string `json:"text" form:"text"`
	Count int    `json:"count" form:"count" validate:"omitempty,min=1,max=50"`
}

// QuizRequest represents the parameters of POST /api/quiz
type QuizRequest struct {
	Text  string `json:"text" form:"text"`
	Count int    `json:"count" form:"count" validate:"omitempty,min=1,max=50"`
}

// ScenarioExamRequest represents the parameters of POST /api/scenario-exam
type ScenarioExamRequest struct {
	Text       string `json:"text" form:"text"`
	Count      int    `json:"count" form:"count" validate:"omitempty,min=1,max=50"`
	Difficulty string `json:"difficulty" form:"difficulty" validate:"omitempty,scenario_difficulty"`
}

// StudyPackRequest represents the parameters of POST /api/study-pack
type StudyPackRequest struct {
	Text           string `json:"text" form:"text"`
	Length         string `json:"length" form:"length" validate:"omitempty,summary_length"`
	FlashcardCount int    `json:"flashcard_count" form:"flashcard_count" validate:"omitempty,min=1,max=50"`
	QuizCount      int    `json:"quiz_count" form:"quiz_count" validate:"omitempty,min=1,max=50"`
}

// ExtractResponse is returned by POST /api/documents/extract
type ExtractResponse struct {
	Filename   string `json:"filename"`
	Characters int    `json:"characters"`
	Text       string `json:"text"`
}

// FlashcardsResponse wraps generated flashcards
type FlashcardsResponse struct {
	Flashcards []domain.Flashcard `json:"flashcards"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache,omitempty"`
}

// StreamErrorEvent is the payload of the `error` event that ends a failed summary stream
type StreamErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
