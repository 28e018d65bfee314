package domain

import (
	"strings"
	"time"
)

// ArtifactType identifies the kind of study material a generation call produces
type ArtifactType string

const (
	ArtifactSummary      ArtifactType = "summary"
	ArtifactFlashcards   ArtifactType = "flashcards"
	ArtifactQuiz         ArtifactType = "quiz"
	ArtifactScenarioExam ArtifactType = "scenario_exam"
)

// SummaryLength controls how much detail a summary should carry
type SummaryLength string

const (
	SummaryBrief         SummaryLength = "brief"
	SummaryDetailed      SummaryLength = "detailed"
	SummaryComprehensive SummaryLength = "comprehensive"
)

// ParseSummaryLength accepts any letter case; an empty string yields SummaryDetailed.
func ParseSummaryLength(s string) (SummaryLength, bool) {
	switch SummaryLength(strings.ToLower(strings.TrimSpace(s))) {
	case "", SummaryDetailed:
		return SummaryDetailed, true
	case SummaryBrief:
		return SummaryBrief, true
	case SummaryComprehensive:
		return SummaryComprehensive, true
	}
	return "", false
}

// ScenarioDifficulty controls how demanding scenario exam questions are
type ScenarioDifficulty string

const (
	DifficultyEasy   ScenarioDifficulty = "easy"
	DifficultyMedium ScenarioDifficulty = "medium"
	DifficultyHard   ScenarioDifficulty = "hard"
)

// ParseScenarioDifficulty accepts any letter case; an empty string yields DifficultyMedium.
func ParseScenarioDifficulty(s string) (ScenarioDifficulty, bool) {
	switch ScenarioDifficulty(strings.ToLower(strings.TrimSpace(s))) {
	case "", DifficultyMedium:
		return DifficultyMedium, true
	case DifficultyEasy:
		return DifficultyEasy, true
	case DifficultyHard:
		return DifficultyHard, true
	}
	return "", false
}

// Summary is a structured digest of a document
type Summary struct {
	OriginalText string    `json:"originalText"`
	SummaryText  string    `json:"summaryText"`
	KeyPoints    []string  `json:"keyPoints"`
	KeyTakeaways string    `json:"keyTakeaways"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Flashcard is a single front/back study card
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// ScenarioExam is an open-ended question grounded in a short scenario.
// UserAnswer and IsGraded are filled in later by whoever grades the exam.
type ScenarioExam struct {
	Scenario        string   `json:"scenario"`
	Question        string   `json:"question"`
	UserAnswer      string   `json:"userAnswer"`
	SuggestedAnswer string   `json:"suggestedAnswer"`
	KeyConcepts     []string `json:"keyConcepts"`
	IsGraded        bool     `json:"isGraded"`
}

// ScenarioExamResult groups the scenario questions produced by one generation call
type ScenarioExamResult struct {
	Questions []ScenarioExam `json:"questions"`
	CreatedAt time.Time      `json:"createdAt"`
}

// StudyPack bundles the artifacts generated from a single document in one request
type StudyPack struct {
	Summary    *Summary    `json:"summary"`
	Flashcards []Flashcard `json:"flashcards"`
	Quiz       *Quiz       `json:"quiz"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// UniqueConcepts removes blank and case-insensitively repeated concepts,
// keeping the first spelling and order of appearance.
func UniqueConcepts(concepts []string) []string {
	seen := make(map[string]struct{}, len(concepts))
	out := make([]string, 0, len(concepts))
	for _, c := range concepts {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
