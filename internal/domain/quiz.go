package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// QuestionKind tags the four quiz question formats
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "MultipleChoice"
	KindTrueFalse      QuestionKind = "TrueFalse"
	KindIdentification QuestionKind = "Identification"
	KindScenarioBased  QuestionKind = "ScenarioBased"
)

// QuestionKinds lists every kind in the order quizzes are planned and presented.
var QuestionKinds = []QuestionKind{
	KindMultipleChoice,
	KindTrueFalse,
	KindIdentification,
	KindScenarioBased,
}

// QuizQuestion is a closed sum type; the only implementations are
// MultipleChoiceQuestion, TrueFalseQuestion, IdentificationQuestion
// and ScenarioBasedQuestion.
type QuizQuestion interface {
	Kind() QuestionKind
	Prompt() string
	Rationale() string
	Validate() error
	isQuizQuestion()
}

// MultipleChoiceQuestion has one correct option out of several
type MultipleChoiceQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// TrueFalseQuestion is answered with a boolean
type TrueFalseQuestion struct {
	Question      string `json:"question"`
	CorrectAnswer bool   `json:"correctBoolean"`
	Explanation   string `json:"explanation"`
}

// IdentificationQuestion is answered with free text
type IdentificationQuestion struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// ScenarioBasedQuestion presents a situation and asks for the best option
type ScenarioBasedQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

func (MultipleChoiceQuestion) Kind() QuestionKind { return KindMultipleChoice }
func (TrueFalseQuestion) Kind() QuestionKind      { return KindTrueFalse }
func (IdentificationQuestion) Kind() QuestionKind { return KindIdentification }
func (ScenarioBasedQuestion) Kind() QuestionKind  { return KindScenarioBased }

func (q MultipleChoiceQuestion) Prompt() string { return q.Question }
func (q TrueFalseQuestion) Prompt() string      { return q.Question }
func (q IdentificationQuestion) Prompt() string { return q.Question }
func (q ScenarioBasedQuestion) Prompt() string  { return q.Question }

func (q MultipleChoiceQuestion) Rationale() string { return q.Explanation }
func (q TrueFalseQuestion) Rationale() string      { return q.Explanation }
func (q IdentificationQuestion) Rationale() string { return q.Explanation }
func (q ScenarioBasedQuestion) Rationale() string  { return q.Explanation }

func (MultipleChoiceQuestion) isQuizQuestion() {}
func (TrueFalseQuestion) isQuizQuestion()      {}
func (IdentificationQuestion) isQuizQuestion() {}
func (ScenarioBasedQuestion) isQuizQuestion()  {}

// Validate checks that CorrectIndex points at one of the options
func (q MultipleChoiceQuestion) Validate() error {
	return validateChoice(q.Options, q.CorrectIndex)
}

// Validate checks that CorrectIndex points at one of the options
func (q ScenarioBasedQuestion) Validate() error {
	return validateChoice(q.Options, q.CorrectIndex)
}

func (TrueFalseQuestion) Validate() error      { return nil }
func (IdentificationQuestion) Validate() error { return nil }

func validateChoice(options []string, correct int) error {
	if len(options) == 0 {
		return NewValidationError("options are required")
	}
	if correct < 0 || correct >= len(options) {
		return NewValidationError(fmt.Sprintf("correct index %d out of range for %d options", correct, len(options)))
	}
	return nil
}

// MarshalJSON adds the "type" discriminator
func (q MultipleChoiceQuestion) MarshalJSON() ([]byte, error) {
	type alias MultipleChoiceQuestion
	return json.Marshal(struct {
		Type QuestionKind `json:"type"`
		alias
	}{q.Kind(), alias(q)})
}

// MarshalJSON adds the "type" discriminator
func (q TrueFalseQuestion) MarshalJSON() ([]byte, error) {
	type alias TrueFalseQuestion
	return json.Marshal(struct {
		Type QuestionKind `json:"type"`
		alias
	}{q.Kind(), alias(q)})
}

// MarshalJSON adds the "type" discriminator
func (q IdentificationQuestion) MarshalJSON() ([]byte, error) {
	type alias IdentificationQuestion
	return json.Marshal(struct {
		Type QuestionKind `json:"type"`
		alias
	}{q.Kind(), alias(q)})
}

// MarshalJSON adds the "type" discriminator
func (q ScenarioBasedQuestion) MarshalJSON() ([]byte, error) {
	type alias ScenarioBasedQuestion
	return json.Marshal(struct {
		Type QuestionKind `json:"type"`
		alias
	}{q.Kind(), alias(q)})
}

// Quiz is an ordered, possibly mixed-kind list of questions
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
	CreatedAt time.Time      `json:"createdAt"`
}

// CountByKind tallies the questions of each kind
func (q *Quiz) CountByKind() map[QuestionKind]int {
	counts := make(map[QuestionKind]int, len(QuestionKinds))
	for _, question := range q.Questions {
		counts[question.Kind()]++
	}
	return counts
}

// invalidValueError reports a value that breaks a domain invariant
type invalidValueError struct {
	message string
}

func (e *invalidValueError) Error() string {
	return e.message
}

func NewValidationError(message string) error {
	return &invalidValueError{message: message}
}
