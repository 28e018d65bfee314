package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"study-byte/internal/domain"
)

type questionWire struct {
	Type           json.RawMessage `json:"type"`
	Question       string          `json:"question"`
	Options        []string        `json:"options"`
	CorrectIndex   int             `json:"correctindex"`
	CorrectBoolean bool            `json:"correctboolean"`
	CorrectAnswer  string          `json:"correctanswer"`
	Explanation    string          `json:"explanation"`
}

type quizWire struct {
	Questions []questionWire `json:"questions"`
}

// ParseQuiz decodes a {"questions": [...]} quiz response into typed
// questions, in response order.
func ParseQuiz(raw string) (*domain.Quiz, error) {
	var w quizWire
	if err := decode(raw, quizSchema, domain.ArtifactQuiz, &w); err != nil {
		return nil, err
	}

	quiz := &domain.Quiz{
		Questions: make([]domain.QuizQuestion, 0, len(w.Questions)),
		CreatedAt: now(),
	}
	for i, qw := range w.Questions {
		q, err := qw.toDomain()
		if err != nil {
			return nil, domain.NewMalformedResponseError(domain.ArtifactQuiz, fmt.Errorf("question %d: %w", i, err)).
				WithContext("index", i)
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	return quiz, nil
}

func (w questionWire) toDomain() (domain.QuizQuestion, error) {
	kind, err := parseKind(w.Type)
	if err != nil {
		return nil, err
	}

	var q domain.QuizQuestion
	switch kind {
	case domain.KindMultipleChoice:
		q = domain.MultipleChoiceQuestion{
			Question:     w.Question,
			Options:      nonNil(w.Options),
			CorrectIndex: w.CorrectIndex,
			Explanation:  w.Explanation,
		}
	case domain.KindTrueFalse:
		q = domain.TrueFalseQuestion{
			Question:      w.Question,
			CorrectAnswer: w.CorrectBoolean,
			Explanation:   w.Explanation,
		}
	case domain.KindIdentification:
		q = domain.IdentificationQuestion{
			Question:      w.Question,
			CorrectAnswer: w.CorrectAnswer,
			Explanation:   w.Explanation,
		}
	case domain.KindScenarioBased:
		q = domain.ScenarioBasedQuestion{
			Question:     w.Question,
			Options:      nonNil(w.Options),
			CorrectIndex: w.CorrectIndex,
			Explanation:  w.Explanation,
		}
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

// parseKind accepts a kind name in any case or separator style, or its
// ordinal position in domain.QuestionKinds.
func parseKind(raw json.RawMessage) (domain.QuestionKind, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("question type is missing")
	}

	var ordinal int
	if err := json.Unmarshal(raw, &ordinal); err == nil {
		if ordinal < 0 || ordinal >= len(domain.QuestionKinds) {
			return "", fmt.Errorf("unknown question type %d", ordinal)
		}
		return domain.QuestionKinds[ordinal], nil
	}

	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", fmt.Errorf("question type must be a string or integer: %s", raw)
	}
	normalized := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(name))
	for _, kind := range domain.QuestionKinds {
		if strings.ToLower(string(kind)) == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown question type %q", name)
}
