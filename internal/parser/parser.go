// Package parser turns raw model output into validated domain artifacts.
//
// Field names are matched case-insensitively and null counts as absent. The
// input must be exactly one JSON document; nothing is stripped or repaired.
package parser

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"study-byte/internal/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var now = time.Now

// decode parses raw, folds its keys, validates it against schema and
// unmarshals the result into out.
func decode(raw string, schema *jsonschema.Schema, artifact domain.ArtifactType, out interface{}) error {
	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domain.NewMalformedResponseError(artifact, fmt.Errorf("invalid JSON: %w", err))
	}

	doc = foldKeys(doc)
	if err := schema.Validate(doc); err != nil {
		return domain.NewMalformedResponseError(artifact, err)
	}

	folded, err := json.Marshal(doc)
	if err != nil {
		return domain.NewMalformedResponseError(artifact, err)
	}
	if err := json.Unmarshal(folded, out); err != nil {
		return domain.NewMalformedResponseError(artifact, err)
	}
	return nil
}

// foldKeys lower-cases object keys at every depth. When two keys fold to the
// same name the first non-null value in sorted key order wins.
func foldKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make(map[string]interface{}, len(t))
		for _, k := range keys {
			lk := strings.ToLower(k)
			if existing, ok := out[lk]; ok && existing != nil {
				continue
			}
			out[lk] = foldKeys(t[k])
		}
		return out
	case []interface{}:
		for i := range t {
			t[i] = foldKeys(t[i])
		}
		return t
	default:
		return v
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type summaryWire struct {
	SummaryText  string   `json:"summarytext"`
	KeyPoints    []string `json:"keypoints"`
	KeyTakeaways string   `json:"keytakeaways"`
}

// ParseSummary decodes a summary response. originalText is carried over unchanged.
func ParseSummary(raw, originalText string) (*domain.Summary, error) {
	var w summaryWire
	if err := decode(raw, summarySchema, domain.ArtifactSummary, &w); err != nil {
		return nil, err
	}
	return &domain.Summary{
		OriginalText: originalText,
		SummaryText:  w.SummaryText,
		KeyPoints:    nonNil(w.KeyPoints),
		KeyTakeaways: w.KeyTakeaways,
		CreatedAt:    now(),
	}, nil
}

type flashcardsWire struct {
	Flashcards []struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	} `json:"flashcards"`
}

// ParseFlashcards decodes a {"flashcards": [...]} response.
func ParseFlashcards(raw string) ([]domain.Flashcard, error) {
	var w flashcardsWire
	if err := decode(raw, flashcardsSchema, domain.ArtifactFlashcards, &w); err != nil {
		return nil, err
	}
	cards := make([]domain.Flashcard, 0, len(w.Flashcards))
	for _, c := range w.Flashcards {
		cards = append(cards, domain.Flashcard{Front: c.Front, Back: c.Back})
	}
	return cards, nil
}

type scenarioExamWire struct {
	Questions []struct {
		Scenario        string   `json:"scenario"`
		Question        string   `json:"question"`
		SuggestedAnswer string   `json:"suggestedanswer"`
		KeyConcepts     []string `json:"keyconcepts"`
	} `json:"questions"`
}

// ParseScenarioExam decodes a {"questions": [...]} scenario response. Key
// concepts are de-duplicated case-insensitively.
func ParseScenarioExam(raw string) (*domain.ScenarioExamResult, error) {
	var w scenarioExamWire
	if err := decode(raw, scenarioExamSchema, domain.ArtifactScenarioExam, &w); err != nil {
		return nil, err
	}
	result := &domain.ScenarioExamResult{
		Questions: make([]domain.ScenarioExam, 0, len(w.Questions)),
		CreatedAt: now(),
	}
	for _, q := range w.Questions {
		result.Questions = append(result.Questions, domain.ScenarioExam{
			Scenario:        q.Scenario,
			Question:        q.Question,
			SuggestedAnswer: q.SuggestedAnswer,
			KeyConcepts:     domain.UniqueConcepts(q.KeyConcepts),
		})
	}
	return result, nil
}
