package parser

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schemas describe responses after keys are folded to lower case. Only the
// envelopes and the quiz type are required; null stands for a missing value.
var (
	summarySchema = jsonschema.MustCompileString("summary.json", `{
  "type": "object",
  "properties": {
    "summarytext":  {"type": ["string", "null"]},
    "keypoints":    {"type": ["array", "null"], "items": {"type": "string"}},
    "keytakeaways": {"type": ["string", "null"]}
  }
}`)

	flashcardsSchema = jsonschema.MustCompileString("flashcards.json", `{
  "type": "object",
  "required": ["flashcards"],
  "properties": {
    "flashcards": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "front": {"type": ["string", "null"]},
          "back":  {"type": ["string", "null"]}
        }
      }
    }
  }
}`)

	quizSchema = jsonschema.MustCompileString("quiz.json", `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type"],
        "properties": {
          "type":           {"type": ["string", "integer"], "minimum": 0, "maximum": 3},
          "question":       {"type": ["string", "null"]},
          "options":        {"type": ["array", "null"], "items": {"type": "string"}},
          "correctindex":   {"type": ["integer", "null"]},
          "correctboolean": {"type": ["boolean", "null"]},
          "correctanswer":  {"type": ["string", "null"]},
          "explanation":    {"type": ["string", "null"]}
        }
      }
    }
  }
}`)

	scenarioExamSchema = jsonschema.MustCompileString("scenario_exam.json", `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "scenario":        {"type": ["string", "null"]},
          "question":        {"type": ["string", "null"]},
          "suggestedanswer": {"type": ["string", "null"]},
          "keyconcepts":     {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    }
  }
}`)
)
