// Package prompt builds the system and user messages sent to the model for
// each artifact. Every builder is a pure function of its arguments.
package prompt

import (
	"fmt"
	"strings"

	"study-byte/internal/domain"
)

// JSON shapes embedded in the system messages. The response parser accepts
// exactly these shapes.
const (
	SummaryExample = `{
  "summaryText": "A concise paragraph summary",
  "keyPoints": ["Point 1", "Point 2", "Point 3"],
  "keyTakeaways": "Main lessons or conclusions"
}`

	FlashcardsExample = `{
  "flashcards": [
    {"front": "Term or question", "back": "Definition or answer"}
  ]
}`

	QuizExample = `{
  "questions": [
    {
      "type": "MultipleChoice",
      "question": "Question text",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctIndex": 0,
      "explanation": "Why the correct option is right"
    },
    {
      "type": "TrueFalse",
      "question": "Statement to judge",
      "correctBoolean": true,
      "explanation": "Why the statement is true or false"
    },
    {
      "type": "Identification",
      "question": "What term describes ...?",
      "correctAnswer": "The term",
      "explanation": "Where the term comes from in the text"
    },
    {
      "type": "ScenarioBased",
      "question": "A short situation followed by a question",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctIndex": 2,
      "explanation": "Why that option fits the situation"
    }
  ]
}`

	ScenarioExamExample = `{
  "questions": [
    {
      "scenario": "A realistic situation that applies the material",
      "question": "An open-ended question about the situation",
      "suggestedAnswer": "A model answer a grader can compare against",
      "keyConcepts": ["Concept 1", "Concept 2"]
    }
  ]
}`
)

var summaryLengthGuidance = map[domain.SummaryLength]string{
	domain.SummaryBrief:         "Keep the summary to two or three sentences and list exactly 3 key points.",
	domain.SummaryDetailed:      "Write one concise paragraph and list 3 to 5 key points.",
	domain.SummaryComprehensive: "Write several paragraphs covering every major section and list 6 to 10 key points.",
}

var difficultyGuidance = map[domain.ScenarioDifficulty]string{
	domain.DifficultyEasy:   "Scenarios should apply a single concept in a familiar setting.",
	domain.DifficultyMedium: "Scenarios should combine two or more concepts and require some analysis.",
	domain.DifficultyHard:   "Scenarios should be ambiguous, combine several concepts, and require weighing trade-offs.",
}

var kindGuidance = map[domain.QuestionKind]string{
	domain.KindMultipleChoice: "MultipleChoice questions with 4 options each",
	domain.KindTrueFalse:      "TrueFalse questions",
	domain.KindIdentification: "Identification questions answered with a short term or phrase",
	domain.KindScenarioBased:  "ScenarioBased questions that describe a situation and offer 4 options",
}

func pair(system, user string) []domain.Message {
	return []domain.Message{
		{Role: domain.RoleSystem, Content: system},
		{Role: domain.RoleUser, Content: user},
	}
}

// Summary asks for a JSON summary of text.
func Summary(text string, length domain.SummaryLength) []domain.Message {
	guidance, ok := summaryLengthGuidance[length]
	if !ok {
		guidance = summaryLengthGuidance[domain.SummaryDetailed]
	}

	system := "You are a helpful study assistant that creates clear, structured summaries.\n" +
		"Always respond with JSON in this exact format:\n" + SummaryExample

	user := fmt.Sprintf("Summarize this text. %s\n\n%s", guidance, text)
	return pair(system, user)
}

// SummaryStream asks for a markdown summary meant to be shown while it is generated.
func SummaryStream(text string) []domain.Message {
	system := "You are a helpful study assistant that creates clear, concise summaries with key points and takeaways."

	user := fmt.Sprintf(`Summarize this text in a structured way:

**Summary:**
[Write a concise paragraph summary]

**Key Points:**
- [Point 1]
- [Point 2]
- [Point 3]

**Key Takeaways:**
[Main lessons or conclusions]

Text to summarize:
%s`, text)
	return pair(system, user)
}

// Flashcards asks for count front/back cards.
func Flashcards(text string, count int) []domain.Message {
	system := "You are a helpful study assistant that turns study material into flashcards.\n" +
		"Each card has a short prompt on the front and a precise answer on the back.\n" +
		"Always respond with JSON in this exact format:\n" + FlashcardsExample

	user := fmt.Sprintf("Create exactly %d flashcards covering the most important facts and concepts in this text:\n\n%s", count, text)
	return pair(system, user)
}

// Quiz asks for count questions spread over the four kinds per SplitQuestionCount.
func Quiz(text string, count int) []domain.Message {
	system := "You are a helpful study assistant that writes quizzes to test understanding of study material.\n" +
		"Every question must be answerable from the text. Set \"type\" to one of MultipleChoice, TrueFalse, Identification or ScenarioBased, " +
		"and \"correctIndex\" to the zero-based position of the correct option.\n" +
		"Always respond with JSON in this exact format:\n" + QuizExample

	var plan strings.Builder
	for _, kc := range SplitQuestionCount(count) {
		fmt.Fprintf(&plan, "- %d %s\n", kc.Count, kindGuidance[kc.Kind])
	}

	user := fmt.Sprintf("Create a quiz of exactly %d questions about this text, made up of:\n%s\nText:\n%s", count, plan.String(), text)
	return pair(system, user)
}

// ScenarioExam asks for count open-ended scenario questions at the given difficulty.
func ScenarioExam(text string, count int, difficulty domain.ScenarioDifficulty) []domain.Message {
	guidance, ok := difficultyGuidance[difficulty]
	if !ok {
		difficulty = domain.DifficultyMedium
		guidance = difficultyGuidance[difficulty]
	}

	system := "You are a helpful study assistant that writes scenario-based exam questions.\n" +
		"Each question places the material in a realistic situation and asks the student to reason about it in their own words.\n" +
		"Always respond with JSON in this exact format:\n" + ScenarioExamExample

	user := fmt.Sprintf("Create exactly %d %s-difficulty scenario questions about this text. %s\n\n%s", count, difficulty, guidance, text)
	return pair(system, user)
}
