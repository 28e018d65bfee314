package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"study-byte/internal/domain"
	"study-byte/internal/dto"
	"study-byte/internal/logger"
	"study-byte/internal/middleware"
	"study-byte/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UploadField is the multipart field carrying the document
const UploadField = "file"

const healthPingTimeout = 2 * time.Second

// StudyHandler handles study-material HTTP requests
type StudyHandler struct {
	service service.StudyService
	cache   domain.Cache
}

// NewStudyHandler creates a new StudyHandler instance. cache may be nil when
// no extraction cache is configured.
func NewStudyHandler(service service.StudyService, cache domain.Cache) *StudyHandler {
	return &StudyHandler{
		service: service,
		cache:   cache,
	}
}

// RegisterRoutes mounts the study endpoints on router
func (h *StudyHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/documents/extract", h.ExtractDocument)
	router.Post("/summary", middleware.ValidateForm[dto.SummaryRequest](), h.Summarize)
	router.Post("/summary/stream", middleware.ValidateForm[dto.SummaryStreamRequest](), h.SummarizeStream)
	router.Post("/flashcards", middleware.ValidateForm[dto.FlashcardsRequest](), h.GenerateFlashcards)
	router.Post("/quiz", middleware.ValidateForm[dto.QuizRequest](), h.GenerateQuiz)
	router.Post("/scenario-exam", middleware.ValidateForm[dto.ScenarioExamRequest](), h.GenerateScenarioExam)
	router.Post("/study-pack", middleware.ValidateForm[dto.StudyPackRequest](), h.GenerateStudyPack)
}

// Health godoc
// @Summary Health check
// @Description Reports service liveness and, when configured, extraction cache reachability. Served at the server root, outside /api.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *StudyHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{Status: "ok"}
	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthPingTimeout)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			logger.Get().Warn("Cache health check failed", zap.Error(err))
			resp.Cache = "unavailable"
		} else {
			resp.Cache = "ok"
		}
	}
	return c.JSON(resp)
}

// ExtractDocument godoc
// @Summary Extract document text
// @Description Returns the plain text of an uploaded .txt, .pdf or .docx document.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document (.txt, .pdf or .docx)"
// @Success 200 {object} dto.ExtractResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Missing file or unsupported format"
// @Failure 422 {object} middleware.ErrorResponse "Document could not be read"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /documents/extract [post]
func (h *StudyHandler) ExtractDocument(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile(UploadField)
	if err != nil {
		return domain.ValidationErrors{domain.NewMissingFieldError(UploadField)}
	}
	f, err := fileHeader.Open()
	if err != nil {
		return domain.NewInternalError("Failed to open uploaded document", err)
	}
	defer f.Close()

	text, err := h.service.Extract(c.UserContext(), f, fileHeader.Filename)
	if err != nil {
		return err
	}
	return c.JSON(dto.ExtractResponse{
		Filename:   fileHeader.Filename,
		Characters: len([]rune(text)),
		Text:       text,
	})
}

// Summarize godoc
// @Summary Summarize a document
// @Description Generates a titled summary with key points and keywords.
// @Tags summary
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "Document (.txt, .pdf or .docx); takes precedence over text"
// @Param text formData string false "Raw document text"
// @Param length formData string false "Summary length: brief, detailed or comprehensive (default detailed)"
// @Success 200 {object} domain.Summary
// @Failure 400 {object} middleware.ValidationErrorResponse "Missing document or invalid parameters"
// @Failure 422 {object} middleware.ErrorResponse "Document could not be read"
// @Failure 502 {object} middleware.ErrorResponse "Model returned an unusable response"
// @Failure 503 {object} middleware.ErrorResponse "Model unavailable"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /summary [post]
func (h *StudyHandler) Summarize(c *fiber.Ctx) error {
	req := middleware.ValidatedRequest[dto.SummaryRequest](c)
	text, err := h.documentText(c, req.Text)
	if err != nil {
		return err
	}

	summary, err := h.service.Summarize(c.UserContext(), text, domain.SummaryLength(req.Length))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// SummarizeStream handles POST /api/summary/stream. Chunks are sent as
// server-sent events in generation order, followed by a `done` event or,
// when generation fails part way, an `error` event.
// @Summary Stream a document summary
// @Description Streams summary text as server-sent events, ending with a done event or an error event.
// @Tags summary
// @Accept multipart/form-data
// @Produce text/event-stream
// @Param file formData file false "Document (.txt, .pdf or .docx); takes precedence over text"
// @Param text formData string false "Raw document text"
// @Success 200 {string} string "Server-sent event stream"
// @Failure 400 {object} middleware.ValidationErrorResponse "Missing document or invalid parameters"
// @Failure 422 {object} middleware.ErrorResponse "Document could not be read"
// @Failure 502 {object} middleware.ErrorResponse "Model returned an unusable response"
// @Failure 503 {object} middleware.ErrorResponse "Model unavailable"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /summary/stream [post]
func (h *StudyHandler) SummarizeStream(c *fiber.Ctx) error {
	req := middleware.ValidatedRequest[dto.SummaryStreamRequest](c)
	text, err := h.documentText(c, req.Text)
	if err != nil {
		return err
	}

	stream, err := h.service.SummarizeStream(c.UserContext(), text)
	if err != nil {
		return err
	}

	requestID := middleware.RequestID(c)
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		chunks := 0
		for chunk, err := range stream {
			if err != nil {
				logger.Get().Warn("Summary stream failed",
					zap.String("request_id", requestID),
					zap.Int("chunks_sent", chunks),
					zap.Error(err))
				writeEvent(w, "error", streamErrorPayload(err))
				_ = w.Flush()
				return
			}
			writeEvent(w, "", chunk)
			// A failed flush means the client went away; breaking stops generation.
			if err := w.Flush(); err != nil {
				logger.Get().Info("Summary stream client disconnected",
					zap.String("request_id", requestID),
					zap.Int("chunks_sent", chunks))
				return
			}
			chunks++
		}
		writeEvent(w, "done", "")
		_ = w.Flush()
	})
	return nil
}

// GenerateFlashcards godoc
// @Summary Generate flashcards
// @Description Generates question and answer flashcards from a document.
// @Tags flashcards
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "Document (.txt, .pdf or .docx); takes precedence over text"
// @Param text formData string false "Raw document text"
// @Param count formData int false "Number of flashcards, 1-50 (default 10)"
// @Success 200 {object} dto.FlashcardsResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Missing document or invalid parameters"
// @Failure 422 {object} middleware.ErrorResponse "Document could not be read"
// @Failure 502 {object} middleware.ErrorResponse "Model returned an unusable response"
// @Failure 503 {object} middleware.ErrorResponse "Model unavailable"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /flashcards [post]
func (h *StudyHandler) GenerateFlashcards(c *fiber.Ctx) error {
	req := middleware.ValidatedRequest[dto.FlashcardsRequest](c)
	text, err := h.documentText(c, req.Text)
	if err != nil {
		return err
	}

	cards, err := h.service.GenerateFlashcards(c.UserContext(), text, req.Count)
	if err != nil {
		return err
	}
	return c.JSON(dto.FlashcardsResponse{Flashcards: cards})
}

// GenerateQuiz godoc
// @Summary Generate a quiz
// @Description Generates a mixed quiz of multiple choice, true/false, fill-in-the-blank and short answer questions.
// @Tags quiz
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "Document (.txt, .pdf or .docx); takes precedence over text"
// @Param text formData string false "Raw document text"
// @Param count formData int false "Number of questions, 1-50 (default 12)"
// @Success 200 {object} domain.Quiz
// @Failure 400 {object} middleware.ValidationErrorResponse "Missing document or invalid parameters"
// @Failure 422 {object} middleware.ErrorResponse "Document could not be read"
// @Failure 502 {object} middleware.ErrorResponse "Model returned an unusable response"
// @Failure 503 {object} middleware.ErrorResponse "Model unavailable"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /quiz [post]
func (h *StudyHandler) GenerateQuiz(c *fiber.Ctx) error {
	req := middleware.ValidatedRequest[dto.QuizRequest](c)
	text, err := h.documentText(c, req.Text)
	if err != nil {
		return err
	}

	quiz, err := h.service.GenerateQuiz(c.UserContext(), text, req.Count)
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// GenerateScenarioExam godoc
// @Summary Generate a scenario exam
// @Description Generates scenario-based multiple choice questions at the requested difficulty.
// @Tags exam
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "Document (.txt, .pdf or .docx); takes precedence over text"
// @Param text formData string false "Raw document text"
// @Param count formData int false "Number of questions, 1-50 (default 10)"
// @Param difficulty formData string false "easy, medium or hard (default medium)"
// @Success 200 {object} domain.ScenarioExamResult
// @Failure 400 {object} middleware.ValidationErrorResponse "Missing document or invalid parameters"
// @Failure 422 {object} middleware.ErrorResponse "Document could not be read"
// @Failure 502 {object} middleware.ErrorResponse "Model returned an unusable response"
// @Failure 503 {object} middleware.ErrorResponse "Model unavailable"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /scenario-exam [post]
func (h *StudyHandler) GenerateScenarioExam(c *fiber.Ctx) error {
	req := middleware.ValidatedRequest[dto.ScenarioExamRequest](c)
	text, err := h.documentText(c, req.Text)
	if err != nil {
		return err
	}

	exam, err := h.service.GenerateScenarioExam(c.UserContext(), text, req.Count, domain.ScenarioDifficulty(req.Difficulty))
	if err != nil {
		return err
	}
	return c.JSON(exam)
}

// GenerateStudyPack godoc
// @Summary Generate a study pack
// @Description Generates a summary, flashcards and a quiz from one document in a single request.
// @Tags study-pack
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "Document (.txt, .pdf or .docx); takes precedence over text"
// @Param text formData string false "Raw document text"
// @Param length formData string false "Summary length: brief, detailed or comprehensive (default detailed)"
// @Param flashcard_count formData int false "Number of flashcards, 1-50 (default 10)"
// @Param quiz_count formData int false "Number of quiz questions, 1-50 (default 12)"
// @Success 200 {object} domain.StudyPack
// @Failure 400 {object} middleware.ValidationErrorResponse "Missing document or invalid parameters"
// @Failure 422 {object} middleware.ErrorResponse "Document could not be read"
// @Failure 502 {object} middleware.ErrorResponse "Model returned an unusable response"
// @Failure 503 {object} middleware.ErrorResponse "Model unavailable"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /study-pack [post]
func (h *StudyHandler) GenerateStudyPack(c *fiber.Ctx) error {
	req := middleware.ValidatedRequest[dto.StudyPackRequest](c)
	text, err := h.documentText(c, req.Text)
	if err != nil {
		return err
	}

	pack, err := h.service.GenerateStudyPack(c.UserContext(), text, service.StudyPackOptions{
		SummaryLength:     domain.SummaryLength(req.Length),
		FlashcardCount:    req.FlashcardCount,
		QuizQuestionCount: req.QuizCount,
	})
	if err != nil {
		return err
	}
	return c.JSON(pack)
}

// documentText extracts the uploaded file, falling back to the text field.
func (h *StudyHandler) documentText(c *fiber.Ctx, text string) (string, error) {
	fileHeader, err := c.FormFile(UploadField)
	if err != nil {
		if strings.TrimSpace(text) == "" {
			return "", domain.ValidationErrors{domain.NewMissingFieldError(UploadField)}
		}
		return text, nil
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", domain.NewInternalError("Failed to open uploaded document", err)
	}
	defer f.Close()
	return h.service.Extract(c.UserContext(), f, fileHeader.Filename)
}

// writeEvent writes one server-sent event. Multi-line data is split across
// data fields so the client reassembles it with the original newlines.
func writeEvent(w *bufio.Writer, event, data string) {
	if event != "" {
		_, _ = w.WriteString("event: " + event + "\n")
	}
	for _, line := range strings.Split(data, "\n") {
		_, _ = w.WriteString("data: " + line + "\n")
	}
	_, _ = w.WriteString("\n")
}

func streamErrorPayload(err error) string {
	payload := dto.StreamErrorEvent{
		Code:    string(domain.CodeInternal),
		Message: "Summary generation failed",
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		payload.Code = string(domainErr.Code)
		payload.Message = domainErr.Message
	}
	b, _ := json.Marshal(payload)
	return string(b)
}
