package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"study-byte/internal/domain"
	"study-byte/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(RequestIDMiddleware())
	app.Use(RequestLogger())
	return app
}

func TestStatusForCode(t *testing.T) {
	tests := map[domain.ErrorCode]int{
		domain.CodeInvalidInput:      http.StatusBadRequest,
		domain.CodeValidation:        http.StatusBadRequest,
		domain.CodeUnsupportedFormat: http.StatusBadRequest,
		domain.CodeExtractionFailed:  http.StatusUnprocessableEntity,
		domain.CodeMalformedResponse: http.StatusBadGateway,
		domain.CodeGenerationFailed:  http.StatusServiceUnavailable,
		domain.CodeConfiguration:     http.StatusInternalServerError,
		domain.CodeInternal:          http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, StatusForCode(code), code)
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unsupported format", domain.NewUnsupportedFormatError(".pptx"), http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
		{"wrapped generation failure", errors.Join(errors.New("ctx"), domain.NewGenerationFailedError("openai", errors.New("boom"))), http.StatusServiceUnavailable, "GENERATION_FAILED"},
		{"fiber error", fiber.ErrRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "HTTP_ERROR"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp()
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantStatus, body.Status)
		})
	}
}

func TestErrorHandler_DomainContextBecomesDetails(t *testing.T) {
	app := newTestApp()
	app.Get("/", func(c *fiber.Ctx) error { return domain.NewUnsupportedFormatError(".pptx") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, ".pptx", body.Details["extension"])
}

func TestRequestIDMiddleware(t *testing.T) {
	app := newTestApp()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(RequestID(c)) })

	t.Run("generates ULID", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		id := resp.Header.Get(RequestIDHeader)
		_, err = ulid.ParseStrict(id)
		require.NoError(t, err)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, id, string(body))
	})

	t.Run("keeps caller ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "trace-123")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "trace-123", resp.Header.Get(RequestIDHeader))
	})
}

func TestValidateForm(t *testing.T) {
	app := newTestApp()
	app.Post("/quiz", ValidateForm[dto.QuizRequest](), func(c *fiber.Ctx) error {
		return c.JSON(ValidatedRequest[dto.QuizRequest](c))
	})

	post := func(contentType, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/quiz", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("urlencoded", func(t *testing.T) {
		resp := post(fiber.MIMEApplicationForm, "count=8&text=hello")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got dto.QuizRequest
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, dto.QuizRequest{Text: "hello", Count: 8}, got)
	})

	t.Run("json", func(t *testing.T) {
		resp := post(fiber.MIMEApplicationJSON, `{"count":4}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("no body selects defaults", func(t *testing.T) {
		resp := post("", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got dto.QuizRequest
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Zero(t, got.Count)
	})

	t.Run("out of range", func(t *testing.T) {
		resp := post(fiber.MIMEApplicationForm, "count=51")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body ValidationErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "VALIDATION_ERROR", body.Code)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "count", body.Errors[0].Field)
	})

	t.Run("not a number", func(t *testing.T) {
		resp := post(fiber.MIMEApplicationForm, "count=many")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "INVALID_INPUT", body.Code)
	})
}
