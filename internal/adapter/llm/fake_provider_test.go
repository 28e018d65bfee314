package llm

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeProvider serves canned completions in the OpenAI and Gemini wire formats
// and records what it receives.
type fakeProvider struct {
	server   *httptest.Server
	requests atomic.Int32

	content string
	chunks  []string
	status  int

	mu       sync.Mutex
	lastBody map[string]interface{}
	lastPath string
}

func newFakeProvider(t *testing.T, content string, chunks ...string) *fakeProvider {
	t.Helper()
	f := &fakeProvider{content: content, chunks: chunks, status: http.StatusOK}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeProvider) body() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody
}

func (f *fakeProvider) path() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPath
}

func (f *fakeProvider) handle(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	raw, _ := io.ReadAll(r.Body)
	var body map[string]interface{}
	_ = json.Unmarshal(raw, &body)
	f.mu.Lock()
	f.lastBody = body
	f.lastPath = r.URL.Path
	f.mu.Unlock()

	if f.status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		fmt.Fprint(w, `{"error":{"message":"upstream exploded","type":"server_error","code":500}}`)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/chat/completions"):
		if stream, _ := body["stream"].(bool); stream {
			f.writeOpenAIStream(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o",
			"choices": []map[string]interface{}{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": f.content},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
		})
	case strings.HasSuffix(r.URL.Path, ":streamGenerateContent"):
		f.writeGeminiStream(w)
	case strings.HasSuffix(r.URL.Path, ":generateContent"):
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiResponse(f.content))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeProvider) writeOpenAIStream(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	flusher, _ := w.(http.Flusher)
	for _, chunk := range f.chunks {
		payload, _ := json.Marshal(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion.chunk",
			"created": 1,
			"model":   "gpt-4o",
			"choices": []map[string]interface{}{{
				"index": 0,
				"delta": map[string]string{"content": chunk},
			}},
		})
		fmt.Fprintf(w, "data: %s\n\n", payload)
		if flusher != nil {
			flusher.Flush()
		}
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func (f *fakeProvider) writeGeminiStream(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	flusher, _ := w.(http.Flusher)
	for _, chunk := range f.chunks {
		payload, _ := json.Marshal(geminiResponse(chunk))
		fmt.Fprintf(w, "data: %s\n\n", payload)
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func geminiResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{{
			"content": map[string]interface{}{
				"role":  "model",
				"parts": []map[string]string{{"text": text}},
			},
			"index": 0,
		}},
	}
}
