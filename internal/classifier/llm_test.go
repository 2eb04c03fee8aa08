package classifier_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonesrussell/north-cloud/complaint-analyzer/internal/classifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessagesServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropicCompleter_Complete(t *testing.T) {
	var request map[string]any
	srv := newMessagesServer(t, http.StatusOK, `{
		"id": "msg_01",
		"type": "message",
		"role": "assistant",
		"model": "claude-test",
		"content": [{"type": "text", "text": "  {\"category\":\"Theft\"}  "}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 5}
	}`, &request)

	completer := classifier.NewAnthropicCompleter(classifier.LLMConfig{
		APIKey:  "test-key",
		Model:   "claude-test",
		BaseURL: srv.URL,
	})

	reply, err := completer.Complete(context.Background(), classifier.BuildPrompt("bike stolen"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"Theft"}`, reply)

	assert.Equal(t, "claude-test", request["model"])
	assert.InDelta(t, 512, request["max_tokens"], 0)
}

func TestAnthropicCompleter_EmptyContent(t *testing.T) {
	srv := newMessagesServer(t, http.StatusOK, `{
		"id": "msg_02", "type": "message", "role": "assistant", "model": "claude-test",
		"content": [], "stop_reason": "end_turn", "usage": {"input_tokens": 1, "output_tokens": 0}
	}`, nil)

	completer := classifier.NewAnthropicCompleter(classifier.LLMConfig{APIKey: "k", BaseURL: srv.URL})

	_, err := completer.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, classifier.ErrEmptyReply)
}

func TestAnthropicCompleter_ServerError(t *testing.T) {
	srv := newMessagesServer(t, http.StatusInternalServerError,
		`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`, nil)

	completer := classifier.NewAnthropicCompleter(classifier.LLMConfig{APIKey: "k", BaseURL: srv.URL})

	_, err := completer.Complete(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestAdapter_WithAnthropicCompleter_FallsBackOnServerError(t *testing.T) {
	srv := newMessagesServer(t, http.StatusUnauthorized,
		`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, nil)

	completer := classifier.NewAnthropicCompleter(classifier.LLMConfig{APIKey: "bad", BaseURL: srv.URL})
	adapter := classifier.NewAdapter(completer, classifier.NewFallback(), classifier.AdapterConfig{Enabled: true})

	outcome := adapter.Classify(context.Background(), "My bike was stolen")

	require.Equal(t, classifier.PathFallback, outcome.Path())
	assert.Equal(t, "Theft", outcome.Result().Category)
	assert.Equal(t, "Medium", outcome.Result().Priority)
}

func TestBuildPrompt(t *testing.T) {
	prompt := classifier.BuildPrompt("Power cut")

	assert.True(t, strings.HasPrefix(prompt, "You are an AI assistant that classifies citizen complaints."))
	assert.Contains(t, prompt, "Return ONLY a JSON object with keys:")
	assert.True(t, strings.HasSuffix(prompt, `Complaint: "Power cut"`))
}
