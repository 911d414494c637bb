package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newChatServer(t *testing.T, status int, body string, captured *capturedRequest, auth *string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestOpenAICompatibleClient_Chat(t *testing.T) {
	t.Run("returns first choice content", func(t *testing.T) {
		var req capturedRequest
		var auth string
		srv := newChatServer(t, http.StatusOK, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "RECOMMENDATION: BUY"}, "finish_reason": "stop"}]
		}`, &req, &auth)

		client := NewOpenAICompatibleClient(srv.URL, "secret", "gpt-4o", time.Second)
		reply, err := client.Chat(context.Background(), "system text", "user text")

		require.NoError(t, err)
		assert.Equal(t, "RECOMMENDATION: BUY", reply)
		assert.Equal(t, "Bearer secret", auth)
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "system text", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "user text", req.Messages[1].Content)
	})

	t.Run("empty api key fails without calling the API", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		client := NewOpenAICompatibleClient(srv.URL, "", "gpt-4o", time.Second)
		_, err := client.Chat(context.Background(), "s", "u")

		require.Error(t, err)
		assert.False(t, called)
	})

	t.Run("api error status", func(t *testing.T) {
		srv := newChatServer(t, http.StatusTooManyRequests,
			`{"error": {"message": "rate limited", "type": "requests", "code": "rate_limit"}}`, nil, nil)

		client := NewOpenAICompatibleClient(srv.URL, "secret", "gpt-4o", time.Second)
		_, err := client.Chat(context.Background(), "s", "u")

		require.Error(t, err)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := newChatServer(t, http.StatusOK, `{"id": "x", "choices": []}`, nil, nil)

		client := NewOpenAICompatibleClient(srv.URL, "secret", "gpt-4o", time.Second)
		_, err := client.Chat(context.Background(), "s", "u")

		require.Error(t, err)
	})
}
