package groq

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, 0.1, req.Temperature)
		assert.Equal(t, 100, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, Message{Role: "system", Content: "you are a test"}, req.Messages[0])
		assert.Equal(t, Message{Role: "user", Content: "hello"}, req.Messages[1])

		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"world"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model", "test-whisper")
	c.SetBaseURL(server.URL)

	result, err := c.Complete(context.Background(), "you are a test",
		[]Message{{Role: "user", Content: "hello"}},
		CompletionOptions{Temperature: 0.1, MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, "world", result)
}

func TestComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "invalid_request_error",
				"message": "Invalid API Key",
			},
		})
	}))
	defer server.Close()

	c := NewClient("bad-key", "test-model", "")
	c.SetBaseURL(server.URL)

	_, err := c.Complete(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, CompletionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API Key")
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model", "")
	c.SetBaseURL(server.URL)

	result, err := c.Complete(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, CompletionOptions{})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestComplete_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient("test-key", "test-model", "")
	c.SetBaseURL(url)

	_, err := c.Complete(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, CompletionOptions{})
	assert.Error(t, err)
}

func TestTranscribe_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "test-whisper", r.FormValue("model"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "standup.m4a", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "audio-bytes", string(data))

		io.WriteString(w, `{"text":"Alice will send the report by Friday."}`)
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model", "test-whisper")
	c.SetBaseURL(server.URL + "/")

	text, err := c.Transcribe(context.Background(), "standup.m4a", strings.NewReader("audio-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "Alice will send the report by Friday.", text)
}

func TestTranscribe_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream down")
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model", "test-whisper")
	c.SetBaseURL(server.URL)

	_, err := c.Transcribe(context.Background(), "a.wav", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
