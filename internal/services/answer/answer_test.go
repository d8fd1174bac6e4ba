package answer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gpt-relay-bot/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewClient(&config.AnswerConfig{
		BaseURL: url,
		Host:    "chatgpt-42.p.rapidapi.com",
		APIKey:  "test-key",
	}, log)
}

func TestAskSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chatgpt", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "chatgpt-42.p.rapidapi.com", r.Header.Get("x-rapidapi-host"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "What is 2+2?", req.Messages[0].Content)
		assert.False(t, req.WebAccess)

		json.NewEncoder(w).Encode(map[string]string{"result": "4"})
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Ask(context.Background(), "What is 2+2?")
	require.NoError(t, err)
	assert.Equal(t, "4", got)
}

func TestAskNon200IsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Ask(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestAskNetworkFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := newTestClient(srv.URL).Ask(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestAskMalformedBodyIsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json")
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Ask(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestAskMissingResultIsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Ask(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
