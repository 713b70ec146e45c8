package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/tripmate/internal/domain"
)

func TestClientCompleteSendsOrderedMessages(t *testing.T) {
	var got ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m1","choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	history := []domain.ChatTurn{domain.UserTurn("paris"), domain.AssistantTurn("when?")}
	text, err := client.Complete(context.Background(), "m1", "be helpful", history, "next week")
	require.NoError(t, err)
	assert.Equal(t, "hi", text)

	assert.Equal(t, "m1", got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, ChatMessage{Role: "system", Content: "be helpful"}, got.Messages[0])
	assert.Equal(t, ChatMessage{Role: "user", Content: "paris"}, got.Messages[1])
	assert.Equal(t, ChatMessage{Role: "assistant", Content: "when?"}, got.Messages[2])
	assert.Equal(t, ChatMessage{Role: "user", Content: "next week"}, got.Messages[3])
}

func TestClientCompleteOmitsEmptySystemMessage(t *testing.T) {
	var got ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{}"}}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.Complete(context.Background(), "m1", "", nil, "plan it")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestClientSetHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "http://localhost:5173", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "TripPlanner.ai", r.Header.Get("X-Title"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second, WithAttribution("http://localhost:5173", "TripPlanner.ai"))
	_, err := client.Complete(context.Background(), "m1", "", nil, "hello")
	require.NoError(t, err)
}

func TestClientCompleteStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited","type":"rate_limit"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.Complete(context.Background(), "m1", "", nil, "hello")

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "expected TransportError, got %v", err)
	assert.Equal(t, http.StatusTooManyRequests, transportErr.StatusCode)
	assert.Equal(t, "rate limited", transportErr.Message)
	assert.Equal(t, "m1", transportErr.Model)
}

func TestClientCompleteErrorEnvelopeWithOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"provider returned error","code":502}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.Complete(context.Background(), "m1", "", nil, "hello")

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "provider returned error", transportErr.Message)
}

func TestClientCompleteMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"not json":        `<html>oops</html>`,
		"no choices":      `{"choices":[]}`,
		"no message":      `{"choices":[{"index":0}]}`,
		"null content":    `{"choices":[{"message":{"role":"assistant","content":null}}]}`,
		"missing content": `{"choices":[{"message":{"role":"assistant"}}]}`,
		"blank content":   `{"choices":[{"message":{"content":"  "}}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, body)
			}))
			defer server.Close()

			client := NewClient(server.URL, "", time.Second)
			_, err := client.Complete(context.Background(), "m1", "", nil, "hello")

			var malformed *MalformedResponseError
			assert.True(t, errors.As(err, &malformed), "expected MalformedResponseError, got %v", err)
		})
	}
}

func TestClientCompleteNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, "", time.Second)
	_, err := client.Complete(context.Background(), "m1", "", nil, "hello")

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Error(t, transportErr.Err)
}

func TestClientCompleteDeadlineIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewClient(server.URL, "", 5*time.Second)
	_, err := client.Complete(ctx, "m1", "", nil, "hello")

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClientListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		fmt.Fprint(w, `{"object":"list","data":[{"id":"openai/gpt-4o-mini","object":"model","created":1,"owned_by":"openai"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "openai/gpt-4o-mini", models[0].ID)
}

func TestClientListModelsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "bad")
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.ListModels(context.Background())
	assert.Error(t, err)
}

func TestClientCompleteSampling(t *testing.T) {
	var bodies []map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", time.Second).Complete(context.Background(), "m1", "", nil, "hi")
	require.NoError(t, err)

	temp := 0.2
	_, err = NewClient(server.URL, "", time.Second, WithSampling(Sampling{Temperature: &temp, MaxTokens: 2048})).
		Complete(context.Background(), "m1", "", nil, "hi")
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.NotContains(t, bodies[0], "temperature")
	assert.NotContains(t, bodies[0], "max_tokens")
	assert.Equal(t, 0.2, bodies[1]["temperature"])
	assert.Equal(t, 2048.0, bodies[1]["max_tokens"])
}
