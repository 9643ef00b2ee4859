package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragforge/llminvoke/invoker"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *openai.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func TestChatInvoker(t *testing.T) {
	var captured openai.ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Hello!"},"finish_reason":"stop"}]}`))
	})

	chat := NewChatInvoker(client, "gpt-4o")
	resp, err := chat.Invoke(context.Background(), &invoker.Request{
		Input:   "say hello",
		History: []invoker.Message{{Role: "system", Content: "be brief"}},
		Parameters: map[string]any{
			"temperature": 0.5,
			"max_tokens":  100,
			"n":           1,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello!", resp.Output)
	require.Len(t, resp.History, 3)
	assert.Equal(t, invoker.Message{Role: "user", Content: "say hello"}, resp.History[1])
	assert.Equal(t, invoker.Message{Role: "assistant", Content: "Hello!"}, resp.History[2])

	assert.Equal(t, "gpt-4o", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.InDelta(t, 0.5, captured.Temperature, 0.001)
	assert.Equal(t, 100, captured.MaxTokens)
	assert.Equal(t, 1, captured.N)
}

func TestChatInvoker_VariableExpansion(t *testing.T) {
	var captured openai.ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	})

	chat := NewChatInvoker(client, "gpt-4o")
	_, err := chat.Invoke(context.Background(), &invoker.Request{
		Input:     "summarize ${topic} briefly",
		Variables: map[string]string{"topic": "token buckets"},
	})
	require.NoError(t, err)
	assert.Equal(t, "summarize token buckets briefly", captured.Messages[0].Content)
}

func TestChatInvoker_JSONMode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"answer\":42}"}}]}`))
	})

	chat := NewChatInvoker(client, "gpt-4o")
	resp, err := chat.Invoke(context.Background(), &invoker.Request{Input: "q", JSONMode: true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"answer": float64(42)}, resp.JSON)
}

func TestChatInvoker_NonStringInput(t *testing.T) {
	chat := NewChatInvoker(nil, "gpt-4o")
	_, err := chat.Invoke(context.Background(), &invoker.Request{Input: 42})
	assert.Error(t, err)
}

func TestEmbeddingInvoker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}]}`))
	})

	emb := NewEmbeddingInvoker(client, openai.SmallEmbedding3)
	resp, err := emb.Invoke(context.Background(), &invoker.Request{Input: []string{"hello"}})
	require.NoError(t, err)

	vectors, ok := resp.Output.([][]float32)
	require.True(t, ok)
	require.Len(t, vectors, 1)
	assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, vectors[0], 0.001)
}

func TestClassifier_RateLimit(t *testing.T) {
	c := Classifier()

	rateLimited := &openai.APIError{
		HTTPStatusCode: http.StatusTooManyRequests,
		Message:        "Requests to the API have exceeded the limit. Please retry after 7 seconds.",
	}

	assert.True(t, c.IsRetryable(rateLimited))
	assert.True(t, c.IsRateLimit(rateLimited))
	assert.Equal(t, 7*time.Second, c.SleepRecommendation(rateLimited))
}

func TestClassifier_TransientServerErrors(t *testing.T) {
	c := Classifier()

	for _, status := range []int{408, 500, 502, 503, 504} {
		err := &openai.APIError{HTTPStatusCode: status}
		assert.True(t, c.IsRetryable(err), "status %d should be retryable", status)
		assert.False(t, c.IsRateLimit(err), "status %d is not a rate limit", status)
	}
}

func TestClassifier_NonRetryable(t *testing.T) {
	c := Classifier()

	assert.False(t, c.IsRetryable(&openai.APIError{HTTPStatusCode: http.StatusBadRequest}))
	assert.False(t, c.IsRetryable(&openai.APIError{HTTPStatusCode: http.StatusUnauthorized}))
	assert.False(t, c.IsRetryable(errors.New("boom")))
	assert.False(t, c.IsRateLimit(errors.New("boom")))
	assert.Zero(t, c.SleepRecommendation(errors.New("boom")))
}

func TestClassifier_NoSleepHint(t *testing.T) {
	c := Classifier()

	err := &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"}
	assert.Zero(t, c.SleepRecommendation(err))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	a := r.Client(ClientConfig{APIKey: "key-1"})
	b := r.Client(ClientConfig{APIKey: "key-1"})
	other := r.Client(ClientConfig{APIKey: "key-2"})

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
	assert.Equal(t, 2, r.Len())

	r.Close()
	assert.Equal(t, 0, r.Len())

	// Usable again after Close
	fresh := r.Client(ClientConfig{APIKey: "key-1"})
	assert.NotNil(t, fresh)
	assert.NotSame(t, a, fresh)
}
