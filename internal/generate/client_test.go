package generate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "test-key", MaxRetries: 2})
	require.NoError(t, err)
	return c, srv
}

func chatBody(content string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, content)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "http://x"})
	require.Error(t, err)

	_, err = NewClient(ClientConfig{APIKey: "k"})
	require.Error(t, err)
}

func TestGenerate(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)
		assert.Equal(t, "system", req.Messages[0].Role)

		fmt.Fprint(w, chatBody("picked 1 and 3"))
	})

	text, err := c.Generate(context.Background(), Request{
		System:   "choose from the list",
		Messages: []Message{{Role: "user", Content: "recommend something sad"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "picked 1 and 3", text)
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, chatBody("ok"))
	})

	text, err := c.Generate(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad prompt","type":"invalid_request_error"}}`)
	})

	_, err := c.Generate(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad prompt")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateEmptyChoices(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	})

	_, err := c.Generate(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	require.Error(t, err)
}

func TestGenerateHonorsCancellation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	require.Error(t, err)
}

func TestGeneratorFunc(t *testing.T) {
	g := GeneratorFunc(func(_ context.Context, req Request) (string, error) {
		return "echo: " + req.Messages[0].Content, nil
	})
	text, err := g.Generate(context.Background(), Request{Messages: []Message{{Role: "user", Content: "x"}}})
	require.NoError(t, err)
	assert.Equal(t, "echo: x", text)
}
