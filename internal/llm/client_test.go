package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func contentResponse(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	c, err := NewClient(Config{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, "groq:"+DefaultModel, c.Name(), "defaults applied")
}

func TestGenerate_Success(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(contentResponse("```starlark\nresult = tbl.head(df, 5)\n```")))
	})

	c, err := NewClient(Config{APIKey: "secret", Model: "test-model", BaseURL: srv.URL})
	require.NoError(t, err)

	content, err := c.Generate(context.Background(), "show the first rows")
	require.NoError(t, err)
	assert.Contains(t, content, "tbl.head(df, 5)")

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "test-model", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Contains(t, gotReq.Messages[1].Content, "show the first rows")
	assert.InDelta(t, 0.1, gotReq.Temperature, 1e-9)
}

func TestGenerate_APIErrorStatus(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limit exceeded"}}`))
	})

	c, err := NewClient(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "anything")
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "rate limit exceeded", provErr.Reason)
}

func TestGenerate_SentinelContent(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(contentResponse(ErrSentinel + " upstream unavailable")))
	})

	c, err := NewClient(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "anything")
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr, "sentinel content is a provider failure")
	assert.Contains(t, provErr.Raw, "upstream unavailable")
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	c, err := NewClient(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "anything")
	var provErr *ProviderError
	assert.ErrorAs(t, err, &provErr)
}

func TestGenerate_MalformedResponse(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	})

	c, err := NewClient(Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "anything")
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, provErr.Raw, "gateway error", "raw body preserved")
}

func TestGenerate_TransportFailure(t *testing.T) {
	c, err := NewClient(Config{APIKey: "key", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "anything")
	var provErr *ProviderError
	assert.ErrorAs(t, err, &provErr)
}
