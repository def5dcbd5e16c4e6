package generator

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"career-chat/cmd/api/httpclient"
	"career-chat/models"
)

const geminiReply = `{
  "candidates": [{
    "content": {"role": "model", "parts": [{"text": "Day 1: set up Go."}]},
    "finishReason": "STOP"
  }],
  "usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 6, "totalTokenCount": 18},
  "modelVersion": "gemini-test-001"
}`

func TestGeminiBackend_EndToEnd(t *testing.T) {
	var gotPath, gotBody, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, geminiReply)
	}))
	defer srv.Close()

	backend, err := newGeminiBackend(context.Background(), testCfg, httpclient.New(httpclient.Config{}), genai.HTTPOptions{BaseURL: srv.URL})
	require.NoError(t, err)
	g := New(testCfg, backend)

	res := g.Generate(context.Background(), []models.Turn{
		{Role: models.TurnRoleUser, Text: "Hi"},
		{Role: models.TurnRoleModel, Text: "Hello!"},
		{Role: models.TurnRoleUser, Text: "Plan please"},
	})

	require.Equal(t, StatusOK, res.Status, res.Text)
	assert.Equal(t, "Day 1: set up Go.", res.Text)
	assert.EqualValues(t, 18, res.Usage.TotalTokens)
	assert.Equal(t, "gemini-test-001", res.Usage.ModelVersion)

	assert.True(t, strings.HasSuffix(gotPath, "models/gemini-test:generateContent"), gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotBody, "educational and career mentor")
	assert.Contains(t, gotBody, "Hello!")
	assert.Contains(t, gotBody, "7-day starter plan")
}

func TestGeminiBackend_HTTPErrorBecomesServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error": {"code": 429, "message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}}`)
	}))
	defer srv.Close()

	backend, err := newGeminiBackend(context.Background(), testCfg, nil, genai.HTTPOptions{BaseURL: srv.URL})
	require.NoError(t, err)

	res := New(testCfg, backend).Generate(context.Background(), []models.Turn{{Role: models.TurnRoleUser, Text: "Hi"}})
	assert.Equal(t, StatusServiceFailed, res.Status)
	assert.True(t, strings.HasPrefix(res.Text, ServiceErrorPrefix))
	assert.Error(t, res.Err)
}
