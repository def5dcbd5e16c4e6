package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-chat/cmd/api/trace"
)

func TestRoundTripPropagatesTraceHeaders(t *testing.T) {
	var gotRequestID, gotSpanID, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-Id")
		gotSpanID = r.Header.Get("X-Span-Id")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx := trace.WithRequestAndSpan(context.Background(), "req-42", 0)
	trace.SetSessionID(ctx, "abc")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+"/v1beta/models", strings.NewReader(`{"contents":[]}`))
	require.NoError(t, err)

	resp, err := New(Config{}).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "req-42", gotRequestID)
	assert.Equal(t, "1", gotSpanID)
	assert.Equal(t, `{"contents":[]}`, gotBody)
	assert.Empty(t, req.Header.Get("X-Request-Id"), "original request must not be mutated")
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, io.ErrUnexpectedEOF
}

func TestRoundTripReturnsTransportError(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://gemini.invalid/", nil)
	require.NoError(t, err)

	_, err = NewWithTransport(Config{}, failingTransport{}).Do(req)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
