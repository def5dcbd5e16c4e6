package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"career-chat/cmd/api/trace"
	"career-chat/cmd/internal/logger"
)

// Config 는 아웃바운드 HTTP 클라이언트 공통 설정이다.
type Config struct {
	// Timeout 이 0 이면 클라이언트 수준 타임아웃을 두지 않는다.
	Timeout time.Duration
}

const maxBodyLog = 1024

// loggingRoundTripper 는 모든 아웃바운드 호출(Gemini API)에 대해 공통 로깅과
// X-Request-Id / X-Span-Id 헤더 트레이싱을 수행한다.
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	ctx := req.Context()
	requestID, spanID := trace.NextSpanID(ctx)
	sessionID := trace.SessionIDFromContext(ctx)

	// RoundTripper 는 원본 요청을 수정하면 안 되므로 복제한 뒤 헤더를 붙인다.
	out := req.Clone(ctx)
	out.Header.Set("X-Request-Id", requestID)
	out.Header.Set("X-Span-Id", spanID)

	// 바디 스니펫은 debug 로그에만 남긴다. (대화 내용이 포함된다)
	var bodySnippet string
	if req.Body != nil && req.GetBody != nil {
		if rc, err := req.GetBody(); err == nil {
			bodyBytes, _ := io.ReadAll(io.LimitReader(rc, maxBodyLog))
			rc.Close()
			bodySnippet = string(bodyBytes)
		}
	} else if req.Body != nil {
		if bodyBytes, err := io.ReadAll(req.Body); err == nil {
			if len(bodyBytes) > maxBodyLog {
				bodySnippet = string(bodyBytes[:maxBodyLog])
			} else {
				bodySnippet = string(bodyBytes)
			}
			out.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}
	}

	resp, err := l.inner.RoundTrip(out)
	duration := time.Since(start)
	fields := logger.Fields{
		"method":     req.Method,
		"host":       req.URL.Host,
		"path":       req.URL.Path,
		"duration":   duration.String(),
		"request_id": requestID,
		"span_id":    spanID,
	}
	if sessionID != "" {
		fields["session_id"] = sessionID
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("httpclient request failed", fields)
		return nil, err
	}

	fields["status"] = resp.StatusCode
	if bodySnippet != "" {
		fields["body"] = bodySnippet
	}
	logger.DebugWithFields("httpclient request success", fields)
	return resp, nil
}

// New 는 주어진 설정으로 로깅/트레이싱이 붙은 http.Client 를 생성한다.
func New(cfg Config) *http.Client {
	return NewWithTransport(cfg, http.DefaultTransport)
}

// NewWithTransport 는 테스트 등에서 내부 트랜스포트를 교체할 때 사용한다.
func NewWithTransport(cfg Config, transport http.RoundTripper) *http.Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &loggingRoundTripper{inner: transport},
	}
}
