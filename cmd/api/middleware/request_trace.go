package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"career-chat/cmd/api/trace"
	"career-chat/cmd/internal/logger"
)

const (
	headerRequestID = "X-Request-Id"
	headerSpanID    = "X-Span-Id"

	maxBodyLog = 1024
)

// RequestTrace 는 모든 inbound 요청에 Request ID 를 보장하고 컨텍스트/응답 헤더에 저장한 뒤,
// 처리가 끝나면 method/path/status/duration 과 세션 ID 를 함께 로깅한다.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		requestID := req.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = trace.GenerateID()
		}

		// inbound 는 span 0, Gemini 호출은 1,2,3,... 로 증가한다.
		ctxWithTrace := trace.WithRequestAndSpan(req.Context(), requestID, 0)
		c.Request = req.WithContext(ctxWithTrace)
		req = c.Request

		c.Writer.Header().Set(headerRequestID, requestID)
		c.Writer.Header().Set(headerSpanID, trace.CurrentSpanID(ctxWithTrace))

		var bodySnippet string
		if req.Body != nil && req.ContentLength != 0 &&
			(req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch) {
			if bodyBytes, err := io.ReadAll(req.Body); err == nil {
				if len(bodyBytes) > maxBodyLog {
					bodySnippet = string(bodyBytes[:maxBodyLog])
				} else {
					bodySnippet = string(bodyBytes)
				}
				// 핸들러에서 다시 읽을 수 있도록 Body 를 복원한다.
				c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			}
		}

		logger.DebugWithFields("request started", logger.Fields{
			"method":     req.Method,
			"path":       req.URL.Path,
			"request_id": requestID,
		})

		c.Next()

		duration := time.Since(start)
		fields := logger.Fields{
			"method":      req.Method,
			"path":        req.URL.Path,
			"status":      c.Writer.Status(),
			"duration":    duration.String(),
			"duration_ms": duration.Milliseconds(),
			"request_id":  requestID,
			"span_id":     trace.CurrentSpanID(c.Request.Context()),
		}
		if sid := trace.SessionIDFromContext(c.Request.Context()); sid != "" {
			fields["session_id"] = sid
		}
		if bodySnippet != "" {
			fields["body"] = bodySnippet
		}
		logger.InfoWithFields("completed request", fields)
	}
}
