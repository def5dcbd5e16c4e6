package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"career-chat/cmd/api/dto"
	"career-chat/cmd/api/trace"
	"career-chat/cmd/internal/logger"
	"career-chat/models"
)

// HeaderSessionID 는 클라이언트가 대화 세션을 지정하는 헤더다.
const HeaderSessionID = "X-Session-Id"

// SessionOptions 는 세션 헤더가 없는 요청의 처리 방식을 정한다.
type SessionOptions struct {
	// EchoGeneratedID 가 true 이면 임시로 생성한 세션 ID 를 응답 헤더로 돌려준다.
	EchoGeneratedID bool
}

// generateSessionID 는 헤더가 없는 요청용 1회성 세션 ID 를 만든다.
func generateSessionID() models.SessionID {
	return models.SessionID("dev-" + uuid.NewString())
}

// resolveSessionID 는 헤더의 세션 ID 를 사용하고, 없으면 이번 요청에만 쓰이는
// 세션 ID 를 생성한다. 생성된 ID 는 기본적으로 클라이언트에게 돌려주지 않으므로
// 헤더 없이 호출하면 매번 새로운 대화가 된다.
func resolveSessionID(c *gin.Context, opts SessionOptions) models.SessionID {
	if sid := models.SessionID(strings.TrimSpace(c.GetHeader(HeaderSessionID))); !sid.IsZero() {
		trace.SetSessionID(c.Request.Context(), sid.String())
		return sid
	}

	sid := generateSessionID()
	trace.SetSessionID(c.Request.Context(), sid.String())
	logger.WarnWithFields("session header missing; using one-off session id", logger.Fields{
		"request_id": trace.RequestIDFromContext(c.Request.Context()),
		"session_id": sid.String(),
		"path":       c.Request.URL.Path,
		"echoed":     opts.EchoGeneratedID,
	})
	if opts.EchoGeneratedID {
		c.Header(HeaderSessionID, sid.String())
	}
	return sid
}

// requireSessionIDFromHeader 는 세션 헤더가 필수인 엔드포인트에서 사용한다.
// 없으면 400 응답을 내려주고 false 를 반환한다.
func requireSessionIDFromHeader(c *gin.Context) (models.SessionID, bool) {
	sid := models.SessionID(strings.TrimSpace(c.GetHeader(HeaderSessionID)))
	if sid.IsZero() {
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "missing_session_id"})
		return "", false
	}
	trace.SetSessionID(c.Request.Context(), sid.String())
	return sid, true
}
