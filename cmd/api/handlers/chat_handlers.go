package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"career-chat/cmd/api/dto"
	"career-chat/cmd/api/services"
	"career-chat/cmd/api/trace"
	"career-chat/cmd/internal/logger"
)

// CreateChatMessageHandler godoc
// @Summary      Send a message
// @Description  Stores the user message, asks the career mentor model for a reply using the whole session history, stores the reply and returns it. Model failures are returned as a normal bot message whose text describes the failure.
// @Tags         chatmessages
// @Accept       json
// @Produce      json
// @Param        X-Session-Id  header    string                           false  "Session identifier (a one-off id is generated when omitted)"
// @Param        body          body      dto.CreateChatMessageRequestDTO  true   "message"
// @Success      200           {object}  dto.ChatMessageDTO
// @Failure      400           {object}  dto.ErrorResponseDTO
// @Failure      500           {object}  dto.ErrorResponseDTO
// @Router       /chatmessages/ [post]
func CreateChatMessageHandler(svc *services.ChatService, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CreateChatMessageRequestDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_request"})
			return
		}

		sessionID := resolveSessionID(c, opts)
		bot, chatErr := svc.CreateMessage(c.Request.Context(), *req.Content, sessionID)
		if chatErr != nil {
			respondChatError(c, chatErr)
			return
		}

		c.JSON(http.StatusOK, dto.NewChatMessageDTO(*bot))
	}
}

// ListChatMessagesHandler godoc
// @Summary      Read history
// @Description  Returns every message of the session in conversation order. Unknown sessions return an empty list.
// @Tags         chatmessages
// @Produce      json
// @Param        X-Session-Id  header    string  false  "Session identifier"
// @Success      200           {array}   dto.ChatMessageDTO
// @Failure      500           {object}  dto.ErrorResponseDTO
// @Router       /chatmessages/ [get]
func ListChatMessagesHandler(svc *services.ChatService, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := resolveSessionID(c, opts)
		msgs, chatErr := svc.ListMessages(c.Request.Context(), sessionID)
		if chatErr != nil {
			respondChatError(c, chatErr)
			return
		}

		c.JSON(http.StatusOK, dto.NewChatMessageDTOs(msgs))
	}
}

// DeleteChatMessagesHandler godoc
// @Summary      Delete history
// @Description  Deletes every message of the session. Succeeds even when nothing was stored.
// @Tags         chatmessages
// @Produce      json
// @Param        X-Session-Id  header    string  true  "Session identifier"
// @Success      200           {object}  dto.OkResponseDTO
// @Failure      400           {object}  dto.ErrorResponseDTO
// @Failure      500           {object}  dto.ErrorResponseDTO
// @Router       /chatmessages/ [delete]
func DeleteChatMessagesHandler(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := requireSessionIDFromHeader(c)
		if !ok {
			return
		}

		if _, chatErr := svc.DeleteHistory(c.Request.Context(), sessionID); chatErr != nil {
			respondChatError(c, chatErr)
			return
		}

		c.JSON(http.StatusOK, dto.OkResponseDTO{Ok: true})
	}
}

// HealthHandler godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponseDTO
// @Router       / [get]
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponseDTO{Status: "ok"})
	}
}

// ReadinessHandler godoc
// @Summary      Readiness check
// @Description  Verifies the message store is reachable.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponseDTO
// @Failure      503  {object}  object{status=string,store=string}
// @Router       /health [get]
func ReadinessHandler(svc *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Ping(c.Request.Context()); err != nil {
			// 저장소 경로나 접속 URI 가 노출되지 않도록 원인은 로그에만 남긴다.
			logger.ErrorWithFields("store ping failed", logger.Fields{
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"request_id": trace.RequestIDFromContext(c.Request.Context()),
				"error":      err.Error(),
			})
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": "down"})
			return
		}
		c.JSON(http.StatusOK, dto.HealthResponseDTO{Status: "ok"})
	}
}

func respondChatError(c *gin.Context, chatErr *services.ChatError) {
	if chatErr.StatusCode >= http.StatusInternalServerError {
		logger.ErrorWithFields("chat request failed", logger.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": trace.RequestIDFromContext(c.Request.Context()),
			"session_id": trace.SessionIDFromContext(c.Request.Context()),
			"error":      chatErr.Error(),
		})
	}
	c.JSON(chatErr.StatusCode, dto.ErrorResponseDTO{Error: chatErr.ErrorCode})
}
