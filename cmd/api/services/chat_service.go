package services

import (
	"context"
	"errors"
	"net/http"

	"career-chat/cmd/api/generator"
	"career-chat/cmd/api/trace"
	"career-chat/cmd/internal/logger"
	"career-chat/history"
	"career-chat/models"
	"career-chat/repositories"
)

var ErrMissingSessionID = errors.New("session id is required")

// ResponseGenerator produces the bot reply for an assembled history.
type ResponseGenerator interface {
	Generate(ctx context.Context, turns []models.Turn) generator.Result
}

type ChatService struct {
	repo              repositories.ChatMessageRepository
	gen               ResponseGenerator
	compensateOrphans bool
}

// ChatError carries the HTTP status and error code a handler should answer with.
type ChatError struct {
	StatusCode int
	ErrorCode  string
	Cause      error
}

func (e *ChatError) Error() string {
	if e == nil {
		return "chat_failed"
	}
	if e.Cause != nil {
		return e.ErrorCode + ": " + e.Cause.Error()
	}
	return e.ErrorCode
}

func (e *ChatError) Unwrap() error { return e.Cause }

func internalError(err error) *ChatError {
	return &ChatError{StatusCode: http.StatusInternalServerError, ErrorCode: "internal_error", Cause: err}
}

type ChatServiceOption func(*ChatService)

// WithOrphanCompensation deletes the stored user message when storing the bot
// reply fails, so the two appear as one logical turn or not at all.
func WithOrphanCompensation(enabled bool) ChatServiceOption {
	return func(s *ChatService) { s.compensateOrphans = enabled }
}

func NewChatService(repo repositories.ChatMessageRepository, gen ResponseGenerator, opts ...ChatServiceOption) *ChatService {
	s := &ChatService{repo: repo, gen: gen}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateMessage stores the user message, generates a reply from the full
// session history and returns the stored bot message.
func (s *ChatService) CreateMessage(ctx context.Context, content string, sessionID models.SessionID) (*models.ChatMessage, *ChatError) {
	userMsg, err := s.repo.Insert(ctx, content, models.RoleUser, sessionID)
	if err != nil {
		return nil, internalError(err)
	}

	msgs, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, internalError(err)
	}

	result := s.gen.Generate(ctx, history.Assemble(msgs))

	botMsg, err := s.repo.Insert(ctx, result.Text, models.RoleBot, sessionID)
	if err != nil {
		if s.compensateOrphans {
			s.compensate(ctx, userMsg, err)
		}
		return nil, internalError(err)
	}
	return botMsg, nil
}

func (s *ChatService) compensate(ctx context.Context, userMsg *models.ChatMessage, cause error) {
	fields := logger.Fields{
		"request_id": trace.RequestIDFromContext(ctx),
		"session_id": userMsg.SessionID.String(),
		"message_id": userMsg.ID,
		"cause":      cause.Error(),
	}
	// 요청 컨텍스트가 취소된 경우에도 보상 삭제는 수행한다.
	if err := s.repo.DeleteByID(context.WithoutCancel(ctx), userMsg.ID); err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("orphan user message compensation failed", fields)
		return
	}
	logger.WarnWithFields("orphan user message removed", fields)
}

// ListMessages returns the session's transcript in id order (possibly empty).
func (s *ChatService) ListMessages(ctx context.Context, sessionID models.SessionID) ([]models.ChatMessage, *ChatError) {
	msgs, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, internalError(err)
	}
	return msgs, nil
}

// DeleteHistory removes every message of the session. Deleting an unknown
// session succeeds with a zero count.
func (s *ChatService) DeleteHistory(ctx context.Context, sessionID models.SessionID) (int64, *ChatError) {
	if sessionID.IsZero() {
		return 0, &ChatError{StatusCode: http.StatusBadRequest, ErrorCode: "missing_session_id", Cause: ErrMissingSessionID}
	}
	n, err := s.repo.DeleteBySession(ctx, sessionID)
	if err != nil {
		return 0, internalError(err)
	}
	return n, nil
}

// SessionExists reports whether any message is stored for the session.
func (s *ChatService) SessionExists(ctx context.Context, sessionID models.SessionID) (bool, *ChatError) {
	exists, err := s.repo.SessionExists(ctx, sessionID)
	if err != nil {
		return false, internalError(err)
	}
	return exists, nil
}

// Ping checks the store for the detailed health check.
func (s *ChatService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
