package dto

import "career-chat/models"

// CreateChatMessageRequestDTO 는 POST /chatmessages/ 요청 바디다.
// content 는 필수지만 빈 문자열은 허용한다.
type CreateChatMessageRequestDTO struct {
	Content *string `json:"content" binding:"required" example:"How do I become a backend developer?"`
}

// ChatMessageDTO 는 저장된 메시지 한 건의 응답 형식이다.
type ChatMessageDTO struct {
	ID        int64  `json:"id" example:"2"`
	Content   string `json:"content" example:"Here is a 7-day starter plan..."`
	Role      string `json:"role" example:"bot" enums:"user,bot"`
	SessionID string `json:"session_id" example:"abc"`
}

func NewChatMessageDTO(m models.ChatMessage) ChatMessageDTO {
	return ChatMessageDTO{
		ID:        m.ID,
		Content:   m.Content,
		Role:      string(m.Role),
		SessionID: m.SessionID.String(),
	}
}

func NewChatMessageDTOs(msgs []models.ChatMessage) []ChatMessageDTO {
	out := make([]ChatMessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, NewChatMessageDTO(m))
	}
	return out
}
