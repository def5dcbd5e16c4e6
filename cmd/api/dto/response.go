package dto

// ErrorResponseDTO는 공통 에러 응답 형식을 통일하기 위한 DTO이다.
type ErrorResponseDTO struct {
	Error string `json:"error" example:"missing_session_id"`
}

// OkResponseDTO는 삭제처럼 결과 본문이 없는 요청의 응답이다.
type OkResponseDTO struct {
	Ok bool `json:"ok" example:"true"`
}

type HealthResponseDTO struct {
	Status string `json:"status" example:"ok"`
}
