package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync/atomic"
	"time"
)

// 컨텍스트 키 타입은 외부에서 직접 사용하지 못하게 unexported 로 둔다.
type ctxKey string

const ctxKeyTrace ctxKey = "trace_info"

// Info 는 하나의 HTTP 요청에 대한 트레이싱 정보를 담는다.
//   - RequestID: 요청 단위로 고유
//   - SessionID: 요청이 속한 대화 세션 (핸들러가 확정한 뒤 채운다)
//   - spanSeq: 동일 RequestID 안에서 outbound 호출(Gemini)마다 1,2,3,... 증가
type Info struct {
	RequestID string
	sessionID atomic.Value
	spanSeq   int64
}

// GenerateID 는 트레이싱에 사용할 랜덤 ID 를 생성한다.
func GenerateID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// rand 실패 시 타임스탬프 기반 fallback
		return time.Now().UTC().Format("20060102T150405.000000000")
	}
	return hex.EncodeToString(b[:])
}

// WithRequestAndSpan 은 Request ID 와 초기 Span 값(보통 0)을 담은 새 컨텍스트를 반환한다.
func WithRequestAndSpan(ctx context.Context, requestID string, initialSpan int64) context.Context {
	info := &Info{RequestID: requestID, spanSeq: initialSpan}
	return context.WithValue(ctx, ctxKeyTrace, info)
}

func infoFromContext(ctx context.Context) *Info {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(ctxKeyTrace).(*Info)
	return v
}

// RequestIDFromContext 는 컨텍스트에서 Request ID 를 조회한다.
func RequestIDFromContext(ctx context.Context) string {
	info := infoFromContext(ctx)
	if info == nil {
		return ""
	}
	return info.RequestID
}

// SetSessionID 는 요청에 확정된 세션 ID 를 기록한다. 트레이스 정보가 없으면 무시한다.
func SetSessionID(ctx context.Context, sessionID string) {
	if info := infoFromContext(ctx); info != nil {
		info.sessionID.Store(sessionID)
	}
}

// SessionIDFromContext 는 SetSessionID 로 기록된 세션 ID 를 반환한다.
func SessionIDFromContext(ctx context.Context) string {
	info := infoFromContext(ctx)
	if info == nil {
		return ""
	}
	s, _ := info.sessionID.Load().(string)
	return s
}

// CurrentSpanID 는 현재 span 시퀀스 값을 문자열로 반환한다. (증가시키지 않는다.)
func CurrentSpanID(ctx context.Context) string {
	info := infoFromContext(ctx)
	if info == nil {
		return "0"
	}
	val := atomic.LoadInt64(&info.spanSeq)
	if val <= 0 {
		return "0"
	}
	return strconv.FormatInt(val, 10)
}

// NextSpanID 는 spanSeq 를 1 증가시키고 (requestID, spanID) 를 반환한다.
func NextSpanID(ctx context.Context) (string, string) {
	info := infoFromContext(ctx)
	if info == nil {
		// 미들웨어 바깥(CLI 등)에서 사용된 경우
		return GenerateID(), "1"
	}
	val := atomic.AddInt64(&info.spanSeq, 1)
	if val <= 0 {
		val = 1
	}
	return info.RequestID, strconv.FormatInt(val, 10)
}
