package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"career-chat/cmd/api/trace"
	"career-chat/cmd/internal/logger"
	"career-chat/config"
	"career-chat/models"
)

const SYSTEM_INSTRUCTION = "You are an educational and career mentor who guides students and professionals in any field. " +
	"You focus only on topics related to learning, skill-building, education, and career growth. " +
	"Your role is to provide clear, practical advice—roadmaps, study plans, productivity tips, career strategies, " +
	"and real-world learning guidance. " +
	"If a user asks something outside education or career growth, politely remind them that you only help with learning and career-related matters, " +
	"and redirect the conversation to relevant guidance."

// FORMAT_SUFFIX is appended to the outgoing copy of the latest turn only.
const FORMAT_SUFFIX = "\n\nFormat your answer with short paragraphs, bullet points, and a 7-day starter plan when useful."

const (
	ConfigMissingText  = "Error: google api key not found"
	EmptyHistoryText   = "Say something to start the chat 🙂"
	ServiceErrorPrefix = "AI error:"
)

var ErrEmptyResponse = errors.New("model returned no text")

type Status int

const (
	StatusOK Status = iota
	StatusEmptyHistory
	StatusConfigMissing
	StatusServiceFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmptyHistory:
		return "empty_history"
	case StatusConfigMissing:
		return "config_missing"
	case StatusServiceFailed:
		return "service_failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	LatencyMs    int64
	ModelName    string
	ModelVersion string
}

// Result is what Generate produces for every input. Text is always storable
// as the bot's reply; Status and Err tell callers which path produced it.
type Result struct {
	Status Status
	Text   string
	Err    error
	Usage  *Usage
}

// Request is a single chat call: a conversation seeded with History to which
// Message is sent as the next user turn.
type Request struct {
	Model             string
	SystemInstruction string
	History           []*genai.Content
	Message           string
}

// Backend performs the external call.
type Backend interface {
	Send(ctx context.Context, req Request) (*genai.GenerateContentResponse, error)
}

type Generator struct {
	backend Backend
	model   string
	timeout time.Duration
}

// New builds a Generator around backend. A nil backend means no credential is
// configured; every call then returns ConfigMissingText without any I/O.
func New(cfg config.GeminiConfig, backend Backend) *Generator {
	model := cfg.Model
	if model == "" {
		model = config.DefaultGeminiModel
	}
	return &Generator{backend: backend, model: model, timeout: cfg.Timeout}
}

// NewFromConfig wires the Gemini backend when cfg carries a credential.
func NewFromConfig(ctx context.Context, cfg config.GeminiConfig, httpClient *http.Client) (*Generator, error) {
	if !cfg.HasCredential() {
		return New(cfg, nil), nil
	}
	backend, err := NewGeminiBackend(ctx, cfg, httpClient)
	if err != nil {
		return nil, err
	}
	return New(cfg, backend), nil
}

// Configured reports whether a backend is available.
func (g *Generator) Configured() bool { return g.backend != nil }

// Generate returns the bot reply for history. It never returns an error:
// failures are reported through Result.Status and a human-readable Text.
func (g *Generator) Generate(ctx context.Context, history []models.Turn) (result Result) {
	if g.backend == nil {
		return Result{Status: StatusConfigMissing, Text: ConfigMissingText}
	}
	if len(history) == 0 {
		return Result{Status: StatusEmptyHistory, Text: EmptyHistoryText}
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = failed(fmt.Errorf("panic: %v", r))
		}
		g.logResult(ctx, result, time.Since(start))
	}()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	last := history[len(history)-1]
	req := Request{
		Model:             g.model,
		SystemInstruction: SYSTEM_INSTRUCTION,
		History:           toContents(history[:len(history)-1]),
		Message:           last.Text + FORMAT_SUFFIX,
	}

	resp, err := g.backend.Send(ctx, req)
	if err != nil {
		return failed(err)
	}
	if resp == nil {
		return failed(ErrEmptyResponse)
	}
	text := resp.Text()
	if text == "" {
		return failed(emptyResponseError(resp))
	}

	return Result{
		Status: StatusOK,
		Text:   text,
		Usage:  usageOf(resp, g.model, time.Since(start)),
	}
}

func failed(err error) Result {
	return Result{
		Status: StatusServiceFailed,
		Text:   ServiceErrorPrefix + err.Error(),
		Err:    err,
	}
}

func emptyResponseError(resp *genai.GenerateContentResponse) error {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil && resp.Candidates[0].FinishReason != "" {
		return fmt.Errorf("%w: finish reason %s", ErrEmptyResponse, resp.Candidates[0].FinishReason)
	}
	return ErrEmptyResponse
}

func toContents(turns []models.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		contents = append(contents, genai.NewContentFromText(t.Text, genai.Role(t.Role)))
	}
	return contents
}

func usageOf(resp *genai.GenerateContentResponse, model string, latency time.Duration) *Usage {
	u := &Usage{
		LatencyMs:    latency.Milliseconds(),
		ModelName:    model,
		ModelVersion: resp.ModelVersion,
	}
	if resp.UsageMetadata != nil {
		u.InputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		u.OutputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int64(resp.UsageMetadata.TotalTokenCount)
	}
	return u
}

func (g *Generator) logResult(ctx context.Context, r Result, latency time.Duration) {
	fields := logger.Fields{
		"model":      g.model,
		"status":     r.Status.String(),
		"latency_ms": latency.Milliseconds(),
		"request_id": trace.RequestIDFromContext(ctx),
		"session_id": trace.SessionIDFromContext(ctx),
	}
	if r.Usage != nil {
		fields["model_version"] = r.Usage.ModelVersion
		fields["input_tokens"] = r.Usage.InputTokens
		fields["output_tokens"] = r.Usage.OutputTokens
		fields["total_tokens"] = r.Usage.TotalTokens
	}
	if r.Err != nil {
		fields["error"] = r.Err.Error()
		logger.ErrorWithFields("llm request failed", fields)
		return
	}
	logger.InfoWithFields("llm request", fields)
}
