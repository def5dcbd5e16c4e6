package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"career-chat/config"
	"career-chat/models"
)

type fakeBackend struct {
	calls []Request
	resp  *genai.GenerateContentResponse
	err   error
	panic any
	block bool
}

func (f *fakeBackend) Send(ctx context.Context, req Request) (*genai.GenerateContentResponse, error) {
	f.calls = append(f.calls, req)
	if f.panic != nil {
		panic(f.panic)
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText(text, genai.RoleModel),
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
			TotalTokenCount:      15,
		},
		ModelVersion: "gemini-2.5-flash-001",
	}
}

var testCfg = config.GeminiConfig{APIKey: "test-key", Model: "gemini-test"}

func TestGenerate_ConfigMissing(t *testing.T) {
	g, err := NewFromConfig(context.Background(), config.GeminiConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, g.Configured())

	res := g.Generate(context.Background(), []models.Turn{{Role: models.TurnRoleUser, Text: "Hi"}})
	assert.Equal(t, StatusConfigMissing, res.Status)
	assert.Equal(t, ConfigMissingText, res.Text)
	assert.NoError(t, res.Err)

	// credential check precedes the empty-history check
	res = g.Generate(context.Background(), nil)
	assert.Equal(t, StatusConfigMissing, res.Status)
}

func TestGenerate_EmptyHistorySkipsBackend(t *testing.T) {
	backend := &fakeBackend{resp: textResponse("unused")}
	g := New(testCfg, backend)

	res := g.Generate(context.Background(), []models.Turn{})
	assert.Equal(t, StatusEmptyHistory, res.Status)
	assert.Equal(t, EmptyHistoryText, res.Text)
	assert.Empty(t, backend.calls)
}

func TestGenerate_SingleTurn(t *testing.T) {
	backend := &fakeBackend{resp: textResponse("Start with the basics.")}
	g := New(testCfg, backend)

	res := g.Generate(context.Background(), []models.Turn{{Role: models.TurnRoleUser, Text: "How do I learn Go?"}})

	require.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "Start with the basics.", res.Text)
	require.Len(t, backend.calls, 1)
	call := backend.calls[0]
	assert.Equal(t, "gemini-test", call.Model)
	assert.Equal(t, SYSTEM_INSTRUCTION, call.SystemInstruction)
	assert.Empty(t, call.History)
	assert.Equal(t, "How do I learn Go?"+FORMAT_SUFFIX, call.Message)

	require.NotNil(t, res.Usage)
	assert.EqualValues(t, 10, res.Usage.InputTokens)
	assert.EqualValues(t, 5, res.Usage.OutputTokens)
	assert.EqualValues(t, 15, res.Usage.TotalTokens)
	assert.Equal(t, "gemini-2.5-flash-001", res.Usage.ModelVersion)
}

func TestGenerate_SeedsPriorTurnsAndLeavesInputUntouched(t *testing.T) {
	backend := &fakeBackend{resp: textResponse("Week 1: ...")}
	g := New(testCfg, backend)

	turns := []models.Turn{
		{Role: models.TurnRoleUser, Text: "Hi"},
		{Role: models.TurnRoleModel, Text: "Hello!"},
		{Role: models.TurnRoleUser, Text: "Give me a plan"},
	}
	res := g.Generate(context.Background(), turns)
	require.Equal(t, StatusOK, res.Status)

	call := backend.calls[0]
	require.Len(t, call.History, 2)
	assert.Equal(t, "user", call.History[0].Role)
	assert.Equal(t, "Hi", call.History[0].Parts[0].Text)
	assert.Equal(t, "model", call.History[1].Role)
	assert.Equal(t, "Hello!", call.History[1].Parts[0].Text)
	assert.Equal(t, "Give me a plan"+FORMAT_SUFFIX, call.Message)

	assert.Equal(t, "Give me a plan", turns[2].Text)
}

func TestGenerate_ServiceErrorIsReportedAsText(t *testing.T) {
	cause := errors.New("quota exceeded")
	g := New(testCfg, &fakeBackend{err: cause})

	res := g.Generate(context.Background(), []models.Turn{{Role: models.TurnRoleUser, Text: "Hi"}})

	assert.Equal(t, StatusServiceFailed, res.Status)
	assert.Equal(t, "AI error:quota exceeded", res.Text)
	assert.ErrorIs(t, res.Err, cause)
}

func TestGenerate_EmptyResponse(t *testing.T) {
	testCases := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{name: "nil response"},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}},
		{
			name: "blocked prompt",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			g := New(testCfg, &fakeBackend{resp: testCase.resp})

			res := g.Generate(context.Background(), []models.Turn{{Role: models.TurnRoleUser, Text: "Hi"}})
			assert.Equal(t, StatusServiceFailed, res.Status)
			assert.ErrorIs(t, res.Err, ErrEmptyResponse)
			assert.Contains(t, res.Text, ServiceErrorPrefix)
		})
	}
}

func TestGenerate_PanicIsRecovered(t *testing.T) {
	g := New(testCfg, &fakeBackend{panic: "sdk exploded"})

	res := g.Generate(context.Background(), []models.Turn{{Role: models.TurnRoleUser, Text: "Hi"}})
	assert.Equal(t, StatusServiceFailed, res.Status)
	assert.Equal(t, "AI error:panic: sdk exploded", res.Text)
}

func TestGenerate_Timeout(t *testing.T) {
	cfg := testCfg
	cfg.Timeout = 20 * time.Millisecond
	g := New(cfg, &fakeBackend{block: true})

	res := g.Generate(context.Background(), []models.Turn{{Role: models.TurnRoleUser, Text: "Hi"}})
	assert.Equal(t, StatusServiceFailed, res.Status)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestNew_DefaultModel(t *testing.T) {
	backend := &fakeBackend{resp: textResponse("ok")}
	g := New(config.GeminiConfig{APIKey: "k"}, backend)

	g.Generate(context.Background(), []models.Turn{{Role: models.TurnRoleUser, Text: "Hi"}})
	assert.Equal(t, config.DefaultGeminiModel, backend.calls[0].Model)
}
