package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"career-chat/cmd/api/dto"
	"career-chat/cmd/api/generator"
	"career-chat/cmd/api/services"
	"career-chat/config"
	"career-chat/models"
	"career-chat/repositories"
)

func newHistoryService(t *testing.T) (*services.ChatService, repositories.ChatMessageRepository) {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "chatbot.db")

	repo, err := repositories.Open(context.Background(), cfg.Storage)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close(context.Background()) })

	return services.NewChatService(repo, generator.New(cfg.Gemini, nil)), repo
}

func TestRunHistory_PrintsTranscript(t *testing.T) {
	svc, _ := newHistoryService(t)
	ctx := context.Background()

	_, chatErr := svc.CreateMessage(ctx, "Hi", "abc")
	require.Nil(t, chatErr)

	var out bytes.Buffer
	require.NoError(t, runHistory(ctx, &out, svc, "abc", false))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first, second dto.ChatMessageDTO
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "user", first.Role)
	assert.Equal(t, "Hi", first.Content)
	assert.Equal(t, "bot", second.Role)
	assert.Equal(t, generator.ConfigMissingText, second.Content)
}

func TestRunHistory_Delete(t *testing.T) {
	svc, repo := newHistoryService(t)
	ctx := context.Background()

	_, chatErr := svc.CreateMessage(ctx, "Hi", "abc")
	require.Nil(t, chatErr)

	var out bytes.Buffer
	require.NoError(t, runHistory(ctx, &out, svc, "abc", true))
	assert.Equal(t, "deleted 2 messages from session abc\n", out.String())

	exists, err := repo.SessionExists(ctx, models.SessionID("abc"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunHistory_UnknownSession(t *testing.T) {
	svc, _ := newHistoryService(t)

	var out bytes.Buffer
	require.NoError(t, runHistory(context.Background(), &out, svc, "never-seen", false))
	assert.Equal(t, "unknown session never-seen\n", out.String())
}

func TestHistoryCommandRequiresSession(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"history"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session")
}
