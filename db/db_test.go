package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_CreatesParentDirAndSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "data", "chatbot.db")

	conn, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)

	var n int
	require.NoError(t, conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE name IN ('chat_messages', 'idx_chat_messages_session_id')`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestEnsureSQLiteSchema_Idempotent(t *testing.T) {
	ctx := context.Background()
	conn, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "chatbot.db"))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.ExecContext(ctx, `INSERT INTO chat_messages (content, role, session_id) VALUES ('Hi', 'user', 'abc')`)
	require.NoError(t, err)

	require.NoError(t, EnsureSQLiteSchema(ctx, conn))

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_messages`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestConnectMongo(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()

	cl, d, err := ConnectMongo(ctx, uri, "careerchat_db_test")
	require.NoError(t, err)
	defer cl.Disconnect(ctx)
	defer d.Drop(ctx)

	require.NoError(t, EnsureMongoIndexes(ctx, d))
}
