package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"career-chat/models"
)

type SQLiteChatMessageRepository struct {
	db *sql.DB
}

func NewSQLiteChatMessageRepository(conn *sql.DB) *SQLiteChatMessageRepository {
	return &SQLiteChatMessageRepository{db: conn}
}

// Insert stores a message and returns it with the id assigned by SQLite.
func (r *SQLiteChatMessageRepository) Insert(ctx context.Context, content string, role models.Role, sessionID models.SessionID) (*models.ChatMessage, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_messages (content, role, session_id) VALUES (?, ?, ?)`,
		content, string(role), string(sessionID))
	if err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert chat message: last insert id: %w", err)
	}
	return &models.ChatMessage{ID: id, Content: content, Role: role, SessionID: sessionID}, nil
}

// ListBySession returns the session's messages in ascending id order.
func (r *SQLiteChatMessageRepository) ListBySession(ctx context.Context, sessionID models.SessionID) ([]models.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, content, role, session_id FROM chat_messages WHERE session_id = ? ORDER BY id ASC`,
		string(sessionID))
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	out := []models.ChatMessage{}
	for rows.Next() {
		var (
			m    models.ChatMessage
			role string
			sid  string
		)
		if err := rows.Scan(&m.ID, &m.Content, &role, &sid); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		m.Role = models.Role(role)
		m.SessionID = models.SessionID(sid)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return out, nil
}

func (r *SQLiteChatMessageRepository) DeleteBySession(ctx context.Context, sessionID models.SessionID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = ?`, string(sessionID))
	if err != nil {
		return 0, fmt.Errorf("delete chat messages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete chat messages: rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteChatMessageRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete chat message %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteChatMessageRepository) SessionExists(ctx context.Context, sessionID models.SessionID) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM chat_messages WHERE session_id = ? LIMIT 1`, string(sessionID)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session exists: %w", err)
	}
	return true, nil
}

func (r *SQLiteChatMessageRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteChatMessageRepository) Close(_ context.Context) error {
	return r.db.Close()
}
