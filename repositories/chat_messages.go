package repositories

import (
	"context"
	"errors"
	"fmt"

	"career-chat/config"
	"career-chat/db"
	"career-chat/models"
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// ChatMessageRepository is the persistence contract for chat messages.
// ListBySession returns messages in ascending id order; an unknown session
// yields an empty slice, not an error.
type ChatMessageRepository interface {
	Insert(ctx context.Context, content string, role models.Role, sessionID models.SessionID) (*models.ChatMessage, error)
	ListBySession(ctx context.Context, sessionID models.SessionID) ([]models.ChatMessage, error)
	DeleteBySession(ctx context.Context, sessionID models.SessionID) (int64, error)
	DeleteByID(ctx context.Context, id int64) error
	SessionExists(ctx context.Context, sessionID models.SessionID) (bool, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open builds the repository selected by cfg.Driver and ensures its schema.
func Open(ctx context.Context, cfg config.StorageConfig) (ChatMessageRepository, error) {
	switch cfg.Driver {
	case "", "sqlite":
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteChatMessageRepository(conn), nil
	case "mongo":
		client, database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		return NewMongoChatMessageRepository(client, database), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
