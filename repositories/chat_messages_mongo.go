package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"career-chat/db"
	"career-chat/models"
)

const chatMessageCounterKey = "chat_messages"

type MongoChatMessageRepository struct {
	client   *mongo.Client
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewMongoChatMessageRepository(client *mongo.Client, d *mongo.Database) *MongoChatMessageRepository {
	return &MongoChatMessageRepository{
		client:   client,
		col:      d.Collection(db.ChatMessagesCollection),
		counters: d.Collection(db.CountersCollection),
	}
}

// nextID atomically increments the chat_messages counter so ids keep the
// auto-increment integer semantics of the SQLite backend.
func (r *MongoChatMessageRepository) nextID(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": chatMessageCounterKey},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

func (r *MongoChatMessageRepository) Insert(ctx context.Context, content string, role models.Role, sessionID models.SessionID) (*models.ChatMessage, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("insert chat message: next id: %w", err)
	}
	m := &models.ChatMessage{ID: id, Content: content, Role: role, SessionID: sessionID}
	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}
	return m, nil
}

func (r *MongoChatMessageRepository) ListBySession(ctx context.Context, sessionID models.SessionID) ([]models.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.ChatMessage{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return out, nil
}

func (r *MongoChatMessageRepository) DeleteBySession(ctx context.Context, sessionID models.SessionID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return 0, fmt.Errorf("delete chat messages: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoChatMessageRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("delete chat message %d: %w", id, err)
	}
	return nil
}

func (r *MongoChatMessageRepository) SessionExists(ctx context.Context, sessionID models.SessionID) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session exists: %w", err)
	}
	return true, nil
}

func (r *MongoChatMessageRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoChatMessageRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
