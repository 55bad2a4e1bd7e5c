package storage

import (
	"chat-room/repositories"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	participantsCollection = "participants"
	messagesCollection     = "messages"
)

// OpenConnection connects to MongoDB, checks the server is reachable and makes sure
// the indexes the repositories rely on exist.
func OpenConnection(ctx context.Context, uri, database string, timeout time.Duration) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(database)
	if err = EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return db, nil
}

// EnsureIndexes creates the unique index on participant names, which makes
// registration an atomic insert-if-absent, and the last-seen index scanned by the reaper.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(participantsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "lastSeen", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("participant indexes: %w", err)
	}
	return nil
}

var (
	_ repositories.IParticipantRepository = (*ParticipantRepository)(nil)
	_ repositories.IMessageRepository     = (*MessageRepository)(nil)
)
