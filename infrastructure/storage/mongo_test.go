package storage

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/repositories"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type testConfig struct {
	MongoURI string        `envconfig:"TEST_MONGO_URI"`
	Timeout  time.Duration `envconfig:"TEST_MONGO_TIMEOUT" default:"5s"`
}

// openTestDatabase connects to the server named by TEST_MONGO_URI and hands out a
// database dropped at the end of the test. Without it the test is skipped.
func openTestDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	var cfg testConfig
	require.NoError(t, envconfig.Process("", &cfg))
	if cfg.MongoURI == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	name := fmt.Sprintf("chatroom_test_%d", time.Now().UnixNano())
	db, err := OpenConnection(ctx, cfg.MongoURI, name, cfg.Timeout)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})
	return db
}

func TestMongoParticipantRepository(t *testing.T) {
	req := require.New(t)
	db := openTestDatabase(t)
	ctx := context.Background()
	participants := NewParticipantRepository(db, slog.Default())
	cutoff := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	req.NoError(participants.Insert(ctx, domain.Participant{Name: "alice", LastSeen: cutoff.Add(-time.Second)}))
	req.ErrorIs(participants.Insert(ctx, domain.Participant{Name: "alice", LastSeen: cutoff}), errors.ErrConflict)
	req.NoError(participants.Insert(ctx, domain.Participant{Name: "bob", LastSeen: cutoff}))

	exists, err := participants.Exists(ctx, "alice")
	req.NoError(err)
	req.True(exists)

	req.ErrorIs(participants.Touch(ctx, "ghost", cutoff), errors.ErrNotFound)

	stale, err := participants.ListStale(ctx, cutoff)
	req.NoError(err)
	req.Len(stale, 1)
	req.Equal("alice", stale[0].Name)
	req.True(cutoff.Add(-time.Second).Equal(stale[0].LastSeen))

	deleted, err := participants.DeleteStale(ctx, "bob", cutoff)
	req.NoError(err)
	req.False(deleted)
	deleted, err = participants.DeleteStale(ctx, "alice", cutoff)
	req.NoError(err)
	req.True(deleted)

	all, err := participants.List(ctx)
	req.NoError(err)
	req.Len(all, 1)
}

func TestMongoMessageRepository(t *testing.T) {
	req := require.New(t)
	db := openTestDatabase(t)
	ctx := context.Background()
	messages := NewMessageRepository(db, slog.Default())

	history := []domain.Message{
		domain.NewStatus("alice", domain.StatusJoined, "10:00:00"),
		{From: "alice", To: domain.Everyone, Text: "hi all", Type: domain.PublicMessage, Time: "10:00:01"},
		{From: "alice", To: "bob", Text: "hi bob", Type: domain.PrivateMessage, Time: "10:00:02"},
		{From: "alice", To: "carol", Text: "hi carol", Type: domain.PrivateMessage, Time: "10:00:03"},
	}
	var ids []domain.MessageID
	for _, m := range history {
		id, err := messages.Insert(ctx, m)
		req.NoError(err)
		ids = append(ids, id)
	}

	visible, err := messages.List(ctx, repositories.MessageFilter{Requester: "bob"})
	req.NoError(err)
	req.Equal([]string{domain.StatusJoined, "hi all", "hi bob"},
		lo.Map(visible, func(m domain.Message, _ int) string { return m.Text }))

	visible, err = messages.List(ctx, repositories.MessageFilter{Requester: "bob", Limit: lo.ToPtr(2)})
	req.NoError(err)
	req.Equal([]string{"hi all", "hi bob"},
		lo.Map(visible, func(m domain.Message, _ int) string { return m.Text }))

	_, err = messages.Find(ctx, "zz")
	req.ErrorIs(err, errors.ErrNotFound)

	edited := domain.Message{ID: ids[1], From: "alice", To: "bob", Text: "edited", Type: domain.PrivateMessage, Time: "10:05:00"}
	req.NoError(messages.Update(ctx, edited))
	found, err := messages.Find(ctx, ids[1])
	req.NoError(err)
	req.Equal(edited, found)

	req.NoError(messages.Delete(ctx, ids[1]))
	req.ErrorIs(messages.Delete(ctx, ids[1]), errors.ErrNotFound)
}
