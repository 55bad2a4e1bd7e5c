package services

import (
	"chat-room/repositories"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 17, 9, 4, 3, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type room struct {
	clock    *fakeClock
	presence *PresenceService
	messages *MessageService
}

// newRoom wires both services on a throwaway badger directory.
func newRoom(t *testing.T) room {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	clock := newFakeClock()
	participants := repositories.NewParticipantRepository(db, log)
	messageService := NewMessageService(log, repositories.NewMessageRepository(db, log), participants, clock)
	return room{
		clock:    clock,
		presence: NewPresenceService(log, participants, messageService, clock),
		messages: messageService,
	}
}
