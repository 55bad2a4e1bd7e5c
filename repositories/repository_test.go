package repositories

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newRepositories(t *testing.T) (*ParticipantRepository, *MessageRepository) {
	db := openTestDB(t)
	return NewParticipantRepository(db, slog.Default()), NewMessageRepository(db, slog.Default())
}
