//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"chat-room/domain"
	"chat-room/errors"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const participantPrefix = "participant:"

type IParticipantRepository interface {
	// Insert stores p only if no participant with the same name exists, else errors.ErrConflict.
	Insert(ctx context.Context, p domain.Participant) error
	List(ctx context.Context) ([]domain.Participant, error)
	Exists(ctx context.Context, name string) (bool, error)
	// Touch refreshes LastSeen, errors.ErrNotFound when the participant is absent.
	Touch(ctx context.Context, name string, at time.Time) error
	ListStale(ctx context.Context, cutoff time.Time) ([]domain.Participant, error)
	// DeleteStale removes the participant only if it is still stale against cutoff.
	// It reports whether a record was removed.
	DeleteStale(ctx context.Context, name string, cutoff time.Time) (bool, error)
	Delete(ctx context.Context, name string) (bool, error)
}

type ParticipantRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewParticipantRepository(db *badger.DB, log *slog.Logger) *ParticipantRepository {
	return &ParticipantRepository{db: db, log: log}
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

// Insert relies on badger's conflict detection: two transactions reading then writing
// the same key cannot both commit, so concurrent registrations of one name yield one winner.
func (r *ParticipantRepository) Insert(_ context.Context, p domain.Participant) error {
	key := participantKey(p.Name)
	err := r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return errors.ErrConflict
		case !goerrors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key, marshalParticipant(p))
	})
	if goerrors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: participant %q registered concurrently", errors.ErrConflict, p.Name)
	}
	if goerrors.Is(err, errors.ErrConflict) {
		return fmt.Errorf("%w: participant %q", errors.ErrConflict, p.Name)
	}
	return err
}

func (r *ParticipantRepository) List(_ context.Context) ([]domain.Participant, error) {
	return r.scan(func(domain.Participant) bool { return true })
}

func (r *ParticipantRepository) ListStale(_ context.Context, cutoff time.Time) ([]domain.Participant, error) {
	return r.scan(func(p domain.Participant) bool { return p.IsStale(cutoff) })
}

func (r *ParticipantRepository) Exists(_ context.Context, name string) (bool, error) {
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(participantKey(name))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case goerrors.Is(err, badger.ErrKeyNotFound), goerrors.Is(err, badger.ErrEmptyKey):
		return false, nil
	}
	return false, err
}

func (r *ParticipantRepository) Touch(_ context.Context, name string, at time.Time) error {
	key := participantKey(name)
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Set(key, marshalParticipant(domain.Participant{Name: name, LastSeen: at}))
	})
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: participant %q", errors.ErrNotFound, name)
	}
	return err
}

func (r *ParticipantRepository) DeleteStale(_ context.Context, name string, cutoff time.Time) (bool, error) {
	return r.deleteIf(name, func(p domain.Participant) bool { return p.IsStale(cutoff) })
}

func (r *ParticipantRepository) Delete(_ context.Context, name string) (bool, error) {
	return r.deleteIf(name, func(domain.Participant) bool { return true })
}

func (r *ParticipantRepository) deleteIf(name string, predicate func(domain.Participant) bool) (bool, error) {
	key := participantKey(name)
	deleted := false
	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if goerrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var participant domain.Participant
		err = item.Value(func(value []byte) error {
			participant, err = unmarshalParticipant(value)
			return err
		})
		if err != nil {
			return err
		}
		if !predicate(participant) {
			return nil
		}
		deleted = true
		return txn.Delete(key)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *ParticipantRepository) scan(keep func(domain.Participant) bool) ([]domain.Participant, error) {
	var participants []domain.Participant
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(participantPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				participant, err := unmarshalParticipant(value)
				if err != nil {
					return err
				}
				if keep(participant) {
					participants = append(participants, participant)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug("Participants scanned", "count", len(participants))
	return participants, nil
}
