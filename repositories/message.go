//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-room/domain"
	"chat-room/errors"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const messagePrefix = "msg:"

// MessageFilter selects the messages readable by Requester.
// A nil Limit returns the whole visible history.
type MessageFilter struct {
	Requester string
	Limit     *int
}

type IMessageRepository interface {
	// Insert assigns a fresh identifier to the message and returns it.
	Insert(ctx context.Context, message domain.Message) (domain.MessageID, error)
	// Find returns errors.ErrNotFound for unknown or malformed identifiers.
	Find(ctx context.Context, id domain.MessageID) (domain.Message, error)
	// List returns visible messages in creation order.
	List(ctx context.Context, filter MessageFilter) ([]domain.Message, error)
	Update(ctx context.Context, message domain.Message) error
	Delete(ctx context.Context, id domain.MessageID) error
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

// messageKey is "msg:{uuidv7}". Version 7 identifiers start with a millisecond timestamp
// and are monotonic within the process, so key order is creation order.
func messageKey(id uuid.UUID) []byte {
	return []byte(messagePrefix + id.String())
}

func parseMessageID(id domain.MessageID) (uuid.UUID, error) {
	parsed, err := uuid.Parse(string(id))
	if err != nil || parsed.Version() != 7 {
		return uuid.Nil, fmt.Errorf("%w: malformed message id %q", errors.ErrNotFound, id)
	}
	return parsed, nil
}

func (m *MessageRepository) Insert(_ context.Context, message domain.Message) (domain.MessageID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	message.ID = domain.MessageID(id.String())
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(id), marshalMessage(message))
	})
	if err != nil {
		return "", err
	}
	return message.ID, nil
}

func (m *MessageRepository) Find(_ context.Context, id domain.MessageID) (domain.Message, error) {
	parsed, err := parseMessageID(id)
	if err != nil {
		return domain.Message{}, err
	}
	var message domain.Message
	err = m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(messageKey(parsed))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			message, err = unmarshalMessage(value)
			return err
		})
	})
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Message{}, fmt.Errorf("%w: message %s", errors.ErrNotFound, id)
	}
	return message, err
}

func (m *MessageRepository) List(_ context.Context, filter MessageFilter) ([]domain.Message, error) {
	return m.scan(filter.Limit, func(message domain.Message) bool {
		return message.VisibleTo(filter.Requester)
	})
}

// All returns the whole history regardless of visibility.
func (m *MessageRepository) All(_ context.Context) ([]domain.Message, error) {
	return m.scan(nil, func(domain.Message) bool { return true })
}

// scan walks the history backwards from the newest key so that a limit stops the scan early,
// then restores creation order.
func (m *MessageRepository) scan(limit *int, keep func(domain.Message) bool) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// 0xFF sorts after every hexadecimal character, so the seek lands on the newest message.
		seekKey := append([]byte(messagePrefix), 0xFF)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit != nil && len(messages) == *limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *limit))
				break
			}
			var message domain.Message
			err := it.Item().Value(func(value []byte) error {
				var err error
				message, err = unmarshalMessage(value)
				return err
			})
			if err != nil {
				return err
			}
			if keep(message) {
				messages = append(messages, message)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	return messages, nil
}

func (m *MessageRepository) Update(_ context.Context, message domain.Message) error {
	parsed, err := parseMessageID(message.ID)
	if err != nil {
		return err
	}
	key := messageKey(parsed)
	err = m.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Set(key, marshalMessage(message))
	})
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: message %s", errors.ErrNotFound, message.ID)
	}
	return err
}

func (m *MessageRepository) Delete(_ context.Context, id domain.MessageID) error {
	parsed, err := parseMessageID(id)
	if err != nil {
		return err
	}
	key := messageKey(parsed)
	err = m.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: message %s", errors.ErrNotFound, id)
	}
	return err
}
