package services

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/repositories"
	"context"
	"fmt"
	"log/slog"
	"time"
)

type IMessageService interface {
	Send(ctx context.Context, cmd domain.SendMessageCommand) error
	List(ctx context.Context, cmd domain.ListMessagesCommand) ([]domain.Message, error)
	Delete(ctx context.Context, cmd domain.DeleteMessageCommand) error
	Edit(ctx context.Context, cmd domain.EditMessageCommand) error
	AnnounceStatus(ctx context.Context, participant, text string, at time.Time) error
}

// MessageService is the only writer of the message collection.
// It checks authorship before delegating to the repository.
type MessageService struct {
	log          *slog.Logger
	messages     repositories.IMessageRepository
	participants repositories.IParticipantRepository
	clock        domain.Clock
}

func NewMessageService(
	log *slog.Logger,
	messages repositories.IMessageRepository,
	participants repositories.IParticipantRepository,
	clock domain.Clock,
) *MessageService {
	return &MessageService{log: log, messages: messages, participants: participants, clock: clock}
}

func (s *MessageService) Send(ctx context.Context, cmd domain.SendMessageCommand) error {
	if err := validateCommand(cmd); err != nil {
		return err
	}
	if cmd.Type == domain.StatusMessage {
		return fmt.Errorf("%w: status messages are emitted by the room only", errors.ErrUnauthorized)
	}

	registered, err := s.participants.Exists(ctx, cmd.From)
	if err != nil {
		return err
	}
	if !registered {
		return fmt.Errorf("%w: %q is not in the room", errors.ErrUnauthorized, cmd.From)
	}

	id, err := s.messages.Insert(ctx, domain.Message{
		From: cmd.From,
		To:   cmd.To,
		Text: cmd.Text,
		Type: cmd.Type,
		Time: domain.FormatTime(s.clock.Now()),
	})
	if err != nil {
		return err
	}
	s.log.Debug("Message sent", "id", id, "from", cmd.From, "to", cmd.To, "type", cmd.Type)
	return nil
}

// AnnounceStatus appends a system notice. It skips the sender presence check:
// a departing participant is already gone when its notice is written.
func (s *MessageService) AnnounceStatus(ctx context.Context, participant, text string, at time.Time) error {
	_, err := s.messages.Insert(ctx, domain.NewStatus(participant, text, domain.FormatTime(at)))
	return err
}

func (s *MessageService) List(ctx context.Context, cmd domain.ListMessagesCommand) ([]domain.Message, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	return s.messages.List(ctx, repositories.MessageFilter{
		Requester: cmd.Requester,
		Limit:     cmd.Limit,
	})
}

func (s *MessageService) Delete(ctx context.Context, cmd domain.DeleteMessageCommand) error {
	if err := s.authorize(ctx, cmd.ID, cmd.Requester); err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, cmd.ID); err != nil {
		return err
	}
	s.log.Debug("Message deleted", "id", cmd.ID, "by", cmd.Requester)
	return nil
}

func (s *MessageService) Edit(ctx context.Context, cmd domain.EditMessageCommand) error {
	if err := validateCommand(cmd); err != nil {
		return err
	}
	if err := s.authorize(ctx, cmd.ID, cmd.Requester); err != nil {
		return err
	}
	if cmd.Type == domain.StatusMessage {
		return fmt.Errorf("%w: status messages are emitted by the room only", errors.ErrUnauthorized)
	}

	err := s.messages.Update(ctx, domain.Message{
		ID:   cmd.ID,
		From: cmd.Requester,
		To:   cmd.To,
		Text: cmd.Text,
		Type: cmd.Type,
		Time: domain.FormatTime(s.clock.Now()),
	})
	if err != nil {
		return err
	}
	s.log.Debug("Message edited", "id", cmd.ID, "by", cmd.Requester)
	return nil
}

// authorize checks that the message exists and that requester authored it.
// Status notices belong to the room, whatever their From says.
func (s *MessageService) authorize(ctx context.Context, id domain.MessageID, requester string) error {
	message, err := s.messages.Find(ctx, id)
	if err != nil {
		return err
	}
	if message.IsStatus() {
		return fmt.Errorf("%w: message %s is a status notice", errors.ErrUnauthorized, id)
	}
	if message.From != requester {
		return fmt.Errorf("%w: message %s belongs to %q", errors.ErrUnauthorized, id, message.From)
	}
	return nil
}
