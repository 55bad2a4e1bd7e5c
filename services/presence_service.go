package services

import (
	"chat-room/contract"
	"chat-room/domain"
	"chat-room/repositories"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"
)

type IPresenceService interface {
	Register(ctx context.Context, cmd domain.RegisterCommand) error
	List(ctx context.Context) ([]domain.Participant, error)
	Heartbeat(ctx context.Context, name string) error
	EvictStale(ctx context.Context, threshold time.Duration, now time.Time) ([]string, error)
}

// PresenceService is the only writer of the participant collection.
type PresenceService struct {
	log          *slog.Logger
	participants repositories.IParticipantRepository
	announcer    contract.IStatusAnnouncer
	clock        domain.Clock
}

func NewPresenceService(
	log *slog.Logger,
	participants repositories.IParticipantRepository,
	announcer contract.IStatusAnnouncer,
	clock domain.Clock,
) *PresenceService {
	return &PresenceService{log: log, participants: participants, announcer: announcer, clock: clock}
}

// Register inserts the participant then announces the arrival.
// Uniqueness is enforced by the repository insert, not by a prior lookup.
func (s *PresenceService) Register(ctx context.Context, cmd domain.RegisterCommand) error {
	if err := validateCommand(cmd); err != nil {
		return err
	}

	now := s.clock.Now()
	if err := s.participants.Insert(ctx, domain.Participant{Name: cmd.Name, LastSeen: now}); err != nil {
		return err
	}

	if err := s.announcer.AnnounceStatus(ctx, cmd.Name, domain.StatusJoined, now); err != nil {
		// Undo the insert so that a retry is not rejected as a duplicate.
		if _, rollbackErr := s.participants.Delete(ctx, cmd.Name); rollbackErr != nil {
			s.log.Error("Failed to roll back registration", "name", cmd.Name, "error", rollbackErr)
		}
		return fmt.Errorf("announce %q joined: %w", cmd.Name, err)
	}

	s.log.Info("Participant registered", "name", cmd.Name)
	return nil
}

func (s *PresenceService) List(ctx context.Context) ([]domain.Participant, error) {
	return s.participants.List(ctx)
}

func (s *PresenceService) Heartbeat(ctx context.Context, name string) error {
	return s.participants.Touch(ctx, name, s.clock.Now())
}

// EvictStale removes every participant last seen before now-threshold and announces
// each departure. Removal and notice are not transactional: a participant is deleted
// first, and a failed notice is logged without failing the eviction. Only participants
// this call actually deleted get a notice, so concurrent sweeps never announce twice.
func (s *PresenceService) EvictStale(ctx context.Context, threshold time.Duration, now time.Time) ([]string, error) {
	cutoff := now.Add(-threshold)
	stale, err := s.participants.ListStale(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale participants: %w", err)
	}

	var evicted []string
	var errs []error
	for _, participant := range stale {
		deleted, err := s.participants.DeleteStale(ctx, participant.Name, cutoff)
		if err != nil {
			errs = append(errs, fmt.Errorf("evict %q: %w", participant.Name, err))
			continue
		}
		if !deleted {
			// Heartbeat or another sweep got there first
			continue
		}
		evicted = append(evicted, participant.Name)

		if err = s.announcer.AnnounceStatus(ctx, participant.Name, domain.StatusLeft, now); err != nil {
			s.log.Warn("Departure notice not emitted", "name", participant.Name, "error", err)
		}
	}

	if len(evicted) > 0 {
		s.log.Info("Stale participants evicted", "count", len(evicted), "names", evicted)
	}
	return evicted, goerrors.Join(errs...)
}
