package services

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/mocks"
	"context"
	goerrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPresenceService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("should register then reject the same name", func(t *testing.T) {
		req := require.New(t)
		r := newRoom(t)

		req.NoError(r.presence.Register(ctx, domain.RegisterCommand{Name: "alice"}))
		err := r.presence.Register(ctx, domain.RegisterCommand{Name: "alice"})
		req.ErrorIs(err, errors.ErrConflict)

		participants, err := r.presence.List(ctx)
		req.NoError(err)
		req.Len(participants, 1)
		req.Equal("alice", participants[0].Name)
		req.True(r.clock.Now().Equal(participants[0].LastSeen))
	})

	t.Run("should announce the arrival to everyone", func(t *testing.T) {
		req := require.New(t)
		r := newRoom(t)

		req.NoError(r.presence.Register(ctx, domain.RegisterCommand{Name: "alice"}))

		for _, requester := range []string{"alice", "bob", ""} {
			messages, err := r.messages.List(ctx, domain.ListMessagesCommand{Requester: requester})
			req.NoError(err)
			req.Len(messages, 1)
			req.Equal(domain.StatusMessage, messages[0].Type)
			req.Equal("alice", messages[0].From)
			req.Equal(domain.Everyone, messages[0].To)
			req.Equal(domain.StatusJoined, messages[0].Text)
			req.Equal("09:04:03", messages[0].Time)
		}
	})

	t.Run("should fail validation when the name is empty", func(t *testing.T) {
		req := require.New(t)
		r := newRoom(t)

		err := r.presence.Register(ctx, domain.RegisterCommand{Name: ""})
		req.ErrorIs(err, errors.ErrValidation)

		participants, err := r.presence.List(ctx)
		req.NoError(err)
		req.Empty(participants)
	})
}

func TestPresenceService_Register_RollsBackWhenAnnouncementFails(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	participants := mocks.NewMockIParticipantRepository(ctrl)
	announcer := mocks.NewMockIStatusAnnouncer(ctrl)
	clock := newFakeClock()
	svc := NewPresenceService(slog.Default(), participants, announcer, clock)
	storeDown := goerrors.New("store down")

	participants.EXPECT().
		Insert(gomock.Any(), domain.Participant{Name: "alice", LastSeen: clock.Now()}).
		Return(nil).
		Times(1)
	announcer.EXPECT().
		AnnounceStatus(gomock.Any(), "alice", domain.StatusJoined, clock.Now()).
		Return(storeDown).
		Times(1)
	participants.EXPECT().Delete(gomock.Any(), "alice").Return(true, nil).Times(1)

	err := svc.Register(context.Background(), domain.RegisterCommand{Name: "alice"})
	req.ErrorIs(err, storeDown)
}

func TestPresenceService_Heartbeat(t *testing.T) {
	ctx := context.Background()

	t.Run("should fail when the participant is unknown", func(t *testing.T) {
		r := newRoom(t)
		require.ErrorIs(t, r.presence.Heartbeat(ctx, "ghost"), errors.ErrNotFound)
	})

	t.Run("should be idempotent", func(t *testing.T) {
		req := require.New(t)
		r := newRoom(t)
		req.NoError(r.presence.Register(ctx, domain.RegisterCommand{Name: "alice"}))

		r.clock.Advance(3 * time.Second)
		req.NoError(r.presence.Heartbeat(ctx, "alice"))
		req.NoError(r.presence.Heartbeat(ctx, "alice"))

		participants, err := r.presence.List(ctx)
		req.NoError(err)
		req.Len(participants, 1)
		req.True(r.clock.Now().Equal(participants[0].LastSeen))
	})
}

func TestPresenceService_EvictStale(t *testing.T) {
	ctx := context.Background()
	threshold := 10 * time.Second

	t.Run("should evict just past the threshold and keep just under it", func(t *testing.T) {
		req := require.New(t)
		r := newRoom(t)

		req.NoError(r.presence.Register(ctx, domain.RegisterCommand{Name: "old"}))
		r.clock.Advance(2 * time.Millisecond)
		req.NoError(r.presence.Register(ctx, domain.RegisterCommand{Name: "recent"}))

		// old was seen at now-T-1ms, recent at now-T+1ms
		r.clock.Advance(threshold - time.Millisecond)
		now := r.clock.Now()

		evicted, err := r.presence.EvictStale(ctx, threshold, now)
		req.NoError(err)
		req.Equal([]string{"old"}, evicted)

		participants, err := r.presence.List(ctx)
		req.NoError(err)
		req.Equal([]string{"recent"}, lo.Map(participants, func(p domain.Participant, _ int) string { return p.Name }))

		messages, err := r.messages.List(ctx, domain.ListMessagesCommand{Requester: "recent"})
		req.NoError(err)
		req.Len(messages, 3)
		left := messages[2]
		req.Equal(domain.StatusMessage, left.Type)
		req.Equal("old", left.From)
		req.Equal(domain.Everyone, left.To)
		req.Equal(domain.StatusLeft, left.Text)
		req.Equal(domain.FormatTime(now), left.Time)
	})

	t.Run("should not announce twice when swept again", func(t *testing.T) {
		req := require.New(t)
		r := newRoom(t)
		req.NoError(r.presence.Register(ctx, domain.RegisterCommand{Name: "alice"}))
		r.clock.Advance(time.Minute)

		evicted, err := r.presence.EvictStale(ctx, threshold, r.clock.Now())
		req.NoError(err)
		req.Len(evicted, 1)
		evicted, err = r.presence.EvictStale(ctx, threshold, r.clock.Now())
		req.NoError(err)
		req.Empty(evicted)

		messages, err := r.messages.List(ctx, domain.ListMessagesCommand{Requester: "bob"})
		req.NoError(err)
		req.Len(messages, 2)
	})
}

func TestPresenceService_EvictStale_Failures(t *testing.T) {
	threshold := 10 * time.Second
	now := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
	cutoff := now.Add(-threshold)
	stale := []domain.Participant{
		{Name: "alice", LastSeen: cutoff.Add(-time.Second)},
		{Name: "bob", LastSeen: cutoff.Add(-time.Second)},
	}

	t.Run("should keep the eviction when the notice cannot be written", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		participants := mocks.NewMockIParticipantRepository(ctrl)
		announcer := mocks.NewMockIStatusAnnouncer(ctrl)
		svc := NewPresenceService(slog.Default(), participants, announcer, newFakeClock())

		participants.EXPECT().ListStale(gomock.Any(), cutoff).Return(stale, nil)
		participants.EXPECT().DeleteStale(gomock.Any(), "alice", cutoff).Return(true, nil)
		participants.EXPECT().DeleteStale(gomock.Any(), "bob", cutoff).Return(true, nil)
		announcer.EXPECT().AnnounceStatus(gomock.Any(), "alice", domain.StatusLeft, now).Return(goerrors.New("boom"))
		announcer.EXPECT().AnnounceStatus(gomock.Any(), "bob", domain.StatusLeft, now).Return(nil)

		evicted, err := svc.EvictStale(context.Background(), threshold, now)
		req.NoError(err)
		req.Equal([]string{"alice", "bob"}, evicted)
	})

	t.Run("should skip the notice when someone else removed the participant", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		participants := mocks.NewMockIParticipantRepository(ctrl)
		announcer := mocks.NewMockIStatusAnnouncer(ctrl)
		svc := NewPresenceService(slog.Default(), participants, announcer, newFakeClock())

		participants.EXPECT().ListStale(gomock.Any(), cutoff).Return(stale, nil)
		participants.EXPECT().DeleteStale(gomock.Any(), "alice", cutoff).Return(false, nil)
		participants.EXPECT().DeleteStale(gomock.Any(), "bob", cutoff).Return(true, nil)
		announcer.EXPECT().AnnounceStatus(gomock.Any(), "bob", domain.StatusLeft, now).Return(nil)

		evicted, err := svc.EvictStale(context.Background(), threshold, now)
		req.NoError(err)
		req.Equal([]string{"bob"}, evicted)
	})

	t.Run("should go on with the others when one delete fails", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		participants := mocks.NewMockIParticipantRepository(ctrl)
		announcer := mocks.NewMockIStatusAnnouncer(ctrl)
		svc := NewPresenceService(slog.Default(), participants, announcer, newFakeClock())
		conflict := goerrors.New("transaction conflict")

		participants.EXPECT().ListStale(gomock.Any(), cutoff).Return(stale, nil)
		participants.EXPECT().DeleteStale(gomock.Any(), "alice", cutoff).Return(false, conflict)
		participants.EXPECT().DeleteStale(gomock.Any(), "bob", cutoff).Return(true, nil)
		announcer.EXPECT().AnnounceStatus(gomock.Any(), "bob", domain.StatusLeft, now).Return(nil)

		evicted, err := svc.EvictStale(context.Background(), threshold, now)
		req.ErrorIs(err, conflict)
		req.Equal([]string{"bob"}, evicted)
	})

	t.Run("should report a failed scan", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		participants := mocks.NewMockIParticipantRepository(ctrl)
		svc := NewPresenceService(slog.Default(), participants, mocks.NewMockIStatusAnnouncer(ctrl), newFakeClock())
		down := goerrors.New("store down")

		participants.EXPECT().ListStale(gomock.Any(), cutoff).Return(nil, down)

		evicted, err := svc.EvictStale(context.Background(), threshold, now)
		req.ErrorIs(err, down)
		req.Empty(evicted)
	})
}
