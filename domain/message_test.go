package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessage_VisibleTo(t *testing.T) {
	broadcast := Message{From: "alice", To: Everyone, Text: "hello", Type: PublicMessage}
	toBob := Message{From: "alice", To: "bob", Text: "psst", Type: PrivateMessage}
	toCarol := Message{From: "alice", To: "carol", Text: "psst", Type: PrivateMessage}
	status := NewStatus("dave", StatusJoined, "10:00:00")

	t.Run("bob sees broadcasts and what is addressed to him", func(t *testing.T) {
		req := require.New(t)
		req.True(broadcast.VisibleTo("bob"))
		req.True(toBob.VisibleTo("bob"))
		req.False(toCarol.VisibleTo("bob"))
		req.True(status.VisibleTo("bob"))
	})

	t.Run("the author always sees own messages", func(t *testing.T) {
		req := require.New(t)
		req.True(toCarol.VisibleTo("alice"))
		req.True(toBob.VisibleTo("alice"))
	})

	t.Run("a status is visible even to an anonymous requester", func(t *testing.T) {
		require.True(t, status.VisibleTo(""))
		require.False(t, toBob.VisibleTo(""))
	})
}

func TestMessageType_IsValid(t *testing.T) {
	req := require.New(t)
	req.True(PublicMessage.IsValid())
	req.True(PrivateMessage.IsValid())
	req.True(StatusMessage.IsValid())
	req.False(MessageType("shout").IsValid())
	req.False(MessageType("").IsValid())
}

func TestNewStatus_IsABroadcastNotice(t *testing.T) {
	req := require.New(t)
	status := NewStatus("alice", StatusLeft, "23:59:59")
	req.Equal("alice", status.From)
	req.Equal(Everyone, status.To)
	req.Equal(StatusLeft, status.Text)
	req.True(status.IsStatus())
	req.Empty(status.ID)
}

func TestFormatTime_ZeroPadded(t *testing.T) {
	at := time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)
	require.Equal(t, "07:08:09", FormatTime(at))
}

func TestParticipant_IsStale(t *testing.T) {
	req := require.New(t)
	cutoff := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	req.True(Participant{Name: "a", LastSeen: cutoff.Add(-time.Millisecond)}.IsStale(cutoff))
	req.False(Participant{Name: "a", LastSeen: cutoff}.IsStale(cutoff))
	req.False(Participant{Name: "a", LastSeen: cutoff.Add(time.Millisecond)}.IsStale(cutoff))
}
