package repositories

import (
	"chat-room/domain"
	"chat-room/errors"
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func texts(messages []domain.Message) []string {
	return lo.Map(messages, func(m domain.Message, _ int) string { return m.Text })
}

func Test_Insert_And_Find_Message(t *testing.T) {
	req := require.New(t)
	_, messages := newRepositories(t)
	ctx := context.Background()

	message := domain.Message{From: "alice", To: domain.Everyone, Text: "hello", Type: domain.PublicMessage, Time: "09:05:00"}
	id, err := messages.Insert(ctx, message)
	req.NoError(err)
	req.NotEmpty(id)

	found, err := messages.Find(ctx, id)
	req.NoError(err)
	message.ID = id
	req.Equal(message, found)
}

func Test_Find_Unknown_Or_Malformed_Id(t *testing.T) {
	req := require.New(t)
	_, messages := newRepositories(t)
	ctx := context.Background()

	_, err := messages.Find(ctx, "not-an-id")
	req.ErrorIs(err, errors.ErrNotFound)

	_, err = messages.Find(ctx, domain.MessageID(uuid.New().String()))
	req.ErrorIs(err, errors.ErrNotFound, "only time ordered identifiers are issued")

	_, err = messages.Find(ctx, domain.MessageID(uuid.Must(uuid.NewV7()).String()))
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_List_Keeps_Creation_Order_And_Visibility(t *testing.T) {
	req := require.New(t)
	_, messages := newRepositories(t)
	ctx := context.Background()

	history := []domain.Message{
		domain.NewStatus("alice", domain.StatusJoined, "10:00:00"),
		{From: "alice", To: domain.Everyone, Text: "hi all", Type: domain.PublicMessage},
		{From: "alice", To: "bob", Text: "hi bob", Type: domain.PrivateMessage},
		{From: "alice", To: "carol", Text: "hi carol", Type: domain.PrivateMessage},
		{From: "bob", To: "alice", Text: "hey alice", Type: domain.PrivateMessage},
	}
	for _, m := range history {
		_, err := messages.Insert(ctx, m)
		req.NoError(err)
	}

	visible, err := messages.List(ctx, MessageFilter{Requester: "bob"})
	req.NoError(err)
	req.Equal([]string{domain.StatusJoined, "hi all", "hi bob", "hey alice"}, texts(visible))

	all, err := messages.All(ctx)
	req.NoError(err)
	req.Len(all, len(history))
}

func Test_List_With_Limit_Returns_Most_Recent_Visible(t *testing.T) {
	req := require.New(t)
	_, messages := newRepositories(t)
	ctx := context.Background()

	for i := range 6 {
		to := domain.Everyone
		if i%2 == 1 {
			to = "carol"
		}
		_, err := messages.Insert(ctx, domain.Message{From: "alice", To: to, Text: fmt.Sprintf("m%d", i), Type: domain.PublicMessage})
		req.NoError(err)
	}

	visible, err := messages.List(ctx, MessageFilter{Requester: "bob", Limit: lo.ToPtr(2)})
	req.NoError(err)
	req.Equal([]string{"m2", "m4"}, texts(visible))

	visible, err = messages.List(ctx, MessageFilter{Requester: "bob", Limit: lo.ToPtr(10)})
	req.NoError(err)
	req.Equal([]string{"m0", "m2", "m4"}, texts(visible))
}

func Test_Update_And_Delete_Message(t *testing.T) {
	req := require.New(t)
	_, messages := newRepositories(t)
	ctx := context.Background()

	id, err := messages.Insert(ctx, domain.Message{From: "alice", To: domain.Everyone, Text: "typo", Type: domain.PublicMessage, Time: "10:00:00"})
	req.NoError(err)

	edited := domain.Message{ID: id, From: "alice", To: "bob", Text: "fixed", Type: domain.PrivateMessage, Time: "10:01:00"}
	req.NoError(messages.Update(ctx, edited))
	found, err := messages.Find(ctx, id)
	req.NoError(err)
	req.Equal(edited, found)

	req.NoError(messages.Delete(ctx, id))
	_, err = messages.Find(ctx, id)
	req.ErrorIs(err, errors.ErrNotFound)
	req.ErrorIs(messages.Delete(ctx, id), errors.ErrNotFound)
	req.ErrorIs(messages.Update(ctx, edited), errors.ErrNotFound)
}
