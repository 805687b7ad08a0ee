package projection

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"pairchat/domain"
	"pairchat/services"
	"pairchat/store"
)

func newTestStore(t *testing.T) store.Client {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })
	return store.NewBadger(db, slog.Default())
}

func signIn(t *testing.T, client store.Client, id, name string) domain.Profile {
	t.Helper()
	req := require.New(t)
	profile, err := services.NewIdentityService(client, slog.Default()).
		EnsureProfile(context.Background(), domain.Account{ID: id, DisplayName: name})
	req.NoError(err)
	return profile
}

func befriend(t *testing.T, client store.Client, requester domain.Profile, targetNumericID string) domain.RoomID {
	t.Helper()
	req := require.New(t)
	roomID, err := services.NewFriendService(client, slog.Default()).
		AddFriend(context.Background(), requester, targetNumericID)
	req.NoError(err)
	return roomID
}

func waitConversations(t *testing.T, list *ConversationList, cond func([]domain.Conversation) bool) []domain.Conversation {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case conversations, ok := <-list.Updates:
			if !ok {
				t.Fatal("conversation list closed before condition was met")
			}
			if cond(conversations) {
				return conversations
			}
		case <-deadline:
			t.Fatal("timed out waiting for conversation list")
		}
	}
}

func Test_ConversationList_Sorts_Most_Recent_First(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	client := newTestStore(t)

	x := signIn(t, client, "acc-x", "Xavier")
	y := signIn(t, client, "acc-y", "Yann")
	z := signIn(t, client, "acc-z", "Zoe")
	roomXY := befriend(t, client, x, y.NumericID)
	roomXZ := befriend(t, client, x, z.NumericID)

	list, err := WatchConversations(ctx, client, slog.Default(), x.AccountID)
	req.NoError(err)
	defer list.Close()

	// Provisioning order puts the Z room on top first.
	initial := waitConversations(t, list, func(c []domain.Conversation) bool { return len(c) == 2 })
	req.Equal(roomXZ, initial[0].RoomID)
	req.Equal(roomXY, initial[1].RoomID)

	// New activity in the older room must bubble it back up.
	messageService := services.NewMessageService(client, slog.Default())
	req.NoError(messageService.Send(ctx, roomXY, x.AccountID, "hi"))

	reordered := waitConversations(t, list, func(c []domain.Conversation) bool {
		return len(c) == 2 && c[0].RoomID == roomXY && c[0].LastMessage == "hi"
	})
	req.Equal(roomXZ, reordered[1].RoomID)
	req.Empty(reordered[1].LastMessage)
}

func Test_ConversationList_Close_Ends_The_Stream(t *testing.T) {
	req := require.New(t)
	client := newTestStore(t)
	x := signIn(t, client, "acc-x", "Xavier")

	list, err := WatchConversations(context.Background(), client, slog.Default(), x.AccountID)
	req.NoError(err)
	list.Close()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-list.Updates:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("updates channel not closed after Close")
		}
	}
}
