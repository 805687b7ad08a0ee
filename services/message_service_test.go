package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pairchat/domain"
	"pairchat/errors"
	"pairchat/mocks"
	"pairchat/store"
)

func provisionRoom(t *testing.T, client store.Client) (domain.Profile, domain.Profile, domain.RoomID) {
	t.Helper()
	req := require.New(t)
	x := signIn(t, client, "acc-x", "Xavier")
	y := signIn(t, client, "acc-y", "Yann")
	roomID, err := NewFriendService(client, slog.Default()).AddFriend(context.Background(), x, y.NumericID)
	req.NoError(err)
	return x, y, roomID
}

func roomLog(t *testing.T, client store.Client, roomID domain.RoomID) []domain.Message {
	t.Helper()
	req := require.New(t)
	sub, err := client.Subscribe(context.Background(), domain.MessagesPath(roomID), 0)
	req.NoError(err)
	defer sub.Cancel()

	select {
	case snapshot := <-sub.C:
		var messages []domain.Message
		for _, entry := range snapshot {
			var message domain.Message
			req.NoError(json.Unmarshal(entry.Value, &message))
			messages = append(messages, message)
		}
		return messages
	case <-time.After(5 * time.Second):
		t.Fatal("timed out reading room log")
		return nil
	}
}

func Test_Send_Appends_And_Updates_Both_Summaries(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	client := newTestStore(t)
	x, y, roomID := provisionRoom(t, client)
	svc := NewMessageService(client, slog.Default())

	req.NoError(svc.Send(ctx, roomID, x.AccountID, "hello"))

	messages := roomLog(t, client, roomID)
	req.Len(messages, 1)
	req.Equal(x.AccountID, messages[0].From)
	req.Equal("hello", messages[0].Text)

	forX := readConversation(t, client, x.AccountID, roomID)
	forY := readConversation(t, client, y.AccountID, roomID)
	req.Equal("hello", forX.LastMessage)
	req.Equal("hello", forY.LastMessage)
	req.True(forX.LastTime.Equal(forY.LastTime), "summaries disagree on lastTime")
	req.True(forX.LastTime.Equal(messages[0].At))
}

func Test_Send_Keeps_The_Log_Append_Only(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	client := newTestStore(t)
	x, y, roomID := provisionRoom(t, client)
	svc := NewMessageService(client, slog.Default())

	req.NoError(svc.Send(ctx, roomID, x.AccountID, "first"))
	req.NoError(svc.Send(ctx, roomID, y.AccountID, "second"))
	req.NoError(svc.Send(ctx, roomID, x.AccountID, "third"))

	messages := roomLog(t, client, roomID)
	req.Len(messages, 3)
	req.Equal("first", messages[0].Text)
	req.Equal("third", messages[2].Text)
	req.Equal("third", readConversation(t, client, y.AccountID, roomID).LastMessage)
}

func Test_Send_Blank_Text_Is_A_No_Op(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	client := newTestStore(t)
	x, y, roomID := provisionRoom(t, client)
	svc := NewMessageService(client, slog.Default())

	req.NoError(svc.Send(ctx, roomID, x.AccountID, "   \t\n"))

	req.Empty(roomLog(t, client, roomID))
	req.Empty(readConversation(t, client, y.AccountID, roomID).LastMessage)
}

func Test_Send_Rejects_Malformed_Room_Id(t *testing.T) {
	req := require.New(t)
	svc := NewMessageService(newTestStore(t), slog.Default())

	err := svc.Send(context.Background(), "not-a-room", "acc-x", "hello")
	req.ErrorIs(err, errors.ErrMalformedRoomID)
}

func Test_Send_Commits_Message_And_Summaries_Together(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	roomID := domain.RoomID("acc-x_acc-y")
	messagesPath := domain.MessagesPath(roomID)
	rawConversation, err := json.Marshal(domain.Conversation{RoomID: roomID})
	req.NoError(err)

	mockStore := mocks.NewMockClient(ctrl)
	mockStore.EXPECT().NewChildKey(messagesPath).
		Return(messagesPath+"/0000000000000000001-k", "0000000000000000001-k")
	mockStore.EXPECT().Read(ctx, domain.ConversationPath("acc-x", roomID)).
		Return(rawConversation, true, nil)
	mockStore.EXPECT().Read(ctx, domain.ConversationPath("acc-y", roomID)).
		Return(rawConversation, true, nil)
	mockStore.EXPECT().AtomicWrite(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, writes map[string][]byte) error {
			req.Len(writes, 3)
			req.Contains(writes, messagesPath+"/0000000000000000001-k")
			req.Contains(writes, domain.ConversationPath("acc-x", roomID))
			req.Contains(writes, domain.ConversationPath("acc-y", roomID))
			return nil
		}).
		Times(1)

	req.NoError(NewMessageService(mockStore, slog.Default()).Send(ctx, roomID, "acc-x", "hello"))
}
