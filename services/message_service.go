package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pairchat/domain"
	"pairchat/store"
)

type IMessageService interface {
	Send(ctx context.Context, roomID domain.RoomID, fromAccountID, text string) error
}

// MessageService appends messages to a room log and fans the summary
// out to both participants' conversation records. The append and both
// summary updates are one atomic write, so a reader never sees a
// message in the log without its summaries or the other way around.
type MessageService struct {
	store store.Client
	log   *slog.Logger
}

func NewMessageService(store store.Client, log *slog.Logger) *MessageService {
	return &MessageService{store: store, log: log}
}

func (s *MessageService) Send(ctx context.Context, roomID domain.RoomID, fromAccountID, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	first, second, err := roomID.Participants()
	if err != nil {
		return err
	}

	// One timestamp for the message and both summaries, so the records
	// agree on lastTime after the commit.
	now := time.Now().UTC()
	rawMessage, err := json.Marshal(domain.Message{
		From: fromAccountID,
		Text: text,
		At:   now,
	})
	if err != nil {
		return err
	}

	messagePath, key := s.store.NewChildKey(domain.MessagesPath(roomID))

	writes := map[string][]byte{messagePath: rawMessage}
	for _, accountID := range []string{first, second} {
		summary, err := s.summaryFor(ctx, accountID, roomID, text, now)
		if err != nil {
			return err
		}
		writes[domain.ConversationPath(accountID, roomID)] = summary
	}

	if err = s.store.AtomicWrite(ctx, writes); err != nil {
		return err
	}

	s.log.Debug("Message stored", "roomId", roomID, "key", key, "from", fromAccountID)
	return nil
}

// summaryFor rewrites one participant's conversation record with the
// new last-message state. A missing record is recreated bare, matching
// the implicit-parent behavior of subpath writes in document stores;
// concurrent senders resolve by last-writer-wins.
func (s *MessageService) summaryFor(ctx context.Context, accountID string, roomID domain.RoomID, text string, at time.Time) ([]byte, error) {
	conversation := domain.Conversation{RoomID: roomID}
	raw, ok, err := s.store.Read(ctx, domain.ConversationPath(accountID, roomID))
	if err != nil {
		return nil, err
	}
	if ok {
		if err = json.Unmarshal(raw, &conversation); err != nil {
			return nil, fmt.Errorf("decode conversation %s/%s: %w", accountID, roomID, err)
		}
	}
	conversation.LastMessage = text
	conversation.LastTime = at
	return json.Marshal(conversation)
}
