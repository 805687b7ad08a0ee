// Package projection materializes live views from store subscriptions.
// Handles ordering and full-replace snapshots.
// Does not write to the store or interact with UI directly.
package projection

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/samber/lo"

	"pairchat/domain"
	"pairchat/store"
)

// ConversationList is the live, ordered view of one user's
// conversations. Every push replaces the whole collection, re-sorted
// descending by last activity; the collection is friend-sized, so the
// resort stays cheap.
type ConversationList struct {
	Updates <-chan []domain.Conversation
	cancel  context.CancelFunc
}

func WatchConversations(ctx context.Context, client store.Client, log *slog.Logger, accountID string) (*ConversationList, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	sub, err := client.Subscribe(watchCtx, domain.ConversationsPath(accountID), 0)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan []domain.Conversation)
	go func() {
		defer close(out)
		for {
			select {
			case snapshot, ok := <-sub.C:
				if !ok {
					return
				}
				conversations := decodeConversations(log, snapshot)
				sort.Slice(conversations, func(i, j int) bool {
					return conversations[i].LastTime.After(conversations[j].LastTime)
				})
				select {
				case out <- conversations:
				case <-watchCtx.Done():
					return
				}
			case <-watchCtx.Done():
				return
			}
		}
	}()

	return &ConversationList{Updates: out, cancel: cancel}, nil
}

// Close releases the store-side listener. Updates is closed after the
// last in-flight snapshot.
func (c *ConversationList) Close() {
	c.cancel()
}

func decodeConversations(log *slog.Logger, snapshot store.Snapshot) []domain.Conversation {
	return lo.FilterMap(snapshot, func(entry store.Entry, _ int) (domain.Conversation, bool) {
		var conversation domain.Conversation
		if err := json.Unmarshal(entry.Value, &conversation); err != nil {
			log.Error("skipping undecodable conversation", "key", entry.Key, "error", err)
			return domain.Conversation{}, false
		}
		return conversation, true
	})
}
