package projection

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/samber/lo"

	"pairchat/domain"
	"pairchat/store"
)

// DefaultWindowSize bounds the observed tail of a room's log. Older
// messages stay in the log; they just fall out of the window.
const DefaultWindowSize = 50

// MessageWindow observes the most recent messages of one room at a
// time. Retarget tears down the previous subscription before opening
// the next, so at most one store listener is live per window. Owned by
// a single session; not safe for concurrent use.
type MessageWindow struct {
	Updates <-chan []domain.Message

	client store.Client
	log    *slog.Logger
	ctx    context.Context
	limit  int
	out    chan []domain.Message
	cancel context.CancelFunc
	done   chan struct{}
}

func NewMessageWindow(ctx context.Context, client store.Client, log *slog.Logger, limit int) *MessageWindow {
	if limit <= 0 {
		limit = DefaultWindowSize
	}
	out := make(chan []domain.Message)
	return &MessageWindow{
		Updates: out,
		client:  client,
		log:     log,
		ctx:     ctx,
		limit:   limit,
		out:     out,
	}
}

// Retarget switches the window to another room. The previous
// subscription is cancelled and drained before the new one starts, so
// snapshots of different rooms never interleave on Updates.
func (w *MessageWindow) Retarget(roomID domain.RoomID) error {
	w.release()

	subCtx, cancel := context.WithCancel(w.ctx)
	sub, err := w.client.Subscribe(subCtx, domain.MessagesPath(roomID), w.limit)
	if err != nil {
		cancel()
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case snapshot, ok := <-sub.C:
				if !ok {
					return
				}
				messages := decodeMessages(w.log, snapshot)
				select {
				case w.out <- messages:
				case <-subCtx.Done():
					return
				}
			case <-subCtx.Done():
				return
			}
		}
	}()

	w.cancel = cancel
	w.done = done
	w.log.Debug("message window retargeted", "roomId", roomID)
	return nil
}

// Close releases the current subscription, if any, and closes Updates.
func (w *MessageWindow) Close() {
	w.release()
	close(w.out)
}

func (w *MessageWindow) release() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.cancel = nil
	w.done = nil
}

// decodeMessages keeps the snapshot's stored order: child keys encode
// arrival order, so no resort is needed.
func decodeMessages(log *slog.Logger, snapshot store.Snapshot) []domain.Message {
	return lo.FilterMap(snapshot, func(entry store.Entry, _ int) (domain.Message, bool) {
		var message domain.Message
		if err := json.Unmarshal(entry.Value, &message); err != nil {
			log.Error("skipping undecodable message", "key", entry.Key, "error", err)
			return domain.Message{}, false
		}
		return message, true
	})
}
