package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	badgerpb "github.com/dgraph-io/badger/v4/pb"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"pairchat/errors"
)

// maxTransactRetries bounds the optimistic retry loop of Transact.
// Every conflict means another writer committed, so a burst of N
// contenders needs at most N rounds; anything beyond this means the
// store is unusable.
const maxTransactRetries = 32

// Badger implements Client on an embedded BadgerDB. Badger's
// serializable transactions give us conflict detection for Transact
// and all-or-nothing semantics for AtomicWrite; lexicographic key
// order makes child keys order-preserving.
type Badger struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBadger(db *badger.DB, log *slog.Logger) *Badger {
	return &Badger{db: db, log: log}
}

func (b *Badger) Read(_ context.Context, path string) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(path))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return value, true, nil
}

// Transact reads the value inside the transaction so that Badger
// tracks the key and aborts the commit if a concurrent writer got
// there first. On conflict we retry with a freshly read value.
func (b *Badger) Transact(ctx context.Context, path string, fn func(old []byte) ([]byte, error)) ([]byte, error) {
	key := []byte(path)
	for attempt := 0; attempt < maxTransactRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var committed []byte
		err := b.db.Update(func(txn *badger.Txn) error {
			var old []byte
			item, err := txn.Get(key)
			switch err {
			case nil:
				if old, err = item.ValueCopy(nil); err != nil {
					return err
				}
			case badger.ErrKeyNotFound:
				old = nil
			default:
				return err
			}
			next, err := fn(old)
			if err != nil {
				return err
			}
			committed = next
			return txn.Set(key, next)
		})
		if err == badger.ErrConflict {
			b.log.Debug("Transact conflict, retrying", "path", path, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("transact %s: %w", path, err)
		}
		return committed, nil
	}
	b.log.Warn("optimistic retries exhausted", "path", path, "attempts", maxTransactRetries)
	return nil, errors.ErrTransactionAborted
}

// AtomicWrite commits every entry in a single transaction, so
// subscribers observe all paths change together or not at all.
func (b *Badger) AtomicWrite(_ context.Context, writes map[string][]byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		for path, value := range writes {
			if err := txn.Set([]byte(path), value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrWriteFailed, err)
	}
	return nil
}

// NewChildKey formats the key as "{timestamp_padded}-{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent collisions if two children are reserved in the same
//     nanosecond, with the UUID as disconnector.
func (b *Badger) NewChildKey(path string) (string, string) {
	key := fmt.Sprintf("%019d-%s", time.Now().UTC().UnixNano(), uuid.New())
	return path + "/" + key, key
}

func (b *Badger) Append(ctx context.Context, path string, value []byte) (string, error) {
	fullPath, key := b.NewChildKey(path)
	if err := b.AtomicWrite(ctx, map[string][]byte{fullPath: value}); err != nil {
		return "", err
	}
	return key, nil
}

// Subscribe registers a Badger prefix watcher and re-materializes the
// subtree on every change notification. Full replace per push; the
// snapshot, not the delta, is the unit of delivery.
func (b *Badger) Subscribe(ctx context.Context, path string, limitToLast int) (*Subscription, error) {
	prefix := path + "/"
	subCtx, cancel := context.WithCancel(ctx)
	notify := make(chan struct{}, 1)
	out := make(chan Snapshot)

	go func() {
		err := b.db.Subscribe(subCtx, func(_ *badgerpb.KVList) error {
			// Coalesce bursts; the pump rescans the latest state anyway.
			select {
			case notify <- struct{}{}:
			default:
			}
			return nil
		}, []badgerpb.Match{{Prefix: []byte(prefix)}})
		if err != nil && err != context.Canceled {
			b.log.Error("store watcher stopped", "path", path, "error", err)
		}
	}()

	go func() {
		defer close(out)
		// The rescan tick covers writes that land before the watcher
		// finishes registering; unchanged snapshots are not re-sent.
		rescan := time.NewTicker(500 * time.Millisecond)
		defer rescan.Stop()
		var last Snapshot
		first := true
		for {
			snapshot, err := b.scan(prefix, limitToLast)
			if err != nil {
				b.log.Error("subtree scan failed", "path", path, "error", err)
			} else if first || !snapshot.equal(last) {
				select {
				case out <- snapshot:
					last = snapshot
					first = false
				case <-subCtx.Done():
					return
				}
			}
			select {
			case <-notify:
			case <-rescan.C:
			case <-subCtx.Done():
				return
			}
		}
	}()

	return &Subscription{C: out, cancel: cancel}, nil
}

// scan materializes the subtree under prefix, ascending by key. With a
// limit it walks backwards from the end of the prefix range so only
// the most recent entries are kept.
func (b *Badger) scan(prefix string, limitToLast int) (Snapshot, error) {
	var entries Snapshot
	prefixBytes := []byte(prefix)
	err := b.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = limitToLast > 0
		it := txn.NewIterator(options)
		defer it.Close()

		if limitToLast > 0 {
			// 0xff sorts after every generated child key byte.
			it.Seek(append(append([]byte{}, prefixBytes...), 0xff))
		} else {
			it.Seek(prefixBytes)
		}
		for ; it.ValidForPrefix(prefixBytes); it.Next() {
			if limitToLast > 0 && len(entries) == limitToLast {
				break
			}
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			entries = append(entries, Entry{
				Key:   string(item.Key()[len(prefixBytes):]),
				Value: value,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if limitToLast > 0 {
		entries = lo.Reverse(entries)
	}
	return entries, nil
}
