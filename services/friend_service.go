package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"pairchat/domain"
	"pairchat/errors"
	"pairchat/store"
)

var validate = validator.New()

type addFriendRequest struct {
	NumericID string `validate:"required,numeric"`
}

type IFriendService interface {
	AddFriend(ctx context.Context, requester domain.Profile, targetNumericID string) (domain.RoomID, error)
}

// FriendService links two accounts and provisions their shared room:
// one conversation record per side plus both friend-link directions,
// committed in a single atomic write so no half-added friendship is
// ever observable.
type FriendService struct {
	store store.Client
	log   *slog.Logger
}

func NewFriendService(store store.Client, log *slog.Logger) *FriendService {
	return &FriendService{store: store, log: log}
}

func (s *FriendService) AddFriend(ctx context.Context, requester domain.Profile, targetNumericID string) (domain.RoomID, error) {
	if err := validate.Struct(addFriendRequest{NumericID: targetNumericID}); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidNumericID, err)
	}

	// 1. Resolve the shared numeric id back to an account.
	rawID, ok, err := s.store.Read(ctx, domain.NumericIDPath(targetNumericID))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.ErrPeerNotFound
	}
	peerID := string(rawID)

	if peerID == requester.AccountID {
		return "", errors.ErrSelfReference
	}

	// 2. Advisory duplicate check. Two mutual adds can both pass it;
	// the write below is idempotent, so the race stays harmless.
	if _, ok, err = s.store.Read(ctx, domain.FriendPath(requester.AccountID, peerID)); err != nil {
		return "", err
	} else if ok {
		return "", errors.ErrAlreadyLinked
	}

	// 3. The reverse index vouched for this account, so a missing
	// profile is an integrity violation, not user error.
	rawProfile, ok, err := s.store.Read(ctx, domain.ProfilePath(peerID))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: numeric id %s -> %s", errors.ErrPeerProfileMissing, targetNumericID, peerID)
	}
	var peer domain.Profile
	if err = json.Unmarshal(rawProfile, &peer); err != nil {
		return "", fmt.Errorf("decode profile %s: %w", peerID, err)
	}

	roomID := domain.NewRoomID(requester.AccountID, peerID)
	now := time.Now().UTC()

	forRequester, err := json.Marshal(domain.Conversation{
		RoomID:   roomID,
		With:     peer.Snapshot(),
		LastTime: now,
	})
	if err != nil {
		return "", err
	}
	forPeer, err := json.Marshal(domain.Conversation{
		RoomID:   roomID,
		With:     requester.Snapshot(),
		LastTime: now,
	})
	if err != nil {
		return "", err
	}

	// 4. Both conversations and both link directions commit together.
	err = s.store.AtomicWrite(ctx, map[string][]byte{
		domain.ConversationPath(requester.AccountID, roomID): forRequester,
		domain.ConversationPath(peerID, roomID):              forPeer,
		domain.FriendPath(requester.AccountID, peerID):       []byte("true"),
		domain.FriendPath(peerID, requester.AccountID):       []byte("true"),
	})
	if err != nil {
		return "", err
	}

	s.log.Info("Friendship provisioned",
		"requester", requester.AccountID, "peer", peerID, "roomId", roomID)
	return roomID, nil
}
