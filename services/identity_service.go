package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"pairchat/domain"
	"pairchat/errors"
	"pairchat/store"
)

// baseNumericID keeps every issued id at six digits.
const baseNumericID = 100000

type IIdentityService interface {
	EnsureProfile(ctx context.Context, account domain.Account) (domain.Profile, error)
}

// IdentityService mints one profile per account on first sign-in,
// backed by a shared counter in the store. It owns no in-process
// state; uniqueness lives entirely in the counter transaction.
type IdentityService struct {
	store store.Client
	log   *slog.Logger
}

func NewIdentityService(store store.Client, log *slog.Logger) *IdentityService {
	return &IdentityService{store: store, log: log}
}

// EnsureProfile creates the profile and its reverse-index entry on
// first sign-in, and is a no-op afterwards.
//
// The counter commit and the profile write are separate operations: if
// the second fails the numeric id stays consumed and the sequence gets
// a gap. Uniqueness matters, density does not.
func (s *IdentityService) EnsureProfile(ctx context.Context, account domain.Account) (domain.Profile, error) {
	if strings.Contains(account.ID, domain.RoomSeparator) {
		return domain.Profile{}, fmt.Errorf("%w: %q", errors.ErrInvalidAccountID, account.ID)
	}

	// 1. Existing profile means a returning account, nothing to write.
	if raw, ok, err := s.store.Read(ctx, domain.ProfilePath(account.ID)); err != nil {
		return domain.Profile{}, err
	} else if ok {
		var existing domain.Profile
		if err = json.Unmarshal(raw, &existing); err != nil {
			return domain.Profile{}, fmt.Errorf("decode profile %s: %w", account.ID, err)
		}
		return existing, nil
	}

	// 2. Claim the next numeric id under the conditional transaction.
	committed, err := s.store.Transact(ctx, domain.CounterPath, nextNumericID)
	if err != nil {
		if err == errors.ErrTransactionAborted {
			return domain.Profile{}, fmt.Errorf("%w: %v", errors.ErrAllocationFailed, err)
		}
		return domain.Profile{}, err
	}
	numericID := string(committed)

	profile := domain.Profile{
		AccountID:   account.ID,
		DisplayName: account.DisplayName,
		AvatarURL:   account.AvatarURL,
		CreatedAt:   time.Now().UTC(),
		NumericID:   numericID,
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("encode profile %s: %w", account.ID, err)
	}

	// 3. Link profile and reverse index in one atomic write.
	err = s.store.AtomicWrite(ctx, map[string][]byte{
		domain.ProfilePath(account.ID):  raw,
		domain.NumericIDPath(numericID): []byte(account.ID),
	})
	if err != nil {
		// The id was claimed but never linked. Surface the failure so
		// the sign-in retries; the abandoned id is only a gap.
		s.log.Warn("numeric id consumed but profile not linked",
			"accountId", account.ID, "numericId", numericID, "error", err)
		return domain.Profile{}, err
	}

	s.log.Info("Profile created", "accountId", account.ID, "numericId", numericID)
	return profile, nil
}

// nextNumericID proposes current+1 against the freshly read counter
// value, defaulting to the base offset when the counter is absent.
func nextNumericID(old []byte) ([]byte, error) {
	current := baseNumericID
	if len(old) > 0 {
		parsed, err := strconv.Atoi(string(old))
		if err != nil {
			return nil, fmt.Errorf("corrupt numeric id counter %q: %w", old, err)
		}
		current = parsed
	}
	return []byte(strconv.Itoa(current + 1)), nil
}
