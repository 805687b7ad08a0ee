// Package domain contains core concepts of the sync core.
// This file defines identities: the external Account and the
// persisted Profile minted at first sign-in.
package domain

import "time"

// Account is the identity handed over by the external provider.
// Opaque, stable, read-only for this core.
type Account struct {
	ID          string
	DisplayName string
	AvatarURL   string
}

// Profile is the persisted record created once per account.
// NumericID is the small human-shareable id minted by the allocator.
type Profile struct {
	AccountID   string    `json:"accountId"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarURL"`
	CreatedAt   time.Time `json:"createdAt"`
	NumericID   string    `json:"numericId"`
}

// Snapshot reduces a profile to the copy embedded in the peer's
// conversation record.
func (p Profile) Snapshot() PeerSnapshot {
	return PeerSnapshot{
		AccountID:   p.AccountID,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		NumericID:   p.NumericID,
	}
}
