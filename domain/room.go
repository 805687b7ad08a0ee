package domain

import (
	"strings"
	"time"

	"pairchat/errors"
)

// RoomSeparator joins the two account ids of a room id. Account ids
// containing it are rejected at profile creation, otherwise the id
// could not be split back into its participants.
const RoomSeparator = "_"

type RoomID string

// NewRoomID derives the room id for an unordered account pair.
// The smaller id always comes first, so both participants resolve
// the same room no matter who initiates.
func NewRoomID(a, b string) RoomID {
	if a < b {
		return RoomID(a + RoomSeparator + b)
	}
	return RoomID(b + RoomSeparator + a)
}

// Participants splits a room id back into both account ids.
func (r RoomID) Participants() (string, string, error) {
	parts := strings.SplitN(string(r), RoomSeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.ErrMalformedRoomID
	}
	return parts[0], parts[1], nil
}

// Message is an immutable chat entry appended under a room.
// The store-generated key, not the struct, carries arrival order.
type Message struct {
	From string    `json:"from"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}
