package domain

import "time"

// PeerSnapshot is the denormalized copy of the other participant's
// profile stored inside a conversation record.
type PeerSnapshot struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarURL"`
	NumericID   string `json:"numericId"`
}

// Conversation is one user's summary of a room. Two records exist per
// room, one under each participant, and must agree on RoomID,
// LastMessage and LastTime after every successful write.
//
// UnreadCount is persisted but no write path increments it yet.
type Conversation struct {
	RoomID      RoomID       `json:"roomId"`
	With        PeerSnapshot `json:"with"`
	LastMessage string       `json:"lastMessage"`
	LastTime    time.Time    `json:"lastTime"`
	UnreadCount int          `json:"unreadCount"`
}
