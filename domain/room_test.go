package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"pairchat/errors"
)

func Test_RoomID_Is_Symmetric(t *testing.T) {
	req := require.New(t)
	for i := 0; i < 20; i++ {
		a := uuid.New().String()
		b := uuid.New().String()
		req.Equal(NewRoomID(a, b), NewRoomID(b, a))
	}
}

func Test_RoomID_Orders_Lexicographically(t *testing.T) {
	req := require.New(t)
	req.Equal(RoomID("abc_xyz"), NewRoomID("xyz", "abc"))
	req.Equal(RoomID("abc_xyz"), NewRoomID("abc", "xyz"))
}

func Test_RoomID_Participants_Round_Trip(t *testing.T) {
	req := require.New(t)
	room := NewRoomID("bob", "alice")
	a, b, err := room.Participants()
	req.NoError(err)
	req.Equal("alice", a)
	req.Equal("bob", b)
}

func Test_RoomID_Participants_Rejects_Malformed(t *testing.T) {
	req := require.New(t)
	for _, raw := range []string{"", "alice", "_alice", "alice_"} {
		_, _, err := RoomID(raw).Participants()
		req.ErrorIs(err, errors.ErrMalformedRoomID)
	}
}
