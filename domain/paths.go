package domain

// Store path layout. Keys are slash-joined so that a subtree is a
// plain key prefix for scans and subscriptions.
//
//	profiles/{accountId}                      Profile
//	counters/users                            numeric id counter
//	ids/{numericId}                           accountId (reverse index)
//	users/{accountId}/friends/{peerId}        "true"
//	users/{accountId}/conversations/{roomId}  Conversation
//	rooms/{roomId}/messages/{childKey}        Message

const CounterPath = "counters/users"

func ProfilePath(accountID string) string {
	return "profiles/" + accountID
}

func NumericIDPath(numericID string) string {
	return "ids/" + numericID
}

func FriendPath(accountID, peerID string) string {
	return "users/" + accountID + "/friends/" + peerID
}

func ConversationPath(accountID string, roomID RoomID) string {
	return ConversationsPath(accountID) + "/" + string(roomID)
}

// ConversationsPath is the subtree holding one user's conversation
// records, the target of the conversation-list subscription.
func ConversationsPath(accountID string) string {
	return "users/" + accountID + "/conversations"
}

// MessagesPath is the subtree holding a room's append-only log.
func MessagesPath(roomID RoomID) string {
	return "rooms/" + string(roomID) + "/messages"
}
