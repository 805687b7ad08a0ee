package errors

import "fmt"

var (
	ErrAllocationFailed   = fmt.Errorf("numeric id allocation failed")
	ErrPeerNotFound       = fmt.Errorf("no account registered for this numeric id")
	ErrSelfReference      = fmt.Errorf("cannot add yourself as a friend")
	ErrAlreadyLinked      = fmt.Errorf("accounts are already friends")
	ErrPeerProfileMissing = fmt.Errorf("reverse index points to a missing profile")
	ErrWriteFailed        = fmt.Errorf("atomic write rejected by the store")
	ErrTransactionAborted = fmt.Errorf("transaction aborted after retry exhaustion")
	ErrInvalidAccountID   = fmt.Errorf("account id contains the room separator")
	ErrMalformedRoomID    = fmt.Errorf("room id is not a joined account pair")
	ErrInvalidNumericID   = fmt.Errorf("numeric id must be a positive number")
)
