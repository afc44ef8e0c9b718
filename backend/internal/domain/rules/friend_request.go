package rules

import "github.com/driftapp/drift/backend/internal/domain/enums"

// CanTransition encodes the friend request state machine: only pending moves,
// and only into one of the terminal states.
func CanTransition(from, to enums.FriendRequestStatus) bool {
	if from != enums.FriendRequestStatusPending {
		return false
	}
	switch to {
	case enums.FriendRequestStatusAccepted,
		enums.FriendRequestStatusDeclined,
		enums.FriendRequestStatusBlocked:
		return true
	default:
		return false
	}
}

func IsTerminal(status enums.FriendRequestStatus) bool {
	return status.Valid() && status != enums.FriendRequestStatusPending
}
