package enums

type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusDeclined FriendRequestStatus = "declined"
	FriendRequestStatusBlocked  FriendRequestStatus = "blocked"
)

func (s FriendRequestStatus) Valid() bool {
	switch s {
	case FriendRequestStatusPending,
		FriendRequestStatusAccepted,
		FriendRequestStatusDeclined,
		FriendRequestStatusBlocked:
		return true
	default:
		return false
	}
}
