package enums

type ConversationKind string

const (
	ConversationKindDating  ConversationKind = "dating"
	ConversationKindFriends ConversationKind = "friends"
)

// ConversationKindForMode maps a swipe mode onto the conversation it opens.
func ConversationKindForMode(mode SwipeMode) ConversationKind {
	if mode == SwipeModeFriends {
		return ConversationKindFriends
	}
	return ConversationKindDating
}

type ConversationOrigin string

const (
	ConversationOriginMatch         ConversationOrigin = "match"
	ConversationOriginFriendRequest ConversationOrigin = "friend_request"
)
