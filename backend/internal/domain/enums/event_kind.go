package enums

type EventKind string

const (
	EventKindMatchCreated          EventKind = "match.created"
	EventKindFriendshipEstablished EventKind = "friendship.established"
)
