package enums

import "strings"

type SwipeDirection string

const (
	SwipeDirectionLeft  SwipeDirection = "left"
	SwipeDirectionRight SwipeDirection = "right"
	SwipeDirectionUp    SwipeDirection = "up"
)

// IsLike reports whether the direction expresses interest (right or super-like).
func (d SwipeDirection) IsLike() bool {
	return d == SwipeDirectionRight || d == SwipeDirectionUp
}

type SwipeMode string

const (
	SwipeModeDating  SwipeMode = "dating"
	SwipeModeFriends SwipeMode = "friends"
)

// ParseSwipeDirection accepts canonical values and the spellings older clients send.
func ParseSwipeDirection(input string) (SwipeDirection, bool) {
	value := strings.ToLower(strings.TrimSpace(input))
	value = strings.ReplaceAll(value, "_", "")
	switch value {
	case "left", "pass", "dislike":
		return SwipeDirectionLeft, true
	case "right", "like":
		return SwipeDirectionRight, true
	case "up", "super", "superlike":
		return SwipeDirectionUp, true
	default:
		return "", false
	}
}

func ParseSwipeMode(input string) (SwipeMode, bool) {
	switch SwipeMode(strings.ToLower(strings.TrimSpace(input))) {
	case SwipeModeDating:
		return SwipeModeDating, true
	case SwipeModeFriends:
		return SwipeModeFriends, true
	default:
		return "", false
	}
}
