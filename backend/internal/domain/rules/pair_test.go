package rules

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
)

func TestCanonicalPairIsOrderIndependent(t *testing.T) {
	low := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	high := uuid.MustParse("ffffffff-0000-0000-0000-000000000001")

	forward, err := CanonicalPair(low, high, enums.SwipeModeDating)
	if err != nil {
		t.Fatalf("canonical pair: %v", err)
	}
	reverse, err := CanonicalPair(high, low, enums.SwipeModeDating)
	if err != nil {
		t.Fatalf("canonical pair reversed: %v", err)
	}

	if forward != reverse {
		t.Fatalf("pair keys differ: %+v vs %+v", forward, reverse)
	}
	if forward.UserA != low || forward.UserB != high {
		t.Fatalf("unexpected canonical order: %+v", forward)
	}
	if forward.String() != "dating:"+low.String()+":"+high.String() {
		t.Fatalf("unexpected key string: %s", forward.String())
	}
}

func TestCanonicalPairSeparatesModes(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	dating, err := CanonicalPair(a, b, enums.SwipeModeDating)
	if err != nil {
		t.Fatalf("dating pair: %v", err)
	}
	friends, err := CanonicalPair(a, b, enums.SwipeModeFriends)
	if err != nil {
		t.Fatalf("friends pair: %v", err)
	}
	if dating == friends {
		t.Fatalf("dating and friends keys must differ")
	}
}

func TestCanonicalPairRejectsSelf(t *testing.T) {
	a := uuid.New()
	if _, err := CanonicalPair(a, a, enums.SwipeModeDating); !errors.Is(err, ErrSelfPair) {
		t.Fatalf("expected ErrSelfPair, got %v", err)
	}
}

func TestCanonicalOrderMatchesStringOrder(t *testing.T) {
	for i := 0; i < 200; i++ {
		a, b := uuid.New(), uuid.New()
		byBytes := CompareUsers(a, b)
		byString := 0
		switch {
		case a.String() < b.String():
			byString = -1
		case a.String() > b.String():
			byString = 1
		}
		if byBytes != byString {
			t.Fatalf("byte order and string order disagree for %s / %s", a, b)
		}
	}
}

func TestSideOf(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	key, err := CanonicalPair(a, b, enums.SwipeModeFriends)
	if err != nil {
		t.Fatalf("canonical pair: %v", err)
	}

	sideA, ok := SideOf(key, key.UserA)
	if !ok || sideA != model.PairSideA {
		t.Fatalf("unexpected side for user a: %q %v", sideA, ok)
	}
	sideB, ok := SideOf(key, key.UserB)
	if !ok || sideB != model.PairSideB {
		t.Fatalf("unexpected side for user b: %q %v", sideB, ok)
	}
	if _, ok := SideOf(key, uuid.New()); ok {
		t.Fatalf("outsider must not resolve to a side")
	}
	if key.Other(key.UserA) != key.UserB || key.Other(key.UserB) != key.UserA {
		t.Fatalf("Other returned the wrong member")
	}
}

func TestNewConversationIsCanonical(t *testing.T) {
	low := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	high := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	conv, err := NewConversation(high, low, enums.ConversationKindFriends, enums.ConversationOriginFriendRequest)
	if err != nil {
		t.Fatalf("new conversation: %v", err)
	}
	if conv.UserA != low || conv.UserB != high {
		t.Fatalf("conversation members not canonical: %+v", conv)
	}
	if conv.ID == uuid.Nil {
		t.Fatalf("conversation id must be assigned")
	}
}
