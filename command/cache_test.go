package command

import (
	"context"
	"errors"
	"testing"
)

func TestCacheResolve(t *testing.T) {
	chat := &chatspy{users: map[string]string{"U123": "Alice"}}
	cache := NewCache()
	ctx := context.Background()
	if got := cache.Resolve(ctx, chat, "U123"); got != "alice" {
		t.Errorf("wrong name: want %q, got %q", "alice", got)
	}
	if got := cache.Resolve(ctx, chat, "U123"); got != "alice" {
		t.Errorf("wrong name on second resolve: want %q, got %q", "alice", got)
	}
	if chat.userCalls != 1 {
		t.Errorf("want 1 lookup, got %d", chat.userCalls)
	}
}

func TestCacheNoNegativeEntries(t *testing.T) {
	chat := &chatspy{userErr: errors.New("slack is down")}
	cache := NewCache()
	ctx := context.Background()
	if got := cache.Resolve(ctx, chat, "U404"); got != "" {
		t.Errorf("failed lookup returned %q", got)
	}
	chat.userErr = nil
	chat.users = map[string]string{"U404": "Late"}
	if got := cache.Resolve(ctx, chat, "U404"); got != "late" {
		t.Errorf("lookup not retried after failure: got %q", got)
	}
	if chat.userCalls != 2 {
		t.Errorf("want 2 lookups, got %d", chat.userCalls)
	}
}
