package command

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Cache memoizes Slack user ID to display name lookups for the life of the
// process. Display names change rarely enough that there is no TTL; a failed
// lookup is not cached, so a transient API error retries on the next message.
type Cache struct {
	mu    sync.Mutex
	names map[string]string
}

// NewCache returns an empty identity cache.
func NewCache() *Cache {
	return &Cache{names: make(map[string]string)}
}

// Resolve returns the lower-cased display name for a Slack user ID, querying
// the chat service on a cache miss. It returns the empty string when the ID
// cannot be resolved.
func (c *Cache) Resolve(ctx context.Context, chat Transport, id string) string {
	c.mu.Lock()
	name, ok := c.names[id]
	c.mu.Unlock()
	if ok {
		return name
	}
	u, err := chat.UserInfo(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "couldn't resolve user", slog.String("id", id), slog.Any("err", err))
		return ""
	}
	name = strings.ToLower(u.Name)
	slog.InfoContext(ctx, "resolved user", slog.String("id", id), slog.String("name", name))
	c.mu.Lock()
	c.names[id] = name
	c.mu.Unlock()
	return name
}
