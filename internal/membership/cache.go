// Package membership maintains the cached roster state that
// server-introspection tools read from. The roster is written by the
// presence tracker and only ever read by tool executors.
package membership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rosterKey = "guildmate:roster"

// Member statuses.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Member is one roster entry.
type Member struct {
	JID      string    `json:"jid"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"last_seen"`
}

// Cache stores the roster in a Redis hash keyed by member JID.
type Cache struct {
	rdb redis.Cmdable
}

// NewCache creates a roster cache on the given Redis connection.
func NewCache(rdb redis.Cmdable) *Cache {
	return &Cache{rdb: rdb}
}

// Upsert writes or replaces the roster entry for m.JID.
func (c *Cache) Upsert(ctx context.Context, m Member) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling member %s: %w", m.JID, err)
	}
	if err := c.rdb.HSet(ctx, rosterKey, m.JID, string(data)).Err(); err != nil {
		return fmt.Errorf("storing member %s: %w", m.JID, err)
	}
	return nil
}

// Get returns the roster entry for jid, reporting whether it exists.
func (c *Cache) Get(ctx context.Context, jid string) (Member, bool, error) {
	val, err := c.rdb.HGet(ctx, rosterKey, jid).Result()
	if errors.Is(err, redis.Nil) {
		return Member{}, false, nil
	}
	if err != nil {
		return Member{}, false, fmt.Errorf("reading member %s: %w", jid, err)
	}

	var m Member
	if err := json.Unmarshal([]byte(val), &m); err != nil {
		return Member{}, false, fmt.Errorf("decoding member %s: %w", jid, err)
	}
	return m, true, nil
}

// All returns every roster entry. Malformed entries are skipped.
func (c *Cache) All(ctx context.Context) ([]Member, error) {
	vals, err := c.rdb.HGetAll(ctx, rosterKey).Result()
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}

	members := make([]Member, 0, len(vals))
	for _, v := range vals {
		var m Member
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			continue
		}
		members = append(members, m)
	}
	return members, nil
}

// Counts returns the total and currently-online member counts.
func (c *Cache) Counts(ctx context.Context) (total, online int, err error) {
	members, err := c.All(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, m := range members {
		if m.Status == StatusOnline {
			online++
		}
	}
	return len(members), online, nil
}
