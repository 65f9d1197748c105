// Package presence tracks user availability in redis. A status key carries a
// TTL refreshed by websocket heartbeats, so a crashed client decays to
// offline without any explicit signal.
package presence

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	StatusOnline  = "online"
	StatusIdle    = "idle"
	StatusDND     = "dnd"
	StatusOffline = "offline"
)

const keyPrefix = "presence:"

func ValidStatus(status string) bool {
	switch status {
	case StatusOnline, StatusIdle, StatusDND, StatusOffline:
		return true
	}
	return false
}

type Tracker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTracker(rdb *redis.Client, ttl time.Duration) *Tracker {
	return &Tracker{rdb: rdb, ttl: ttl}
}

// SetStatus records an explicit status choice. Offline deletes the key so
// absent and offline stay indistinguishable.
func (t *Tracker) SetStatus(ctx context.Context, userID, status string) error {
	if !ValidStatus(status) {
		return errors.New("invalid presence status")
	}
	if status == StatusOffline {
		return t.rdb.Del(ctx, keyPrefix+userID).Err()
	}
	return t.rdb.Set(ctx, keyPrefix+userID, status, t.ttl).Err()
}

// Status resolves a user's current availability; a missing key is offline.
func (t *Tracker) Status(ctx context.Context, userID string) (string, error) {
	status, err := t.rdb.Get(ctx, keyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return StatusOffline, nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

// Connected marks a freshly established session online.
func (t *Tracker) Connected(ctx context.Context, userID string) error {
	return t.rdb.Set(ctx, keyPrefix+userID, StatusOnline, t.ttl).Err()
}

// Heartbeat refreshes the TTL of whatever status is set, going online if
// none is. A chosen idle/dnd status survives refreshes.
func (t *Tracker) Heartbeat(ctx context.Context, userID string) error {
	ok, err := t.rdb.Expire(ctx, keyPrefix+userID, t.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return t.rdb.Set(ctx, keyPrefix+userID, StatusOnline, t.ttl).Err()
	}
	return nil
}

// Disconnected drops the status key when the last read pump exits.
func (t *Tracker) Disconnected(ctx context.Context, userID string) error {
	return t.rdb.Del(ctx, keyPrefix+userID).Err()
}
