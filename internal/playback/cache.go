// Package playback holds the per-channel in-memory record of what was last
// decided to be on air. It keeps rapid successive segment requests for the
// same channel agreeing on "now" instead of independently re-deriving
// slightly different wall-clock offsets.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/stwalsh4118/telecast/internal/models"
)

// ChannelProvider is the narrow slice of the channel store the cache needs.
type ChannelProvider interface {
	GetByNumber(ctx context.Context, number int) (*models.Channel, error)
}

type record struct {
	recordedAt time.Time
	item       models.LineupItem
}

// Cache memoizes channel configuration by broadcast number and remembers the
// most recent lineup decision per channel. Entries live for the process
// lifetime and are overwritten per channel on each new decision; nothing is
// persisted across restarts.
type Cache struct {
	store ChannelProvider

	mu       sync.RWMutex
	channels map[int]*models.Channel
	playing  map[int]record
}

// NewCache creates a playback cache backed by the given channel store
func NewCache(store ChannelProvider) *Cache {
	return &Cache{
		store:    store,
		channels: make(map[int]*models.Channel),
		playing:  make(map[int]record),
	}
}

// GetChannelConfig returns a channel by broadcast number, hitting the store
// only on the first request for that number within a stream session.
// Lookup failures are not cached.
func (c *Cache) GetChannelConfig(ctx context.Context, number int) (*models.Channel, error) {
	c.mu.RLock()
	channel, ok := c.channels[number]
	c.mu.RUnlock()
	if ok {
		return channel, nil
	}

	channel, err := c.store.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.channels[number] = channel
	c.mu.Unlock()

	return channel, nil
}

// GetCurrentLineupItem returns the cached lineup decision for a channel if it
// is still valid at the given instant, or nil when the caller must derive a
// fresh decision.
//
// A decision recorded at t0 with stream duration d is valid for instants in
// [t0, t0+d): the window is half-open, so a request landing exactly on the
// boundary derives a fresh, strictly later decision rather than replaying the
// expiring one.
func (c *Cache) GetCurrentLineupItem(number int, at time.Time) *models.LineupItem {
	c.mu.RLock()
	rec, ok := c.playing[number]
	c.mu.RUnlock()
	if !ok {
		return nil
	}

	sinceRecorded := at.Sub(rec.recordedAt).Milliseconds()
	if sinceRecorded < 0 || sinceRecorded >= rec.item.StreamDurationMs {
		return nil
	}

	item := rec.item
	return &item
}

// RecordPlayback stores a fresh decision as the channel's current one,
// last-writer-wins. Never called for synthetic loading placeholders.
func (c *Cache) RecordPlayback(number int, at time.Time, item models.LineupItem) {
	c.mu.Lock()
	c.playing[number] = record{recordedAt: at, item: item}
	c.mu.Unlock()
}

// Invalidate drops the cached configuration and playback record for a
// channel. Called when the admin API mutates the channel so the streaming
// path picks up the new lineup.
func (c *Cache) Invalidate(number int) {
	c.mu.Lock()
	delete(c.channels, number)
	delete(c.playing, number)
	c.mu.Unlock()
}
