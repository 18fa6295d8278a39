package services

import (
	"context"
	"sync"
)

// guildSlot is held by the current owner and counts everyone waiting for it
type guildSlot struct {
	ch   chan struct{}
	refs int
}

// LocalGuildLocker serializes work per guild within this process
type LocalGuildLocker struct {
	mu    sync.Mutex
	slots map[int64]*guildSlot
}

// NewLocalGuildLocker creates an in-process guild locker
func NewLocalGuildLocker() *LocalGuildLocker {
	return &LocalGuildLocker{slots: make(map[int64]*guildSlot)}
}

// Lock blocks until the guild's slot is free or ctx is done.
// A slot is dropped once nobody holds or waits for it.
func (l *LocalGuildLocker) Lock(ctx context.Context, guildID int64) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[guildID]
	if !ok {
		slot = &guildSlot{ch: make(chan struct{}, 1)}
		l.slots[guildID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.release(guildID, slot)
			})
		}, nil
	case <-ctx.Done():
		l.release(guildID, slot)
		return nil, ctx.Err()
	}
}

func (l *LocalGuildLocker) release(guildID int64, slot *guildSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, guildID)
	}
}

func (l *LocalGuildLocker) slotCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
