package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalGuildLocker_SerializesPerGuild(t *testing.T) {
	t.Parallel()

	locker := NewLocalGuildLocker()
	var (
		active  int32
		maxSeen int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), TestGuildID)
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := atomic.AddInt32(&active, 1)
			for {
				seen := atomic.LoadInt32(&maxSeen)
				if n <= seen || atomic.CompareAndSwapInt32(&maxSeen, seen, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
}

func TestLocalGuildLocker_GuildsIndependent(t *testing.T) {
	t.Parallel()

	locker := NewLocalGuildLocker()
	unlockA, err := locker.Lock(context.Background(), 1)
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := locker.Lock(ctx, 2)
	require.NoError(t, err)
	unlockB()
}

func TestLocalGuildLocker_ContextDone(t *testing.T) {
	t.Parallel()

	locker := NewLocalGuildLocker()
	unlock, err := locker.Lock(context.Background(), TestGuildID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, TestGuildID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Double unlock is harmless and frees the slot
	unlock()
	unlock()
	again, err := locker.Lock(context.Background(), TestGuildID)
	require.NoError(t, err)
	again()
}

func TestLocalGuildLocker_DropsIdleSlots(t *testing.T) {
	t.Parallel()

	locker := NewLocalGuildLocker()
	for guildID := int64(1); guildID <= 50; guildID++ {
		unlock, err := locker.Lock(context.Background(), guildID)
		require.NoError(t, err)
		unlock()
	}
	assert.Zero(t, locker.slotCount())

	unlock, err := locker.Lock(context.Background(), TestGuildID)
	require.NoError(t, err)

	acquired := make(chan func())
	go func() {
		next, err := locker.Lock(context.Background(), TestGuildID)
		if assert.NoError(t, err) {
			acquired <- next
		}
	}()

	// a waiter keeps the slot alive after the holder leaves
	time.Sleep(10 * time.Millisecond)
	unlock()
	next := <-acquired
	assert.Equal(t, 1, locker.slotCount())

	next()
	assert.Zero(t, locker.slotCount())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	held, err := locker.Lock(context.Background(), TestGuildID)
	require.NoError(t, err)
	_, err = locker.Lock(ctx, TestGuildID)
	require.ErrorIs(t, err, context.Canceled)
	held()
	assert.Zero(t, locker.slotCount())
}
