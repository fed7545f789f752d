package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairLocks_AcquireRelease(t *testing.T) {
	l := newPairLocks()

	release, err := l.Acquire(context.Background(), time.Second, "w1|1")
	require.NoError(t, err)
	release()

	release, err = l.Acquire(context.Background(), time.Second, "w1|1")
	require.NoError(t, err)
	release()
}

func TestPairLocks_ContendedPairTimesOut(t *testing.T) {
	l := newPairLocks()

	release, err := l.Acquire(context.Background(), time.Second, "w1|1")
	require.NoError(t, err)
	defer release()

	_, err = l.Acquire(context.Background(), 20*time.Millisecond, "w1|1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "lock wait exceeded")
}

func TestPairLocks_DisjointPairsDoNotBlock(t *testing.T) {
	l := newPairLocks()

	release, err := l.Acquire(context.Background(), time.Second, "w1|1")
	require.NoError(t, err)
	defer release()

	other, err := l.Acquire(context.Background(), 50*time.Millisecond, "w2|1", "w1|2")
	require.NoError(t, err)
	other()
}

func TestPairLocks_OppositeOrderNoDeadlock(t *testing.T) {
	l := newPairLocks()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		keys := []string{"a|1", "b|1"}
		if i%2 == 1 {
			keys = []string{"b|1", "a|1"}
		}
		wg.Add(1)
		go func(keys []string) {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), 5*time.Second, keys...)
			if err != nil {
				t.Error(err)
				return
			}
			time.Sleep(time.Millisecond)
			release()
		}(keys)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("deadlock: goroutines did not finish")
	}
}

func TestPairLocks_DuplicateKeysDeduplicated(t *testing.T) {
	l := newPairLocks()

	release, err := l.Acquire(context.Background(), time.Second, "w1|1", "w1|1")
	require.NoError(t, err)
	release()
}

func TestPairLocks_ReleasedOnTimeoutMidway(t *testing.T) {
	l := newPairLocks()

	// Hold the second key in sort order so a two-key acquire stalls after
	// taking the first.
	release, err := l.Acquire(context.Background(), time.Second, "b|1")
	require.NoError(t, err)

	_, err = l.Acquire(context.Background(), 20*time.Millisecond, "a|1", "b|1")
	require.Error(t, err)
	release()

	// The failed acquire must not leave "a|1" held.
	again, err := l.Acquire(context.Background(), 50*time.Millisecond, "a|1", "b|1")
	require.NoError(t, err)
	again()
}

func TestPairLocks_ContextCancelled(t *testing.T) {
	l := newPairLocks()

	release, err := l.Acquire(context.Background(), time.Second, "w1|1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, time.Second, "w1|1")
	assert.ErrorIs(t, err, context.Canceled)
}
