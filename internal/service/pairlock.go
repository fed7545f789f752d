package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// pairKeyFor builds the lock key for one (wallet, currency) balance pair.
func pairKeyFor(address string, currencyID int32) string {
	return fmt.Sprintf("%s|%d", address, currencyID)
}

// pairLocks serializes operations touching the same (wallet, currency) pair.
// Operations on disjoint pairs proceed without blocking each other. Multi-pair
// acquisition always happens in sorted key order so two operations touching
// the same pairs in opposite order cannot deadlock.
type pairLocks struct {
	mu   sync.Mutex // guards sems
	sems map[string]chan struct{}
}

func newPairLocks() *pairLocks {
	return &pairLocks{sems: make(map[string]chan struct{})}
}

func (l *pairLocks) sem(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sems[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.sems[key] = s
	}
	return s
}

// Acquire locks every key (deduplicated, sorted) within wait. On success the
// returned release function must be called exactly once. On failure nothing
// stays held.
func (l *pairLocks) Acquire(ctx context.Context, wait time.Duration, keys ...string) (func(), error) {
	ordered := dedupeSorted(keys)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	held := make([]chan struct{}, 0, len(ordered))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, key := range ordered {
		s := l.sem(key)
		select {
		case s <- struct{}{}:
			held = append(held, s)
		case <-timer.C:
			release()
			return nil, fmt.Errorf("lock wait exceeded %s for pair %s", wait, key)
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}

	return release, nil
}

func dedupeSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
