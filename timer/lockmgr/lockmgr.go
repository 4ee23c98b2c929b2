// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package lockmgr implements the two distributed-lock flavors the engine
// needs (spec.md §4.1): a blocking per-timer write lock, and a non-blocking
// per-timer one-shot consume lease. Both are generalized from the
// SET-NX-EX / EXPIRE / DEL lock idiom the teacher repo uses for its own
// single-node job lock (app/pkg/schedule/job.go's lock/unLock), but add a
// fencing token so a TTL-expired holder can never release another holder's
// lock — spec.md §4.1 requires this explicitly.
package lockmgr

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/seakee/distimer/timer/store"
	"github.com/seakee/distimer/timer/timererr"
)

const (
	timerLockPrefix   = "lock:timer:"
	consumeLeasePrefix = "lock:consume:"

	acquirePollInterval = 50 * time.Millisecond
)

// Manager acquires and releases timer locks and consume leases against a
// backing Store.
type Manager struct {
	store store.Store
}

// New creates a lock manager over the given store.
func New(s store.Store) *Manager {
	return &Manager{store: s}
}

// TimerLockKey returns the store key guarding writes to K.
func TimerLockKey(key string) string {
	return timerLockPrefix + key
}

// ConsumeLeaseKey returns the store key guarding dispatch of K.
func ConsumeLeaseKey(key string) string {
	return consumeLeasePrefix + key
}

// AcquireTimerLock blocks, polling with backoff, until the per-timer write
// lock for key can be created, or until acquireTimeout elapses. It returns a
// random per-holder fencing token that must be passed to ReleaseTimerLock.
func (m *Manager) AcquireTimerLock(ctx context.Context, key string, ttl, acquireTimeout time.Duration) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("generate lock token: %w", err)
	}

	lockKey := TimerLockKey(key)
	deadline := time.Now().Add(acquireTimeout)

	for {
		ok, err := m.store.SetNX(lockKey, token, ttl)
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}

		if time.Now().After(deadline) {
			return "", timererr.LockAcquisitionTimeout(lockKey)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(acquirePollInterval):
		}
	}
}

// ReleaseTimerLock releases a lock previously acquired with AcquireTimerLock.
// Release is a compare-and-delete keyed by token, so a holder whose lock has
// already expired and been reacquired by someone else cannot delete the new
// holder's lock.
func (m *Manager) ReleaseTimerLock(key, token string) error {
	_, err := m.store.CompareAndDelete(TimerLockKey(key), token)
	return err
}

// TryAcquireConsumeLease performs a single non-blocking exclusive-create for
// the consume lease on key. held is false when another worker already holds
// it, in which case the caller must skip this timer for the current poll
// cycle (spec.md §4.1).
func (m *Manager) TryAcquireConsumeLease(key string, ttl time.Duration) (held bool, token string, err error) {
	token, err = newToken()
	if err != nil {
		return false, "", fmt.Errorf("generate lease token: %w", err)
	}

	held, err = m.store.SetNX(ConsumeLeaseKey(key), token, ttl)
	if err != nil {
		return false, "", err
	}

	return held, token, nil
}

// ReleaseConsumeLease releases a consume lease. Per spec.md §4.1 this is
// only ever called when handler dispatch fails or is abandoned before
// invocation; on success the lease is deliberately left to expire.
func (m *Manager) ReleaseConsumeLease(key, token string) error {
	_, err := m.store.CompareAndDelete(ConsumeLeaseKey(key), token)
	return err
}

// newToken returns a random, per-holder fencing token.
func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
