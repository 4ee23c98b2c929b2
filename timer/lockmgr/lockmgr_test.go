// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package lockmgr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seakee/distimer/timer/storetest"
	"github.com/seakee/distimer/timer/timererr"
)

func TestAcquireReleaseTimerLock(t *testing.T) {
	m := New(storetest.New())
	ctx := context.Background()

	token, err := m.AcquireTimerLock(ctx, "ping--t1", time.Second, time.Second)
	if err != nil {
		t.Fatalf("AcquireTimerLock failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty fencing token")
	}

	if err := m.ReleaseTimerLock("ping--t1", token); err != nil {
		t.Fatalf("ReleaseTimerLock failed: %v", err)
	}

	// Lock must be free again after release.
	if _, err := m.AcquireTimerLock(ctx, "ping--t1", time.Second, time.Second); err != nil {
		t.Fatalf("expected lock to be free after release, got: %v", err)
	}
}

func TestAcquireTimerLockExclusive(t *testing.T) {
	m := New(storetest.New())
	ctx := context.Background()

	token1, err := m.AcquireTimerLock(ctx, "ping--t1", time.Minute, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	defer m.ReleaseTimerLock("ping--t1", token1)

	_, err = m.AcquireTimerLock(ctx, "ping--t1", time.Minute, 100*time.Millisecond)
	if !errors.Is(err, timererr.ErrLockAcquisitionTimeout) {
		t.Errorf("expected a lock acquisition timeout while held, got %v", err)
	}
}

func TestReleaseTimerLockWrongTokenIsNoop(t *testing.T) {
	m := New(storetest.New())
	ctx := context.Background()

	token, err := m.AcquireTimerLock(ctx, "ping--t1", time.Minute, time.Second)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if err := m.ReleaseTimerLock("ping--t1", "not-the-real-token"); err != nil {
		t.Fatalf("release with wrong token should not error, got %v", err)
	}

	// The real holder's lock must still be held.
	_, err = m.AcquireTimerLock(context.Background(), "ping--t1", time.Minute, 50*time.Millisecond)
	if !errors.Is(err, timererr.ErrLockAcquisitionTimeout) {
		t.Errorf("expected lock to remain held after a mismatched-token release, got %v", err)
	}

	_ = m.ReleaseTimerLock("ping--t1", token)
}

func TestAcquireTimerLockRespectsContextCancellation(t *testing.T) {
	m := New(storetest.New())

	held, err := m.AcquireTimerLock(context.Background(), "ping--t1", time.Minute, time.Minute)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer m.ReleaseTimerLock("ping--t1", held)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = m.AcquireTimerLock(ctx, "ping--t1", time.Minute, time.Minute)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestConsumeLeaseSingleHolder(t *testing.T) {
	m := New(storetest.New())

	held1, token1, err := m.TryAcquireConsumeLease("ping--t1", time.Minute)
	if err != nil || !held1 {
		t.Fatalf("first lease attempt should succeed, held=%v err=%v", held1, err)
	}

	held2, _, err := m.TryAcquireConsumeLease("ping--t1", time.Minute)
	if err != nil {
		t.Fatalf("second lease attempt errored: %v", err)
	}
	if held2 {
		t.Error("second concurrent lease attempt must not succeed while the first is held")
	}

	if err := m.ReleaseConsumeLease("ping--t1", token1); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	held3, _, err := m.TryAcquireConsumeLease("ping--t1", time.Minute)
	if err != nil || !held3 {
		t.Fatalf("lease should be acquirable again after release, held=%v err=%v", held3, err)
	}
}
