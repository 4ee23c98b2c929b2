// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package timer

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seakee/distimer/timer/codec"
	"github.com/seakee/distimer/timer/storetest"
)

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, msg string, fields ...zap.Field)  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...zap.Field)  {}
func (nopLogger) Error(ctx context.Context, msg string, fields ...zap.Field) {}

type pingPayload struct {
	Msg string `json:"msg" validate:"required"`
}

func newTestEngine(t *testing.T) (*Engine, *storetest.Fake) {
	t.Helper()
	s := storetest.New()
	e := New(s, nopLogger{}, Config{
		PollInterval: 10 * time.Millisecond,
		BatchSize:    32,
	})
	return e, s
}

func TestSetTimerThenRemoveTimerRestoresPriorState(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	if err := e.SetTimer(ctx, "ping", "t1", pingPayload{Msg: "hi"}, time.Minute); err != nil {
		t.Fatalf("SetTimer failed: %v", err)
	}
	if err := e.RemoveTimer(ctx, "ping", "t1"); err != nil {
		t.Fatalf("RemoveTimer failed: %v", err)
	}

	if _, found, _ := s.GetPayload("ping--t1"); found {
		t.Error("expected the store to have no trace of the timer after set-then-remove")
	}
}

func TestSetTimerTwiceIsIdempotentOnLatest(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	_ = e.SetTimer(ctx, "ping", "t4", pingPayload{Msg: "a"}, 10*time.Second)

	var invoked int32
	var gotMsg string
	var mu sync.Mutex

	_ = e.Handler("ping", codec.JSONSchema[pingPayload]{}, func(ctx context.Context, payload any) error {
		atomic.AddInt32(&invoked, 1)
		mu.Lock()
		gotMsg = payload.(pingPayload).Msg
		mu.Unlock()
		return nil
	})

	if err := e.SetTimer(ctx, "ping", "t4", pingPayload{Msg: "b"}, 20*time.Millisecond); err != nil {
		t.Fatalf("second SetTimer failed: %v", err)
	}

	runFor(t, e, 2*time.Second)

	if atomic.LoadInt32(&invoked) != 1 {
		t.Fatalf("handler invoked %d times, want exactly 1", invoked)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotMsg != "b" {
		t.Errorf("handler saw Msg = %q, want the overwritten %q", gotMsg, "b")
	}
}

func TestRemoveTimerOnMissingEntryIsNotError(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.RemoveTimer(context.Background(), "ping", "never-scheduled"); err != nil {
		t.Errorf("RemoveTimer on a missing timer should not error, got %v", err)
	}
}

func TestRunForeverDispatchesDueTimer(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	var invoked int32
	_ = e.Handler("ping", codec.JSONSchema[pingPayload]{}, func(ctx context.Context, payload any) error {
		atomic.AddInt32(&invoked, 1)
		return nil
	})

	if err := e.SetTimer(ctx, "ping", "t1", pingPayload{Msg: "hi"}, 20*time.Millisecond); err != nil {
		t.Fatalf("SetTimer failed: %v", err)
	}

	runFor(t, e, 2*time.Second)

	if atomic.LoadInt32(&invoked) != 1 {
		t.Fatalf("handler invoked %d times, want 1", invoked)
	}
}

// runFor runs the engine for timeout, then cancels its context and waits for
// RunForever to return.
func runFor(t *testing.T, e *Engine, timeout time.Duration) {
	t.Helper()

	runCtx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		e.RunForever(runCtx)
	}()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	<-runDone
}
