// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package dispatch

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seakee/distimer/timer/codec"
	"github.com/seakee/distimer/timer/lockmgr"
	"github.com/seakee/distimer/timer/router"
	"github.com/seakee/distimer/timer/storetest"
)

type nopLogger struct{}

func (nopLogger) Info(ctx context.Context, msg string, fields ...zap.Field)  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...zap.Field)  {}
func (nopLogger) Error(ctx context.Context, msg string, fields ...zap.Field) {}

type pingPayload struct {
	Msg string `json:"msg"`
}

type jsonSchema struct{}

func (jsonSchema) Validate(data []byte) (any, error) {
	var v pingPayload
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &codec.DecodeError{Err: err}
	}
	return v, nil
}

func newLoop(t *testing.T, s *storetest.Fake, r *router.Router, cfg Config) *Loop {
	t.Helper()
	if cfg.Separator == "" {
		cfg.Separator = "--"
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 10
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 4
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 10 * time.Millisecond
	}
	if cfg.ConsumeLeaseTTL == 0 {
		cfg.ConsumeLeaseTTL = time.Minute
	}
	return New(s, lockmgr.New(s), r, nopLogger{}, cfg)
}

func TestDispatchOneHappyPath(t *testing.T) {
	s := storetest.New()
	var invoked int32
	var gotMsg string
	var mu sync.Mutex

	r := router.New()
	_ = r.Handler("ping", jsonSchema{}, func(ctx context.Context, payload any) error {
		atomic.AddInt32(&invoked, 1)
		mu.Lock()
		gotMsg = payload.(pingPayload).Msg
		mu.Unlock()
		return nil
	})

	_ = s.WriteTimer("ping--t1", time.Now().UnixMilli(), []byte(`{"msg":"hi"}`))

	l := newLoop(t, s, r, Config{})
	l.dispatchOne(context.Background(), "ping--t1")

	if atomic.LoadInt32(&invoked) != 1 {
		t.Fatalf("handler invoked %d times, want 1", invoked)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotMsg != "hi" {
		t.Errorf("handler payload Msg = %q, want %q", gotMsg, "hi")
	}

	if _, found, _ := s.GetPayload("ping--t1"); found {
		t.Error("expected payload to be removed from the store after a successful dispatch")
	}
}

func TestDispatchOneUnknownTopicLeavesEntryAndReleasesLease(t *testing.T) {
	s := storetest.New()
	r := router.New()

	_ = s.WriteTimer("missing--t1", time.Now().UnixMilli(), []byte(`{}`))

	l := newLoop(t, s, r, Config{})
	l.dispatchOne(context.Background(), "missing--t1")

	if _, found, _ := s.GetPayload("missing--t1"); !found {
		t.Error("entry for an unknown topic must remain in the store")
	}

	// The lease must have been released so a later poll can retry.
	held, _, err := l.locks.TryAcquireConsumeLease("missing--t1", time.Minute)
	if err != nil {
		t.Fatalf("TryAcquireConsumeLease failed: %v", err)
	}
	if !held {
		t.Error("expected the consume lease to be free for retry after HandlerNotFound")
	}
}

func TestDispatchOneHandlerFailureReleasesLeaseForRetry(t *testing.T) {
	s := storetest.New()
	r := router.New()

	var calls int32
	_ = r.Handler("ping", jsonSchema{}, func(ctx context.Context, payload any) error {
		atomic.AddInt32(&calls, 1)
		return context.DeadlineExceeded
	})

	_ = s.WriteTimer("ping--t1", time.Now().UnixMilli(), []byte(`{"msg":"hi"}`))

	l := newLoop(t, s, r, Config{})
	l.dispatchOne(context.Background(), "ping--t1")

	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("handler called %d times, want 1", calls)
	}

	if _, found, _ := s.GetPayload("ping--t1"); !found {
		t.Error("entry must remain in the store after a handler failure, for retry")
	}

	held, _, err := l.locks.TryAcquireConsumeLease("ping--t1", time.Minute)
	if err != nil {
		t.Fatalf("TryAcquireConsumeLease failed: %v", err)
	}
	if !held {
		t.Error("expected the consume lease to be free for retry after a handler failure")
	}
}

func TestDispatchOneHandlerPanicIsRecovered(t *testing.T) {
	s := storetest.New()
	r := router.New()

	_ = r.Handler("ping", jsonSchema{}, func(ctx context.Context, payload any) error {
		panic("boom")
	})

	_ = s.WriteTimer("ping--t1", time.Now().UnixMilli(), []byte(`{"msg":"hi"}`))

	l := newLoop(t, s, r, Config{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.dispatchOne(context.Background(), "ping--t1")
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatchOne did not return after a handler panic")
	}

	if _, found, _ := s.GetPayload("ping--t1"); !found {
		t.Error("entry must remain in the store after a handler panic, for retry")
	}
}

func TestDispatchOneTwoWorkersOneLease(t *testing.T) {
	s := storetest.New()
	r := router.New()

	var calls int32
	_ = r.Handler("ping", jsonSchema{}, func(ctx context.Context, payload any) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	_ = s.WriteTimer("ping--t1", time.Now().UnixMilli(), []byte(`{"msg":"hi"}`))

	l1 := newLoop(t, s, r, Config{})
	l2 := newLoop(t, s, r, Config{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); l1.dispatchOne(context.Background(), "ping--t1") }()
	go func() { defer wg.Done(); l2.dispatchOne(context.Background(), "ping--t1") }()
	wg.Wait()

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("handler invoked %d times across two workers, want exactly 1", calls)
	}
}
