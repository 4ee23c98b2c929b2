// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package dispatch implements the poll/fan-out/dispatch loop described in
// spec.md §4.4: it repeatedly ranges the timeline for due timers, fans each
// one out to a bounded worker pool, and hands each decoded payload to the
// registered handler on whichever worker holds that timer's consume lease.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seakee/distimer/timer/codec"
	"github.com/seakee/distimer/timer/lockmgr"
	"github.com/seakee/distimer/timer/router"
	"github.com/seakee/distimer/timer/store"
	"github.com/seakee/distimer/timer/timererr"
	"github.com/seakee/distimer/timer/timerkey"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Logger is the subset of *logger.Manager's interface the loop needs. It is
// declared locally, rather than importing sk-pkg/logger's concrete type, so
// tests can supply a no-op stand-in.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Warn(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
}

// Notifier pushes an out-of-band alert when the loop hits a condition an
// operator should act on — a failed handler, or (at the Engine level) a
// duplicate handler registration caught at startup. A nil Notifier disables
// alerting entirely.
type Notifier interface {
	PushGroupRobotMsg(msg string) error
}

// Config controls the loop's pacing and lease lifetime. It mirrors the
// relevant fields of timer.Config without importing that package, which
// would otherwise create timer <-> dispatch import cycle.
type Config struct {
	Separator       string
	BatchSize       int
	Concurrency     int
	PollInterval    time.Duration
	ConsumeLeaseTTL time.Duration

	// Notifier, when set, receives an alert for every handler failure the
	// loop observes. Optional.
	Notifier Notifier
}

// Loop drives one poll/fan-out/dispatch cycle per PollInterval (or
// immediately, without sleeping, when the previous cycle returned a full
// batch — spec.md §5's saturation mode).
type Loop struct {
	store  store.Store
	locks  *lockmgr.Manager
	router *router.Router
	logger Logger
	cfg    Config

	sem chan struct{}
	wg  sync.WaitGroup

	taskCtx    context.Context
	cancelTask context.CancelFunc
}

// New builds a dispatch loop. The router passed in is assumed frozen: no
// further registrations occur once Run starts.
func New(s store.Store, locks *lockmgr.Manager, r *router.Router, logger Logger, cfg Config) *Loop {
	taskCtx, cancel := context.WithCancel(context.Background())

	return &Loop{
		store:      s,
		locks:      locks,
		router:     r,
		logger:     logger,
		cfg:        cfg,
		sem:        make(chan struct{}, cfg.Concurrency),
		taskCtx:    taskCtx,
		cancelTask: cancel,
	}
}

// Run blocks, polling the timeline until ctx is canceled. It does not wait
// for in-flight dispatch tasks to finish before returning; callers that need
// a shutdown grace period should call Wait after canceling ctx.
func (l *Loop) Run(ctx context.Context) {
	backoff := minBackoff

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		due, err := l.store.RangeDue(nowMs(), l.cfg.BatchSize)
		if err != nil {
			l.logger.Error(ctx, "range due timers failed", zap.Error(err))

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}

			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		backoff = minBackoff

		for _, key := range due {
			key := key

			select {
			case l.sem <- struct{}{}:
			case <-ctx.Done():
				return
			}

			l.wg.Add(1)
			go func() {
				defer l.wg.Done()
				defer func() { <-l.sem }()
				l.dispatchOne(l.taskCtx, key)
			}()
		}

		// Saturation mode: a full batch means more due timers may already be
		// waiting, so re-poll immediately instead of sleeping.
		if len(due) >= l.cfg.BatchSize {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.cfg.PollInterval):
		}
	}
}

// Wait blocks until all in-flight dispatch tasks finish or timeout elapses,
// whichever comes first. It reports whether every task finished in time.
func (l *Loop) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// CancelTasks cooperatively cancels the context passed to in-flight dispatch
// tasks. Handlers that honor ctx cancellation can exit early; handlers that
// don't will keep running until they return on their own.
func (l *Loop) CancelTasks() {
	l.cancelTask()
}

// dispatchOne runs the full per-timer dispatch pipeline for a single due
// key: lease acquisition, payload fetch, key split, route lookup, schema
// validation, and handler invocation, releasing the consume lease for retry
// at any step that fails before the handler is actually invoked.
func (l *Loop) dispatchOne(ctx context.Context, key string) {
	held, token, err := l.locks.TryAcquireConsumeLease(key, l.cfg.ConsumeLeaseTTL)
	if err != nil {
		l.logger.Error(ctx, "acquire consume lease failed", zap.String("key", key), zap.Error(err))
		return
	}
	if !held {
		// Another worker already holds the lease for this cycle; skip.
		return
	}

	payload, found, err := l.store.GetPayload(key)
	if err != nil {
		l.logger.Error(ctx, "fetch payload failed", zap.String("key", key), zap.Error(err))
		l.releaseLease(ctx, key, token)
		return
	}
	if !found {
		// Already cleaned up by another worker between RangeDue and here.
		l.releaseLease(ctx, key, token)
		return
	}

	topic, timerID, ok := timerkey.Split(key, l.cfg.Separator)
	if !ok {
		l.logger.Error(ctx, "corrupted timer key, abandoning", zap.String("key", key))
		l.releaseLease(ctx, key, token)
		return
	}

	route, ok := l.router.Lookup(topic)
	if !ok {
		l.logger.Warn(ctx, "no handler registered for topic", zap.String("topic", topic), zap.String("timerId", timerID),
			zap.Error(timererr.HandlerNotFound(topic)))
		l.releaseLease(ctx, key, token)
		return
	}

	value, err := route.Schema.Validate(payload)
	if err != nil {
		var decodeErr *codec.DecodeError
		if asDecodeError(err, &decodeErr) {
			l.logger.Error(ctx, "payload decode failed", zap.String("topic", topic), zap.String("timerId", timerID),
				zap.Error(timererr.PayloadDecode(topic, timerID, err)))
		} else {
			l.logger.Error(ctx, "payload validation failed", zap.String("topic", topic), zap.String("timerId", timerID),
				zap.Error(timererr.PayloadValidation(topic, timerID, err)))
		}
		l.releaseLease(ctx, key, token)
		return
	}

	if err := l.invoke(ctx, route, timerID, value); err != nil {
		l.logger.Error(ctx, "handler failed", zap.String("topic", topic), zap.String("timerId", timerID), zap.Error(err))
		l.notify(ctx, fmt.Sprintf("timer handler failed: topic=%s timer_id=%s: %v", topic, timerID, err))
		l.releaseLease(ctx, key, token)
		return
	}

	if err := l.store.DeleteTimer(key); err != nil {
		l.logger.Error(ctx, "delete fired timer failed", zap.String("key", key), zap.Error(err))
	}
	// The consume lease is deliberately left to expire on its own TTL rather
	// than released here, so a crash between DeleteTimer and release cannot
	// let a second worker observe a fired timer as still pending.
}

// invoke calls the route's handler, converting a panic into a
// timererr.HandlerFailure so one misbehaving handler cannot take down the
// whole loop.
func (l *Loop) invoke(ctx context.Context, route router.Route, timerID string, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = timererr.HandlerFailure(route.Topic, timerID, fmt.Errorf("panic: %v", r))
		}
	}()

	if hErr := route.Handler(ctx, payload); hErr != nil {
		return timererr.HandlerFailure(route.Topic, timerID, hErr)
	}

	return nil
}

// notify pushes msg through the configured Notifier. A push failure is
// logged, not propagated — alerting must never affect dispatch outcomes.
func (l *Loop) notify(ctx context.Context, msg string) {
	if l.cfg.Notifier == nil {
		return
	}

	if err := l.cfg.Notifier.PushGroupRobotMsg(msg); err != nil {
		l.logger.Warn(ctx, "notifier push failed", zap.Error(err))
	}
}

func (l *Loop) releaseLease(ctx context.Context, key, token string) {
	if err := l.locks.ReleaseConsumeLease(key, token); err != nil {
		l.logger.Error(ctx, "release consume lease failed", zap.String("key", key), zap.Error(err))
	}
}

// asDecodeError reports whether err is a *codec.DecodeError, assigning it
// into target on success.
func asDecodeError(err error, target **codec.DecodeError) bool {
	de, ok := err.(*codec.DecodeError)
	if ok {
		*target = de
	}
	return ok
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
