// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package timer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seakee/distimer/timer/codec"
	"github.com/seakee/distimer/timer/dispatch"
	"github.com/seakee/distimer/timer/lockmgr"
	"github.com/seakee/distimer/timer/router"
	"github.com/seakee/distimer/timer/store"
	"github.com/seakee/distimer/timer/timererr"
	"github.com/seakee/distimer/timer/timerkey"
)

// Engine is the public entry point: it owns the store, the lock manager,
// the handler registry, and the dispatch loop, and exposes the scheduling
// API described in spec.md §4.4.
type Engine struct {
	cfg      Config
	store    store.Store
	locks    *lockmgr.Manager
	router   *router.Router
	logger   dispatch.Logger
	notifier dispatch.Notifier

	loop   *dispatch.Loop
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs an engine over the given store and logger, with an empty
// handler registry. Routes are added with IncludeRouter or Handler during
// startup, before RunForever.
func New(s store.Store, logger dispatch.Logger, cfg Config) *Engine {
	cfg = cfg.withDefaults()

	return &Engine{
		cfg:    cfg,
		store:  s,
		locks:  lockmgr.New(s),
		router: router.New(),
		logger: logger,
	}
}

// SetNotifier attaches an optional out-of-band alert sink. Call it before
// IncludeRouter/Handler/RunForever so both the startup duplicate-handler
// path and the dispatch loop's handler-failure path are wired before either
// condition can occur.
func (e *Engine) SetNotifier(n dispatch.Notifier) {
	e.notifier = n
}

// IncludeRouter merges other's registered routes into the engine's own
// registry. Call this during startup, before RunForever; a topic registered
// in both raises timererr.DuplicateHandler, leaves the engine's registry
// untouched, and — when a Notifier is set — pushes a startup alert, since a
// colliding handler registration is an operator-fix-it condition spec.md
// §4.4.3.d calls for surfacing.
func (e *Engine) IncludeRouter(other *router.Router) error {
	if err := e.router.Merge(other); err != nil {
		e.notifyStartupError(err)
		return err
	}
	return nil
}

// Handler registers a single handler directly against the engine's registry.
// It is a convenience wrapper equivalent to building a router.Router with one
// route and merging it in.
func (e *Engine) Handler(topic string, schema codec.Schema, handler router.Handler) error {
	if err := e.router.Handler(topic, schema, handler); err != nil {
		e.notifyStartupError(err)
		return err
	}
	return nil
}

// notifyStartupError pushes a message describing err through the configured
// Notifier. A push failure is logged, not propagated.
func (e *Engine) notifyStartupError(err error) {
	if e.notifier == nil {
		return
	}

	ctx := context.Background()
	if pushErr := e.notifier.PushGroupRobotMsg(fmt.Sprintf("timer engine startup error: %v", err)); pushErr != nil {
		e.logger.Warn(ctx, "notifier push failed", zap.Error(pushErr))
	}
}

// SetTimer schedules payload to fire after activationPeriod elapses, for
// (topic, timerID), overwriting any existing timer with the same identity.
// An activationPeriod of zero fires on the engine's next poll. When
// cfg.StrictUnknownTopics is set, scheduling a topic with no registered
// handler fails immediately instead of being accepted permissively.
func (e *Engine) SetTimer(ctx context.Context, topic, timerID string, payload any, activationPeriod time.Duration) error {
	if err := timerkey.Validate("topic", topic, e.cfg.Separator); err != nil {
		return err
	}
	if err := timerkey.Validate("timer_id", timerID, e.cfg.Separator); err != nil {
		return err
	}

	if e.cfg.StrictUnknownTopics {
		if _, ok := e.router.Lookup(topic); !ok {
			return timererr.HandlerNotFound(topic)
		}
	}

	body, err := codec.Encode(payload)
	if err != nil {
		return err
	}

	key := timerkey.Build(topic, timerID, e.cfg.Separator)
	deadlineMs := time.Now().Add(activationPeriod).UnixMilli()

	token, err := e.locks.AcquireTimerLock(ctx, key, e.cfg.TimerLockTTL, e.cfg.LockAcquireTimeout)
	if err != nil {
		return err
	}
	defer func() { _ = e.locks.ReleaseTimerLock(key, token) }()

	if err := e.store.WriteTimer(key, deadlineMs, body); err != nil {
		return fmt.Errorf("write timer %q: %w", key, err)
	}

	return nil
}

// RemoveTimer cancels a previously scheduled timer. Removing a timer that
// does not exist (already fired, or never scheduled) is not an error.
func (e *Engine) RemoveTimer(ctx context.Context, topic, timerID string) error {
	if err := timerkey.Validate("topic", topic, e.cfg.Separator); err != nil {
		return err
	}
	if err := timerkey.Validate("timer_id", timerID, e.cfg.Separator); err != nil {
		return err
	}

	key := timerkey.Build(topic, timerID, e.cfg.Separator)

	token, err := e.locks.AcquireTimerLock(ctx, key, e.cfg.TimerLockTTL, e.cfg.LockAcquireTimeout)
	if err != nil {
		return err
	}
	defer func() { _ = e.locks.ReleaseTimerLock(key, token) }()

	if err := e.store.DeleteTimer(key); err != nil {
		return fmt.Errorf("delete timer %q: %w", key, err)
	}

	return nil
}

// RunForever starts the poll/dispatch loop and blocks until ctx is
// canceled or Stop is called.
func (e *Engine) RunForever(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})

	e.loop = dispatch.New(e.store, e.locks, e.router, e.logger, dispatch.Config{
		Separator:       e.cfg.Separator,
		BatchSize:       e.cfg.BatchSize,
		Concurrency:     e.cfg.Concurrency,
		PollInterval:    e.cfg.PollInterval,
		ConsumeLeaseTTL: e.cfg.ConsumeLeaseTTL,
		Notifier:        e.notifier,
	})

	defer close(e.done)
	e.loop.Run(loopCtx)
}

// Stop signals RunForever's loop to exit, waits up to cfg.ShutdownGrace for
// in-flight dispatch tasks to finish on their own, and then cooperatively
// cancels any tasks still running. It blocks until RunForever has returned.
func (e *Engine) Stop() {
	if e.cancel == nil {
		return
	}

	e.cancel()

	if e.loop != nil && !e.loop.Wait(e.cfg.ShutdownGrace) {
		e.loop.CancelTasks()
		e.loop.Wait(e.cfg.ShutdownGrace)
	}

	<-e.done
}
