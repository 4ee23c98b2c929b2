// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package app

import (
	"time"

	"github.com/seakee/distimer/timer"
)

// EngineConfig converts the JSON-facing TimerConfig into timer.Config, doing
// the second-to-Duration and millisecond-to-Duration conversions the way the
// teacher converts idle_timeout/db_max_lifetime with a *time.Minute/*time.Hour
// multiplier.
func (t TimerConfig) EngineConfig() timer.Config {
	return timer.Config{
		TimelineKey:         t.TimelineKey,
		PayloadsKey:         t.PayloadsKey,
		Separator:           t.Separator,
		PollInterval:        time.Duration(t.PollIntervalMs) * time.Millisecond,
		BatchSize:           t.BatchSize,
		Concurrency:         t.Concurrency,
		TimerLockTTL:        time.Duration(t.TimerLockTTLSec) * time.Second,
		ConsumeLeaseTTL:     time.Duration(t.ConsumeLeaseTTLSec) * time.Second,
		LockAcquireTimeout:  time.Duration(t.LockAcquireTimeoutSec) * time.Second,
		ShutdownGrace:       time.Duration(t.ShutdownGraceSec) * time.Second,
		StrictUnknownTopics: t.StrictUnknownTopics,
	}
}
