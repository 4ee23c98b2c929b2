// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package timer

import "time"

// Config holds the recognized engine options (spec.md §6). Zero-value
// fields are filled in with the defaults below by New.
type Config struct {
	TimelineKey  string // Name of the ordered-set key holding deadlines. Default "timers_timeline".
	PayloadsKey  string // Name of the hash key holding payload bytes. Default "timers_payloads".
	Separator    string // Sequence joining topic and timer_id in K. Default "--".

	PollInterval time.Duration // Idle sleep between polls when last batch was short. Default 1s.
	BatchSize    int           // Max timers fetched per poll. Default 128.
	Concurrency  int           // Max concurrent dispatch tasks. Default 64.

	TimerLockTTL        time.Duration // TTL on the per-timer write lock. Default 5s.
	ConsumeLeaseTTL     time.Duration // TTL on the per-timer dispatch lease. Default 30s.
	LockAcquireTimeout  time.Duration // How long SetTimer/RemoveTimer wait for the timer lock. Default 5s.
	ShutdownGrace       time.Duration // Time between stop signal and forced cancellation. Default 10s.

	// StrictUnknownTopics rejects SetTimer calls for topics with no
	// registered route at call time instead of the permissive default
	// (spec.md §9 names this an optional strict mode).
	StrictUnknownTopics bool
}

const (
	defaultTimelineKey = "timers_timeline"
	defaultPayloadsKey = "timers_payloads"
	defaultSeparator   = "--"

	defaultPollInterval = time.Second
	defaultBatchSize    = 128
	defaultConcurrency  = 64

	defaultTimerLockTTL       = 5 * time.Second
	defaultConsumeLeaseTTL    = 30 * time.Second
	defaultLockAcquireTimeout = 5 * time.Second
	defaultShutdownGrace      = 10 * time.Second
)

// withDefaults returns a copy of cfg with every zero-valued field replaced
// by its documented default.
func (cfg Config) withDefaults() Config {
	if cfg.TimelineKey == "" {
		cfg.TimelineKey = defaultTimelineKey
	}
	if cfg.PayloadsKey == "" {
		cfg.PayloadsKey = defaultPayloadsKey
	}
	if cfg.Separator == "" {
		cfg.Separator = defaultSeparator
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.TimerLockTTL <= 0 {
		cfg.TimerLockTTL = defaultTimerLockTTL
	}
	if cfg.ConsumeLeaseTTL <= 0 {
		cfg.ConsumeLeaseTTL = defaultConsumeLeaseTTL
	}
	if cfg.LockAcquireTimeout <= 0 {
		cfg.LockAcquireTimeout = defaultLockAcquireTimeout
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = defaultShutdownGrace
	}
	return cfg
}
