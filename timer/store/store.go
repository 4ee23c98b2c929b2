// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package store defines the store operations the timer engine needs (spec.md
// §6) and a Redis-backed implementation built on github.com/sk-pkg/redis,
// the same client the teacher repo uses for its own lock keys.
package store

import "time"

// Store is the set of ordered-set, hash, and lock primitives the engine
// depends on. It is satisfied by Redis (the canonical store) and by any
// fake used in tests.
type Store interface {
	// WriteTimer atomically writes the timeline score and payload bytes for
	// K in one store-observable step (spec.md §4.3's "one atomic multi-write").
	WriteTimer(key string, deadlineMs int64, payload []byte) error

	// DeleteTimer atomically removes K from both the timeline and the
	// payload map (spec.md §4.4's "scripted atomic multi-remove-across-keys").
	DeleteTimer(key string) error

	// RangeDue returns members of the timeline with score in [0, nowMs],
	// ordered by ascending score, up to limit entries.
	RangeDue(nowMs int64, limit int) ([]string, error)

	// GetPayload fetches the payload bytes for K. found is false when the
	// entry is absent (already cleaned up by another worker).
	GetPayload(key string) (payload []byte, found bool, error error)

	// SetNX performs an exclusive-create SET with a TTL. ok is false when
	// the key already exists.
	SetNX(key, value string, ttl time.Duration) (ok bool, err error)

	// Expire refreshes the TTL of an existing key.
	Expire(key string, ttl time.Duration) (ok bool, err error)

	// CompareAndDelete atomically deletes key only if its current value
	// equals value (a fencing-token guarded unlock), so a TTL-expired
	// holder can never delete another holder's lock.
	CompareAndDelete(key, value string) (deleted bool, err error)
}
