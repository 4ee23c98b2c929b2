// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package timer implements a distributed timer dispatch engine backed by
// Redis: callers schedule payload-bearing events to fire at a future
// wall-clock time, and registered handlers are invoked when those deadlines
// elapse. A per-timer consume lease lets one worker at a time dispatch a
// given timer; a timer whose handler fails is retried on a later poll.
package timer

// Timer is a scheduled event identified by the pair (Topic, TimerID).
type Timer struct {
	Topic    string // Routing key; selects the handler.
	TimerID  string // Caller-chosen unique-within-topic identifier.
	Deadline int64  // Absolute firing time, milliseconds since the epoch.
	Payload  []byte // Opaque payload bytes; meaning defined by the handler's schema.
}
