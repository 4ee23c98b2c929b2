// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package timerkey builds and splits the compound store key K described in
// spec.md §3. It is a leaf package with no dependency on the engine, the
// store, or the registry, so both the write path and the dispatch loop can
// share it without an import cycle.
package timerkey

import (
	"strings"

	"github.com/seakee/distimer/timer/timererr"
)

// Validate rejects empty identifiers and identifiers containing separator,
// so Build/Split remain a bijection (spec.md §3).
func Validate(field, value, separator string) error {
	if value == "" || strings.Contains(value, separator) {
		return timererr.InvalidIdentifier(field, value)
	}
	return nil
}

// Build constructs K = topic ⊕ separator ⊕ timerID. Callers must call
// Validate on both components first.
func Build(topic, timerID, separator string) string {
	return topic + separator + timerID
}

// Split splits a compound key back into (topic, timerID) on the first
// occurrence of separator. ok is false when the separator is absent, which
// signals a corrupted store entry to the caller.
func Split(key, separator string) (topic, timerID string, ok bool) {
	idx := strings.Index(key, separator)
	if idx < 0 {
		return "", "", false
	}
	return key[:idx], key[idx+len(separator):], true
}
