// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package storetest provides an in-memory store.Store used by this
// repository's own tests in place of a live Redis instance.
package storetest

import (
	"sort"
	"sync"
	"time"
)

// Fake is an in-memory store.Store. The zero value is not usable; create one
// with New. Safe for concurrent use.
type Fake struct {
	mu       sync.Mutex
	timeline map[string]int64
	payloads map[string][]byte
	locks    map[string]string
	expires  map[string]time.Time
}

// New creates an empty in-memory store.
func New() *Fake {
	return &Fake{
		timeline: make(map[string]int64),
		payloads: make(map[string][]byte),
		locks:    make(map[string]string),
		expires:  make(map[string]time.Time),
	}
}

func (f *Fake) expired(key string) bool {
	exp, ok := f.expires[key]
	return ok && time.Now().After(exp)
}

// WriteTimer implements store.Store.
func (f *Fake) WriteTimer(key string, deadlineMs int64, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.timeline[key] = deadlineMs
	f.payloads[key] = payload
	return nil
}

// DeleteTimer implements store.Store.
func (f *Fake) DeleteTimer(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.timeline, key)
	delete(f.payloads, key)
	return nil
}

// RangeDue implements store.Store.
func (f *Fake) RangeDue(nowMs int64, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	type scored struct {
		key   string
		score int64
	}

	var due []scored
	for k, score := range f.timeline {
		if score <= nowMs {
			due = append(due, scored{k, score})
		}
	}

	sort.Slice(due, func(i, j int) bool { return due[i].score < due[j].score })

	if len(due) > limit {
		due = due[:limit]
	}

	keys := make([]string, len(due))
	for i, d := range due {
		keys[i] = d.key
	}
	return keys, nil
}

// GetPayload implements store.Store.
func (f *Fake) GetPayload(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.payloads[key]
	return p, ok, nil
}

// SetNX implements store.Store.
func (f *Fake) SetNX(key, value string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.locks[key]; exists && !f.expired(key) {
		return false, nil
	}

	f.locks[key] = value
	f.expires[key] = time.Now().Add(ttl)
	return true, nil
}

// Expire implements store.Store.
func (f *Fake) Expire(key string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.locks[key]; !exists {
		return false, nil
	}

	f.expires[key] = time.Now().Add(ttl)
	return true, nil
}

// CompareAndDelete implements store.Store.
func (f *Fake) CompareAndDelete(key, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.locks[key] != value {
		return false, nil
	}

	delete(f.locks, key)
	delete(f.expires, key)
	return true, nil
}
