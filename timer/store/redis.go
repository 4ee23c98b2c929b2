// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package store

import (
	"fmt"
	"time"

	redigo "github.com/gomodule/redigo/redis"
	"github.com/sk-pkg/redis"
)

// writeTimerScript atomically adds the timeline score and the payload hash
// entry for one compound key, satisfying the invariant that a member exists
// in the timeline iff its payload exists in the payload map (spec.md §3).
const writeTimerScript = `
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[1])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[3])
return 1
`

// deleteTimerScript atomically removes a compound key from both the
// timeline and the payload map.
const deleteTimerScript = `
redis.call('ZREM', KEYS[1], ARGV[1])
redis.call('HDEL', KEYS[2], ARGV[1])
return 1
`

// compareAndDeleteScript deletes KEYS[1] only when its current value equals
// ARGV[1], so a lock holder can never release a lock it no longer owns.
// Grounded on the fencing-token unlock script pattern used by redis-backed
// distributed locks in the example pack (go-lynx redislock).
const compareAndDeleteScript = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
else
	return 0
end
`

// Redis is the canonical Store, built on the same github.com/sk-pkg/redis
// manager the teacher repo uses for its own job-scheduler locks
// (app/pkg/schedule/job.go's lock/unLock), generalized here from a single
// named lock key to the full timeline/payload/lock keyspace.
type Redis struct {
	manager     *redis.Manager
	timelineKey string
	payloadsKey string
}

// NewRedis wraps an existing Redis manager with the timeline and payload
// key names the engine is configured to use.
func NewRedis(manager *redis.Manager, timelineKey, payloadsKey string) *Redis {
	return &Redis{manager: manager, timelineKey: timelineKey, payloadsKey: payloadsKey}
}

// WriteTimer implements Store.
func (r *Redis) WriteTimer(key string, deadlineMs int64, payload []byte) error {
	_, err := r.manager.Do("EVAL", writeTimerScript, 2, r.timelineKey, r.payloadsKey, key, deadlineMs, payload)
	if err != nil {
		return fmt.Errorf("write timer %q: %w", key, err)
	}
	return nil
}

// DeleteTimer implements Store.
func (r *Redis) DeleteTimer(key string) error {
	_, err := r.manager.Do("EVAL", deleteTimerScript, 2, r.timelineKey, r.payloadsKey, key)
	if err != nil {
		return fmt.Errorf("delete timer %q: %w", key, err)
	}
	return nil
}

// RangeDue implements Store.
func (r *Redis) RangeDue(nowMs int64, limit int) ([]string, error) {
	reply, err := r.manager.Do("ZRANGEBYSCORE", r.timelineKey, 0, nowMs, "LIMIT", 0, limit)
	if err != nil {
		return nil, fmt.Errorf("range due timers: %w", err)
	}

	keys, err := redigo.Strings(reply, nil)
	if err != nil {
		return nil, fmt.Errorf("decode due timers: %w", err)
	}

	return keys, nil
}

// GetPayload implements Store.
func (r *Redis) GetPayload(key string) ([]byte, bool, error) {
	reply, err := r.manager.Do("HGET", r.payloadsKey, key)
	if err != nil {
		return nil, false, fmt.Errorf("get payload %q: %w", key, err)
	}
	if reply == nil {
		return nil, false, nil
	}

	payload, err := redigo.Bytes(reply, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decode payload %q: %w", key, err)
	}

	return payload, true, nil
}

// SetNX implements Store. The TTL is sent as PX (milliseconds) rather than
// EX (seconds): a caller-configured sub-second lock TTL would truncate to
// EX 0, which Redis rejects outright.
func (r *Redis) SetNX(key, value string, ttl time.Duration) (bool, error) {
	reply, err := r.manager.Do("SET", key, value, "PX", ttl.Milliseconds(), "NX")
	if err != nil {
		return false, fmt.Errorf("setnx %q: %w", key, err)
	}
	return reply != nil, nil
}

// Expire implements Store.
func (r *Redis) Expire(key string, ttl time.Duration) (bool, error) {
	reply, err := r.manager.Do("EXPIRE", key, int64(ttl/time.Second))
	if err != nil {
		return false, fmt.Errorf("expire %q: %w", key, err)
	}

	ok, err := redigo.Bool(reply, nil)
	if err != nil {
		return false, fmt.Errorf("decode expire reply %q: %w", key, err)
	}

	return ok, nil
}

// CompareAndDelete implements Store.
func (r *Redis) CompareAndDelete(key, value string) (bool, error) {
	reply, err := r.manager.Do("EVAL", compareAndDeleteScript, 1, key, value)
	if err != nil {
		return false, fmt.Errorf("compare-and-delete %q: %w", key, err)
	}

	n, err := redigo.Int64(reply, nil)
	if err != nil {
		return false, fmt.Errorf("decode compare-and-delete reply %q: %w", key, err)
	}

	return n == 1, nil
}
