// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package timererr defines the error taxonomy raised by the timer engine.
package timererr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Callers match with errors.Is; the dispatch loop and
// scheduler wrap these with timer-specific context before returning them.
var (
	// ErrInvalidIdentifier is returned when a topic or timer_id is empty or
	// contains the configured separator.
	ErrInvalidIdentifier = errors.New("timer: invalid identifier")

	// ErrLockAcquisitionTimeout is returned when a blocking lock acquire
	// exceeds its configured deadline.
	ErrLockAcquisitionTimeout = errors.New("timer: lock acquisition timed out")

	// ErrEncode is returned when the codec fails to serialize a payload for
	// storage on the write path.
	ErrEncode = errors.New("timer: payload encode failed")

	// ErrPayloadDecode is returned when the codec cannot deserialize stored
	// bytes into the shape the schema expects.
	ErrPayloadDecode = errors.New("timer: payload decode failed")

	// ErrPayloadValidation is returned when decoded payload bytes fail
	// schema validation.
	ErrPayloadValidation = errors.New("timer: payload validation failed")

	// ErrHandlerNotFound is returned when a due timer's topic has no
	// registered route.
	ErrHandlerNotFound = errors.New("timer: handler not found")

	// ErrHandlerFailure wraps a panic or error returned by a user handler.
	ErrHandlerFailure = errors.New("timer: handler failure")

	// ErrDuplicateHandler is returned when a topic is registered twice in
	// one registry, or when merging registries finds a colliding topic.
	ErrDuplicateHandler = errors.New("timer: duplicate handler")
)

// InvalidIdentifier wraps ErrInvalidIdentifier with the offending value.
func InvalidIdentifier(field, value string) error {
	return fmt.Errorf("%w: %s %q contains the separator or is empty", ErrInvalidIdentifier, field, value)
}

// LockAcquisitionTimeout wraps ErrLockAcquisitionTimeout with the lock key.
func LockAcquisitionTimeout(key string) error {
	return fmt.Errorf("%w: key %q", ErrLockAcquisitionTimeout, key)
}

// Encode wraps ErrEncode with the underlying codec error.
func Encode(err error) error {
	return fmt.Errorf("%w: %v", ErrEncode, err)
}

// PayloadDecode wraps ErrPayloadDecode with the underlying codec error.
func PayloadDecode(topic, timerID string, err error) error {
	return fmt.Errorf("%w: topic=%s timer_id=%s: %v", ErrPayloadDecode, topic, timerID, err)
}

// PayloadValidation wraps ErrPayloadValidation with the underlying schema error.
func PayloadValidation(topic, timerID string, err error) error {
	return fmt.Errorf("%w: topic=%s timer_id=%s: %v", ErrPayloadValidation, topic, timerID, err)
}

// HandlerNotFound wraps ErrHandlerNotFound with the unmatched topic.
func HandlerNotFound(topic string) error {
	return fmt.Errorf("%w: topic=%s", ErrHandlerNotFound, topic)
}

// HandlerFailure wraps ErrHandlerFailure with the handler's own error.
func HandlerFailure(topic, timerID string, err error) error {
	return fmt.Errorf("%w: topic=%s timer_id=%s: %v", ErrHandlerFailure, topic, timerID, err)
}

// DuplicateHandler wraps ErrDuplicateHandler with the colliding topic.
func DuplicateHandler(topic string) error {
	return fmt.Errorf("%w: topic=%s", ErrDuplicateHandler, topic)
}
