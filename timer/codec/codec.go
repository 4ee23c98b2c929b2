// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package codec serializes timer payloads for storage and defers semantic
// validation to a per-route schema descriptor (spec.md §4.2, §9).
package codec

import (
	"encoding/json"

	"github.com/seakee/distimer/timer/timererr"
)

// Schema is the language-neutral contract spec.md §9 describes: any
// validation library, or hand-rolled variant-tagged decoder, can implement
// it. Validate returns the decoded, validated value the handler expects.
//
// Implementations classify their own failures by returning a *DecodeError
// when data could not be parsed at all, or a *ValidationError when parsing
// succeeded but the result fails semantic checks — the dispatch loop uses
// that distinction to choose between PayloadDecodeError and
// PayloadValidationError (spec.md §7).
type Schema interface {
	Validate(data []byte) (value any, err error)
}

// DecodeError marks a Schema.Validate failure caused by malformed bytes
// (the payload could not be parsed into the expected shape at all).
type DecodeError struct{ Err error }

func (e *DecodeError) Error() string { return e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError marks a Schema.Validate failure where bytes parsed fine
// but the resulting value fails semantic validation.
type ValidationError struct{ Err error }

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// Encode serializes a payload for storage. []byte values pass through
// unchanged (the caller already has wire bytes); anything else is
// marshaled as JSON, the format every concrete Schema in this repo expects.
func Encode(v any) ([]byte, error) {
	if b, ok := v.([]byte); ok {
		return b, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, timererr.Encode(err)
	}

	return b, nil
}
