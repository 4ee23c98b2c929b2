// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package e defines business and HTTP error codes used in API responses.
package e

const (
	// Generic status codes.
	BUSY          = -1
	SUCCESS       = 0
	ERROR         = 500
	InvalidParams = 400

	// Admin API authorization errors.
	ServerUnauthorized = 10001

	// Timer scheduling errors.
	TimerLockTimeout  = 20001
	TimerWriteFailed  = 20002
	TimerRemoveFailed = 20003
)
