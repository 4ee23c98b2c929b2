// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/seakee/distimer/app/pkg/e"
)

// apiKeyHeader is the header admin callers present their shared secret in.
const apiKeyHeader = "X-API-Key"

// CheckAppAuth returns middleware that gates the timer admin API behind a
// single shared secret. The admin surface is two endpoints used by trusted
// internal callers, not a multi-tenant API, so one configured key is enough —
// there is no per-caller identity to issue or revoke.
//
// Returns:
//   - gin.HandlerFunc: middleware that aborts unauthorized requests.
//
// Behavior:
//   - Compares the X-API-Key header against the configured admin key in
//     constant time.
//   - Writes a localized error response and aborts the request on mismatch.
func (m middleware) CheckAppAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Header.Get(apiKeyHeader)

		if key == "" || !constantTimeEqual(key, m.adminAPIKey) {
			m.i18n.JSON(c, e.ServerUnauthorized, nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// constantTimeEqual reports whether a and b hold the same bytes, without
// leaking timing information about a partial match.
func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
