// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package handlers bundles this repository's sample timer handlers and
// registers them against a timer/router.Router at startup.
package handlers

import (
	"github.com/sk-pkg/logger"
	"github.com/sk-pkg/redis"
	"gorm.io/gorm"

	"github.com/seakee/distimer/app/handlers/audit"
	"github.com/seakee/distimer/app/handlers/webhook"
	"github.com/seakee/distimer/timer/codec"
	"github.com/seakee/distimer/timer/router"
)

// Register builds a router carrying the bundled sample handlers: "webhook"
// (outbound HTTP via resty) and "audit" (a MySQL side effect via gorm), when
// their dependencies are available. db may be nil when no database profile
// is configured, in which case the audit handler is skipped. A non-nil
// error means two handlers collided on the same topic — a startup
// configuration fault, not a runtime condition, and callers must fail fast
// on it rather than run with a partially-registered router.
func Register(logger *logger.Manager, redis *redis.Manager, db *gorm.DB) (*router.Router, error) {
	r := router.New()

	wh := webhook.New(logger)
	if err := r.Handler("webhook", codec.JSONSchema[webhook.Payload]{}, wh.Dispatch); err != nil {
		return nil, err
	}

	if db != nil {
		ah := audit.New(db, redis, logger)
		if err := r.Handler("audit", codec.JSONSchema[audit.Payload]{}, ah.Dispatch); err != nil {
			return nil, err
		}
	}

	return r, nil
}
