// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package audit implements a bundled timer handler that records one audit
// row per successfully dispatched timer, demonstrating a handler with a
// database side effect.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditModel "github.com/seakee/distimer/app/model/audit"
	auditService "github.com/seakee/distimer/app/service/audit"
	"github.com/sk-pkg/logger"
	"github.com/sk-pkg/redis"
)

// Payload is the schema the "audit" topic expects. TimerID travels in the
// payload itself since router.Handler is not passed the timer's own
// identity, only its decoded payload.
type Payload struct {
	TimerID string                 `json:"timer_id" validate:"required"`
	Note    string                 `json:"note"`
	Data    map[string]interface{} `json:"data"`
}

// Handler writes one timer_audit_log row per dispatched timer.
type Handler struct {
	service auditService.LogService
}

// New creates an audit handler backed by db and redis.
func New(db *gorm.DB, redis *redis.Manager, logger *logger.Manager) *Handler {
	return &Handler{service: auditService.NewLogService(db, redis, logger)}
}

// Dispatch is registered as a timer/router.Handler under the "audit" topic.
func (h *Handler) Dispatch(ctx context.Context, payload any) error {
	p, ok := payload.(Payload)
	if !ok {
		return fmt.Errorf("audit handler: unexpected payload type %T", payload)
	}

	body, err := json.Marshal(p.Data)
	if err != nil {
		return err
	}

	log := &auditModel.Log{
		Topic:   "audit",
		TimerID: p.TimerID,
		DoneAt:  sql.NullTime{Time: time.Now(), Valid: true},
		Payload: datatypes.JSON(body),
	}

	_, err = h.service.Store(ctx, log)
	return err
}
