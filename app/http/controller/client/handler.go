// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package client provides HTTP handlers for the timer admin API: the
// network-facing surface over the engine's SetTimer/RemoveTimer scheduler
// operations (spec.md §6).
package client

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sk-pkg/i18n"
	"github.com/sk-pkg/logger"

	"github.com/seakee/distimer/timer"
)

type (
	// Handler defines HTTP handlers for timer scheduling endpoints.
	Handler interface {
		i()
		ctx(c *gin.Context) context.Context
		// SetTimer handles POST /timers.
		SetTimer() gin.HandlerFunc
		// RemoveTimer handles DELETE /timers/:topic/:id.
		RemoveTimer() gin.HandlerFunc
	}

	handler struct {
		logger *logger.Manager
		i18n   *i18n.Manager
		engine *timer.Engine
	}
)

func (h handler) i() {}

// ctx builds a context carrying the trace ID from Gin context.
func (h handler) ctx(c *gin.Context) context.Context {
	traceID, _ := c.Get("trace_id")
	return context.WithValue(context.Background(), logger.TraceIDKey, traceID.(string))
}

// New creates a timer admin handler bound to a running engine.
func New(logger *logger.Manager, i18n *i18n.Manager, engine *timer.Engine) Handler {
	return &handler{logger: logger, i18n: i18n, engine: engine}
}
