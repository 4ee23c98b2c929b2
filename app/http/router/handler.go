// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package router wires HTTP route groups and registers controller handlers.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sk-pkg/i18n"
	"github.com/sk-pkg/logger"
	"github.com/sk-pkg/redis"
	"gorm.io/gorm"

	"github.com/seakee/distimer/app/http/middleware"
	"github.com/seakee/distimer/timer"
)

// Core bundles the dependencies route groups need to construct handlers.
type Core struct {
	Logger     *logger.Manager
	Redis      map[string]*redis.Manager
	I18n       *i18n.Manager
	MysqlDB    map[string]*gorm.DB
	Middleware middleware.Middleware
	Engine     *timer.Engine
}

// New registers the admin API under /distimer.
//
// Parameters:
//   - mux: gin engine that receives route registrations.
//   - core: shared dependency container for handlers.
//
// Returns:
//   - *gin.Engine: the same engine after route registration.
func New(mux *gin.Engine, core *Core) *gin.Engine {
	api := mux.Group("distimer")

	api.GET("healthz", func(c *gin.Context) {
		core.I18n.JSON(c, 0, gin.H{"status": "ok"}, nil)
	})

	internal(api.Group("internal"), core)

	return mux
}

// internal registers routes intended for trusted internal callers: the timer
// scheduling admin API, gated behind the shared admin API key.
func internal(api *gin.RouterGroup, core *Core) {
	timerGroup(api.Group("timers", core.Middleware.CheckAppAuth()), core)
}
