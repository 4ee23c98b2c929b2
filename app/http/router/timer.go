// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package router

import (
	"github.com/gin-gonic/gin"

	"github.com/seakee/distimer/app/http/controller/client"
)

// timerGroup wires the timer scheduling admin API: POST to schedule, DELETE
// to cancel (spec.md §4.3's set_timer/remove_timer over HTTP).
func timerGroup(api *gin.RouterGroup, core *Core) {
	timerHandler := client.New(core.Logger, core.I18n, core.Engine)
	{
		api.POST("", timerHandler.SetTimer())
		api.DELETE(":topic/:id", timerHandler.RemoveTimer())
	}
}
