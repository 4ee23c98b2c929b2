// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package client

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seakee/distimer/app/pkg/e"
	"github.com/seakee/distimer/timer/timererr"
)

type (
	// SetTimerReqParams is the request payload for POST /timers.
	SetTimerReqParams struct {
		Topic            string      `json:"topic" form:"topic" binding:"required"`
		TimerID          string      `json:"timer_id" form:"timer_id" binding:"required"`
		Payload          interface{} `json:"payload" form:"payload"`
		ActivationPeriod int64       `json:"activation_period_ms" form:"activation_period_ms" binding:"min=0"`
	}
)

// SetTimer registers a POST /timers handler that forwards to
// timer.Engine.SetTimer.
func (h handler) SetTimer() gin.HandlerFunc {
	return func(c *gin.Context) {
		var params SetTimerReqParams

		errCode := e.InvalidParams

		if err := c.ShouldBindJSON(&params); err != nil {
			h.i18n.JSON(c, errCode, nil, err)
			return
		}

		period := time.Duration(params.ActivationPeriod) * time.Millisecond

		err := h.engine.SetTimer(h.ctx(c), params.Topic, params.TimerID, params.Payload, period)
		if err != nil {
			h.logger.Error(h.ctx(c), "set timer failed",
				zap.String("topic", params.Topic), zap.String("timerId", params.TimerID), zap.Error(err))

			errCode = classifyError(err)
			h.i18n.JSON(c, errCode, nil, err)
			return
		}

		h.i18n.JSON(c, e.SUCCESS, nil, nil)
	}
}

// RemoveTimer registers a DELETE /timers/:topic/:id handler that forwards to
// timer.Engine.RemoveTimer. Removing a timer that does not exist is not an
// error, matching the engine's own semantics.
func (h handler) RemoveTimer() gin.HandlerFunc {
	return func(c *gin.Context) {
		topic := c.Param("topic")
		timerID := c.Param("id")

		err := h.engine.RemoveTimer(h.ctx(c), topic, timerID)
		if err != nil {
			h.logger.Error(h.ctx(c), "remove timer failed",
				zap.String("topic", topic), zap.String("timerId", timerID), zap.Error(err))

			h.i18n.JSON(c, classifyError(err), nil, err)
			return
		}

		h.i18n.JSON(c, e.SUCCESS, nil, nil)
	}
}

// classifyError maps an engine error into an HTTP-facing business code.
func classifyError(err error) int {
	switch {
	case errors.Is(err, timererr.ErrInvalidIdentifier):
		return e.InvalidParams
	case errors.Is(err, timererr.ErrLockAcquisitionTimeout):
		return e.TimerLockTimeout
	default:
		return e.TimerWriteFailed
	}
}
