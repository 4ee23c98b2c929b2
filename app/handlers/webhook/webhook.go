// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package webhook implements a bundled timer handler that forwards a fired
// timer's payload to a configured outbound URL, demonstrating a handler with
// a real network side effect.
package webhook

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sk-pkg/logger"
	"go.uber.org/zap"
)

// Payload is the schema this handler's topic expects: an opaque JSON body
// forwarded verbatim to url.
type Payload struct {
	URL  string                 `json:"url" validate:"required,url"`
	Body map[string]interface{} `json:"body"`
}

// Handler posts fired timers' payloads to their target URL with resty, the
// same client and calling convention the teacher repo uses for its own
// outbound HTTP calls.
type Handler struct {
	client *resty.Client
	logger *logger.Manager
}

// New creates a webhook handler.
func New(logger *logger.Manager) *Handler {
	return &Handler{client: resty.New(), logger: logger}
}

// Dispatch is registered as a timer/router.Handler under the "webhook" topic.
func (h *Handler) Dispatch(ctx context.Context, payload any) error {
	p, ok := payload.(Payload)
	if !ok {
		return fmt.Errorf("webhook handler: unexpected payload type %T", payload)
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(p.Body).
		Post(p.URL)
	if err != nil {
		h.logger.Error(ctx, "webhook post failed", zap.String("url", p.URL), zap.Error(err))
		return err
	}

	if resp.IsError() {
		h.logger.Warn(ctx, "webhook target returned an error status",
			zap.String("url", p.URL), zap.Int("status", resp.StatusCode()))
		return fmt.Errorf("webhook target %s returned status %d", p.URL, resp.StatusCode())
	}

	return nil
}
