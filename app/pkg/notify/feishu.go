// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package notify adapts this repository's alert sinks to the timer engine's
// dispatch.Notifier interface.
package notify

import (
	"github.com/sk-pkg/feishu"
)

// Feishu adapts *feishu.Manager to dispatch.Notifier, so a handler failure
// or a startup duplicate-handler registration can push a group robot
// message the same way bootstrap.App.loadFeishu wires the manager for
// everything else in this repo.
type Feishu struct {
	manager *feishu.Manager
}

// NewFeishu wraps an initialized Feishu manager as a Notifier.
func NewFeishu(manager *feishu.Manager) *Feishu {
	return &Feishu{manager: manager}
}

// PushGroupRobotMsg implements dispatch.Notifier.
func (f *Feishu) PushGroupRobotMsg(msg string) error {
	return f.manager.PushGroupRobotMsg(msg)
}
