// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package audit implements audit-domain repository access methods.
package audit

import (
	"github.com/sk-pkg/redis"
	"gorm.io/gorm"

	"github.com/seakee/distimer/app/model/audit"
)

type (
	// Repo defines persistence operations for the dispatch audit trail.
	Repo interface {
		CreateLog(*audit.Log) (int, error)
		ListLogs(topic string) ([]audit.Log, error)
	}

	// repo is a GORM-backed Repo implementation.
	repo struct {
		redis *redis.Manager
		db    *gorm.DB
	}
)

// CreateLog inserts one dispatch audit record.
func (r *repo) CreateLog(log *audit.Log) (int, error) {
	return log.Create(r.db)
}

// ListLogs returns audit rows for topic, most recent first.
func (r *repo) ListLogs(topic string) ([]audit.Log, error) {
	return (&audit.Log{}).ListByArgs(r.db, "topic = ?", topic)
}

// NewLogRepo creates an audit repository with shared dependencies.
func NewLogRepo(db *gorm.DB, redis *redis.Manager) Repo {
	return &repo{redis: redis, db: db}
}
