// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package audit provides service-layer orchestration for the dispatch audit
// trail.
package audit

import (
	"context"

	"github.com/sk-pkg/logger"
	"github.com/sk-pkg/redis"
	"gorm.io/gorm"

	auditModel "github.com/seakee/distimer/app/model/audit"
	"github.com/seakee/distimer/app/repository/audit"
)

type (
	// LogService defines business operations for the dispatch audit trail.
	LogService interface {
		Store(ctx context.Context, log *auditModel.Log) (int, error)
	}

	logService struct {
		repo   audit.Repo
		logger *logger.Manager
		redis  *redis.Manager
	}
)

// Store persists one dispatch audit record.
func (l logService) Store(ctx context.Context, log *auditModel.Log) (int, error) {
	return l.repo.CreateLog(log)
}

// NewLogService creates a LogService with repository dependencies.
func NewLogService(db *gorm.DB, redis *redis.Manager, logger *logger.Manager) LogService {
	return &logService{
		repo:   audit.NewLogRepo(db, redis),
		logger: logger,
		redis:  redis,
	}
}
