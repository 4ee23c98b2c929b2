// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package audit defines the persistence model for a timer's dispatch audit
// trail: one row per successfully dispatched timer, written by the bundled
// audit-log sample handler.
package audit

import (
	"database/sql"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Log is one dispatched-timer audit record.
type Log struct {
	ID        int            `gorm:"primaryKey;column:id" json:"-"`
	Topic     string         `gorm:"topic" json:"topic"`
	TimerID   string         `gorm:"timer_id" json:"timer_id"`
	Deadline  sql.NullTime   `gorm:"deadline" json:"deadline"`
	DoneAt    sql.NullTime   `gorm:"done_at" json:"done_at"`
	Payload   datatypes.JSON `gorm:"payload" json:"payload"`
}

// TableName returns the database table name for Log.
func (l *Log) TableName() string {
	return "timer_audit_log"
}

// Create inserts the current Log record into the database.
//
// Parameters:
//   - db: GORM database client.
//
// Returns:
//   - int: auto-increment primary key of the inserted record.
//   - error: wrapped create error when insertion fails.
func (l *Log) Create(db *gorm.DB) (id int, err error) {
	if err = db.Create(l).Error; err != nil {
		return 0, errors.Wrap(err, "create err")
	}

	id = l.ID
	return
}

// ListByArgs returns audit rows filtered by raw query conditions and
// arguments, most recent first.
//
// Parameters:
//   - db: GORM database client.
//   - query: SQL where expression or struct condition.
//   - args: query placeholder arguments.
//
// Returns:
//   - []Log: matched rows sorted by descending ID.
//   - error: query error.
func (l *Log) ListByArgs(db *gorm.DB, query interface{}, args ...interface{}) (logs []Log, err error) {
	err = db.Where(query, args...).Order("id desc").Find(&logs).Error
	return
}
