/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/friendsincode/smartalarm/internal/telemetry"
)

const startedAtKey = "smartalarm:started_at"

// Table labels outside this set collapse to "other" so raw SQL cannot
// blow up metric cardinality.
var trackedTables = map[string]bool{
	"kv_entries":   true,
	"alarms":       true,
	"session_logs": true,
}

// RegisterCallbacks times every gorm operation and counts failures by kind.
func RegisterCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Query().Before("gorm:query").Register("smartalarm:before_query", startTimer),
		cb.Query().After("gorm:query").Register("smartalarm:after_query", recordOperation("query")),
		cb.Create().Before("gorm:create").Register("smartalarm:before_create", startTimer),
		cb.Create().After("gorm:create").Register("smartalarm:after_create", recordOperation("create")),
		cb.Update().Before("gorm:update").Register("smartalarm:before_update", startTimer),
		cb.Update().After("gorm:update").Register("smartalarm:after_update", recordOperation("update")),
		cb.Delete().Before("gorm:delete").Register("smartalarm:before_delete", startTimer),
		cb.Delete().After("gorm:delete").Register("smartalarm:after_delete", recordOperation("delete")),
		cb.Raw().Before("gorm:raw").Register("smartalarm:before_raw", startTimer),
		cb.Raw().After("gorm:raw").Register("smartalarm:after_raw", recordOperation("raw")),
	)
}

func startTimer(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func recordOperation(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		started, ok := v.(time.Time)
		if !ok {
			return
		}

		telemetry.DatabaseQueryDuration.
			WithLabelValues(operation, tableLabel(db.Statement)).
			Observe(time.Since(started).Seconds())

		if kind := errorKind(db.Error); kind != "" {
			telemetry.DatabaseErrorsTotal.WithLabelValues(operation, kind).Inc()
		}
	}
}

func tableLabel(stmt *gorm.Statement) string {
	if stmt == nil {
		return "raw"
	}
	table := stmt.Table
	if table == "" && stmt.Schema != nil {
		table = stmt.Schema.Table
	}
	switch {
	case table == "":
		return "raw"
	case trackedTables[table]:
		return table
	default:
		return "other"
	}
}

// errorKind buckets a gorm error. A missing record is a normal lookup miss
// and yields "".
func errorKind(err error) string {
	switch {
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return "constraint"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate"),
		strings.Contains(msg, "constraint failed"), strings.Contains(msg, "violates"):
		return "constraint"
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "does not exist"):
		return "schema"
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "connection"):
		return "unavailable"
	default:
		return "other"
	}
}

// UpdateConnectionMetrics publishes the pool's open connection count.
func UpdateConnectionMetrics(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	telemetry.DatabaseConnectionsActive.Set(float64(sqlDB.Stats().OpenConnections))
}
