/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/friendsincode/smartalarm/internal/models"
)

// Migrate applies database schema migrations using GORM auto-migrate.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.KVEntry{},
		&models.Alarm{},
		&models.SessionLog{},
	); err != nil {
		return err
	}

	if err := backfillAlarmDefaults(database); err != nil {
		return err
	}

	return nil
}

// backfillAlarmDefaults repairs rows written before snooze settings and
// volume were columns.
func backfillAlarmDefaults(database *gorm.DB) error {
	updates := []struct {
		column string
		where  string
		value  any
	}{
		{"snooze_minutes", "snooze_minutes IS NULL OR snooze_minutes <= 0", models.DefaultSnoozeMinutes},
		{"volume", "volume IS NULL OR volume <= 0 OR volume > 1", models.DefaultVolume},
		{"mode", "mode IS NULL OR mode = ''", string(models.ModeMood)},
		{"mood", "mood IS NULL OR mood = ''", string(models.MoodNeutral)},
	}
	for _, u := range updates {
		if err := database.Model(&models.Alarm{}).Where(u.where).Update(u.column, u.value).Error; err != nil {
			return fmt.Errorf("backfill alarm %s: %w", u.column, err)
		}
	}
	return nil
}
