package database

import (
	"fmt"

	"foodloop-backend/internal/config"
	"foodloop-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Open(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if !cfg.Production() && cfg.LogLevel == "debug" {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table, then normalises rows written by
// older clients.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Business{},
		&models.User{},
		&models.WasteEntry{},
		&models.PickupRequest{},
		&models.PointsHistory{},
		&models.Notification{},
		&models.ActivityLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// Older clients wrote statuses in lower case ("pending", "collected").
	for _, table := range []string{"pickup_requests", "waste_entries"} {
		res := db.Exec("UPDATE " + table + " SET status = UPPER(status) WHERE status <> UPPER(status)")
		if res.Error != nil {
			return fmt.Errorf("normalise %s.status: %w", table, res.Error)
		}
		if res.RowsAffected > 0 {
			log.Info().Str("table", table).Int64("rows", res.RowsAffected).Msg("status values upper-cased")
		}
	}

	if err := db.Exec("UPDATE users SET email = LOWER(email) WHERE email <> LOWER(email)").Error; err != nil {
		log.Warn().Err(err).Msg("could not lower-case user emails (duplicates?)")
	}

	log.Info().Msg("database migration finished")
	return nil
}
