package db

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/rvworks/servicedesk/internal/config"
)

// New opens the database named by the DSN. Postgres DSNs get the production
// schema via ordered SQL migrations; anything else is treated as a SQLite
// path (local development and tests) and migrated with AutoMigrate.
func New(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	var (
		database *gorm.DB
		err      error
	)

	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	}

	if isPostgres(cfg.DB.DSN) {
		database, err = gorm.Open(postgres.Open(cfg.DB.DSN), gormCfg)
	} else {
		log.Info().Str("dsn", cfg.DB.DSN).Msg("using sqlite database")
		database, err = gorm.Open(gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        cfg.DB.DSN,
		}), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if isPostgres(cfg.DB.DSN) {
		if err := runMigrations(database); err != nil {
			return nil, err
		}
	} else {
		if err := AutoMigrate(database); err != nil {
			return nil, err
		}
	}

	return database, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}
