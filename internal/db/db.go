// Package db owns the Postgres connection and schema migration for the
// token and CSRF stores.
package db

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	csrfrepo "badstats/csrf/gormrepo"
	tokenrepo "badstats/token/gormrepo"
)

// Connect establishes a Postgres backed GORM session for the credential
// store.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	database, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := migrate(ctx, database); err != nil {
		return nil, err
	}

	return database, nil
}

func migrate(ctx context.Context, database *gorm.DB) error {
	return database.WithContext(ctx).AutoMigrate(
		tokenrepo.Model(),
		csrfrepo.Model(),
	)
}

// Close releases the underlying sql.DB resources for the provided GORM
// handle.
func Close(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
