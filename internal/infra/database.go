package infra

import (
	"embed"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewDatabase opens the GORM connection backed by pgx.
//
// Schema is managed exclusively by the SQL migrations under migrations/: the
// partial unique indexes, check constraint and composite foreign key that
// back the versioning rules cannot be expressed through AutoMigrate.
//
// lockTimeoutMS bounds how long a transaction waits on a row lock before
// Postgres aborts it with 55P03, which the repositories surface as Conflict.
func NewDatabase(dsn string, lockTimeoutMS int) (*gorm.DB, error) {
	dsn, err := withLockTimeout(dsn, lockTimeoutMS)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations applies every pending embedded migration.
func RunMigrations(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	version, err := goose.GetDBVersion(sqlDB)
	if err == nil {
		log.Info().Int64("version", version).Msg("database migrations applied")
	}
	return nil
}

// withLockTimeout adds lock_timeout as a pgx runtime parameter, so every
// pooled connection starts with it.
func withLockTimeout(dsn string, ms int) (string, error) {
	if ms <= 0 {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		// key=value DSN
		return dsn + " lock_timeout=" + strconv.Itoa(ms), nil
	}
	q := u.Query()
	q.Set("lock_timeout", strconv.Itoa(ms))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
