// Package store owns the relational database: connection setup, schema
// migrations and the unit-of-work helper used by the services.
package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/massikone/massikone/internal/logger"
)

//go:embed migrations
var embedMigrations embed.FS

const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// Store wraps a migrated gorm database.
type Store struct {
	db      *gorm.DB
	dialect string
	log     *zap.Logger
}

// Open connects to the database named by url and applies pending
// migrations. Postgres is selected by a postgres:// or postgresql:// url;
// anything else is a sqlite file (an optional "sqlite:" prefix is
// stripped, "file:" DSNs are passed through).
func Open(ctx context.Context, url string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("store")

	dialect, dial, err := dialector(url)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.NewGorm(log),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}
	if dialect == DialectSQLite {
		// One writer at a time; also keeps shared in-memory databases alive.
		sqlDB.SetMaxOpenConns(1)
	}

	s := &Store{db: db, dialect: dialect, log: log}
	if err := s.migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	log.Debug("database ready", zap.String("dialect", dialect))
	return s, nil
}

func dialector(url string) (string, gorm.Dialector, error) {
	switch {
	case url == "":
		return "", nil, errors.New("database url is empty")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, postgres.Open(url), nil
	}

	dsn := strings.TrimPrefix(url, "sqlite:")
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	if !strings.Contains(dsn, "_pragma=foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)"
	}
	return DialectSQLite, sqlite.Open(dsn), nil
}

func (s *Store) migrate(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting sql.DB: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(s.dialect); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations/"+s.dialect); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// DB returns the database bound to ctx for queries outside a unit of work.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Dialect returns the goose dialect name of the connected database.
func (s *Store) Dialect() string {
	return s.dialect
}

// Transaction runs fn as one unit of work. It commits when fn returns nil
// and rolls back when fn returns an error or panics. Inside fn every query
// must go through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
