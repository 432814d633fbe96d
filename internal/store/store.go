package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/oomslab/ooms-core/internal/common/config"
	"github.com/oomslab/ooms-core/internal/common/errorx"
)

const dateLayout = "2006-01-02"

// Store owns the relational order ledger. Its lifetime is owned by the
// process entry point; construct one per process (or per test) and
// release it with Close.
type Store struct {
	logger   *zap.Logger
	db       *gorm.DB
	verifier PasswordVerifier
}

// Option configures a Store.
type Option func(*Store)

// WithPasswordVerifier replaces the verifier used by the week unlock
// so a stronger hashing scheme can be substituted without changing the
// lock contract.
func WithPasswordVerifier(v PasswordVerifier) Option {
	return func(s *Store) { s.verifier = v }
}

// New opens the configured database. It does not touch the schema;
// call Init before first use.
func New(logger *zap.Logger, cfg *config.DatabaseConfig, opts ...Option) (*Store, error) {
	logger = logger.Named("store")

	var dialector gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dialector = postgres.Open(cfg.GetDSN())
	case "mysql":
		dialector = mysql.Open(cfg.GetDSN())
	case "sqlite":
		if dir := filepath.Dir(cfg.DBName); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.GetDSN())
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{
		logger:   logger,
		db:       db,
		verifier: PlaintextVerifier{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Init creates all tables and indexes if absent and runs the one-time
// data migrations. Safe to call on every startup; any failure is fatal
// to startup and is not retried.
func (s *Store) Init(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(
		&Role{},
		&User{},
		&Item{},
		&ItemOption{},
		&Order{},
		&OrderDetail{},
		&OrderDetailOption{},
		&AuditLog{},
		&Setting{},
		&Staff{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	if err := s.seedRoles(ctx); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	if err := s.migrateLegacyStaff(ctx); err != nil {
		return fmt.Errorf("migrate legacy staff: %w", err)
	}
	if err := s.seedDefaultItems(ctx); err != nil {
		return fmt.Errorf("seed items: %w", err)
	}

	s.logger.Info("store initialized")
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// withTx runs fn inside one transaction. Every public mutating call
// uses exactly one of these, so a failure mid-sequence leaves either
// the old or the new state, never a partial mix.
func (s *Store) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := s.db.WithContext(ctx).Transaction(fn); err != nil {
		return errorx.Storage(err)
	}
	return nil
}

// weekEnd returns weekStart+6 days in YYYY-MM-DD form.
func weekEnd(weekStart string) (string, error) {
	start, err := time.Parse(dateLayout, weekStart)
	if err != nil {
		return "", errorx.Validationf("invalid week start %q: %v", weekStart, err)
	}
	return start.AddDate(0, 0, 6).Format(dateLayout), nil
}

// monthRange returns the first and last calendar date of a month. The
// range is computed here instead of with a dialect-specific date
// function so the same query runs on every backend.
func monthRange(year, month int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(dateLayout), last.Format(dateLayout)
}

// monthRangeFromKey parses a "YYYY-MM" month key.
func monthRangeFromKey(month string) (string, string, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", errorx.Validationf("invalid month %q: expected YYYY-MM", month)
	}
	start, end := monthRange(t.Year(), int(t.Month()))
	return start, end, nil
}
