// Package gormstore persists accounts with GORM on PostgreSQL or SQLite.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jonwraymond/catalogd/account"
	"github.com/jonwraymond/catalogd/auth"
)

// ErrUnknownDriver indicates Config.Driver is not supported.
var ErrUnknownDriver = errors.New("gormstore: unknown driver")

// Config selects and addresses the database.
type Config struct {
	Driver string // postgres|sqlite

	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	// Path is the SQLite database file, or ":memory:".
	Path string

	MaxOpenConns int
	MaxIdleConns int
}

// Open connects to the configured database. Driver errors for unique
// constraint violations are translated to gorm.ErrDuplicatedKey.
func Open(cfg Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, sslMode)
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}

	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		if path != ":memory:" && !strings.HasPrefix(path, "file:") {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(path), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
		}
		if path == ":memory:" {
			// Every pooled connection would otherwise see its own empty database.
			cfg.MaxOpenConns = 1
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// accountRow is the users table.
type accountRow struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Email        string    `gorm:"size:320;not null;uniqueIndex"`
	PasswordHash []byte    `gorm:"not null"`
	Role         string    `gorm:"size:16;not null;default:viewer"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (accountRow) TableName() string { return "users" }

func (r accountRow) toAccount() account.Account {
	return account.Account{
		ID:           r.ID,
		Identifier:   r.Email,
		PasswordHash: r.PasswordHash,
		Role:         auth.Role(r.Role),
		CreatedAt:    r.CreatedAt,
	}
}

// Store implements account.Store.
type Store struct {
	db *gorm.DB
}

// New migrates the users table and returns a Store. db should be opened
// with TranslateError so duplicates are reported as such.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&accountRow{}); err != nil {
		return nil, fmt.Errorf("gormstore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// FindByIdentifier returns the account registered under identifier.
func (s *Store) FindByIdentifier(ctx context.Context, identifier string) (account.Account, error) {
	var row accountRow
	err := s.db.WithContext(ctx).Where("email = ?", identifier).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return account.Account{}, account.ErrNotFound
	}
	if err != nil {
		return account.Account{}, fmt.Errorf("gormstore: find %q: %w", identifier, err)
	}
	return row.toAccount(), nil
}

// Create inserts a and returns it with its assigned id.
func (s *Store) Create(ctx context.Context, a account.Account) (account.Account, error) {
	row := accountRow{
		Email:        a.Identifier,
		PasswordHash: a.PasswordHash,
		Role:         string(a.Role),
		CreatedAt:    a.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return account.Account{}, account.ErrDuplicateIdentifier
	}
	if err != nil {
		return account.Account{}, fmt.Errorf("gormstore: create: %w", err)
	}
	return row.toAccount(), nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ account.Store = (*Store)(nil)
