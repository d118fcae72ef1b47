package sqlite

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/shawndeggans/space-fortress/internal/platform/storage/sqlitemigrate"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/checkpoint"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
	"github.com/shawndeggans/space-fortress/internal/services/game/domain/journal"
	"github.com/shawndeggans/space-fortress/internal/services/game/storage/integrity"
	"github.com/shawndeggans/space-fortress/internal/services/game/storage/sqlite/migrations"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store is a SQLite event log and snapshot store.
type Store struct {
	sqlDB    *sql.DB
	keyring  *integrity.Keyring
	registry *event.Registry
	logger   *log.Logger
	now      func() time.Time
}

var (
	_ journal.Log      = (*Store)(nil)
	_ checkpoint.Store = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for skipped rows.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used for events without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens the store at path and applies the embedded migrations.
// registry is required; keyring may be nil to leave events unsigned.
func Open(path string, registry *event.Registry, keyring *integrity.Keyring, opts ...Option) (*Store, error) {
	if registry == nil {
		return nil, fmt.Errorf("event registry is required")
	}
	store, err := openStore(path, migrations.EventsFS, "events")
	if err != nil {
		return nil, err
	}
	store.registry = registry
	store.keyring = keyring
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// Close closes the database. It is nil-safe.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func openStore(path string, migrationFS fs.FS, migrationRoot string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrationFS, migrationRoot); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		sqlDB:  sqlDB,
		logger: log.Default(),
		now:    time.Now,
	}, nil
}

func (s *Store) ready() error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// signer returns the keyring as a journal.Signer, or nil when unset, so an
// unconfigured keyring never becomes a non-nil interface.
func (s *Store) signer() journal.Signer {
	if s.keyring == nil {
		return nil
	}
	return s.keyring
}

func (s *Store) verifier() journal.Verifier {
	if s.keyring == nil {
		return nil
	}
	return s.keyring
}
