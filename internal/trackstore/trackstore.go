// Package trackstore resolves trial metadata and coordinate tracks from a
// relational store with a flat-file fallback.
package trackstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"

	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib"  // PostgreSQL driver
	_ "modernc.org/sqlite"              // SQLite driver
)

// Table names for trial storage.
const (
	trialsTable   = "dlc_trials"
	framesTable   = "dlc_frames"
	featuresTable = "dlc_features"
)

// Store is the relational adapter. It implements contract.TrialCatalog,
// contract.TrackSource and contract.FeatureStore over SQLite, MySQL or
// PostgreSQL. A Store is a scoped resource: opened once per batch run and
// closed explicitly.
type Store struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var (
	_ contract.TrialCatalog = &Store{} // Compile-time check
	_ contract.TrackSource  = &Store{}
	_ contract.FeatureStore = &Store{}
)

// OpenStore connects to the configured backend and verifies the connection
// within the connect timeout. Any connection-level failure is reported as
// contract.ErrConnectionUnavailable so callers can fall back to files.
func OpenStore(ctx context.Context, cfg *contract.Config) (*Store, error) {
	var db *sql.DB
	var err error

	switch cfg.Backend {
	case schema.SQLiteBackend:
		dbPath := cfg.DBConnect
		if dbPath == "" {
			dbPath = contract.GetDefaultDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open SQLite database at %q: %v", contract.ErrConnectionUnavailable, dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sql.Open("mysql", cfg.DBConnect)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open MySQL connection: %v", contract.ErrConnectionUnavailable, err)
		}

	case schema.PostgreSQLBackend:
		db, err = sql.Open("pgx", cfg.DBConnect)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open PostgreSQL connection: %v", contract.ErrConnectionUnavailable, err)
		}

	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}

	// Workers check connections out of this pool concurrently; size it so no
	// worker blocks on a handle (SQLite stays at one, serialized by the driver).
	if cfg.Backend != schema.SQLiteBackend {
		db.SetMaxOpenConns(cfg.Workers)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: cannot reach %s store: %v", contract.ErrConnectionUnavailable, cfg.Backend, err)
	}

	return &Store{db: db, backend: cfg.Backend}, nil
}

// Close releases the connection handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for migrations and tests.
func (s *Store) DB() *sql.DB { return s.db }

// Backend returns the backend the store was opened against.
func (s *Store) Backend() schema.DatabaseBackend { return s.backend }

// bind rewrites '?' placeholders to the backend's native form. SQLite and
// MySQL keep '?'; PostgreSQL needs $1..$n.
func (s *Store) bind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
