package vars

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore is a typed variable store backed by SQLite. Each kind has
// its own table keyed by variable name; a name exists in at most one
// table at any time. The cross-table uniqueness check runs inside the
// same transaction as the write, so concurrent writers cannot both pass
// the check and violate the invariant.
type SQLiteStore struct {
	db  *sql.DB
	cfg Config
}

// New creates a new SQLite store instance.
func New(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	// Set defaults
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	return &SQLiteStore{
		cfg: cfg,
	}, nil
}

// Init opens the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	inMemory := s.cfg.Path == ":memory:"

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate", s.cfg.Path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if inMemory {
		// Every connection to :memory: is a distinct database, so the
		// pool must stay at a single connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(s.cfg.MaxOpenConns)
		db.SetMaxIdleConns(s.cfg.MaxIdleConns)
		db.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate creates the three variable tables if they are absent. The
// migration is idempotent and safe to run on every startup.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	return s.db.PingContext(ctx)
}

// TryGetValue queries the table matching kind for name. KindAny probes
// text, then number, then boolean and returns the first hit. A missing
// row is reported as found=false, never as an error; a row of a
// different kind than requested is simply not found.
func (s *SQLiteStore) TryGetValue(ctx context.Context, name string, kind Kind) (Value, bool, error) {
	if kind == KindAny {
		for _, k := range probeOrder {
			v, found, err := s.getOne(ctx, name, k)
			if err != nil || found {
				return v, found, err
			}
		}
		return Value{}, false, nil
	}

	if !kind.Valid() {
		return Value{}, false, newUnsupportedKindError(kind)
	}

	return s.getOne(ctx, name, kind)
}

// getOne reads a single row from the table backing kind.
func (s *SQLiteStore) getOne(ctx context.Context, name string, kind Kind) (Value, bool, error) {
	query := fmt.Sprintf("SELECT value FROM %s WHERE name = ?", kind.table())
	row := s.db.QueryRowContext(ctx, query, name)

	var (
		value Value
		err   error
	)
	switch kind {
	case KindText:
		var v string
		err = row.Scan(&v)
		value = Text(v)
	case KindNumber:
		var v float64
		err = row.Scan(&v)
		value = Number(v)
	case KindBoolean:
		var v bool
		err = row.Scan(&v)
		value = Boolean(v)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return Value{}, false, nil
	}
	if err != nil {
		return Value{}, false, newInternalError(fmt.Errorf("failed to get %s variable %q: %w", kind, name, err))
	}

	return value, true, nil
}

// SetValue upserts value under name in the table matching its kind.
// The write and the cross-table conflict check share one immediate
// transaction: if name already holds a value of a different kind the
// transaction aborts with ErrTypeConflict and the original row is
// untouched. Writing the same kind replaces the value in place.
func (s *SQLiteStore) SetValue(ctx context.Context, name string, value Value) error {
	kind := value.Kind()
	if !kind.Valid() {
		return newUnsupportedKindError(kind)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newInternalError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	for _, other := range probeOrder {
		if other == kind {
			continue
		}
		exists, err := existsInTx(ctx, tx, other, name)
		if err != nil {
			return err
		}
		if exists {
			return newConflictError(name, kind, other)
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (name, value)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, kind.table())

	if _, err := tx.ExecContext(ctx, query, name, value.Interface()); err != nil {
		return newInternalError(fmt.Errorf("failed to set %s variable %q: %w", kind, name, err))
	}

	if err := tx.Commit(); err != nil {
		return newInternalError(fmt.Errorf("failed to commit write for %q: %w", name, err))
	}

	return nil
}

// existsInTx probes one table for name within a transaction.
func existsInTx(ctx context.Context, tx *sql.Tx, kind Kind, name string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE name = ?)", kind.table())

	var exists bool
	if err := tx.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, newInternalError(fmt.Errorf("failed to probe %s for %q: %w", kind.table(), name, err))
	}

	return exists, nil
}

// Contains reports whether name exists in any of the three tables,
// probing in the same fixed order as KindAny reads and short-circuiting
// on the first hit.
func (s *SQLiteStore) Contains(ctx context.Context, name string) (bool, error) {
	for _, kind := range probeOrder {
		query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE name = ?)", kind.table())

		var exists bool
		if err := s.db.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
			return false, newInternalError(fmt.Errorf("failed to probe %s for %q: %w", kind.table(), name, err))
		}
		if exists {
			return true, nil
		}
	}

	return false, nil
}

// Clear deletes all rows from all three tables in one transaction.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newInternalError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	for _, kind := range probeOrder {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+kind.table()); err != nil {
			return newInternalError(fmt.Errorf("failed to clear %s: %w", kind.table(), err))
		}
	}

	if err := tx.Commit(); err != nil {
		return newInternalError(fmt.Errorf("failed to commit clear: %w", err))
	}

	return nil
}

// SetAllVariables bulk-applies SetValue for every entry across the
// three maps, in the fixed order numbers, booleans, strings. When
// clearFirst is true all tables are cleared before the first write.
// There is no cross-batch atomicity: a failure partway through leaves
// prior writes applied and is returned to the caller.
func (s *SQLiteStore) SetAllVariables(ctx context.Context, numbers map[string]float64, strs map[string]string, booleans map[string]bool, clearFirst bool) error {
	if clearFirst {
		if err := s.Clear(ctx); err != nil {
			return err
		}
	}

	for name, v := range numbers {
		if err := s.SetValue(ctx, name, Number(v)); err != nil {
			return err
		}
	}
	for name, v := range booleans {
		if err := s.SetValue(ctx, name, Boolean(v)); err != nil {
			return err
		}
	}
	for name, v := range strs {
		if err := s.SetValue(ctx, name, Text(v)); err != nil {
			return err
		}
	}

	return nil
}

// GetAllVariables scans each table into its map in the snapshot.
func (s *SQLiteStore) GetAllVariables(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{
		Numbers:  map[string]float64{},
		Strings:  map[string]string{},
		Booleans: map[string]bool{},
	}

	for _, kind := range probeOrder {
		query := fmt.Sprintf("SELECT name, value FROM %s ORDER BY name ASC", kind.table())

		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return Snapshot{}, newInternalError(fmt.Errorf("failed to scan %s: %w", kind.table(), err))
		}

		if err := collectRows(rows, kind, &snap); err != nil {
			return Snapshot{}, err
		}
	}

	return snap, nil
}

// collectRows drains one table's rows into the snapshot map for kind.
func collectRows(rows *sql.Rows, kind Kind, snap *Snapshot) error {
	defer rows.Close()

	for rows.Next() {
		var name string
		var err error
		switch kind {
		case KindText:
			var v string
			if err = rows.Scan(&name, &v); err == nil {
				snap.Strings[name] = v
			}
		case KindNumber:
			var v float64
			if err = rows.Scan(&name, &v); err == nil {
				snap.Numbers[name] = v
			}
		case KindBoolean:
			var v bool
			if err = rows.Scan(&name, &v); err == nil {
				snap.Booleans[name] = v
			}
		}
		if err != nil {
			return newInternalError(fmt.Errorf("failed to scan %s row: %w", kind.table(), err))
		}
	}

	if err := rows.Err(); err != nil {
		return newInternalError(fmt.Errorf("error iterating %s: %w", kind.table(), err))
	}

	return nil
}
