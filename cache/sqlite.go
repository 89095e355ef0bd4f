package cache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const tableName = "translation_cache"

// SQLiteCache is the persistent per-user translation cache.
type SQLiteCache struct {
	db     *sql.DB
	sq     sq.StatementBuilderType
	logger *zap.Logger
}

// DefaultPath returns the default location of the SQLite cache file.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "linetl", "cache.db"), nil
}

// OpenSQLite opens the database at dbPath, creating it and applying
// migrations when needed.
func OpenSQLite(dbPath string, logger *zap.Logger) (*SQLiteCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("make cache dir: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	if err := applyMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteCache{db: db, sq: sq.StatementBuilder, logger: logger.Named("sqlite")}, nil
}

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL UNIQUE,
        applied_at TEXT NOT NULL
    )`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, name := range files {
		var n int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE name = ?`, name).Scan(&n)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations(name, applied_at) VALUES (?, ?)`, name, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}

// entryFilter matches translation keys. GLOB treats '_' literally, LIKE would not.
func entryFilter() sq.Sqlizer {
	return sq.Expr("key GLOB ?", DefaultPrefix+"*")
}

// Get retrieves a value from the database.
func (c *SQLiteCache) Get(ctx context.Context, key string) (string, bool) {
	q := c.sq.Select("value").From(tableName).Where(sq.Eq{"key": key}).Limit(1)
	sqlStr, args, _ := q.ToSql()

	var value string
	err := c.db.QueryRowContext(ctx, sqlStr, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return value, true
}

// Set inserts or replaces a value.
func (c *SQLiteCache) Set(ctx context.Context, key, value string) {
	q := c.sq.Insert(tableName).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC().Format(time.RFC3339)).
		Suffix("ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at")
	sqlStr, args, _ := q.ToSql()
	if _, err := c.db.ExecContext(ctx, sqlStr, args...); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes key.
func (c *SQLiteCache) Delete(ctx context.Context, key string) {
	sqlStr, args, _ := c.sq.Delete(tableName).Where(sq.Eq{"key": key}).ToSql()
	if _, err := c.db.ExecContext(ctx, sqlStr, args...); err != nil {
		c.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Clear removes every translation entry.
func (c *SQLiteCache) Clear(ctx context.Context) int {
	sqlStr, args, _ := c.sq.Delete(tableName).Where(entryFilter()).ToSql()
	res, err := c.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		c.logger.Warn("cache clear failed", zap.Error(err))
		return 0
	}
	n, _ := res.RowsAffected()
	return int(n)
}

// Count returns the number of translation entries.
func (c *SQLiteCache) Count(ctx context.Context) int {
	sqlStr, args, _ := c.sq.Select("COUNT(*)").From(tableName).Where(entryFilter()).ToSql()
	var n int
	if err := c.db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		c.logger.Warn("cache count failed", zap.Error(err))
		return 0
	}
	return n
}

// Entries returns every translation entry.
func (c *SQLiteCache) Entries(ctx context.Context) (map[string]string, error) {
	sqlStr, args, _ := c.sq.Select("key", "value").From(tableName).Where(entryFilter()).ToSql()
	rows, err := c.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, rows.Err()
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

var (
	_ Store  = (*SQLiteCache)(nil)
	_ Lister = (*SQLiteCache)(nil)
)
