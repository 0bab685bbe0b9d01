package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/alexpineda/llmdump/internal/adapters/driven/storage/codec"
	"github.com/alexpineda/llmdump/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
)

// Store is a SQLite database holding session artifacts.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.llmdump/sessions.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".llmdump")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "sessions.db")

	// WAL for concurrent readers; foreign keys on every pooled connection
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SessionStore returns a SessionStore interface backed by this store.
func (s *Store) SessionStore() driven.SessionStore {
	return &sessionStore{store: s}
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_sessions.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Session Store ====================

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// SaveCrawl stores the crawl result.
func (s *sessionStore) SaveCrawl(ctx context.Context, key string, crawl domain.CrawlResult) error {
	data, err := codec.EncodeCrawl(crawl)
	if err != nil {
		return err
	}
	return s.put(ctx, key, codec.CrawlArtifact, data)
}

// LoadCrawl retrieves the crawl result.
func (s *sessionStore) LoadCrawl(ctx context.Context, key string) (*domain.CrawlResult, error) {
	data, err := s.get(ctx, key, codec.CrawlArtifact)
	if err != nil {
		return nil, err
	}
	return codec.DecodeCrawl(data)
}

// SaveCategories stores the category set.
func (s *sessionStore) SaveCategories(ctx context.Context, key string, set domain.CategorySet) error {
	data, err := codec.EncodeCategories(set)
	if err != nil {
		return err
	}
	return s.put(ctx, key, codec.CategoriesArtifact, data)
}

// LoadCategories retrieves the category set.
func (s *sessionStore) LoadCategories(ctx context.Context, key string) (domain.CategorySet, error) {
	data, err := s.get(ctx, key, codec.CategoriesArtifact)
	if err != nil {
		return nil, err
	}
	return codec.DecodeCategories(data)
}

// SaveIdentifier stores the session identifier.
func (s *sessionStore) SaveIdentifier(ctx context.Context, key, identifier string) error {
	data, err := codec.EncodeIdentifier(identifier)
	if err != nil {
		return err
	}
	return s.put(ctx, key, codec.IdentifierArtifact, data)
}

// LoadIdentifier retrieves the session identifier.
func (s *sessionStore) LoadIdentifier(ctx context.Context, key string) (string, error) {
	data, err := s.get(ctx, key, codec.IdentifierArtifact)
	if err != nil {
		return "", err
	}
	return codec.DecodeIdentifier(data)
}

// Exists reports whether any artifact is stored under key.
func (s *sessionStore) Exists(ctx context.Context, key string) (bool, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM artifacts WHERE session_key = ?", key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking session %s: %w", key, err)
	}
	return n > 0, nil
}

// Archive copies the session under key to a new archive key.
func (s *sessionStore) Archive(ctx context.Context, key string) (string, error) {
	blobs, err := s.blobs(ctx, key)
	if err != nil {
		return "", err
	}
	if len(blobs) == 0 {
		return "", fmt.Errorf("archive %s: %w", key, domain.ErrNotFound)
	}

	identifier := ""
	if data, ok := blobs[codec.IdentifierArtifact]; ok {
		identifier, _ = codec.DecodeIdentifier(data)
	}

	now := s.store.now()
	archiveKey := codec.NewArchiveKey(now, identifier)
	if err := s.copySession(ctx, key, archiveKey, now); err != nil {
		return "", fmt.Errorf("archive %s: %w", key, err)
	}
	return archiveKey, nil
}

// Restore replaces the current session with a copy of an archived one.
func (s *sessionStore) Restore(ctx context.Context, archiveKey string) error {
	if archiveKey == domain.CurrentSessionKey {
		return fmt.Errorf("restore %s: %w", archiveKey, domain.ErrInvalidInput)
	}
	exists, err := s.Exists(ctx, archiveKey)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("restore %s: %w", archiveKey, domain.ErrNotFound)
	}
	return s.copySession(ctx, archiveKey, domain.CurrentSessionKey, s.store.now())
}

// List returns archived sessions, newest first.
func (s *sessionStore) List(ctx context.Context) ([]domain.SessionInfo, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT key, created_at FROM sessions
		WHERE key != ?
		ORDER BY created_at DESC, key DESC
	`, domain.CurrentSessionKey)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	type entry struct {
		key     string
		created int64
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.key, &e.created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	infos := make([]domain.SessionInfo, 0, len(entries))
	for _, e := range entries {
		blobs, err := s.blobs(ctx, e.key)
		if err != nil {
			return nil, err
		}
		infos = append(infos, codec.Info(e.key, blobs, time.Unix(0, e.created).UTC()))
	}
	return infos, nil
}

// Delete removes every artifact stored under key.
func (s *sessionStore) Delete(ctx context.Context, key string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", key, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", key, domain.ErrNotFound)
	}
	return nil
}

// Close closes the underlying database.
func (s *sessionStore) Close() error {
	return s.store.Close()
}

func (s *sessionStore) put(ctx context.Context, key, name string, data []byte) error {
	now := s.store.now().UnixNano()

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (key, created_at) VALUES (?, ?)
		ON CONFLICT(key) DO NOTHING
	`, key, now); err != nil {
		return fmt.Errorf("saving session %s: %w", key, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO artifacts (session_key, name, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_key, name) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
	`, key, name, data, now); err != nil {
		return fmt.Errorf("saving %s/%s: %w", key, name, err)
	}

	return tx.Commit()
}

func (s *sessionStore) get(ctx context.Context, key, name string) ([]byte, error) {
	var data []byte
	err := s.store.db.QueryRowContext(ctx,
		"SELECT body FROM artifacts WHERE session_key = ? AND name = ?", key, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", key, name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s/%s: %w", key, name, err)
	}
	return data, nil
}

func (s *sessionStore) blobs(ctx context.Context, key string) (map[string][]byte, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT name, body FROM artifacts WHERE session_key = ?", key)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", key, err)
	}
	defer rows.Close()

	blobs := make(map[string][]byte)
	for rows.Next() {
		var name string
		var body []byte
		if err := rows.Scan(&name, &body); err != nil {
			return nil, fmt.Errorf("scanning artifact: %w", err)
		}
		blobs[name] = body
	}
	return blobs, rows.Err()
}

// copySession replaces every artifact under dst with those under src.
func (s *sessionStore) copySession(ctx context.Context, src, dst string, now time.Time) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE key = ?", dst); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM artifacts WHERE session_key = ?", dst); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO sessions (key, created_at) VALUES (?, ?)", dst, now.UnixNano()); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO artifacts (session_key, name, body, updated_at)
		SELECT ?, name, body, ? FROM artifacts WHERE session_key = ?
	`, dst, now.UnixNano(), src); err != nil {
		return err
	}

	return tx.Commit()
}
