package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alexpineda/llmdump/internal/adapters/driven/storage/codec"
	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

const (
	sessionsDir = "sessions"
	archiveDir  = "archive"
)

// SessionStore stores session artifacts as JSON files.
type SessionStore struct {
	root string
	now  func() time.Time
}

// NewSessionStore creates a file session store rooted at dataDir.
// If dataDir is empty, defaults to ~/.llmdump.
func NewSessionStore(dataDir string) (*SessionStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dataDir = filepath.Join(home, ".llmdump")
	}

	root := filepath.Join(dataDir, sessionsDir)
	if err := os.MkdirAll(filepath.Join(root, archiveDir), 0700); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}

	return &SessionStore{root: root, now: time.Now}, nil
}

// Root returns the sessions directory.
func (s *SessionStore) Root() string {
	return s.root
}

// SaveCrawl stores the crawl result.
func (s *SessionStore) SaveCrawl(_ context.Context, key string, crawl domain.CrawlResult) error {
	data, err := codec.EncodeCrawl(crawl)
	if err != nil {
		return err
	}
	return s.write(key, codec.CrawlArtifact, data)
}

// LoadCrawl retrieves the crawl result.
func (s *SessionStore) LoadCrawl(_ context.Context, key string) (*domain.CrawlResult, error) {
	data, err := s.read(key, codec.CrawlArtifact)
	if err != nil {
		return nil, err
	}
	return codec.DecodeCrawl(data)
}

// SaveCategories stores the category set.
func (s *SessionStore) SaveCategories(_ context.Context, key string, set domain.CategorySet) error {
	data, err := codec.EncodeCategories(set)
	if err != nil {
		return err
	}
	return s.write(key, codec.CategoriesArtifact, data)
}

// LoadCategories retrieves the category set.
func (s *SessionStore) LoadCategories(_ context.Context, key string) (domain.CategorySet, error) {
	data, err := s.read(key, codec.CategoriesArtifact)
	if err != nil {
		return nil, err
	}
	return codec.DecodeCategories(data)
}

// SaveIdentifier stores the session identifier.
func (s *SessionStore) SaveIdentifier(_ context.Context, key, identifier string) error {
	data, err := codec.EncodeIdentifier(identifier)
	if err != nil {
		return err
	}
	return s.write(key, codec.IdentifierArtifact, data)
}

// LoadIdentifier retrieves the session identifier.
func (s *SessionStore) LoadIdentifier(_ context.Context, key string) (string, error) {
	data, err := s.read(key, codec.IdentifierArtifact)
	if err != nil {
		return "", err
	}
	return codec.DecodeIdentifier(data)
}

// Exists reports whether any artifact is stored under key.
func (s *SessionStore) Exists(_ context.Context, key string) (bool, error) {
	dir, err := s.dir(key)
	if err != nil {
		return false, err
	}
	blobs, err := readBlobs(dir)
	if err != nil {
		return false, err
	}
	return len(blobs) > 0, nil
}

// Archive copies the session under key to a new archive directory.
func (s *SessionStore) Archive(_ context.Context, key string) (string, error) {
	src, err := s.dir(key)
	if err != nil {
		return "", err
	}
	blobs, err := readBlobs(src)
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

	archiveKey := codec.NewArchiveKey(s.now(), identifier)
	if err := writeBlobs(filepath.Join(s.root, archiveDir, archiveKey), blobs); err != nil {
		return "", fmt.Errorf("archive %s: %w", key, err)
	}
	return archiveKey, nil
}

// Restore replaces the current session with a copy of an archived one.
func (s *SessionStore) Restore(_ context.Context, archiveKey string) error {
	if archiveKey == domain.CurrentSessionKey {
		return fmt.Errorf("restore %s: %w", archiveKey, domain.ErrInvalidInput)
	}
	src, err := s.dir(archiveKey)
	if err != nil {
		return err
	}
	blobs, err := readBlobs(src)
	if err != nil {
		return err
	}
	if len(blobs) == 0 {
		return fmt.Errorf("restore %s: %w", archiveKey, domain.ErrNotFound)
	}

	current := filepath.Join(s.root, domain.CurrentSessionKey)
	if err := os.RemoveAll(current); err != nil {
		return fmt.Errorf("clear current session: %w", err)
	}
	return writeBlobs(current, blobs)
}

// List returns archived sessions, newest first.
func (s *SessionStore) List(_ context.Context) ([]domain.SessionInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, archiveDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	infos := make([]domain.SessionInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		blobs, err := readBlobs(filepath.Join(s.root, archiveDir, entry.Name()))
		if err != nil || len(blobs) == 0 {
			continue
		}
		var created time.Time
		if _, ok := codec.ArchiveTime(entry.Name()); !ok {
			if fi, err := entry.Info(); err == nil {
				created = fi.ModTime()
			}
		}
		infos = append(infos, codec.Info(entry.Name(), blobs, created))
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].Key > infos[j].Key
		}
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// Delete removes every artifact stored under key.
func (s *SessionStore) Delete(_ context.Context, key string) error {
	dir, err := s.dir(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", key, domain.ErrNotFound)
		}
		return err
	}
	return os.RemoveAll(dir)
}

// Close is a no-op.
func (s *SessionStore) Close() error {
	return nil
}

// dir maps a session key to its directory. Keys must be a single path
// element so they cannot point outside the sessions directory.
func (s *SessionStore) dir(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("session key %q: %w", key, domain.ErrInvalidInput)
	}
	if key == domain.CurrentSessionKey {
		return filepath.Join(s.root, domain.CurrentSessionKey), nil
	}
	return filepath.Join(s.root, archiveDir, key), nil
}

func (s *SessionStore) read(key, name string) ([]byte, error) {
	dir, err := s.dir(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", key, name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s/%s: %w", key, name, err)
	}
	return data, nil
}

func (s *SessionStore) write(key, name string, data []byte) error {
	dir, err := s.dir(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}
	return writeAtomic(filepath.Join(dir, name), data)
}

// writeAtomic writes data to a temp file beside path and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// readBlobs returns the known artifacts present in dir.
// A missing directory yields an empty map.
func readBlobs(dir string) (map[string][]byte, error) {
	blobs := make(map[string][]byte, len(codec.Artifacts))
	for _, name := range codec.Artifacts {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		blobs[name] = data
	}
	return blobs, nil
}

func writeBlobs(dir string, blobs map[string][]byte) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	for _, name := range codec.Artifacts {
		data, ok := blobs[name]
		if !ok {
			continue
		}
		if err := writeAtomic(filepath.Join(dir, name), data); err != nil {
			return err
		}
	}
	return nil
}
