package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alexpineda/llmdump/internal/adapters/driven/storage/codec"
	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore.
// Artifacts are kept as encoded JSON so callers never share state with
// the store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
	now      func() time.Time
}

type memorySession struct {
	blobs     map[string][]byte
	createdAt time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*memorySession),
		now:      time.Now,
	}
}

// SaveCrawl stores the crawl result.
func (s *SessionStore) SaveCrawl(_ context.Context, key string, crawl domain.CrawlResult) error {
	data, err := codec.EncodeCrawl(crawl)
	if err != nil {
		return err
	}
	s.put(key, codec.CrawlArtifact, data)
	return nil
}

// LoadCrawl retrieves the crawl result.
func (s *SessionStore) LoadCrawl(_ context.Context, key string) (*domain.CrawlResult, error) {
	data, err := s.get(key, codec.CrawlArtifact)
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
	s.put(key, codec.CategoriesArtifact, data)
	return nil
}

// LoadCategories retrieves the category set.
func (s *SessionStore) LoadCategories(_ context.Context, key string) (domain.CategorySet, error) {
	data, err := s.get(key, codec.CategoriesArtifact)
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
	s.put(key, codec.IdentifierArtifact, data)
	return nil
}

// LoadIdentifier retrieves the session identifier.
func (s *SessionStore) LoadIdentifier(_ context.Context, key string) (string, error) {
	data, err := s.get(key, codec.IdentifierArtifact)
	if err != nil {
		return "", err
	}
	return codec.DecodeIdentifier(data)
}

// Exists reports whether any artifact is stored under key.
func (s *SessionStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[key]
	return ok, nil
}

// Archive copies the session under key to a new archive key.
func (s *SessionStore) Archive(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sessions[key]
	if !ok {
		return "", fmt.Errorf("archive %s: %w", key, domain.ErrNotFound)
	}

	identifier := ""
	if data, ok := src.blobs[codec.IdentifierArtifact]; ok {
		identifier, _ = codec.DecodeIdentifier(data)
	}

	now := s.now()
	archiveKey := codec.NewArchiveKey(now, identifier)
	s.sessions[archiveKey] = &memorySession{blobs: copyBlobs(src.blobs), createdAt: now}
	return archiveKey, nil
}

// Restore replaces the current session with a copy of an archived one.
func (s *SessionStore) Restore(_ context.Context, archiveKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.sessions[archiveKey]
	if !ok {
		return fmt.Errorf("restore %s: %w", archiveKey, domain.ErrNotFound)
	}
	s.sessions[domain.CurrentSessionKey] = &memorySession{blobs: copyBlobs(src.blobs), createdAt: s.now()}
	return nil
}

// List returns archived sessions, newest first.
func (s *SessionStore) List(_ context.Context) ([]domain.SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]domain.SessionInfo, 0, len(s.sessions))
	for key, sess := range s.sessions {
		if key == domain.CurrentSessionKey {
			continue
		}
		infos = append(infos, codec.Info(key, sess.blobs, sess.createdAt))
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
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[key]; !ok {
		return fmt.Errorf("delete %s: %w", key, domain.ErrNotFound)
	}
	delete(s.sessions, key)
	return nil
}

// Close is a no-op.
func (s *SessionStore) Close() error {
	return nil
}

func (s *SessionStore) put(key, name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = &memorySession{blobs: make(map[string][]byte), createdAt: s.now()}
		s.sessions[key] = sess
	}
	sess.blobs[name] = data
}

func (s *SessionStore) get(key, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[key]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", key, name, domain.ErrNotFound)
	}
	data, ok := sess.blobs[name]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", key, name, domain.ErrNotFound)
	}
	return data, nil
}

func copyBlobs(src map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(src))
	for name, data := range src {
		out[name] = append([]byte(nil), data...)
	}
	return out
}
