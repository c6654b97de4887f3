package session

import (
	"context"
	"sync"
	"time"

	"github.com/childbooklet/booklet-server-go/internal/util"
)

type memoryEntry struct {
	subject   string
	role      string
	expiresAt time.Time
}

// MemoryStore holds opaque tokens in a process-local table. Entries are
// evicted on expired lookup and swept periodically via Purge; sessions are
// lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (s *MemoryStore) Issue(_ context.Context, subject, role string) (string, time.Time, error) {
	token, err := util.GenerateToken()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Now().Add(s.ttl)

	s.mu.Lock()
	s.entries[token] = memoryEntry{subject: subject, role: role, expiresAt: expiresAt}
	s.mu.Unlock()

	return token, expiresAt, nil
}

func (s *MemoryStore) Validate(_ context.Context, token string) (*Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, token)
		return nil, nil
	}
	return &Identity{Subject: entry.subject, Role: entry.role}, nil
}

func (s *MemoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
	return nil
}

// Purge removes expired entries and returns how many were dropped. Called
// by the cleanup job so the table does not grow under low traffic.
func (s *MemoryStore) Purge(_ context.Context) (int64, error) {
	now := time.Now()
	var removed int64

	s.mu.Lock()
	for token, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, token)
			removed++
		}
	}
	s.mu.Unlock()

	return removed, nil
}

func (s *MemoryStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
