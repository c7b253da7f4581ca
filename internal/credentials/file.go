package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore хранит пару в JSON-файле (права 0600) со сроком годности ttl.
type FileStore struct {
	path string
	ttl  time.Duration
	now  func() time.Time

	mu sync.Mutex
}

type fileRecord struct {
	Pair
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewFileStore создаёт хранилище; ttl <= 0 — DefaultTTL.
func NewFileStore(path string, ttl time.Duration) *FileStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &FileStore{path: path, ttl: ttl, now: time.Now}
}

// DefaultFilePath — ~/.portal/credentials.json.
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".portal", "credentials.json"), nil
}

func (s *FileStore) Get(_ context.Context) (Pair, error) {
	const op = "credentials.FileStore.Get"

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Pair{}, ErrNotFound
		}

		return Pair{}, fmt.Errorf("%s: %w", op, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Pair{}, fmt.Errorf("%s: %w", op, err)
	}

	if rec.IsZero() || (!rec.ExpiresAt.IsZero() && s.now().After(rec.ExpiresAt)) {
		return Pair{}, ErrNotFound
	}

	return rec.Pair, nil
}

func (s *FileStore) Set(_ context.Context, p Pair) error {
	const op = "credentials.FileStore.Set"

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(fileRecord{Pair: p, ExpiresAt: s.now().Add(s.ttl).UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	const op = "credentials.FileStore.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
