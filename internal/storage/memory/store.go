// Package memory holds datasets in process memory. It backs tests and
// the default zero-configuration deployment.
package memory

import (
	"context"
	"sync"

	"ordenate/internal/core"
	"ordenate/internal/storage"
)

type Store struct {
	mu       sync.RWMutex
	nextUser int64
	users    map[string]userRecord
	datasets map[int64]*core.Dataset
}

type userRecord struct {
	id           int64
	passwordHash string
}

func NewStore() *Store {
	return &Store{
		nextUser: 1,
		users:    make(map[string]userRecord),
		datasets: make(map[int64]*core.Dataset),
	}
}

func (s *Store) CreateUser(_ context.Context, username, passwordHash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextUser
	s.nextUser++
	s.users[username] = userRecord{id: id, passwordHash: passwordHash}
	s.datasets[id] = &core.Dataset{}
	return id, nil
}

func (s *Store) GetUserCredentials(_ context.Context, username string) (int64, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[username]
	if !ok {
		return 0, "", storage.ErrUserNotFound
	}
	return rec.id, rec.passwordHash, nil
}

func (s *Store) GetUsername(_ context.Context, userID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for name, rec := range s.users {
		if rec.id == userID {
			return name, nil
		}
	}
	return "", storage.ErrUserNotFound
}

func (s *Store) UserExists(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[username]
	return ok, nil
}

// Load returns a deep copy so callers can mutate freely before Save.
func (s *Store) Load(_ context.Context, userID int64) (*core.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[userID]
	if !ok {
		return &core.Dataset{}, nil
	}
	return ds.Clone(), nil
}

func (s *Store) Save(_ context.Context, userID int64, ds *core.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasets[userID] = ds.Clone()
	return nil
}

func (s *Store) Close() error { return nil }
