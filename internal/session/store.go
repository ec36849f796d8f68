// Package session keeps the per-user batch of uploaded artifacts between the
// first upload and the finalize trigger.
//
// The store is created once per process and handed to both the ingestion
// handler and the batch processor. All state is in memory: a restart loses
// every open batch.
package session

import "sync"

// Store maps a user identifier to the ordered working-area paths uploaded in
// the user's current batch.
type Store struct {
	mu      sync.Mutex
	batches map[string][]string

	users keyedMutex
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		batches: make(map[string][]string),
		users:   keyedMutex{locks: make(map[string]*refMutex)},
	}
}

// Record appends path to the user's batch, creating the batch if absent, and
// returns the batch size. A path already in the batch is not added twice.
func (s *Store) Record(user, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := s.batches[user]
	for _, p := range paths {
		if p == path {
			return len(paths)
		}
	}
	s.batches[user] = append(paths, path)
	return len(s.batches[user])
}

// Drain returns the user's batch and removes the user's entry.
// It returns nil when the user has no batch.
func (s *Store) Drain(user string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := s.batches[user]
	delete(s.batches, user)
	return paths
}

// Count returns the number of artifacts in the user's batch.
func (s *Store) Count(user string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches[user])
}

// Has reports whether the user has an open batch.
func (s *Store) Has(user string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.batches[user]
	return ok
}

// Len returns the number of users with an open batch.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

// Lock serializes work for one user. Callers hold it across an upload
// (persist + Record) and across a whole finalize so the two never interleave
// for the same user. Different users never wait on each other.
//
// Usage:
//
//	unlock := store.Lock(user)
//	defer unlock()
func (s *Store) Lock(user string) (unlock func()) {
	return s.users.Lock(user)
}
