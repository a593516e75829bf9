// Package store provides the JSON-file-backed holder of the ticket
// collection. The backing file contains a single document of the form
// {"tickets": [...]} and is rewritten in full after every mutation.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/AbhignaKuchukulla/Issue-buddy/internal/ticket"
)

// document is the persisted file layout.
type document struct {
	Tickets []ticket.Ticket `json:"tickets"`
}

// Store owns the canonical ticket collection and its backing file. All
// access goes through View and Mutate, which serialize operations under
// a single mutex so no two read-modify-write sequences interleave.
type Store struct {
	path string

	mu      sync.Mutex
	tickets []ticket.Ticket
}

// Open loads the collection from path. A missing file is initialized
// to an empty collection and created immediately; a file that exists
// but does not parse is an error, which callers should treat as fatal
// at startup.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
			}
		}
		s.tickets = []ticket.Ticket{}
		if err := s.persist(); err != nil {
			return nil, fmt.Errorf("initializing store %s: %w", path, err)
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("reading store %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing store %s: %w", path, err)
	}
	s.tickets = doc.Tickets
	if s.tickets == nil {
		s.tickets = []ticket.Ticket{}
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// View runs fn with read access to the collection. The slice must not
// be retained or mutated past the call.
func (s *Store) View(fn func(tickets []ticket.Ticket)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.tickets)
}

// Mutate runs fn with exclusive access to the collection and persists
// the returned slice before releasing the lock. If fn returns an
// error, nothing is persisted and the error is returned unchanged; fn
// must not mutate the collection on its error paths. A persistence
// failure is returned after the in-memory collection has already been
// replaced, so disk may briefly lag memory for that record.
func (s *Store) Mutate(fn func(tickets []ticket.Ticket) ([]ticket.Ticket, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := fn(s.tickets)
	if err != nil {
		return err
	}
	s.tickets = updated

	if err := s.persist(); err != nil {
		return fmt.Errorf("persisting store %s: %w", s.path, err)
	}
	return nil
}

// persist writes the whole collection to the backing file. The write
// goes through a temp file and rename, so readers of the path never
// observe a partial document. Callers hold s.mu.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(document{Tickets: s.tickets}, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(s.path, bytes.NewReader(data))
}
