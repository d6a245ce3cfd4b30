// Package vaultstore persists the single encrypted vault record.
//
// Fallback policy: when the durable backend fails on Save, the payload is kept
// in an in-process cache and the store stays degraded until the next
// successful Save or Clear. While degraded, Load serves the cache. The cached
// copy does not survive a restart.
package vaultstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/constants"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/securefile"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// ErrCorrupt marks a stored record that is not a valid payload document.
var ErrCorrupt = errors.New("vaultstore: corrupt vault record")

type Store struct {
	backend Backend
	key     string

	mu       sync.Mutex
	cached   []byte
	degraded bool
}

func New(backend Backend) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	return &Store{
		backend: backend,
		key:     constants.VaultKey,
	}
}

// Save overwrites the vault record.
func (s *Store) Save(ctx context.Context, payload *securefile.EncryptedPayload) error {
	if payload == nil {
		return errors.New("payload is nil")
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = b
	if err := s.backend.Set(ctx, s.key, b); err != nil {
		log.Warn("vaultstore: durable write failed, keeping vault in memory", "error", err)
		s.degraded = true
		return nil
	}
	s.degraded = false
	return nil
}

// Load returns the stored payload, or nil when there is none.
func (s *Store) Load(ctx context.Context) (*securefile.EncryptedPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.degraded {
		return decodePayload(s.cached)
	}

	b, err := s.backend.Get(ctx, s.key)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, nil
	case err != nil:
		if s.cached != nil {
			log.Warn("vaultstore: durable read failed, serving cached vault", "error", err)
			return decodePayload(s.cached)
		}
		return nil, errors.Wrap(err, "load vault")
	}

	s.cached = b
	return decodePayload(b)
}

// Clear removes the vault record. A missing record is not an error.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Remove(ctx, s.key); err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Wrap(err, "clear vault")
	}
	s.cached = nil
	s.degraded = false
	return nil
}

// Degraded reports whether the last Save only reached the in-memory cache.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func decodePayload(b []byte) (*securefile.EncryptedPayload, error) {
	if b == nil {
		return nil, nil
	}
	var p securefile.EncryptedPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode vault record"), ErrCorrupt)
	}
	return &p, nil
}
