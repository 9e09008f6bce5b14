// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the ordered subscriber sequence as a single YAML
// file. The file is rewritten whole on every mutation; a store-level mutex
// serializes load-modify-save so a subscribe arriving mid-scheduler-run
// cannot lose an append.
// Implements: prd004-subscriptions (R1, R2, R4);
//
//	docs/ARCHITECTURE § Subscription Store.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/brief-engine/pkg/types"
)

// DefaultPath is the subscription file used when none is configured.
const DefaultPath = "data/subscriptions.yaml"

// ErrCorrupt marks a subscription file whose contents cannot be decoded.
// Callers match it with errors.Is; absence of the file is not corruption.
var ErrCorrupt = errors.New("subscription store corrupt")

// Store owns the persisted subscriber sequence.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a Store backed by the file at path. The file does not need
// to exist yet.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Load returns the full subscription sequence in insertion order. A missing
// file is a valid initial state and yields an empty sequence.
func (s *Store) Load() ([]types.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Append adds one subscription to the end of the sequence and rewrites the
// file. Load-modify-save runs under the store mutex.
func (s *Store) Append(sub types.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.loadLocked()
	if err != nil {
		return err
	}
	return s.saveLocked(append(subs, sub))
}

func (s *Store) loadLocked() ([]types.Subscription, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var subs []types.Subscription
	if err := yaml.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return subs, nil
}

func (s *Store) saveLocked(subs []types.Subscription) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	data, err := yaml.Marshal(subs)
	if err != nil {
		return fmt.Errorf("encoding subscriptions: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}
