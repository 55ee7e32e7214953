// Package params persists the active strategy parameter set as a JSON file.
package params

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"SignalSentinel/internal/model"
)

// Store guards the strategy config file. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	filePath string
}

// NewStore creates a Store for the given file. The file need not exist.
func NewStore(filePath string) *Store {
	return &Store{filePath: filePath}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.filePath }

// Load returns the stored parameter set. A missing, unreadable or invalid
// file yields model.DefaultParams; stored is false in that case.
func (s *Store) Load() (p model.Params, stored bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[WARN] read strategy config %s: %v, using defaults", s.filePath, err)
		}
		return model.DefaultParams, false
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("[WARN] decode strategy config %s: %v, using defaults", s.filePath, err)
		return model.DefaultParams, false
	}
	if err := p.Validate(); err != nil {
		log.Printf("[WARN] stored strategy config rejected: %v, using defaults", err)
		return model.DefaultParams, false
	}
	return p, true
}

// Save validates p and replaces the file atomically.
func (s *Store) Save(p model.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode strategy config: %w", err)
	}
	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write strategy config: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("replace strategy config: %w", err)
	}
	return nil
}
