// Package snapshot persists the refresh output as a single JSON document
// shared between the updater and the API server.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/showleague/standings/internal/domain/game"
	"github.com/showleague/standings/internal/domain/standings"
)

// ErrNotReady means no snapshot has been written yet.
var ErrNotReady = errors.New("snapshot not ready")

// Snapshot is the full published payload.
type Snapshot struct {
	Standings   []standings.Row    `json:"standings"`
	GamesToday  []game.SameDayGame `json:"games_today"`
	LastUpdated string             `json:"last_updated"`
}

// Store reads and writes the snapshot file. Writes go through a temp file
// and a rename so readers never observe a partial document.
type Store struct {
	path string
}

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("snapshot path is required")
	}
	return &Store{path: path}, nil
}

func (s *Store) Write(rows []standings.Row, gamesToday []game.SameDayGame, lastUpdated string) error {
	if rows == nil {
		rows = []standings.Row{}
	}
	if gamesToday == nil {
		gamesToday = []game.SameDayGame{}
	}
	payload, err := sonic.Marshal(Snapshot{
		Standings:   rows,
		GamesToday:  gamesToday,
		LastUpdated: lastUpdated,
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// Load returns the current snapshot and its modification time. A missing
// file maps to ErrNotReady.
func (s *Store) Load() (Snapshot, time.Time, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, time.Time{}, ErrNotReady
		}
		return Snapshot{}, time.Time{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := sonic.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, time.Time{}, fmt.Errorf("decode snapshot: %w", err)
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return Snapshot{}, time.Time{}, fmt.Errorf("stat snapshot: %w", err)
	}
	return snap, info.ModTime(), nil
}
