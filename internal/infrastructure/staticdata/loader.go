// Package staticdata loads the operator-maintained files: the league
// definition, the weekly schedule, manual overrides, and exclusions.
package staticdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/showleague/standings/internal/domain/game"
	"github.com/showleague/standings/internal/domain/league"
	"github.com/showleague/standings/internal/domain/schedule"
)

const (
	weeksFile      = "weeks.json"
	overridesFile  = "manual_overrides.json"
	exclusionsFile = "exclusions.json"
)

// Dir reads the optional schedule files from a single data directory.
type Dir struct {
	path string
}

func NewDir(path string) Dir {
	return Dir{path: path}
}

func (d Dir) Weeks() (*schedule.Weeks, error) {
	return LoadWeeks(d.path)
}

func (d Dir) Overrides() (map[string]schedule.Override, error) {
	return LoadOverrides(d.path)
}

func (d Dir) Exclusions() (game.Exclusions, error) {
	return LoadExclusions(d.path)
}

// LoadLeague reads and validates the league definition. The file is
// required; a missing or invalid file is a startup failure.
func LoadLeague(ctx context.Context, path string) (*league.League, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read league file: %w", err)
	}
	var cfg league.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode league file %s: %w", path, err)
	}
	if err := validator.New().StructCtx(ctx, cfg); err != nil {
		return nil, fmt.Errorf("validate league file %s: %w", path, err)
	}
	lg, err := league.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("league file %s: %w", path, err)
	}
	return lg, nil
}

// LoadWeeks reads the weekly schedule from the data directory. Absence is
// not an error: the serving layer simply skips the overlay.
func LoadWeeks(dataDir string) (*schedule.Weeks, error) {
	var weeks schedule.Weeks
	ok, err := loadOptionalJSON(filepath.Join(dataDir, weeksFile), &weeks)
	if err != nil || !ok {
		return nil, err
	}
	return &weeks, nil
}

// LoadOverrides reads the manual result overrides keyed by pairing.
func LoadOverrides(dataDir string) (map[string]schedule.Override, error) {
	var overrides map[string]schedule.Override
	ok, err := loadOptionalJSON(filepath.Join(dataDir, overridesFile), &overrides)
	if err != nil || !ok {
		return nil, err
	}
	return overrides, nil
}

// LoadExclusions reads the same-day exclusion list. A missing file means
// nothing is excluded.
func LoadExclusions(dataDir string) (game.Exclusions, error) {
	var exclusions game.Exclusions
	if _, err := loadOptionalJSON(filepath.Join(dataDir, exclusionsFile), &exclusions); err != nil {
		return game.Exclusions{}, err
	}
	return exclusions, nil
}

func loadOptionalJSON(path string, out any) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}
