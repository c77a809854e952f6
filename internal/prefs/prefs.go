// Package prefs handles Pinterval user preferences persistence.
// Preferences are stored in ~/.config/pinterval/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for Pinterval.
type Prefs struct {
	IntervalSeconds int    `toml:"interval_seconds"`
	GridSize        int    `toml:"grid_size"`
	Grayscale       bool   `toml:"grayscale"`
	Order           string `toml:"order"`
	Board           string `toml:"board"`
	Theme           string `toml:"theme"`
}

const (
	defaultPrefsPath = "~/.config/pinterval/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultInterval  = 300
	defaultGridSize  = 1
	defaultOrder     = "newest"
	defaultBoard     = "all"
)

// IntervalOptions is the fixed set of selectable display intervals, in seconds.
var IntervalOptions = []int{5, 10, 15, 30, 45, 60, 90, 120, 180, 300, 600, 900, 1200, 1800}

// GridSizes is the set of supported simultaneous image counts.
var GridSizes = []int{1, 4, 9, 16}

// Orders lists the accepted sequence orderings.
var Orders = []string{"newest", "oldest", "random"}

// Default returns the preferences used when nothing is stored.
func Default() Prefs {
	return Prefs{
		IntervalSeconds: defaultInterval,
		GridSize:        defaultGridSize,
		Order:           defaultOrder,
		Board:           defaultBoard,
		Theme:           defaultTheme,
	}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// CoerceInterval returns seconds when it is a known option, otherwise the default.
func CoerceInterval(seconds int) int {
	if slices.Contains(IntervalOptions, seconds) {
		return seconds
	}
	return defaultInterval
}

// CoerceGridSize returns n when it is one of 1, 4, 9 or 16, otherwise 1.
func CoerceGridSize(n int) int {
	if slices.Contains(GridSizes, n) {
		return n
	}
	return defaultGridSize
}

// Normalize coerces every field into its valid range.
func (p Prefs) Normalize() Prefs {
	p.IntervalSeconds = CoerceInterval(p.IntervalSeconds)
	p.GridSize = CoerceGridSize(p.GridSize)
	p.Order = strings.ToLower(strings.TrimSpace(p.Order))
	if !slices.Contains(Orders, p.Order) {
		p.Order = defaultOrder
	}
	p.Board = strings.TrimSpace(p.Board)
	if p.Board == "" {
		p.Board = defaultBoard
	}
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	return p
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), nil
	}

	prefs := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Default(), nil // Graceful degradation
	}

	return prefs.Normalize(), nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p.Normalize())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
