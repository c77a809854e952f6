package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p != Default() {
		t.Fatalf("Load = %#v, want defaults %#v", p, Default())
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "pinterval")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	content := "interval_seconds = 60\ngrid_size = 9\ngrayscale = true\norder = \"random\"\nboard = \"b-1\"\n"
	if err := os.WriteFile(prefsFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.IntervalSeconds != 60 || p.GridSize != 9 || !p.Grayscale || p.Order != "random" || p.Board != "b-1" {
		t.Fatalf("Load = %#v", p)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestLoad_InvalidValuesAreCoerced(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	content := "interval_seconds = 7\ngrid_size = 5\norder = \"sideways\"\nboard = \"  \"\n"
	if err := os.WriteFile(prefsFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.IntervalSeconds != defaultInterval {
		t.Fatalf("IntervalSeconds = %d, want %d", p.IntervalSeconds, defaultInterval)
	}
	if p.GridSize != 1 {
		t.Fatalf("GridSize = %d, want 1", p.GridSize)
	}
	if p.Order != defaultOrder || p.Board != defaultBoard {
		t.Fatalf("Order/Board = %q/%q, want defaults", p.Order, p.Board)
	}
}

func TestCoerceGridSize(t *testing.T) {
	for _, n := range []int{-1, 0, 2, 3, 5, 8, 10, 15, 17, 100} {
		if got := CoerceGridSize(n); got != 1 {
			t.Errorf("CoerceGridSize(%d) = %d, want 1", n, got)
		}
	}
	for _, n := range GridSizes {
		if got := CoerceGridSize(n); got != n {
			t.Errorf("CoerceGridSize(%d) = %d, want %d", n, got, n)
		}
	}
}

func TestCoerceInterval(t *testing.T) {
	if got := CoerceInterval(30); got != 30 {
		t.Fatalf("CoerceInterval(30) = %d", got)
	}
	if got := CoerceInterval(0); got != defaultInterval {
		t.Fatalf("CoerceInterval(0) = %d, want %d", got, defaultInterval)
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "subdir", "prefs.toml")

	p := Default()
	p.GridSize = 16
	p.Grayscale = true
	if err := Save(prefsFile, p); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != p {
		t.Fatalf("round trip = %#v, want %#v", loaded, p)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	tmp := t.TempDir()
	prefsFile := filepath.Join(tmp, "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load(prefsFile)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p != Default() {
		t.Fatalf("Load = %#v, want defaults", p)
	}
}
