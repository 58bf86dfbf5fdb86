package main

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfigJSON = `{
	"name": "test",
	"description": "Test configuration",
	"origin": {"lat": 37.7749, "lng": -122.4194},
	"tile_degrees": 0.0001,
	"interaction_radius": 3,
	"spawn_probability": 0.15,
	"win_target": 16,
	"start_mode": "steps",
	"messages": {
		"welcome": "Welcome!",
		"pickup": "Picked up a %d token",
		"place": "Placed your %d token",
		"merge": "Merged into a %d token!",
		"mismatch": "Your %d token doesn't match the %d in that cell",
		"out_of_range": "Too far away",
		"nothing_here": "Nothing here",
		"win": "You win! Your token reached %d!",
		"mode_switch": "Movement mode switched to %s"
	}
}`

func TestAnalyzeConfig_ValidFile(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(testConfigJSON)); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpfile.Close()

	if err := analyzeConfig(tmpfile.Name(), 10); err != nil {
		t.Errorf("analyzeConfig failed: %v", err)
	}
}

func TestAnalyzeConfig_MissingFile(t *testing.T) {
	if err := analyzeConfig("/non/existent/file.json", 10); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestAnalyzeConfig_InvalidJSON(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(`{"name": "test", invalid json}`)); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpfile.Close()

	if err := analyzeConfig(tmpfile.Name(), 10); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestAnalyzeDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "test_configs_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "test.json")
	if err := os.WriteFile(configPath, []byte(testConfigJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if err := analyzeDir(tmpDir, 10); err != nil {
		t.Errorf("analyzeDir failed: %v", err)
	}
}

func TestAnalyzeDir_EmptyDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "test_configs_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := analyzeDir(tmpDir, 10); err == nil {
		t.Error("Expected error for directory with no configs")
	}
}
