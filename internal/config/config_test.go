package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var keys = []string{
	"HTTP_ADDRESS", "FINGERSPELL_DATA_DIR", "FINGERSPELL_STATIC_DIR",
	"CAMERA_ENABLED", "CAMERA_ID", "CAMERA_FPS", "CAMERA_MIRROR",
	"MEDIAPIPE_SCRIPT", "MEDIAPIPE_PYTHON", "MAX_HANDS",
	"MIN_DETECTION_CONFIDENCE", "DETECTOR_IDLE_TIMEOUT", "TRAY_ENABLED",
}

// clearEnv blanks every key for the duration of the test and moves into an
// empty directory so no stray .env file is picked up.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.HTTPAddress != ":8080" {
		t.Errorf("HTTPAddress = %q, want :8080", cfg.HTTPAddress)
	}
	if filepath.Base(cfg.DataDir) != ".fingerspell" {
		t.Errorf("DataDir = %q, want a .fingerspell directory", cfg.DataDir)
	}
	if cfg.CameraEnabled || cfg.CameraMirror {
		t.Error("expected camera disabled and unmirrored by default")
	}
	if cfg.CameraFPS != 15 {
		t.Errorf("CameraFPS = %d, want 15", cfg.CameraFPS)
	}
	if cfg.MaxHands != 2 {
		t.Errorf("MaxHands = %d, want 2", cfg.MaxHands)
	}
	if cfg.MinDetectionConfidence != 0.5 {
		t.Errorf("MinDetectionConfidence = %f, want 0.5", cfg.MinDetectionConfidence)
	}
	if cfg.DetectorIdleTimeout != 30*time.Second {
		t.Errorf("DetectorIdleTimeout = %s, want 30s", cfg.DetectorIdleTimeout)
	}
	if cfg.TrayEnabled {
		t.Error("expected tray disabled by default")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()

	t.Setenv("HTTP_ADDRESS", "127.0.0.1:9000")
	t.Setenv("FINGERSPELL_DATA_DIR", dataDir)
	t.Setenv("CAMERA_ENABLED", "true")
	t.Setenv("CAMERA_ID", "2")
	t.Setenv("CAMERA_FPS", "30")
	t.Setenv("CAMERA_MIRROR", "true")
	t.Setenv("MAX_HANDS", "1")
	t.Setenv("MIN_DETECTION_CONFIDENCE", "0.7")
	t.Setenv("DETECTOR_IDLE_TIMEOUT", "5s")
	t.Setenv("TRAY_ENABLED", "1")

	cfg := Load()

	if cfg.HTTPAddress != "127.0.0.1:9000" {
		t.Errorf("HTTPAddress = %q", cfg.HTTPAddress)
	}
	if cfg.DBPath() != filepath.Join(dataDir, "fingerspell.db") {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
	if !cfg.CameraEnabled || cfg.CameraID != 2 || cfg.CameraFPS != 30 || !cfg.CameraMirror {
		t.Errorf("unexpected camera config: %+v", cfg)
	}
	if cfg.MaxHands != 1 || cfg.MinDetectionConfidence != 0.7 {
		t.Errorf("unexpected detector config: %+v", cfg)
	}
	if cfg.DetectorIdleTimeout != 5*time.Second {
		t.Errorf("DetectorIdleTimeout = %s, want 5s", cfg.DetectorIdleTimeout)
	}
	if !cfg.TrayEnabled {
		t.Error("expected tray enabled")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("CAMERA_FPS", "fast")
	t.Setenv("MAX_HANDS", "-1")
	t.Setenv("MIN_DETECTION_CONFIDENCE", "high")
	t.Setenv("DETECTOR_IDLE_TIMEOUT", "soon")
	t.Setenv("CAMERA_ENABLED", "maybe")

	cfg := Load()

	if cfg.CameraFPS != 15 {
		t.Errorf("CameraFPS = %d, want 15", cfg.CameraFPS)
	}
	if cfg.MaxHands != 2 {
		t.Errorf("MaxHands = %d, want 2", cfg.MaxHands)
	}
	if cfg.MinDetectionConfidence != 0.5 {
		t.Errorf("MinDetectionConfidence = %f, want 0.5", cfg.MinDetectionConfidence)
	}
	if cfg.DetectorIdleTimeout != 30*time.Second {
		t.Errorf("DetectorIdleTimeout = %s, want 30s", cfg.DetectorIdleTimeout)
	}
	if cfg.CameraEnabled {
		t.Error("expected camera disabled for an invalid bool")
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("HTTP_ADDRESS")
	os.Unsetenv("CAMERA_FPS")

	env := "HTTP_ADDRESS=:7070\nCAMERA_FPS=24\n"
	if err := os.WriteFile(".env", []byte(env), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	cfg := Load()

	if cfg.HTTPAddress != ":7070" {
		t.Errorf("HTTPAddress = %q, want :7070", cfg.HTTPAddress)
	}
	if cfg.CameraFPS != 24 {
		t.Errorf("CameraFPS = %d, want 24", cfg.CameraFPS)
	}
}

func TestFindWebDir(t *testing.T) {
	clearEnv(t)
	dataDir := t.TempDir()

	if got := findWebDir(dataDir); got != "" {
		t.Errorf("expected no web dir, got %q", got)
	}

	web := filepath.Join(dataDir, "web")
	if err := os.Mkdir(web, 0755); err != nil {
		t.Fatalf("failed to create web dir: %v", err)
	}
	if got := findWebDir(dataDir); got != web {
		t.Errorf("findWebDir() = %q, want %q", got, web)
	}
}
