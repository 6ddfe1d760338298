// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string
	DataDir     string
	StaticDir   string

	CameraEnabled bool
	CameraID      int
	CameraFPS     int
	CameraMirror  bool

	MediaPipeScript        string
	MediaPipePython        string
	MaxHands               int
	MinDetectionConfidence float64
	DetectorIdleTimeout    time.Duration

	TrayEnabled bool
}

// DBPath is the sqlite database file inside DataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "fingerspell.db")
}

// Load reads an optional .env file, then environment variables, and fills
// defaults for anything unset or invalid.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: failed to load .env: %v", err)
	}

	cfg := Config{
		HTTPAddress: envString("HTTP_ADDRESS", ":8080"),
		DataDir:     envString("FINGERSPELL_DATA_DIR", defaultDataDir()),
		StaticDir:   os.Getenv("FINGERSPELL_STATIC_DIR"),

		CameraEnabled: envBool("CAMERA_ENABLED", false),
		CameraID:      envInt("CAMERA_ID", 0),
		CameraFPS:     envInt("CAMERA_FPS", 15),
		CameraMirror:  envBool("CAMERA_MIRROR", false),

		MediaPipeScript:        os.Getenv("MEDIAPIPE_SCRIPT"),
		MediaPipePython:        os.Getenv("MEDIAPIPE_PYTHON"),
		MaxHands:               envInt("MAX_HANDS", 2),
		MinDetectionConfidence: envFloat("MIN_DETECTION_CONFIDENCE", 0.5),
		DetectorIdleTimeout:    envDuration("DETECTOR_IDLE_TIMEOUT", 30*time.Second),

		TrayEnabled: envBool("TRAY_ENABLED", false),
	}

	if cfg.StaticDir == "" {
		cfg.StaticDir = findWebDir(cfg.DataDir)
	}
	if cfg.CameraFPS <= 0 {
		log.Printf("config: CAMERA_FPS must be positive, using 15")
		cfg.CameraFPS = 15
	}
	if cfg.MaxHands <= 0 {
		log.Printf("config: MAX_HANDS must be positive, using 2")
		cfg.MaxHands = 2
	}

	log.Printf("config: HTTP_ADDRESS=%s data=%s camera=%v", cfg.HTTPAddress, cfg.DataDir, cfg.CameraEnabled)
	return cfg
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".fingerspell"
	}
	return filepath.Join(homeDir, ".fingerspell")
}

// findWebDir searches for the web directory in common locations.
// It checks "web", "../web", "../../web" and <dataDir>/web, returning
// the first existing directory or "".
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
