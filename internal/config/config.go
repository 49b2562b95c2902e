package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the frontend server configuration. It is built once at
// startup and handed to the HTTP layer by value.
type Config struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
	IndexFile string `yaml:"index_file"`
	BasePath  string `yaml:"base_path"`
	PidFile   string `yaml:"pid_file"`
	LogFile   string `yaml:"log_file"`

	// BackendURL is the companion API address injected into every page.
	// When empty it is resolved per request (see ResolveBackendURL).
	BackendURL      string `yaml:"backend_url"`
	LocalBackendURL string `yaml:"local_backend_url"`

	// Game settings exposed to the browser
	ElevenLabsAPIKey  string `yaml:"elevenlabs_api_key"`
	VoiceID           string `yaml:"voice_id"`
	PreviewDurationMS int    `yaml:"preview_duration_ms"`
	AutoNextDelayMS   int    `yaml:"auto_next_delay_ms"`
	PoolFile          string `yaml:"pool_file"`
	AnnouncementsFile string `yaml:"announcements_file"`
	Debug             bool   `yaml:"debug"`

	// Parsed from command line (not YAML)
	ConfigPath string `yaml:"-"`
}

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Default returns the default configuration.
func Default() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              8080,
		StaticDir:         "frontend",
		IndexFile:         "game.html",
		BasePath:          "/",
		PidFile:           "musicbingo.pid",
		LogFile:           "musicbingo.log",
		LocalBackendURL:   "http://localhost:5001",
		VoiceID:           "21m00Tcm4TlvDq8ikWAM",
		PreviewDurationMS: 5000,
		AutoNextDelayMS:   15000,
		PoolFile:          "../data/pool.json",
		AnnouncementsFile: "../data/announcements.json",
		ConfigPath:        "config.yaml",
	}
}

// Load reads configuration with priority: defaults < YAML file < env vars.
// A missing file is not an error. Flags are applied afterwards by the caller
// (see Flags.Apply).
func Load(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if path != "" {
		cfg.ConfigPath = path
	}

	data, err := os.ReadFile(cfg.ConfigPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", cfg.ConfigPath, err)
		}
		log.Printf("[config] loaded %s", cfg.ConfigPath)
	case errors.Is(err, fs.ErrNotExist):
		// defaults + env only
	default:
		return Config{}, fmt.Errorf("read %s: %w", cfg.ConfigPath, err)
	}

	if lookup != nil {
		applyEnv(&cfg, lookup)
	}
	cfg.BasePath = normalizeBasePath(cfg.BasePath)
	return cfg, nil
}

// applyEnv overrides cfg from the environment. Empty values count as unset
// and numbers that do not parse leave the current value in place.
func applyEnv(cfg *Config, lookup LookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
				*dst = n
			}
		}
	}

	str("HOST", &cfg.Host)
	num("PORT", &cfg.Port)
	str("FRONTEND_DIR", &cfg.StaticDir)
	str("BASE_PATH", &cfg.BasePath)
	str("BACKEND_URL", &cfg.BackendURL)
	str("LOCAL_BACKEND_URL", &cfg.LocalBackendURL)
	str("ELEVENLABS_API_KEY", &cfg.ElevenLabsAPIKey)
	str("ELEVENLABS_VOICE_ID", &cfg.VoiceID)
	num("PREVIEW_DURATION_MS", &cfg.PreviewDurationMS)
	num("AUTO_NEXT_DELAY_MS", &cfg.AutoNextDelayMS)

	if v, ok := lookup("DEBUG_MODE"); ok && v != "" {
		cfg.Debug = v == "true"
	}
}

// Listen returns the host:port address the server binds to.
func (c Config) Listen() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// normalizeBasePath ensures the base path starts with "/" and has no trailing "/".
// Returns "/" for empty or root paths.
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return p
}
