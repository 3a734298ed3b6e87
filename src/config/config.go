package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ConfigPathEnvVar names an alternative .env file used when none sits next
// to the executable.
const ConfigPathEnvVar = "SCREEN_REGION"

type LoadOptions struct {
	HotkeyOverride     string
	OutputDirOverride  string
	RemoteAddrOverride string
}

type Config struct {
	Hotkey            string `env:"HOTKEY"                    envDefault:"Ctrl+Shift+R"`
	OutputDir         string `env:"OUTPUT_DIR"`
	CaptureFormat     string `env:"CAPTURE_FORMAT"            envDefault:"png"`
	CaptureQuality    int    `env:"CAPTURE_QUALITY"           envDefault:"90"`
	CopyToClipboard   bool   `env:"COPY_TO_CLIPBOARD"         envDefault:"true"`
	NotifyOnCapture   bool   `env:"NOTIFY_ON_CAPTURE"`
	EnableFileLogging bool   `env:"ENABLE_FILE_LOGGING"`
	RemoteAddr        string `env:"REMOTE_ADDR"`
	PortStart         int    `env:"SINGLEINSTANCE_PORT_START" envDefault:"49600"`
	PortEnd           int    `env:"SINGLEINSTANCE_PORT_END"   envDefault:"49650"`
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order: process environment, then .env next to the
	// executable, then the file named by SCREEN_REGION.
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}
	return parse(nil, opts)
}

// parse reads environ, or the process environment when environ is nil.
func parse(environ map[string]string, opts LoadOptions) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if v := strings.TrimSpace(opts.HotkeyOverride); v != "" {
		cfg.Hotkey = v
	}
	if v := strings.TrimSpace(opts.OutputDirOverride); v != "" {
		cfg.OutputDir = v
	}
	if v := strings.TrimSpace(opts.RemoteAddrOverride); v != "" {
		cfg.RemoteAddr = v
	}

	cfg.CaptureFormat = strings.ToLower(strings.TrimSpace(cfg.CaptureFormat))
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(os.TempDir(), "screen-region")
	}
	if cfg.CaptureQuality < 1 || cfg.CaptureQuality > 100 {
		return nil, fmt.Errorf("CAPTURE_QUALITY must be 1-100, got %d", cfg.CaptureQuality)
	}
	return &cfg, nil
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}
