// Package config resolves the draftcast connection settings.
//
// Resolution order for url and token: project-local .draftcast.json, then
// DRAFTCAST_URL / DRAFTCAST_TOKEN environment variables, then built-in
// defaults (a local endpoint and an empty token).
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ProjectFileName is the per-project configuration file looked up in the
// working directory.
const ProjectFileName = ".draftcast.json"

const (
	// EnvURL overrides the endpoint URL when the project file doesn't set it
	EnvURL = "DRAFTCAST_URL"
	// EnvToken overrides the auth token when the project file doesn't set it
	EnvToken = "DRAFTCAST_TOKEN"

	// DefaultURL is the built-in fallback endpoint
	DefaultURL = "http://localhost:4000"
)

// Config represents application configuration
type Config struct {
	// URL is the base HTTP(S) endpoint of the subscriber service. The
	// websocket URL is derived from it (see channel.SocketURL).
	URL string `json:"url"`
	// Token authenticates the channel join. Empty means anonymous.
	Token string `json:"token"`
	// LogLevel is one of debug, info, warn, error, none
	LogLevel string `json:"log_level"`
	// LogPath is where diagnostics are written. Never stdout; that
	// stream belongs to the editor protocol.
	LogPath string `json:"-"`
}

func defaultStateDir() string {
	switch runtime.GOOS {
	case "linux":
		if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
			return filepath.Join(stateHome, "draftcast")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".local", "state", "draftcast")
	case "windows":
		if localAppData := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); localAppData != "" {
			return filepath.Join(localAppData, "draftcast")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Local", "draftcast")
	default:
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".local", "state", "draftcast")
	}
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		URL:      DefaultURL,
		Token:    "",
		LogLevel: "info",
		LogPath:  filepath.Join(defaultStateDir(), "draftcast.log"),
	}
}

// Load resolves configuration for the given working directory: defaults,
// then environment, then the project file on top. A missing project file is
// not an error.
func Load(workingDir string) (*Config, error) {
	cfg := DefaultConfig()

	if url := strings.TrimSpace(os.Getenv(EnvURL)); url != "" {
		cfg.URL = url
	}
	if token := strings.TrimSpace(os.Getenv(EnvToken)); token != "" {
		cfg.Token = token
	}

	path := filepath.Join(workingDir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	// Unmarshal into the resolved config so the file overrides only the
	// fields it provides.
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Save writes the project file for the given working directory
func (c *Config) Save(workingDir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(workingDir, ProjectFileName), data, 0644)
}
