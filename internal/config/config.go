package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Catalog contains configuration for the Spotify Web API.
type Catalog struct {
	ClientID        string `toml:"client_id"`
	ClientSecret    string `toml:"client_secret"`
	BaseURL         string `toml:"base_url"`
	TokenURL        string `toml:"token_url"`
	Market          string `toml:"market"`
	RequestTimeout  int    `toml:"request_timeout"`
	SearchLimit     int    `toml:"search_limit"`
	CooldownSeconds int    `toml:"cooldown_seconds"`
}

// Sources contains configuration for the release announcement sources.
type Sources struct {
	Metacritic        bool   `toml:"metacritic"`
	Genius            bool   `toml:"genius"`
	Wikipedia         bool   `toml:"wikipedia"`
	MetacriticBaseURL string `toml:"metacritic_base_url"`
	GeniusBaseURL     string `toml:"genius_base_url"`
	WikipediaBaseURL  string `toml:"wikipedia_base_url"`
	RequestTimeout    int    `toml:"request_timeout"`
	UserAgent         string `toml:"user_agent"`
}

// Monitor contains configuration for the continuous release monitor.
type Monitor struct {
	PassInterval        int      `toml:"pass_interval"`
	PacingSeconds       int      `toml:"pacing_seconds"`
	ErrorRetryInterval  int      `toml:"error_retry_interval"`
	SubjectRefreshHours int      `toml:"subject_refresh_hours"`
	PlaylistIDs         []string `toml:"playlist_ids"`
	ArtistNames         []string `toml:"artist_names"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Digest         bool   `toml:"digest"`
	Releases       bool   `toml:"releases"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dropwatch.
//
// Configuration sections by subsystem:
//   - Paths: state and log directories
//   - Catalog: Spotify Web API credentials and pacing
//   - Sources: announcement source toggles and endpoints
//   - Monitor: tracked-subject polling intervals and discovery inputs
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Catalog       Catalog       `toml:"catalog"`
	Sources       Sources       `toml:"sources"`
	Monitor       Monitor       `toml:"monitor"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path of the user-level config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dropwatch/config.toml")
}

// Load locates, parses, normalizes, and validates a configuration file. When
// path is empty the user-level location is tried, then a project-local
// dropwatch.toml; a missing file means defaults plus environment credentials.
// The returned bool reports whether a file was actually read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		if err := decodeInto(&cfg, resolvedPath); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func decodeInto(cfg *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := toml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// locate picks the config file location. An explicit path is honored whether
// or not the file exists; otherwise the default path wins over the
// project-local file, and the default path is reported even when neither
// exists so error messages can name it.
func locate(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if isRegularFile(defaultPath) {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("dropwatch.toml")
	if err != nil {
		return "", false, err
	}
	if isRegularFile(projectPath) {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureDirectories creates required directories for operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the path of the tracking state database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "dropwatch.db")
}

// LockPath returns the path of the single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "dropwatch.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") || strings.HasPrefix(pathValue, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the embedded sample configuration to path, creating
// parent directories as needed.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
