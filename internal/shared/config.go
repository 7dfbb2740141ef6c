package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that take precedence over the configuration file.
const (
	EnvConfigPath   = "SPTDL_CONFIG"
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Spotify  SpotifyConfig  `toml:"spotify"`
	YouTube  YouTubeConfig  `toml:"youtube"`
	Download DownloadConfig `toml:"download"`
}

// SpotifyConfig contains Spotify API client credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id" validate:"required"`
	ClientSecret string `toml:"client_secret" validate:"required"`
}

// YouTubeConfig contains search and download settings for YouTube.
type YouTubeConfig struct {
	BaseURL    string        `toml:"base_url" validate:"required,url"`
	SearchRate float64       `toml:"search_rate" validate:"gt=0"`
	Timeout    time.Duration `toml:"timeout"`
}

// DownloadConfig controls the fetch loop.
type DownloadConfig struct {
	Directory string `toml:"directory"`
	Attempts  int    `toml:"attempts" validate:"min=1,max=10"`
	Workers   int    `toml:"workers" validate:"min=1,max=8"`
}

// Map returns the Spotify credentials in the form expected by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
	}
}

// LoadConfig reads, parses and validates a TOML configuration file from the specified path.
//
// Missing files wrap [ErrMissingConfig]; parse and validation failures wrap [ErrInvalidConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (run 'sptdl config init')", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := baseConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required fields and bounds.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if id := os.Getenv(EnvClientID); id != "" {
		c.Spotify.ClientID = id
	}
	if secret := os.Getenv(EnvClientSecret); secret != "" {
		c.Spotify.ClientSecret = secret
	}
}

// baseConfig holds the defaults a parsed file is layered onto. Credentials stay empty.
func baseConfig() *Config {
	config := DefaultConfig()
	config.Spotify = SpotifyConfig{}
	return config
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
