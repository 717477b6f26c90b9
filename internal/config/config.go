// Package config loads the mudlark client configuration. The file is
// read-only: mudlark never writes config or credentials back to disk.
package config

import (
	"fmt"
	"os"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from human-form YAML
// strings such as "20s", "1m30s" or "1h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := str2duration.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	// ServerURL is the ws:// or wss:// base of the zone server.
	ServerURL string `yaml:"server_url"`
	// APIURL is the http:// or https:// base of the account API.
	APIURL string `yaml:"api_url"`
	// Token is the access token. The --token flag and the MUDLARK_TOKEN
	// environment variable both take precedence over this value.
	Token string `yaml:"token"`

	Defaults DefaultsConfig `yaml:"defaults"`

	// KeepAlive is the application-level ping interval.
	KeepAlive Duration `yaml:"keep_alive"`

	Debug   bool `yaml:"debug"`
	NoColor bool `yaml:"no_color"`
}

// DefaultsConfig pre-selects the world, character and zone so `mudlark`
// can connect without going through the pickers.
type DefaultsConfig struct {
	WorldID     string `yaml:"world_id"`
	CharacterID string `yaml:"character_id"`
	ZoneID      string `yaml:"zone_id"`
}

func defaultConfig() *Config {
	return &Config{
		ServerURL: "ws://127.0.0.1:8600",
		APIURL:    "http://127.0.0.1:8600",
		KeepAlive: Duration(20 * time.Second),
	}
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error and yields pure defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// DefaultPath returns the per-user config location, or "" when the user
// config directory cannot be resolved.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return dir + "/mudlark/config.yaml"
}
