package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultStoreDirName = ".plexctl"
	defaultPort         = "32400"
)

type Config struct {
	Server       string `json:"server"`
	Token        string `json:"token"`
	ClientID     string `json:"client_id"`
	DeviceName   string `json:"device_name"`
	Format       string `json:"format,omitempty"`
	LastUsername string `json:"last_username"`
}

func ResolveStoreDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if env := os.Getenv("PLEX_STORE"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, defaultStoreDirName), nil
}

func ConfigPath(storeDir string) string {
	return filepath.Join(storeDir, "config.json")
}

func Load(storeDir string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(storeDir))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return &cfg, nil
}

func Save(storeDir string, cfg *Config) error {
	if err := os.MkdirAll(storeDir, 0700); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(storeDir), data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func ApplyEnv(cfg *Config) {
	if env := os.Getenv("PLEX_SERVER"); env != "" {
		cfg.Server = env
	}
	if env := os.Getenv("PLEX_TOKEN"); env != "" {
		cfg.Token = env
	}
	if env := os.Getenv("PLEX_FORMAT"); env != "" {
		cfg.Format = env
	}
}

// ValidateServer reports whether a server URL is configured.
func (c *Config) ValidateServer() error {
	if c.Server == "" {
		return fmt.Errorf("server not set. Pass --server, set PLEX_SERVER or run 'plexctl login --server'")
	}
	return nil
}

func (c *Config) ValidateAuth() error {
	if c.Token == "" {
		return fmt.Errorf("not authenticated. Run 'plexctl login' or set PLEX_TOKEN")
	}
	return nil
}

// NormalizeServerURL turns what users paste (a bare host, a host:port, or
// a link into the web app) into the server's base URL. Bare hosts get
// http and the default server port.
func NormalizeServerURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return strings.TrimRight(raw, "/")
	}

	parsed.Fragment = ""
	parsed.RawQuery = ""
	if i := strings.Index(parsed.Path, "/web"); i >= 0 {
		parsed.Path = parsed.Path[:i]
	}
	if parsed.Port() == "" && parsed.Scheme == "http" {
		parsed.Host += ":" + defaultPort
	}
	return strings.TrimRight(parsed.String(), "/")
}
