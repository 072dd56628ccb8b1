package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

const (
	BackendLocal = "local"
	BackendREST  = "rest"
)

type Config struct {
	// Backend selects the collaborator: the local SQLite store or a REST API.
	Backend string `json:"backend"`
	// DataDir holds the local store (agenda.sqlite) and the default log file.
	DataDir string `json:"data_dir,omitempty"`
	// EventID is the event whose program is edited.
	EventID string `json:"event_id"`
	// Language is the default language of new activities (ES or EN).
	Language string `json:"language,omitempty"`

	API    APIConfig    `json:"api"`
	Server ServerConfig `json:"server"`
	Log    LogConfig    `json:"log"`
}

type APIConfig struct {
	BaseURL string `json:"base_url,omitempty"`
	// Timeout is a Go duration string (e.g. "10s").
	Timeout string `json:"timeout,omitempty"`
	// Token is sent as a bearer token when set.
	Token string `json:"token,omitempty"`
}

type ServerConfig struct {
	Addr string `json:"addr,omitempty"`
}

type LogConfig struct {
	Level string `json:"level,omitempty"`
	File  string `json:"file,omitempty"`
}

func Default() Config {
	return Config{
		Backend:  BackendLocal,
		EventID:  "default",
		Language: "ES",
		API:      APIConfig{Timeout: "10s"},
		Server:   ServerConfig{Addr: "127.0.0.1:8787"},
		Log:      LogConfig{Level: "info"},
	}
}

// Dir returns the config directory (~/.agenda, or $AGENDA_CONFIG_DIR).
func Dir() (string, error) {
	if d := strings.TrimSpace(os.Getenv("AGENDA_CONFIG_DIR")); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".agenda"), nil
}

func DefaultPath() (string, error) {
	d, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config.yaml"), nil
}

// Load reads path over the defaults. A missing file is not an error.
// Unknown keys are rejected for both YAML and JSON files.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg.finish()
		}
		return cfg, err
	}
	jb, _, err := coerceToJSONBytes(path, b)
	if err != nil {
		return cfg, err
	}
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg.finish()
}

func (c Config) finish() (Config, error) {
	c.ApplyEnv()
	if strings.TrimSpace(c.DataDir) == "" {
		d, err := Dir()
		if err != nil {
			return c, err
		}
		c.DataDir = d
	}
	return c, c.Validate()
}

// ApplyEnv overlays AGENDA_* variables.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Backend, "AGENDA_BACKEND")
	set(&c.DataDir, "AGENDA_DIR")
	set(&c.EventID, "AGENDA_EVENT")
	set(&c.Language, "AGENDA_LANGUAGE")
	set(&c.API.BaseURL, "AGENDA_API_URL")
	set(&c.API.Token, "AGENDA_API_TOKEN")
	set(&c.Server.Addr, "AGENDA_ADDR")
	set(&c.Log.Level, "AGENDA_LOG_LEVEL")
	set(&c.Log.File, "AGENDA_LOG_FILE")
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
	case BackendREST:
		if strings.TrimSpace(c.API.BaseURL) == "" {
			return errors.New("config: api.base_url is required for the rest backend")
		}
	default:
		return fmt.Errorf("config: unknown backend %q (expected local|rest)", c.Backend)
	}
	switch strings.ToUpper(strings.TrimSpace(c.Language)) {
	case "", "ES", "EN":
	default:
		return fmt.Errorf("config: unknown language %q (expected ES|EN)", c.Language)
	}
	if _, err := c.APITimeout(); err != nil {
		return err
	}
	if strings.TrimSpace(c.EventID) == "" {
		return errors.New("config: event_id is required")
	}
	return nil
}

func (c Config) APITimeout() (time.Duration, error) {
	s := strings.TrimSpace(c.API.Timeout)
	if s == "" {
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: api.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: api.timeout must not be negative")
	}
	return d, nil
}

func (c Config) SQLitePath() string { return filepath.Join(c.DataDir, "agenda.sqlite") }

// Save writes the config as YAML (or JSON for .json paths).
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var b []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		b, err = json.MarshalIndent(c, "", "  ")
	} else {
		b, err = marshalYAML(c)
	}
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// marshalYAML goes through JSON so the YAML keys follow the json tags.
func marshalYAML(v any) ([]byte, error) {
	jb, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(jb, &m); err != nil {
		return nil, err
	}
	return yaml.Marshal(m)
}
