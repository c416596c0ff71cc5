// Package config loads tyname.toml.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/broady/tyname"
)

// FileName is the file Find looks for.
const FileName = "tyname.toml"

// EnvVar names a config file that overrides the upward lookup.
const EnvVar = "TYNAME_CONFIG"

// Config is the contents of tyname.toml. Missing keys keep their defaults.
type Config struct {
	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`

	Server Server `toml:"server"`
	Log    Log    `toml:"log"`
	Format Format `toml:"format"`
}

// Server configures `tyname serve`.
type Server struct {
	Addr               string   `toml:"addr"`
	MaxBodyBytes       uint64   `toml:"max_body_bytes"`
	MaskInternalErrors bool     `toml:"mask_internal_errors"`
	CORSOrigins        []string `toml:"cors_origins"`
	BatchLimit         int      `toml:"batch_limit"`
}

// Log configures the slog handler.
type Log struct {
	Level  slog.Level `toml:"level"`
	Format string     `toml:"format"`
}

// Format holds formatter defaults.
type Format struct {
	Mode tyname.Mode `toml:"mode"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:         ":8080",
			MaxBodyBytes: 1 << 20,
			CORSOrigins:  []string{"*"},
			BatchLimit:   8,
		},
		Log:    Log{Level: slog.LevelInfo, Format: "text"},
		Format: Format{Mode: tyname.AssemblyQualified},
	}
}

// Load reads the file at path over the defaults. Unknown keys are errors.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find looks for FileName in startDir and its parents.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Resolve loads the config named by explicit, then by $TYNAME_CONFIG, then
// the first tyname.toml above startDir. Without any of them it returns
// Default.
func Resolve(explicit, startDir string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if env := os.Getenv(EnvVar); env != "" {
		return Load(env)
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks values that decoding alone cannot.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("[server].addr is empty"))
	}
	if c.Server.BatchLimit < 1 {
		errs = append(errs, fmt.Errorf("[server].batch_limit must be at least 1, got %d", c.Server.BatchLimit))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("[log].format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// NewLogger returns a logger writing to w with the configured handler.
func (l Log) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.Level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
