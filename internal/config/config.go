// Package config loads stylescope settings from defaults, a YAML file,
// STYLESCOPE_ environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// DefaultDBPath is the store location relative to the scanned root.
	DefaultDBPath = ".stylescope.db"
	// DefaultFormat is the CLI output format.
	DefaultFormat = "text"

	envPrefix = "STYLESCOPE_"

	// maxUpwardSearchLevels limits how far up the tree config files are searched for.
	maxUpwardSearchLevels = 10
)

// FileNames are the config file names searched for, in priority order.
var FileNames = []string{"stylescope.yaml", "stylescope.yml", ".stylescope.yaml", ".stylescope.yml"}

// flagKeys maps flag names whose config key differs from the
// kebab-to-snake conversion.
var flagKeys = map[string]string{
	"db":          "db_path",
	"import-path": "top_level_import_paths",
}

// Config holds all settings.
type Config struct {
	ImportPaths []string `koanf:"top_level_import_paths"`
	DBPath      string   `koanf:"db_path"`
	Jobs        int      `koanf:"jobs"`
	Script      string   `koanf:"script"`
	Verbose     bool     `koanf:"verbose"`
	Format      string   `koanf:"format"`

	// File is the config file that was loaded, or empty.
	File string `koanf:"-"`
}

// TopLevelImportPaths returns the configured extra library paths.
func (c *Config) TopLevelImportPaths() []string {
	if c == nil {
		return nil
	}
	return c.ImportPaths
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{DBPath: DefaultDBPath, Format: DefaultFormat}
}

// Load builds the configuration. Precedence, highest first: flags that were
// explicitly set, environment, config file, defaults. explicit names a
// config file; when empty the search starts at dir and walks upward.
func Load(explicit, dir string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	def := Default()
	if err := k.Load(confmap.Provider(map[string]any{
		"db_path": def.DBPath,
		"format":  def.Format,
		"jobs":    0,
		"verbose": false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	path := explicit
	if path == "" {
		path = FindFile(dir)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	// STYLESCOPE_DB_PATH -> db_path
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: loading env: %w", err)
	}
	// A comma-separated env value arrives as a single string.
	if s, ok := k.Get("top_level_import_paths").(string); ok {
		if err := k.Load(confmap.Provider(map[string]any{
			"top_level_import_paths": splitList(s),
		}, "."), nil); err != nil {
			return nil, fmt.Errorf("config: loading env: %w", err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[f.Name]; ok {
				key = mapped
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("config: loading flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	cfg.File = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks option values.
func (c *Config) Validate() error {
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: invalid format %q: must be json or text", c.Format)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("config: jobs must not be negative, got %d", c.Jobs)
	}
	return nil
}

// FindFile searches dir and its parents for a config file. Returns "" when
// none is found.
func FindFile(dir string) string {
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
