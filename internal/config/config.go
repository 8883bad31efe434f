// Package config loads gostep settings from defaults, an optional YAML file,
// GOSTEP_ environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates nesting levels: GOSTEP_MESH__LINEAR_DEFLECTION sets
// mesh.linear_deflection.
const EnvPrefix = "GOSTEP_"

// DefaultFile is looked up in the working directory when no file is given
const DefaultFile = "gostep.yaml"

type LogConfig struct {
	Level       string `koanf:"level"`
	Format      string `koanf:"format"`
	Development bool   `koanf:"development"`
}

type KernelConfig struct {
	// Command is the B-rep helper executable; empty disables file loading
	Command string   `koanf:"command"`
	Args    []string `koanf:"args"`
}

type MeshConfig struct {
	LinearDeflection  float64 `koanf:"linear_deflection"`
	AngularDeflection float64 `koanf:"angular_deflection"`
}

type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	MaxUploadMB       int64         `koanf:"max_upload_mb"`
	Watch             bool          `koanf:"watch"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
}

// Config is the complete gostep configuration
type Config struct {
	Log    LogConfig    `koanf:"log"`
	Kernel KernelConfig `koanf:"kernel"`
	Mesh   MeshConfig   `koanf:"mesh"`
	Server ServerConfig `koanf:"server"`

	// File is the configuration file that was read, if any
	File string `koanf:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"log.level":                  "info",
		"log.format":                 "console",
		"log.development":            false,
		"kernel.command":             "",
		"kernel.args":                []string{},
		"mesh.linear_deflection":     0.1,
		"mesh.angular_deflection":    0.5,
		"server.addr":                ":8000",
		"server.max_upload_mb":       100,
		"server.watch":               false,
		"server.read_header_timeout": "10s",
	}
}

// flagKeys maps command line flag names to configuration keys
var flagKeys = map[string]string{
	"log-level":     "log.level",
	"log-format":    "log.format",
	"dev":           "log.development",
	"kernel":        "kernel.command",
	"kernel-arg":    "kernel.args",
	"linear":        "mesh.linear_deflection",
	"angular":       "mesh.angular_deflection",
	"addr":          "server.addr",
	"max-upload-mb": "server.max_upload_mb",
	"watch":         "server.watch",
}

// Load builds the configuration. cfgFile may be empty, in which case
// DefaultFile is used when it exists. Only flags that were set on the
// command line override other sources.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			used = DefaultFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns GOSTEP_SERVER__MAX_UPLOAD_MB into server.max_upload_mb
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate rejects settings the engine cannot work with
func (c *Config) Validate() error {
	var errs []error
	if !(c.Mesh.LinearDeflection > 0) {
		errs = append(errs, fmt.Errorf("mesh.linear_deflection must be positive, got %v", c.Mesh.LinearDeflection))
	}
	if !(c.Mesh.AngularDeflection > 0) {
		errs = append(errs, fmt.Errorf("mesh.angular_deflection must be positive, got %v", c.Mesh.AngularDeflection))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB))
	}
	if c.Server.ReadHeaderTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.read_header_timeout must not be negative"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// MaxUploadBytes returns the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}
