// Package config provides configuration loading and management for triage.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/metalagman/triage/internal/priority"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Dir is the per-project state directory.
const Dir = ".triage"

// DefaultPath is the config file location relative to the working directory.
var DefaultPath = filepath.Join(Dir, "config.yaml")

// Config is the root configuration.
type Config struct {
	Storage  StorageConfig  `json:"storage"  mapstructure:"storage"  yaml:"storage"`
	Server   ServerConfig   `json:"server"   mapstructure:"server"   yaml:"server"`
	MCP      MCPConfig      `json:"mcp"      mapstructure:"mcp"      yaml:"mcp"`
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis"`
	Log      LogConfig      `json:"log"      mapstructure:"log"      yaml:"log"`
}

// StorageConfig selects and configures the task store.
type StorageConfig struct {
	Driver         string        `json:"driver"            mapstructure:"driver"          yaml:"driver"`
	Path           string        `json:"path,omitempty"    mapstructure:"path"            yaml:"path,omitempty"`
	DSN            string        `json:"dsn,omitempty"     mapstructure:"dsn"             yaml:"dsn,omitempty"`
	ConnectTimeout time.Duration `json:"connect_timeout"   mapstructure:"connect_timeout" yaml:"connect_timeout"`
}

// ServerConfig configures the HTTP server of `triage serve`.
type ServerConfig struct {
	Addr            string        `json:"addr"             mapstructure:"addr"             yaml:"addr"`
	ReadTimeout     time.Duration `json:"read_timeout"     mapstructure:"read_timeout"     yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"    mapstructure:"write_timeout"    yaml:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// MCPConfig controls the MCP endpoint mounted by `triage serve`.
type MCPConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
}

// AnalysisConfig holds engine defaults used when a request omits them.
type AnalysisConfig struct {
	Strategy    priority.Strategy `json:"strategy"           mapstructure:"strategy"    yaml:"strategy"`
	Suggestions int               `json:"suggestions"        mapstructure:"suggestions" yaml:"suggestions"`
	Timezone    string            `json:"timezone,omitempty" mapstructure:"timezone"    yaml:"timezone,omitempty"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Debug  bool   `json:"debug"  mapstructure:"debug"  yaml:"debug"`
	Format string `json:"format" mapstructure:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Driver:         DriverSQLite,
			Path:           filepath.Join(Dir, "triage.db"),
			ConnectTimeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		MCP: MCPConfig{Enabled: true},
		Analysis: AnalysisConfig{
			Strategy:    priority.DefaultStrategy,
			Suggestions: priority.DefaultSuggestionCount,
		},
		Log: LogConfig{Format: FormatConsole},
	}
}

// SetDefaults registers every key with its default value so environment
// overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("storage.connect_timeout", d.Storage.ConnectTimeout.String())
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout.String())
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout.String())
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout.String())
	v.SetDefault("mcp.enabled", d.MCP.Enabled)
	v.SetDefault("analysis.strategy", d.Analysis.Strategy.String())
	v.SetDefault("analysis.suggestions", d.Analysis.Suggestions)
	v.SetDefault("analysis.timezone", d.Analysis.Timezone)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.format", d.Log.Format)
}

// DecodeHook converts duration strings and text-encoded values such as
// strategy names.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}

// Decode validates the merged settings of v against the schema and decodes
// them into a Config.
func Decode(v *viper.Viper) (Config, error) {
	if err := ValidateSettings(v.AllSettings()); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(DecodeHook())); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the schema cannot express.
func (c Config) Validate() error {
	var problems []string
	switch c.Storage.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			problems = append(problems, "storage.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			problems = append(problems, "storage.dsn is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown storage.driver %q", c.Storage.Driver))
	}
	if c.Analysis.Suggestions <= 0 {
		problems = append(problems, "analysis.suggestions must be > 0")
	}
	if _, err := c.Analysis.Location(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location returns the time zone used to decide what "today" is.
func (a AnalysisConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("analysis.timezone: %w", err)
	}
	return loc, nil
}
