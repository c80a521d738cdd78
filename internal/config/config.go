package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP boundary settings.
type ServerConfig struct {
	Addr         string
	MaxBodyBytes int64
	ReadTimeout  time.Duration
}

// OutputConfig controls how the CLI renders results.
type OutputConfig struct {
	Color       string // auto, always or never
	DiffContext int
}

// Config holds the application configuration
type Config struct {
	Server   ServerConfig
	Output   OutputConfig
	Strict   bool
	LogLevel slog.Level
}

// FileConfig represents the structure of the configuration file
type FileConfig struct {
	Server struct {
		Addr         string `yaml:"addr"`
		MaxBodyBytes int64  `yaml:"max_body_bytes"`
		ReadTimeout  string `yaml:"read_timeout"`
	} `yaml:"server"`

	Output struct {
		Color       string `yaml:"color"`
		DiffContext *int   `yaml:"diff_context"`
	} `yaml:"output"`

	Patch struct {
		Strict *bool `yaml:"strict"`
	} `yaml:"patch"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 1 << 20,
			ReadTimeout:  10 * time.Second,
		},
		Output: OutputConfig{
			Color:       "auto",
			DiffContext: 3,
		},
		Strict:   true,
		LogLevel: slog.LevelInfo,
	}
}

// Load reads a YAML configuration file over the defaults. An empty path
// returns the defaults.
func Load(filePath string) (*Config, error) {
	config := Default()
	if filePath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := fc.merge(config); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filePath, err)
	}
	return config, nil
}

func (fc *FileConfig) merge(config *Config) error {
	if fc.Server.Addr != "" {
		config.Server.Addr = fc.Server.Addr
	}
	if fc.Server.MaxBodyBytes != 0 {
		config.Server.MaxBodyBytes = fc.Server.MaxBodyBytes
	}
	if fc.Server.ReadTimeout != "" {
		d, err := time.ParseDuration(fc.Server.ReadTimeout)
		if err != nil {
			return fmt.Errorf("server.read_timeout: %w", err)
		}
		config.Server.ReadTimeout = d
	}

	switch c := strings.ToLower(fc.Output.Color); c {
	case "":
	case "auto", "always", "never":
		config.Output.Color = c
	default:
		return fmt.Errorf("output.color: unknown mode %q", fc.Output.Color)
	}
	if fc.Output.DiffContext != nil {
		config.Output.DiffContext = *fc.Output.DiffContext
	}

	if fc.Patch.Strict != nil {
		config.Strict = *fc.Patch.Strict
	}

	if fc.Log.Level != "" {
		if err := config.LogLevel.UnmarshalText([]byte(fc.Log.Level)); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

// SaveDefault writes the default configuration to filePath.
func SaveDefault(filePath string) error {
	def := Default()
	var fc FileConfig
	fc.Server.Addr = def.Server.Addr
	fc.Server.MaxBodyBytes = def.Server.MaxBodyBytes
	fc.Server.ReadTimeout = def.Server.ReadTimeout.String()
	fc.Output.Color = def.Output.Color
	fc.Output.DiffContext = &def.Output.DiffContext
	fc.Patch.Strict = &def.Strict
	fc.Log.Level = strings.ToLower(def.LogLevel.String())

	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("error creating default config: %w", err)
	}
	out := "# tomledit configuration\n\n" + string(data)
	if err := os.WriteFile(filePath, []byte(out), 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}
