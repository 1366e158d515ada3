package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	KubegateConfigPathEnvVar = "KUBEGATE_CONFIG_PATH" // Environment variable for config path
)

// Config holds all configuration for the application
type Config struct {
	// Debug enables verbose logging and additional debug information
	Debug bool `mapstructure:"debug"`

	// Server configuration for `kubegate serve`
	Server struct {
		Host     string        `mapstructure:"host"`
		Port     int           `mapstructure:"port"`
		Timeout  time.Duration `mapstructure:"timeout"`
		LogLevel string        `mapstructure:"log_level"`
	} `mapstructure:"server"`

	// Scanner configuration for the external policy scanner
	Scanner struct {
		// Binary is the name or path of the kubescape executable
		Binary string `mapstructure:"binary"`
		// Framework is the control framework passed to the scanner
		Framework string `mapstructure:"framework"`
		// ControlsConfig is an optional controls-config file; when set it
		// takes precedence over Framework
		ControlsConfig string `mapstructure:"controls_config"`
		// SeverityThreshold is the lowest severity that blocks a commit
		SeverityThreshold string `mapstructure:"severity_threshold"`
		// ControlFilter restricts blocking results to specific control IDs;
		// empty or ["all"] keeps every control
		ControlFilter []string `mapstructure:"control_filter"`
		// Timeout bounds a single scanner invocation
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"scanner"`

	// Git configuration for staged file discovery
	Git struct {
		// IncludeUntracked also checks untracked-but-present YAML files
		IncludeUntracked bool `mapstructure:"include_untracked"`
	} `mapstructure:"git"`
}

// Load initializes and returns the configuration from all sources:
// 1. Command-line flags (highest priority)
// 2. Environment variables (prefixed with KUBEGATE_)
// 3. Configuration file (lowest priority)
func Load(configPath string) (*Config, error) {
	// Check for environment variable config path if not explicitly provided
	if configPath == "" {
		if envPath := os.Getenv(KubegateConfigPathEnvVar); envPath != "" {
			if _, err := os.Stat(envPath); os.IsNotExist(err) {
				return nil, fmt.Errorf("config file specified in %s not found: %s", KubegateConfigPathEnvVar, envPath)
			}
			configPath = envPath
		}
	} else {
		// Verify explicitly provided config file exists
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
	}
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config.yml in the current directory
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Read environment variables
	v.SetEnvPrefix("KUBEGATE")
	v.AutomaticEnv()
	// Replace dots with underscores in env vars
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		} else if configPath != "" {
			// Only error if config file was explicitly specified
			return nil, fmt.Errorf("specified config file not found: %s", configPath)
		}
		// If no config file was specified, we'll use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.log_level", "info")

	// Scanner defaults. The blocking threshold is configurable; high also
	// blocks critical.
	v.SetDefault("scanner.binary", "kubescape")
	v.SetDefault("scanner.framework", "NSA")
	v.SetDefault("scanner.controls_config", "")
	v.SetDefault("scanner.severity_threshold", "high")
	v.SetDefault("scanner.control_filter", []string{"all"})
	v.SetDefault("scanner.timeout", "2m")

	// Git defaults
	v.SetDefault("git.include_untracked", false)
}
