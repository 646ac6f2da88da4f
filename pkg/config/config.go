/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables that override file settings,
// e.g. OXDASH_PORT or OXDASH_SECURITY_API_KEY.
const EnvPrefix = "OXDASH"

// Config represents the oxdash configuration
type Config struct {
	DataDir   string   `yaml:"data_dir"`
	DeployDir string   `yaml:"deploy_dir"`
	Port      int      `yaml:"port"`
	Bind      string   `yaml:"bind"`
	Security  Security `yaml:"security"`
	Logging   Logging  `yaml:"logging"`
	Decode    Decode   `yaml:"decode"`
}

// Security contains security-related configuration
type Security struct {
	APIKey         string   `yaml:"api_key"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Decode limits log uploads accepted by the API
type Decode struct {
	MaxLogBytes int64 `yaml:"max_log_bytes"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:   "./data",
		DeployDir: "",
		Port:      5810,
		Bind:      "127.0.0.1",
		Security: Security{
			APIKey: "",
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
		Decode: Decode{
			MaxLogBytes: 512 << 20,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("deploy_dir", d.DeployDir)
	v.SetDefault("port", d.Port)
	v.SetDefault("bind", d.Bind)
	v.SetDefault("security.api_key", d.Security.APIKey)
	v.SetDefault("security.allowed_origins", d.Security.AllowedOrigins)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("decode.max_log_bytes", d.Decode.MaxLogBytes)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		DataDir:   v.GetString("data_dir"),
		DeployDir: v.GetString("deploy_dir"),
		Port:      v.GetInt("port"),
		Bind:      v.GetString("bind"),
		Security: Security{
			APIKey:         v.GetString("security.api_key"),
			AllowedOrigins: v.GetStringSlice("security.allowed_origins"),
		},
		Logging: Logging{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Decode: Decode{
			MaxLogBytes: v.GetInt64("decode.max_log_bytes"),
		},
	}
}

// LoadConfig loads configuration from the specified path. Unset keys take
// their defaults and OXDASH_* environment variables override the file.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return fromViper(v), nil
}

// LoadOrDefault loads configPath when it exists and otherwise returns the
// defaults with environment overrides applied.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath != "" && ConfigExists(configPath) {
		return LoadConfig(configPath)
	}
	return fromViper(newViper()), nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a new configuration with a generated API key
func BootstrapConfig(configPath, dataDir, deployDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}
	config.DeployDir = deployDir

	apiKey, err := GenerateSecureKey(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Security.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "./oxdash.yaml"
	}
	return filepath.Join(configDir, "oxdash", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
