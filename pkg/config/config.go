/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
// Package config holds clydefs's build-time constants (spec §6:
// "Configuration constants (all must be fixed at build time)") and the
// YAML-loaded runtime configuration, kept in the shape of the
// teacher's Config/DefaultConfig/LoadConfig/BootstrapConfig.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Build-time constants fixed per spec §6. N is capped at 254 so
// OFFSET_UNUSED (255) remains unambiguous.
const (
	// K is the B-link tree split threshold: a node is safe at <=2K
	// keys and overfull at 2K+1.
	K uint8 = 32
	// N is the number of directory entries per chunk.
	N uint8 = 32
	// NameMax is the maximum directory entry name length, in bytes.
	NameMax = 255
	// ChunkTailSlack pads each on-device chunk so CHUNK_STRIDE leaves
	// room for future header growth without reshuffling existing
	// chunks.
	ChunkTailSlack = 16
	// PayloadCapacity is the fixed capacity of every payload pool slot
	// (spec §4.6: "one fixed capacity, e.g. 4 MiB x 1,500 slots").
	PayloadCapacity = 4 * 1024 * 1024
	// PayloadPoolSlots is the number of pre-reserved payload slots.
	PayloadPoolSlots = 1500
)

// FreelistBytes is ceil(N/8), the number of freelist bytes per chunk.
func FreelistBytes() int {
	return int(N+7) / 8
}

// Backend selects which persistent implementation backs the tree
// interface and the payload pool.
type Backend string

const (
	// BackendMemory keeps everything in-memory; data does not survive
	// a restart. Default, and what the engine test harness uses.
	BackendMemory Backend = "memory"
	// BackendPebble names a pebble-backed payload store
	// (pkg/clypool.PebblePayloadPool). pkg/di does not build a tree
	// interface for it; one has to be supplied via Container.SetTree.
	BackendPebble Backend = "pebble"
	// BackendPaylog persists payloads in the append-only log described
	// in pkg/paylog, keeping the tree itself in memory.
	BackendPaylog Backend = "paylog"
)

// Config is the clydefs runtime configuration.
type Config struct {
	DataDir  string   `yaml:"data_dir"`
	Backend  Backend  `yaml:"backend"`
	Port     int      `yaml:"port"`
	Bind     string   `yaml:"bind"`
	Security Security `yaml:"security"`
	Logging  Logging  `yaml:"logging"`
}

// Security gates the debug/inspection HTTP surface (pkg/api); it has
// no bearing on filesystem data itself.
type Security struct {
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration.
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Backend: BackendMemory,
		Port:    8080,
		Bind:    "127.0.0.1",
		Security: Security{
			APIKey: "auto",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from the specified path.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Resolve a relative path to an absolute one
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions.
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

// GenerateSecureKey generates a cryptographically secure random key,
// used to mint the debug API key on first run.
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated debug
// API key if one doesn't already exist on disk.
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	if ConfigExists(configPath) {
		return LoadConfig(configPath)
	}

	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}

	apiKey, err := GenerateSecureKey(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate debug API key: %w", err)
	}
	config.Security.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the
// current platform.
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./clydefs.yaml"
	}
	configDir := filepath.Join(homeDir, ".config", "clydefs")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists.
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
