package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "UPIEXPLAIN_"

	// legacyAPIKeyEnv is honored when no AI key is configured otherwise.
	legacyAPIKeyEnv = "GEMINI_API_KEY"
)

// DefaultPath returns ~/.config/upiexplain/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "upiexplain", "config.yaml"), nil
}

// Load loads configuration from a YAML file, then overrides with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (UPIEXPLAIN_SERVER_PORT, UPIEXPLAIN_AI_API_KEY, etc.)
//  2. YAML config file
//  3. Defaults (see Default)
//
// An empty configPath uses DefaultPath. A missing file is not an error; an
// explicitly named file that does not exist is.
//
// The file must be at most 1MB and, outside Windows, readable only by its owner
// (0600 or 0400) because it may hold the AI API key.
//
// Environment variables map to keys by dropping the prefix, lower-casing and
// splitting on the first underscore:
//
//	UPIEXPLAIN_SERVER_PORT     -> server.port
//	UPIEXPLAIN_AI_API_KEY      -> ai.api_key
//	UPIEXPLAIN_SESSION_MAX_ENTRIES -> session.max_entries
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	explicit := configPath != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	content, err := readConfigFile(configPath)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file; defaults and env only.
	default:
		return nil, err
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if !cfg.AI.APIKey.IsSet() {
		if key := os.Getenv(legacyAPIKeyEnv); key != "" {
			cfg.AI.APIKey = Secret(key)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envKey maps UPIEXPLAIN_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// readConfigFile opens the file once and validates it through the open descriptor.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return nil, fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// validateConfigFileProperties checks file permissions and size.
func validateConfigFileProperties(info os.FileInfo) error {
	if info.IsDir() {
		return fmt.Errorf("config path is a directory")
	}

	// Skip on Windows (different permission model)
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return nil
}
