package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a file. Environment variables
// referenced as ${VAR} are interpolated before parsing.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	if info.IsDir() {
		// Directory provided - look for config.yaml inside
		absPath = filepath.Join(absPath, "config.yaml")
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	interpolated := interpolateEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DiscoverConfig finds the config file by checking standard locations.
// Priority order: $GLAZIER_CONFIG, XDG config dir, /etc/glazier, ./config.yaml.
func DiscoverConfig() (string, error) {
	if path := os.Getenv("GLAZIER_CONFIG"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	xdgPath := filepath.Join(xdg.ConfigHome, "glazier", "config.yaml")
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath, nil
	}

	systemPath := "/etc/glazier/config.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath, nil
	}

	legacyPath := "./config.yaml"
	if _, err := os.Stat(legacyPath); err == nil {
		return legacyPath, nil
	}

	return "", fmt.Errorf("no config found (checked: $GLAZIER_CONFIG, %s, %s, %s)",
		xdgPath, systemPath, legacyPath)
}

// applyDefaults merges default values into cfg where not explicitly set.
func applyDefaults(cfg *Config) {
	defaults := Defaults()

	if cfg.Service.Name == "" {
		cfg.Service.Name = defaults.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = defaults.Service.LogLevel
	}
	if cfg.Service.LogFormat == "" {
		cfg.Service.LogFormat = defaults.Service.LogFormat
	}

	if cfg.Editor.Bin == "" {
		cfg.Editor.Bin = defaults.Editor.Bin
	}
	if cfg.Editor.Args == nil {
		cfg.Editor.Args = defaults.Editor.Args
	}
	if cfg.Editor.StartupTimeout == 0 {
		cfg.Editor.StartupTimeout = defaults.Editor.StartupTimeout
	}

	if cfg.State.Path == "" {
		cfg.State.Path = defaults.State.Path
	}

	if !cfg.Control.Enabled && cfg.Control.Listen == "" {
		cfg.Control = defaults.Control
	}
	if cfg.Control.Listen == "" {
		cfg.Control.Listen = defaults.Control.Listen
	}

	if cfg.Settings == nil {
		cfg.Settings = make(map[string]string)
	}
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Undefined variables are left as-is (caught later by validation).
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Service.LogLevel] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}

	if cfg.Editor.Bin == "" {
		return fmt.Errorf("editor.bin is required")
	}
	if cfg.Editor.StartupTimeout <= 0 {
		return fmt.Errorf("editor.startup_timeout must be positive")
	}

	if cfg.State.Path == "" {
		return fmt.Errorf("state.path is required")
	}

	if cfg.Control.Enabled {
		if cfg.Control.Listen == "" {
			return fmt.Errorf("control.listen is required when control is enabled")
		}
		if envVarPattern.MatchString(cfg.Control.Auth.APIKey) {
			matches := envVarPattern.FindStringSubmatch(cfg.Control.Auth.APIKey)
			if len(matches) > 1 {
				return fmt.Errorf("control.auth.api_key: environment variable ${%s} is not set", matches[1])
			}
			return fmt.Errorf("control.auth.api_key: unresolved environment variable")
		}
		for i, tok := range cfg.Control.Auth.Tokens {
			if tok.Token == "" {
				return fmt.Errorf("control.auth.tokens[%d].token is required", i)
			}
			if envVarPattern.MatchString(tok.Token) {
				matches := envVarPattern.FindStringSubmatch(tok.Token)
				if len(matches) > 1 {
					return fmt.Errorf("control.auth.tokens[%d].token: environment variable ${%s} is not set", i, matches[1])
				}
				return fmt.Errorf("control.auth.tokens[%d].token: unresolved environment variable", i)
			}
			if len(tok.Scopes) == 0 {
				return fmt.Errorf("control.auth.tokens[%d].scopes must be non-empty", i)
			}
		}
	}

	return nil
}
