package config

import "time"

// Config represents the complete glazier configuration.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Editor   EditorConfig   `yaml:"editor"`
	State    StateConfig    `yaml:"state"`
	Control  ControlConfig  `yaml:"control,omitempty"`
	Shell    ShellConfig    `yaml:"shell_integration,omitempty"`
	Settings map[string]string `yaml:"settings,omitempty"`
}

// ServiceConfig defines core daemon settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// EditorConfig defines how the editor subprocess is spawned.
type EditorConfig struct {
	Bin            string        `yaml:"bin"`
	Args           []string      `yaml:"args,omitempty"`
	StartupTimeout time.Duration `yaml:"startup_timeout"`
}

// StateConfig defines state storage settings.
type StateConfig struct {
	Path string `yaml:"path"`
}

// ControlConfig defines HTTP control server settings.
type ControlConfig struct {
	Enabled bool              `yaml:"enabled"`
	Listen  string            `yaml:"listen"`
	Auth    ControlAuthConfig `yaml:"auth"`
}

// ControlAuthConfig defines control server authentication settings.
type ControlAuthConfig struct {
	// APIKey is a single bearer token with full access. Prefer Tokens
	// for scoped access.
	APIKey string       `yaml:"api_key"`
	Tokens []ControlToken `yaml:"tokens,omitempty"`
}

// ControlToken defines a bearer token and its scopes.
type ControlToken struct {
	Token  string   `yaml:"token"`
	Scopes []string `yaml:"scopes"`
}

// ShellConfig defines OS shell integration settings.
type ShellConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "glazier",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Editor: EditorConfig{
			Bin:            "nvim",
			Args:           []string{"--embed"},
			StartupTimeout: 10 * time.Second,
		},
		State: StateConfig{
			Path: "./data/state.db",
		},
		Control: ControlConfig{
			Enabled: false,
			Listen:  "127.0.0.1:8791",
		},
		Shell: ShellConfig{
			Enabled: false,
		},
		Settings: make(map[string]string),
	}
}
