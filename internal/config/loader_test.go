package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr bool
		checkFn func(t *testing.T, cfg *Config)
	}{
		{
			name: "minimal valid config",
			yaml: `
editor:
  bin: nvim
state:
  path: ./test.db
`,
			wantErr: false,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Editor.Bin != "nvim" {
					t.Error("editor.bin not parsed")
				}
				if cfg.State.Path != "./test.db" {
					t.Error("state.path not parsed")
				}
				// Check defaults applied
				if cfg.Service.LogLevel != "info" {
					t.Error("default log_level not applied")
				}
				if cfg.Editor.StartupTimeout != 10*time.Second {
					t.Error("default startup_timeout not applied")
				}
				if len(cfg.Editor.Args) != 1 || cfg.Editor.Args[0] != "--embed" {
					t.Errorf("default editor args not applied: %v", cfg.Editor.Args)
				}
			},
		},
		{
			name:    "empty file gets full defaults",
			yaml:    "",
			wantErr: false,
			checkFn: func(t *testing.T, cfg *Config) {
				d := Defaults()
				if cfg.Editor.Bin != d.Editor.Bin {
					t.Errorf("editor.bin = %q, want default %q", cfg.Editor.Bin, d.Editor.Bin)
				}
				if cfg.Control.Enabled {
					t.Error("control must default to disabled")
				}
			},
		},
		{
			name: "env var interpolation",
			yaml: `
editor:
  bin: ${EDITOR_BIN}
state:
  path: ${DB_PATH}
`,
			env: map[string]string{
				"EDITOR_BIN": "/usr/local/bin/nvim",
				"DB_PATH":    "/tmp/glazier.db",
			},
			wantErr: false,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Editor.Bin != "/usr/local/bin/nvim" {
					t.Errorf("editor.bin = %q, env var not interpolated", cfg.Editor.Bin)
				}
				if cfg.State.Path != "/tmp/glazier.db" {
					t.Errorf("state.path = %q, env var not interpolated", cfg.State.Path)
				}
			},
		},
		{
			name: "invalid log level rejected",
			yaml: `
service:
  log_level: shouting
`,
			wantErr: true,
		},
		{
			name: "control enabled requires resolved token",
			yaml: `
control:
  enabled: true
  listen: 127.0.0.1:8791
  auth:
    api_key: ${GLAZIER_UNSET_TOKEN}
`,
			wantErr: true,
		},
		{
			name: "scoped tokens parsed",
			yaml: `
control:
  enabled: true
  listen: 127.0.0.1:8791
  auth:
    tokens:
      - token: tok-events
        scopes: ["events:ro"]
      - token: tok-admin
        scopes: ["*"]
`,
			wantErr: false,
			checkFn: func(t *testing.T, cfg *Config) {
				if len(cfg.Control.Auth.Tokens) != 2 {
					t.Fatalf("parsed %d tokens, want 2", len(cfg.Control.Auth.Tokens))
				}
				if cfg.Control.Auth.Tokens[0].Scopes[0] != "events:ro" {
					t.Error("token scopes not parsed")
				}
			},
		},
		{
			name: "token without scopes rejected",
			yaml: `
control:
  enabled: true
  listen: 127.0.0.1:8791
  auth:
    tokens:
      - token: tok-x
`,
			wantErr: true,
		},
		{
			name: "settings map parsed",
			yaml: `
settings:
  mouse_enabled: "true"
  scroll_animation_length: "0.3"
`,
			wantErr: false,
			checkFn: func(t *testing.T, cfg *Config) {
				if cfg.Settings["mouse_enabled"] != "true" {
					t.Error("settings map not parsed")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0600); err != nil {
				t.Fatal(err)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if tt.checkFn != nil {
				tt.checkFn(t, cfg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error %q should mention the file is not found", err)
	}
}

func TestLoad_DirectoryResolvesConfigYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := "editor:\n  bin: nvim\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load(dir): %v", err)
	}
	if cfg.Editor.Bin != "nvim" {
		t.Error("config.yaml inside directory not loaded")
	}
}

func TestDiscoverConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("editor:\n  bin: nvim\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GLAZIER_CONFIG", path)

	got, err := DiscoverConfig()
	if err != nil {
		t.Fatalf("DiscoverConfig: %v", err)
	}
	if got != path {
		t.Errorf("DiscoverConfig = %q, want %q", got, path)
	}
}
