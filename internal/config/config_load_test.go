package config

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var envVars = []string{
	"FORMPDF_MODE", "FORMPDF_HOST", "FORMPDF_PORT", "FORMPDF_FORMS",
	"FORMPDF_OUTPUT", "FORMPDF_LANG", "FORMPDF_LOGLEVEL", "FORMPDF_MAXIMAGESIZE",
}

// withArgs runs fn with os.Args replaced and the pflag/viper/env state
// reset, restoring everything afterwards. LoadFromFlags parses global
// state, so every test goes through here.
func withArgs(t *testing.T, args []string, env map[string]string, fn func()) {
	t.Helper()

	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
		viper.Reset()
		for _, v := range envVars {
			os.Unsetenv(v)
		}
	}()

	os.Args = args
	pflag.CommandLine = pflag.NewFlagSet(args[0], pflag.ExitOnError)
	viper.Reset()
	for _, v := range envVars {
		os.Unsetenv(v)
	}
	for k, v := range env {
		os.Setenv(k, v)
	}

	fn()
}

func TestLoadFromFlags_Defaults(t *testing.T) {
	// The forms dir is pinned to a temp dir so Validate's
	// create-if-missing does not touch the working directory.
	env := map[string]string{"FORMPDF_FORMS": t.TempDir()}
	withArgs(t, []string{"formpdf"}, env, func() {
		cfg, err := LoadFromFlags()
		if err != nil {
			t.Fatalf("LoadFromFlags() unexpected error: %v", err)
		}

		if cfg.Mode != ModeStdio || cfg.Host != DefaultHost || cfg.Port != DefaultPort {
			t.Errorf("unexpected server defaults: %s", cfg)
		}
		if cfg.Language != DefaultLanguage || cfg.LogLevel != DefaultLogLevel {
			t.Errorf("unexpected language/log defaults: %s", cfg)
		}
		if cfg.MaxImageSize != DefaultMaxImageSize {
			t.Errorf("MaxImageSize = %d, want %d", cfg.MaxImageSize, DefaultMaxImageSize)
		}
		if cfg.FormsDirectory == "" || cfg.OutputDirectory == "" {
			t.Error("directories should default below the working directory")
		}
	})
}

func TestLoadFromFlags_Flags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "server mode with host and port",
			args: []string{"--mode=server", "--host=0.0.0.0", "--port=9090"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Mode != ModeServer || cfg.Host != "0.0.0.0" || cfg.Port != 9090 {
					t.Errorf("got %s", cfg)
				}
			},
		},
		{
			name: "custom language",
			args: []string{"--lang=en"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Language != "en" {
					t.Errorf("Language = %s, want en", cfg.Language)
				}
			},
		},
		{
			name: "debug log level",
			args: []string{"--loglevel=debug"},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.IsDebug() {
					t.Error("expected debug logging")
				}
			},
		},
		{
			name: "verification and compression toggles",
			args: []string{"--verify=false", "--compress=false"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Verify || cfg.Compress {
					t.Error("expected verify and compress disabled")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"formpdf", "--forms=" + t.TempDir()}, tt.args...)
			withArgs(t, args, nil, func() {
				cfg, err := LoadFromFlags()
				if err != nil {
					t.Fatalf("LoadFromFlags() unexpected error: %v", err)
				}
				tt.check(t, cfg)
			})
		})
	}
}

func TestLoadFromFlags_Environment(t *testing.T) {
	env := map[string]string{
		"FORMPDF_MODE":     "server",
		"FORMPDF_HOST":     "192.168.1.1",
		"FORMPDF_PORT":     "3000",
		"FORMPDF_FORMS":    t.TempDir(),
		"FORMPDF_LANG":     "en",
		"FORMPDF_LOGLEVEL": "warn",
	}

	withArgs(t, []string{"formpdf"}, env, func() {
		cfg, err := LoadFromFlags()
		if err != nil {
			t.Fatalf("LoadFromFlags() unexpected error: %v", err)
		}
		if cfg.Mode != ModeServer || cfg.Host != "192.168.1.1" || cfg.Port != 3000 {
			t.Errorf("environment not applied: %s", cfg)
		}
		if cfg.Language != "en" || cfg.LogLevel != "warn" {
			t.Errorf("environment not applied: %s", cfg)
		}
	})
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	env := map[string]string{
		"FORMPDF_MODE": "server",
		"FORMPDF_HOST": "192.168.1.1",
		"FORMPDF_PORT": "3000",
	}

	withArgs(t, []string{"formpdf", "--mode=stdio", "--host=localhost", "--port=8888"}, env, func() {
		cfg, err := LoadFromFlags()
		if err != nil {
			t.Fatalf("LoadFromFlags() unexpected error: %v", err)
		}
		if cfg.Mode != ModeStdio || cfg.Host != "localhost" || cfg.Port != 8888 {
			t.Errorf("flags should override environment: %s", cfg)
		}
	})
}

func TestLoadFromFlags_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "invalid mode",
			args:    []string{"--mode=invalid"},
			wantErr: "mode must be either 'stdio' or 'server'",
		},
		{
			name:    "invalid port in server mode",
			args:    []string{"--mode=server", "--port=99999"},
			wantErr: "port must be between 1 and 65535",
		},
		{
			name:    "invalid log level",
			args:    []string{"--loglevel=invalid"},
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"formpdf", "--forms=" + t.TempDir()}, tt.args...)
			withArgs(t, args, nil, func() {
				_, err := LoadFromFlags()
				if err == nil {
					t.Fatal("LoadFromFlags() expected error")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want substring %q", err, tt.wantErr)
				}
			})
		})
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	withArgs(t, []string{"formpdf", "--version"}, nil, func() {
		_, err := LoadFromFlags()
		if err == nil || err.Error() != "version requested" {
			t.Errorf("LoadFromFlags() error = %v, want 'version requested'", err)
		}
	})
}
