package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/ssr-renderer/internal/browser"
	"github.com/rohmanhakim/ssr-renderer/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestWithDefault(t *testing.T) {
	cfg, err := config.WithDefault().Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if cfg.Verbose() {
		t.Errorf("expected Verbose false")
	}
	if cfg.Safe() {
		t.Errorf("expected Safe false")
	}
	if cfg.LogLevel() != "info" {
		t.Errorf("expected LogLevel 'info', got '%s'", cfg.LogLevel())
	}
	if cfg.ServerAddr() != ":8080" {
		t.Errorf("expected ServerAddr ':8080', got '%s'", cfg.ServerAddr())
	}
	if cfg.ServerRPS() != 10 {
		t.Errorf("expected ServerRPS 10, got %v", cfg.ServerRPS())
	}
	if cfg.ServerBurst() != 20 {
		t.Errorf("expected ServerBurst 20, got %d", cfg.ServerBurst())
	}
	if cfg.ShutdownTimeout() != 30*time.Second {
		t.Errorf("expected ShutdownTimeout 30s, got %v", cfg.ShutdownTimeout())
	}

	engine := cfg.Engine()
	if !engine.Headless() {
		t.Errorf("expected headless engine by default")
	}
	if engine.Timeout() != 16*time.Second {
		t.Errorf("expected engine Timeout 16s, got %v", engine.Timeout())
	}
	if !engine.IgnoreHTTPSErrors() {
		t.Errorf("expected IgnoreHTTPSErrors true")
	}
	if !engine.FilterRequests() {
		t.Errorf("expected FilterRequests true")
	}
	if len(engine.BlockedResources()) != 5 {
		t.Errorf("expected 5 blocked resource types, got %v", engine.BlockedResources())
	}

	render := cfg.Render()
	if render.Timeout() != 16*time.Second {
		t.Errorf("expected render Timeout 16s, got %v", render.Timeout())
	}
	if render.Cache() {
		t.Errorf("expected cache disabled by default")
	}
	if render.CacheTTL() != 30*time.Second {
		t.Errorf("expected CacheTTL 30s, got %v", render.CacheTTL())
	}
	if len(render.WaitUntil()) != 1 || render.WaitUntil()[0] != browser.WaitNetworkIdle0 {
		t.Errorf("expected WaitUntil [networkidle0], got %v", render.WaitUntil())
	}
}

func TestBuild_InvalidFields(t *testing.T) {
	tests := []struct {
		name  string
		cfg   *config.Config
		field string
	}{
		{"unknown log level", config.WithDefault().WithLogLevel("loud"), "logLevel"},
		{"empty addr", config.WithDefault().WithServerAddr(""), "server.addr"},
		{"zero rps", config.WithDefault().WithServerRPS(0), "server.rps"},
		{"negative burst", config.WithDefault().WithServerBurst(-1), "server.burst"},
		{"zero shutdown timeout", config.WithDefault().WithShutdownTimeout(0), "server.shutdownTimeout"},
		{
			"safe mode rejects invalid render config",
			config.WithDefault().WithSafe(true).WithRender(config.WithDefaultRender().WithTimeout(-time.Second).Value()),
			"render.timeout",
		},
		{
			"safe mode rejects invalid engine config",
			config.WithDefault().WithSafe(true).WithEngine(config.WithDefaultEngine().WithBlockedResources("video").Value()),
			"engine.blockedResources",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Build()
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			var cfgErr *config.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestBuild_PermissiveModeKeepsInvalidRenderConfig(t *testing.T) {
	cfg, err := config.WithDefault().
		WithRender(config.WithDefaultRender().WithTimeout(-time.Second).Value()).
		Build()
	if err != nil {
		t.Fatalf("expected no error outside safe mode, got %v", err)
	}
	if cfg.Render().Validate() == nil {
		t.Errorf("expected the invalid render config to be kept for later correction")
	}
}

func TestWithConfigFile(t *testing.T) {
	path := writeConfigFile(t, `{
  "engine": {
    "headless": false,
    "timeout": 5000,
    "ignoreHTTPSErrors": false,
    "blockedResources": ["image", "font"],
    "binPath": "/usr/bin/chromium",
    "noSandbox": true
  },
  "render": {
    "timeout": 8000,
    "domTarget": "#app",
    "waitUntil": ["load", "networkidle2"],
    "cache": true,
    "cacheTime": 0
  },
  "verbose": true,
  "safe": true,
  "logLevel": "warn",
  "prettyLogs": true,
  "server": {"addr": "127.0.0.1:9000", "rps": 2.5, "burst": 4, "shutdownTimeout": 1000}
}`)

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	engine := cfg.Engine()
	if engine.Headless() {
		t.Errorf("expected headful engine")
	}
	if engine.Timeout() != 5*time.Second {
		t.Errorf("expected engine Timeout 5s, got %v", engine.Timeout())
	}
	if engine.IgnoreHTTPSErrors() {
		t.Errorf("expected IgnoreHTTPSErrors false")
	}
	if !engine.FilterRequests() {
		t.Errorf("expected FilterRequests to keep its default")
	}
	if got := engine.BlockedResources(); len(got) != 2 || got[0] != browser.ResourceImage || got[1] != browser.ResourceFont {
		t.Errorf("unexpected BlockedResources %v", got)
	}
	if engine.BinPath() != "/usr/bin/chromium" {
		t.Errorf("unexpected BinPath %q", engine.BinPath())
	}
	if !engine.NoSandbox() {
		t.Errorf("expected NoSandbox true")
	}

	render := cfg.Render()
	if render.Timeout() != 8*time.Second {
		t.Errorf("expected render Timeout 8s, got %v", render.Timeout())
	}
	if got := render.DomTargets(); len(got) != 1 || got[0] != "#app" {
		t.Errorf("unexpected DomTargets %v", got)
	}
	if got := render.WaitUntil(); len(got) != 2 || got[0] != browser.WaitLoad || got[1] != browser.WaitNetworkIdle2 {
		t.Errorf("unexpected WaitUntil %v", got)
	}
	if !render.Cache() {
		t.Errorf("expected cache enabled")
	}
	if render.CacheTTL() != 0 {
		t.Errorf("expected eternal CacheTTL, got %v", render.CacheTTL())
	}

	if !cfg.Verbose() || !cfg.Safe() || !cfg.PrettyLogs() {
		t.Errorf("expected verbose, safe and prettyLogs to be set")
	}
	if cfg.LogLevel() != "warn" {
		t.Errorf("expected LogLevel 'warn', got %q", cfg.LogLevel())
	}
	if cfg.ServerAddr() != "127.0.0.1:9000" {
		t.Errorf("unexpected ServerAddr %q", cfg.ServerAddr())
	}
	if cfg.ServerRPS() != 2.5 {
		t.Errorf("unexpected ServerRPS %v", cfg.ServerRPS())
	}
	if cfg.ServerBurst() != 4 {
		t.Errorf("unexpected ServerBurst %d", cfg.ServerBurst())
	}
	if cfg.ShutdownTimeout() != time.Second {
		t.Errorf("unexpected ShutdownTimeout %v", cfg.ShutdownTimeout())
	}
}

func TestWithConfigFile_MinimalKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, `{}`)

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Render().CacheTTL() != 30*time.Second {
		t.Errorf("expected default CacheTTL, got %v", cfg.Render().CacheTTL())
	}
	if !cfg.Engine().Headless() {
		t.Errorf("expected default headless engine")
	}
}

func TestWithConfigFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.WithConfigFile(filepath.Join(t.TempDir(), "nope.json"))
		if !errors.Is(err, config.ErrFileDoesNotExist) {
			t.Errorf("expected ErrFileDoesNotExist, got %v", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeConfigFile(t, `{"render": `)
		_, err := config.WithConfigFile(path)
		if !errors.Is(err, config.ErrConfigParsingFail) {
			t.Errorf("expected ErrConfigParsingFail, got %v", err)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		path := writeConfigFile(t, `{"server": {"rps": -1}}`)
		_, err := config.WithConfigFile(path)
		if !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
