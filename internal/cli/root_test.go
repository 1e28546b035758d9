package cmd_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	cmd "github.com/rohmanhakim/ssr-renderer/internal/cli"
	"github.com/rohmanhakim/ssr-renderer/internal/browser"
	"github.com/rohmanhakim/ssr-renderer/internal/config"
)

// TestInitConfigNoFlags tests that InitConfigWithError returns the defaults when no flag is set
func TestInitConfigNoFlags(t *testing.T) {
	cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	defaultCfg, err := config.WithDefault().Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}
	if cfg.Engine().Headless() != defaultCfg.Engine().Headless() {
		t.Errorf("Expected Headless %t, got %t", defaultCfg.Engine().Headless(), cfg.Engine().Headless())
	}
	if cfg.Engine().FilterRequests() != defaultCfg.Engine().FilterRequests() {
		t.Errorf("Expected FilterRequests %t, got %t", defaultCfg.Engine().FilterRequests(), cfg.Engine().FilterRequests())
	}
	if cfg.Render().Timeout() != defaultCfg.Render().Timeout() {
		t.Errorf("Expected render Timeout %s, got %s", defaultCfg.Render().Timeout(), cfg.Render().Timeout())
	}
	if len(cfg.Render().DomTargets()) != 0 {
		t.Errorf("Expected no DomTargets, got %v", cfg.Render().DomTargets())
	}
	if cfg.ServerAddr() != defaultCfg.ServerAddr() {
		t.Errorf("Expected ServerAddr %s, got %s", defaultCfg.ServerAddr(), cfg.ServerAddr())
	}
	if cfg.Safe() {
		t.Error("Expected Safe to be false by default")
	}
}

func TestInitConfigWithBrowserFlags(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetHeadfulForTest(true)
	cmd.SetNoFilterForTest(true)

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Engine().Headless() {
		t.Error("Expected Headless to be false with --headful")
	}
	if cfg.Engine().FilterRequests() {
		t.Error("Expected FilterRequests to be false with --no-filter")
	}
}

func TestInitConfigWithRenderFlags(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetTimeoutForTest(5 * time.Second)
	cmd.SetDomTargetsForTest([]string{"#app", ".loaded"})
	cmd.SetWaitUntilForTest([]string{"load", "networkidle2"})

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Render().Timeout() != 5*time.Second {
		t.Errorf("Expected Timeout 5s, got %s", cfg.Render().Timeout())
	}
	targets := cfg.Render().DomTargets()
	if len(targets) != 2 || targets[0] != "#app" || targets[1] != ".loaded" {
		t.Errorf("Expected DomTargets [#app .loaded] in order, got %v", targets)
	}
	waits := cfg.Render().WaitUntil()
	if len(waits) != 2 || waits[0] != browser.WaitLoad || waits[1] != browser.WaitNetworkIdle2 {
		t.Errorf("Expected WaitUntil [load networkidle2], got %v", waits)
	}
}

func TestInitConfigWithServerFlags(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetAddrForTest("127.0.0.1:9000")
	cmd.SetRateLimitForTest(2.5, 4)

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.ServerAddr() != "127.0.0.1:9000" {
		t.Errorf("Expected ServerAddr 127.0.0.1:9000, got %s", cfg.ServerAddr())
	}
	if cfg.ServerRPS() != 2.5 {
		t.Errorf("Expected ServerRPS 2.5, got %v", cfg.ServerRPS())
	}
	if cfg.ServerBurst() != 4 {
		t.Errorf("Expected ServerBurst 4, got %d", cfg.ServerBurst())
	}
}

func TestInitConfigVerboseAndLogLevel(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetVerboseForTest(true)
	cmd.SetLogLevelForTest("warn")

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !cfg.Verbose() {
		t.Error("Expected Verbose to be true")
	}
	if cfg.LogLevel() != "warn" {
		t.Errorf("Expected LogLevel warn, got %s", cfg.LogLevel())
	}
}

func TestInitConfigInvalidLogLevel(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetLogLevelForTest("loud")

	_, err := cmd.InitConfigWithError()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got: %v", err)
	}
}

// In safe mode a bad wait condition is rejected up front instead of being corrected per render.
func TestInitConfigSafeModeRejectsInvalidRender(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetSafeForTest(true)
	cmd.SetWaitUntilForTest([]string{"idle"})

	_, err := cmd.InitConfigWithError()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got: %v", err)
	}

	cmd.SetSafeForTest(false)
	if _, err := cmd.InitConfigWithError(); err != nil {
		t.Errorf("Expected permissive mode to accept the config, got: %v", err)
	}
}

func TestInitConfigFromFile(t *testing.T) {
	cmd.ResetFlags()

	dir := t.TempDir()
	path := filepath.Join(dir, "ssr.json")
	content := `{
		"engine": {"headless": true, "timeout": 20000},
		"render": {"timeout": 3000, "domTarget": "#root", "waitUntil": ["load"]},
		"server": {"addr": ":9090", "rps": 5, "burst": 5}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	cmd.SetConfigFileForTest(path)
	cmd.SetTimeoutForTest(7 * time.Second)

	cfg, err := cmd.InitConfigWithError()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Engine().Timeout() != 20*time.Second {
		t.Errorf("Expected engine Timeout 20s, got %s", cfg.Engine().Timeout())
	}
	// flags win over the file
	if cfg.Render().Timeout() != 7*time.Second {
		t.Errorf("Expected render Timeout 7s from flag, got %s", cfg.Render().Timeout())
	}
	targets := cfg.Render().DomTargets()
	if len(targets) != 1 || targets[0] != "#root" {
		t.Errorf("Expected DomTargets [#root], got %v", targets)
	}
	if cfg.ServerAddr() != ":9090" {
		t.Errorf("Expected ServerAddr :9090, got %s", cfg.ServerAddr())
	}
}

func TestInitConfigMissingFile(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetConfigFileForTest(filepath.Join(t.TempDir(), "missing.json"))

	_, err := cmd.InitConfigWithError()
	if !errors.Is(err, config.ErrFileDoesNotExist) {
		t.Errorf("Expected ErrFileDoesNotExist, got: %v", err)
	}
}
