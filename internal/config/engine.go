package config

import (
	"time"

	"github.com/rohmanhakim/ssr-renderer/internal/browser"
)

const (
	DefaultEngineTimeout = 16 * time.Second
)

// EngineConfig controls how the browser is launched. Unlike RenderConfig its
// zero value is not the default; start from DefaultEngineConfig or
// WithDefaultEngine.
type EngineConfig struct {
	// Run without a visible window
	headless bool
	// Upper bound for launching and connecting to the browser. Zero disables it.
	timeout time.Duration
	// Accept invalid TLS certificates
	ignoreHTTPSErrors bool
	// Abort requests whose resource type is in blockedResources
	filterRequests   bool
	blockedResources []browser.ResourceType
	// Browser executable. Empty lets the launcher find or download one.
	binPath string
	// Disable the Chromium sandbox, needed when running as root in containers
	noSandbox bool
}

func DefaultEngineConfig() EngineConfig {
	return *WithDefaultEngine()
}

func WithDefaultEngine() *EngineConfig {
	return &EngineConfig{
		headless:          true,
		timeout:           DefaultEngineTimeout,
		ignoreHTTPSErrors: true,
		filterRequests:    true,
		blockedResources:  browser.DefaultBlockedResources(),
	}
}

func (c *EngineConfig) WithHeadless(headless bool) *EngineConfig {
	c.headless = headless
	return c
}

func (c *EngineConfig) WithTimeout(timeout time.Duration) *EngineConfig {
	c.timeout = timeout
	return c
}

func (c *EngineConfig) WithIgnoreHTTPSErrors(ignore bool) *EngineConfig {
	c.ignoreHTTPSErrors = ignore
	return c
}

func (c *EngineConfig) WithFilterRequests(filter bool) *EngineConfig {
	c.filterRequests = filter
	return c
}

func (c *EngineConfig) WithBlockedResources(types ...browser.ResourceType) *EngineConfig {
	c.blockedResources = append([]browser.ResourceType(nil), types...)
	return c
}

func (c *EngineConfig) WithBinPath(path string) *EngineConfig {
	c.binPath = path
	return c
}

func (c *EngineConfig) WithNoSandbox(noSandbox bool) *EngineConfig {
	c.noSandbox = noSandbox
	return c
}

// Value returns the config as configured, skipping validation.
func (c *EngineConfig) Value() EngineConfig {
	return *c
}

func (c *EngineConfig) Build() (EngineConfig, error) {
	if err := c.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return *c, nil
}

func (c EngineConfig) Validate() error {
	if c.timeout < 0 {
		return invalid("engine.timeout", "must not be negative, got %s", c.timeout)
	}
	for _, t := range c.blockedResources {
		if !t.Valid() {
			return invalid("engine.blockedResources", "unknown resource type %q", t)
		}
	}
	return nil
}

// Normalize returns a copy with every invalid field replaced by its default,
// together with one ConfigError per replacement.
func (c EngineConfig) Normalize() (EngineConfig, []*ConfigError) {
	var corrections []*ConfigError

	if c.timeout < 0 {
		corrections = append(corrections, invalid("engine.timeout", "negative value %s replaced by %s", c.timeout, DefaultEngineTimeout))
		c.timeout = DefaultEngineTimeout
	}

	kept := make([]browser.ResourceType, 0, len(c.blockedResources))
	for _, t := range c.blockedResources {
		if !t.Valid() {
			corrections = append(corrections, invalid("engine.blockedResources", "unknown resource type %q dropped", t))
			continue
		}
		kept = append(kept, t)
	}
	c.blockedResources = kept

	return c, corrections
}

func (c EngineConfig) Headless() bool {
	return c.headless
}

func (c EngineConfig) Timeout() time.Duration {
	return c.timeout
}

func (c EngineConfig) IgnoreHTTPSErrors() bool {
	return c.ignoreHTTPSErrors
}

func (c EngineConfig) FilterRequests() bool {
	return c.filterRequests
}

func (c EngineConfig) BlockedResources() []browser.ResourceType {
	types := make([]browser.ResourceType, len(c.blockedResources))
	copy(types, c.blockedResources)
	return types
}

func (c EngineConfig) BinPath() string {
	return c.binPath
}

func (c EngineConfig) NoSandbox() bool {
	return c.noSandbox
}

// LaunchParam converts the config into what a browser.Engine consumes.
func (c EngineConfig) LaunchParam() browser.LaunchParam {
	return browser.NewLaunchParam(
		c.headless,
		c.timeout,
		c.ignoreHTTPSErrors,
		c.binPath,
		c.noSandbox,
	)
}
