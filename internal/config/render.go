package config

import (
	"strings"
	"time"

	"github.com/rohmanhakim/ssr-renderer/internal/browser"
)

const (
	DefaultRenderTimeout = 16 * time.Second
	DefaultCacheTTL      = 30 * time.Second
)

func DefaultWaitUntil() []browser.WaitCondition {
	return []browser.WaitCondition{browser.WaitNetworkIdle0}
}

/*
RenderConfig controls a single render.

The zero value is usable: unset timeout, waitUntil and cacheTTL read as their
defaults. A cacheTTL of zero set explicitly through WithCacheTTL means the
cached entry never expires.
*/
type RenderConfig struct {
	// Upper bound for navigation and for each selector wait
	timeout time.Duration
	// Selectors that must all match before the page is serialized, awaited in order
	domTargets []string
	// Lifecycle milestones navigation waits for, in order
	waitUntil []browser.WaitCondition
	// Consult and fill the cache
	cache       bool
	cacheTTL    time.Duration
	cacheTTLSet bool
}

func DefaultRenderConfig() RenderConfig {
	return *WithDefaultRender()
}

func WithDefaultRender() *RenderConfig {
	return &RenderConfig{
		timeout:     DefaultRenderTimeout,
		domTargets:  []string{},
		waitUntil:   DefaultWaitUntil(),
		cache:       false,
		cacheTTL:    DefaultCacheTTL,
		cacheTTLSet: true,
	}
}

func (c *RenderConfig) WithTimeout(timeout time.Duration) *RenderConfig {
	c.timeout = timeout
	return c
}

// WithDomTargets replaces the selectors to wait for.
func (c *RenderConfig) WithDomTargets(selectors ...string) *RenderConfig {
	c.domTargets = append([]string(nil), selectors...)
	return c
}

func (c *RenderConfig) WithWaitUntil(conditions ...browser.WaitCondition) *RenderConfig {
	c.waitUntil = append([]browser.WaitCondition(nil), conditions...)
	return c
}

func (c *RenderConfig) WithCache(enabled bool) *RenderConfig {
	c.cache = enabled
	return c
}

func (c *RenderConfig) WithCacheTTL(ttl time.Duration) *RenderConfig {
	c.cacheTTL = ttl
	c.cacheTTLSet = true
	return c
}

// Value returns the config as configured, skipping validation.
func (c *RenderConfig) Value() RenderConfig {
	return *c
}

func (c *RenderConfig) Build() (RenderConfig, error) {
	if err := c.Validate(); err != nil {
		return RenderConfig{}, err
	}
	return *c, nil
}

func (c RenderConfig) Validate() error {
	if c.timeout < 0 {
		return invalid("render.timeout", "must not be negative, got %s", c.timeout)
	}
	for _, sel := range c.domTargets {
		if strings.TrimSpace(sel) == "" {
			return invalid("render.domTarget", "selector must not be blank")
		}
	}
	for _, w := range c.waitUntil {
		if !w.Valid() {
			return invalid("render.waitUntil", "unknown wait condition %q", w)
		}
	}
	if c.cacheTTL < 0 {
		return invalid("render.cacheTTL", "must not be negative, got %s", c.cacheTTL)
	}
	return nil
}

// Normalize returns a copy with every invalid field replaced by its default,
// together with one ConfigError per replacement.
func (c RenderConfig) Normalize() (RenderConfig, []*ConfigError) {
	var corrections []*ConfigError

	if c.timeout < 0 {
		corrections = append(corrections, invalid("render.timeout", "negative value %s replaced by %s", c.timeout, DefaultRenderTimeout))
		c.timeout = DefaultRenderTimeout
	}

	targets := make([]string, 0, len(c.domTargets))
	for _, sel := range c.domTargets {
		if strings.TrimSpace(sel) == "" {
			corrections = append(corrections, invalid("render.domTarget", "blank selector dropped"))
			continue
		}
		targets = append(targets, sel)
	}
	c.domTargets = targets

	conditions := make([]browser.WaitCondition, 0, len(c.waitUntil))
	for _, w := range c.waitUntil {
		if !w.Valid() {
			corrections = append(corrections, invalid("render.waitUntil", "unknown wait condition %q dropped", w))
			continue
		}
		conditions = append(conditions, w)
	}
	c.waitUntil = conditions

	if c.cacheTTL < 0 {
		corrections = append(corrections, invalid("render.cacheTTL", "negative value %s replaced by %s", c.cacheTTL, DefaultCacheTTL))
		c.cacheTTL = DefaultCacheTTL
		c.cacheTTLSet = true
	}

	return c, corrections
}

func (c RenderConfig) Timeout() time.Duration {
	if c.timeout == 0 {
		return DefaultRenderTimeout
	}
	return c.timeout
}

func (c RenderConfig) DomTargets() []string {
	targets := make([]string, len(c.domTargets))
	copy(targets, c.domTargets)
	return targets
}

func (c RenderConfig) WaitUntil() []browser.WaitCondition {
	if len(c.waitUntil) == 0 {
		return DefaultWaitUntil()
	}
	conditions := make([]browser.WaitCondition, len(c.waitUntil))
	copy(conditions, c.waitUntil)
	return conditions
}

func (c RenderConfig) Cache() bool {
	return c.cache
}

// CacheTTL is how long a rendered page stays cached. Zero means forever.
func (c RenderConfig) CacheTTL() time.Duration {
	if !c.cacheTTLSet {
		return DefaultCacheTTL
	}
	return c.cacheTTL
}
