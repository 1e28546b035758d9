package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rohmanhakim/ssr-renderer/internal/browser"
)

type Config struct {
	//===============
	// Browser
	//===============
	engine EngineConfig
	// Defaults applied to every render unless a caller overrides them
	render RenderConfig

	//===============
	// Behaviour
	//===============
	// Debug-level logging
	verbose bool
	// Strict mode: misuse of the renderer lifecycle and invalid render
	// configs fail instead of being corrected with a warning
	safe bool
	// One of debug, info, warn, error, disabled. Ignored when verbose is set.
	logLevel string
	// Human-readable console logs instead of JSON
	prettyLogs bool

	//===============
	// HTTP service
	//===============
	serverAddr string
	// Sustained /render requests per second
	serverRPS float64
	// Requests allowed above serverRPS in a burst
	serverBurst int
	// Upper bound for draining in-flight renders on shutdown
	shutdownTimeout time.Duration
}

// stringList accepts either a single JSON string or an array of strings.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = stringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

type engineDTO struct {
	Headless          *bool    `json:"headless,omitempty"`
	Timeout           *int64   `json:"timeout,omitempty"` // milliseconds
	IgnoreHTTPSErrors *bool    `json:"ignoreHTTPSErrors,omitempty"`
	FilterRequests    *bool    `json:"filterRequests,omitempty"`
	BlockedResources  []string `json:"blockedResources,omitempty"`
	BinPath           string   `json:"binPath,omitempty"`
	NoSandbox         bool     `json:"noSandbox,omitempty"`
}

type renderDTO struct {
	Timeout   int64      `json:"timeout,omitempty"` // milliseconds
	DomTarget stringList `json:"domTarget,omitempty"`
	WaitUntil stringList `json:"waitUntil,omitempty"`
	Cache     bool       `json:"cache,omitempty"`
	CacheTime *int64     `json:"cacheTime,omitempty"` // milliseconds, 0 = never expires
}

type serverDTO struct {
	Addr            string  `json:"addr,omitempty"`
	RPS             float64 `json:"rps,omitempty"`
	Burst           int     `json:"burst,omitempty"`
	ShutdownTimeout int64   `json:"shutdownTimeout,omitempty"` // milliseconds
}

type configDTO struct {
	Engine     engineDTO `json:"engine"`
	Render     renderDTO `json:"render"`
	Verbose    bool      `json:"verbose,omitempty"`
	Safe       bool      `json:"safe,omitempty"`
	LogLevel   string    `json:"logLevel,omitempty"`
	PrettyLogs bool      `json:"prettyLogs,omitempty"`
	Server     serverDTO `json:"server"`
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	engine := WithDefaultEngine()
	if dto.Engine.Headless != nil {
		engine.WithHeadless(*dto.Engine.Headless)
	}
	if dto.Engine.Timeout != nil {
		engine.WithTimeout(millis(*dto.Engine.Timeout))
	}
	if dto.Engine.IgnoreHTTPSErrors != nil {
		engine.WithIgnoreHTTPSErrors(*dto.Engine.IgnoreHTTPSErrors)
	}
	if dto.Engine.FilterRequests != nil {
		engine.WithFilterRequests(*dto.Engine.FilterRequests)
	}
	if dto.Engine.BlockedResources != nil {
		types := make([]browser.ResourceType, 0, len(dto.Engine.BlockedResources))
		for _, t := range dto.Engine.BlockedResources {
			types = append(types, browser.ResourceType(t))
		}
		engine.WithBlockedResources(types...)
	}
	engine.WithBinPath(dto.Engine.BinPath)
	engine.WithNoSandbox(dto.Engine.NoSandbox)

	render := WithDefaultRender()
	if dto.Render.Timeout != 0 {
		render.WithTimeout(millis(dto.Render.Timeout))
	}
	if len(dto.Render.DomTarget) > 0 {
		render.WithDomTargets(dto.Render.DomTarget...)
	}
	if len(dto.Render.WaitUntil) > 0 {
		conditions := make([]browser.WaitCondition, 0, len(dto.Render.WaitUntil))
		for _, w := range dto.Render.WaitUntil {
			conditions = append(conditions, browser.WaitCondition(w))
		}
		render.WithWaitUntil(conditions...)
	}
	render.WithCache(dto.Render.Cache)
	if dto.Render.CacheTime != nil {
		render.WithCacheTTL(millis(*dto.Render.CacheTime))
	}

	cfg := WithDefault().
		WithEngine(engine.Value()).
		WithRender(render.Value()).
		WithVerbose(dto.Verbose).
		WithSafe(dto.Safe).
		WithPrettyLogs(dto.PrettyLogs)

	if dto.LogLevel != "" {
		cfg.WithLogLevel(dto.LogLevel)
	}
	if dto.Server.Addr != "" {
		cfg.WithServerAddr(dto.Server.Addr)
	}
	if dto.Server.RPS != 0 {
		cfg.WithServerRPS(dto.Server.RPS)
	}
	if dto.Server.Burst != 0 {
		cfg.WithServerBurst(dto.Server.Burst)
	}
	if dto.Server.ShutdownTimeout != 0 {
		cfg.WithShutdownTimeout(millis(dto.Server.ShutdownTimeout))
	}

	return cfg.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

func WithDefault() *Config {
	defaultConfig := Config{
		engine:          DefaultEngineConfig(),
		render:          DefaultRenderConfig(),
		verbose:         false,
		safe:            false,
		logLevel:        "info",
		prettyLogs:      false,
		serverAddr:      ":8080",
		serverRPS:       10,
		serverBurst:     20,
		shutdownTimeout: 30 * time.Second,
	}
	return &defaultConfig
}

func (c *Config) WithEngine(engine EngineConfig) *Config {
	c.engine = engine
	return c
}

func (c *Config) WithRender(render RenderConfig) *Config {
	c.render = render
	return c
}

func (c *Config) WithVerbose(verbose bool) *Config {
	c.verbose = verbose
	return c
}

func (c *Config) WithSafe(safe bool) *Config {
	c.safe = safe
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = level
	return c
}

func (c *Config) WithPrettyLogs(pretty bool) *Config {
	c.prettyLogs = pretty
	return c
}

func (c *Config) WithServerAddr(addr string) *Config {
	c.serverAddr = addr
	return c
}

func (c *Config) WithServerRPS(rps float64) *Config {
	c.serverRPS = rps
	return c
}

func (c *Config) WithServerBurst(burst int) *Config {
	c.serverBurst = burst
	return c
}

func (c *Config) WithShutdownTimeout(timeout time.Duration) *Config {
	c.shutdownTimeout = timeout
	return c
}

// Build validates the application config. Engine and render settings are
// checked only in safe mode; otherwise the renderer corrects them at use.
func (c *Config) Build() (Config, error) {
	if c.safe {
		if err := c.engine.Validate(); err != nil {
			return Config{}, err
		}
		if err := c.render.Validate(); err != nil {
			return Config{}, err
		}
	}

	switch c.logLevel {
	case "debug", "info", "warn", "error", "disabled":
	default:
		return Config{}, invalid("logLevel", "unknown level %q", c.logLevel)
	}
	if c.serverAddr == "" {
		return Config{}, invalid("server.addr", "must not be empty")
	}
	if c.serverRPS <= 0 {
		return Config{}, invalid("server.rps", "must be positive, got %v", c.serverRPS)
	}
	if c.serverBurst <= 0 {
		return Config{}, invalid("server.burst", "must be positive, got %d", c.serverBurst)
	}
	if c.shutdownTimeout <= 0 {
		return Config{}, invalid("server.shutdownTimeout", "must be positive, got %s", c.shutdownTimeout)
	}

	return *c, nil
}

func (c Config) Engine() EngineConfig {
	return c.engine
}

func (c Config) Render() RenderConfig {
	return c.render
}

func (c Config) Verbose() bool {
	return c.verbose
}

func (c Config) Safe() bool {
	return c.safe
}

func (c Config) LogLevel() string {
	return c.logLevel
}

func (c Config) PrettyLogs() bool {
	return c.prettyLogs
}

func (c Config) ServerAddr() string {
	return c.serverAddr
}

func (c Config) ServerRPS() float64 {
	return c.serverRPS
}

func (c Config) ServerBurst() int {
	return c.serverBurst
}

func (c Config) ShutdownTimeout() time.Duration {
	return c.shutdownTimeout
}
