package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rohmanhakim/ssr-renderer/internal/browser"
	"github.com/rohmanhakim/ssr-renderer/internal/cache"
	"github.com/rohmanhakim/ssr-renderer/internal/config"
	"github.com/rohmanhakim/ssr-renderer/internal/metadata"
	"github.com/rohmanhakim/ssr-renderer/internal/renderer"
	"github.com/rohmanhakim/ssr-renderer/pkg/logging"
	"github.com/rohmanhakim/ssr-renderer/pkg/timeutil"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// persistent
	cfgFile    string
	verbose    bool
	safe       bool
	logLevel   string
	prettyLogs bool

	// browser and render
	headful    bool
	noFilter   bool
	noSandbox  bool
	binPath    string
	timeout    time.Duration
	domTargets []string
	waitUntil  []string

	// serve
	addr  string
	rps   float64
	burst int
)

var newEngine = func() browser.Engine {
	return browser.NewRodEngine()
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ssr",
	Short: "Render JavaScript-driven pages to static HTML with a headless browser.",
	Long: `ssr loads a page in headless Chromium, waits until it has settled and
the DOM elements you care about exist, and returns the serialized HTML.

Use "ssr render URL" for one-off renders and "ssr serve" to run an HTTP
rendering service with an in-memory page cache.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/ssr.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&safe, "safe", false, "fail on invalid settings and lifecycle misuse instead of correcting them")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn, error or disabled")
	rootCmd.PersistentFlags().BoolVar(&prettyLogs, "pretty", false, "human-readable logs instead of JSON")

	rootCmd.PersistentFlags().BoolVar(&headful, "headful", false, "show the browser window")
	rootCmd.PersistentFlags().BoolVar(&noFilter, "no-filter", false, "load stylesheets, images, media, fonts and manifests too")
	rootCmd.PersistentFlags().BoolVar(&noSandbox, "no-sandbox", false, "disable the Chromium sandbox (containers running as root)")
	rootCmd.PersistentFlags().StringVar(&binPath, "browser-bin", "", "browser executable; found or downloaded automatically when empty")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "navigation and selector timeout per render")
	rootCmd.PersistentFlags().StringArrayVar(&domTargets, "dom-target", []string{}, "CSS selector that must exist before the page is captured (can be repeated, awaited in order)")
	rootCmd.PersistentFlags().StringArrayVar(&waitUntil, "wait-until", []string{}, "load, domcontentloaded, networkidle0 or networkidle2 (can be repeated)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// InitConfigWithError builds the application config from the config file, if
// any, with command-line flags applied on top.
func InitConfigWithError() (config.Config, error) {
	var builder *config.Config
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("error initializing config from file: %w", err)
		}
		builder = &cfg
	} else {
		builder = config.WithDefault()
	}

	if verbose {
		builder = builder.WithVerbose(true)
	}
	if safe {
		builder = builder.WithSafe(true)
	}
	if logLevel != "" {
		builder = builder.WithLogLevel(logLevel)
	}
	if prettyLogs {
		builder = builder.WithPrettyLogs(true)
	}

	engine := builder.Engine()
	if headful {
		engine.WithHeadless(false)
	}
	if noFilter {
		engine.WithFilterRequests(false)
	}
	if noSandbox {
		engine.WithNoSandbox(true)
	}
	if binPath != "" {
		engine.WithBinPath(binPath)
	}
	builder = builder.WithEngine(engine)

	render := builder.Render()
	if timeout != 0 {
		render.WithTimeout(timeout)
	}
	if len(domTargets) > 0 {
		render.WithDomTargets(domTargets...)
	}
	if len(waitUntil) > 0 {
		conditions := make([]browser.WaitCondition, 0, len(waitUntil))
		for _, w := range waitUntil {
			conditions = append(conditions, browser.WaitCondition(w))
		}
		render.WithWaitUntil(conditions...)
	}
	builder = builder.WithRender(render)

	if addr != "" {
		builder = builder.WithServerAddr(addr)
	}
	if rps != 0 {
		builder = builder.WithServerRPS(rps)
	}
	if burst != 0 {
		builder = builder.WithServerBurst(burst)
	}

	return builder.Build()
}

func setupLogger(cfg config.Config, out io.Writer) zerolog.Logger {
	return logging.Setup(logging.Config{
		Level:  logging.LevelFor(cfg.Verbose(), cfg.LogLevel()),
		Pretty: cfg.PrettyLogs(),
		Output: out,
	})
}

func newRenderer(cfg config.Config, logger zerolog.Logger) *renderer.Renderer {
	rendererLogger := logger.With().Str("component", "renderer").Logger()
	recorder := metadata.NewRecorder(rendererLogger)
	return renderer.NewRenderer(
		newEngine(),
		cache.NewMemoryStore(),
		&recorder,
		renderer.WithLogger(rendererLogger),
		renderer.WithStrict(cfg.Safe()),
		renderer.WithDefaultEngineConfig(cfg.Engine()),
	)
}

func ResetFlags() {
	cfgFile = ""
	verbose = false
	safe = false
	logLevel = ""
	prettyLogs = false
	headful = false
	noFilter = false
	noSandbox = false
	binPath = ""
	timeout = 0
	domTargets = []string{}
	waitUntil = []string{}
	addr = ""
	rps = 0
	burst = 0
	selectQuery = ""
	format = ""
	retries = 0
	outputPath = ""
	renderBackoff = timeutil.NewBackoffParam(500*time.Millisecond, 2.0, 5*time.Second)
	renderJitter = 200 * time.Millisecond
	newEngine = func() browser.Engine {
		return browser.NewRodEngine()
	}
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetVerboseForTest(v bool) {
	verbose = v
}

func SetSafeForTest(s bool) {
	safe = s
}

func SetLogLevelForTest(level string) {
	logLevel = level
}

func SetHeadfulForTest(h bool) {
	headful = h
}

func SetNoFilterForTest(n bool) {
	noFilter = n
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetDomTargetsForTest(targets []string) {
	domTargets = targets
}

func SetWaitUntilForTest(conditions []string) {
	waitUntil = conditions
}

func SetAddrForTest(a string) {
	addr = a
}

func SetRateLimitForTest(r float64, b int) {
	rps = r
	burst = b
}

func SetRetriesForTest(n int) {
	retries = n
}

// SetRenderBackoffForTest removes the delay between render attempts.
func SetRenderBackoffForTest() {
	renderBackoff = timeutil.NewBackoffParam(time.Millisecond, 1.0, time.Millisecond)
	renderJitter = 0
}

func SetEngineForTest(engine browser.Engine) {
	newEngine = func() browser.Engine {
		return engine
	}
}

// ExecuteForTest runs the root command with args, capturing its output.
func ExecuteForTest(args []string, stdout, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()
	return rootCmd.Execute()
}
