package renderer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rohmanhakim/ssr-renderer/internal/browser"
	"github.com/rohmanhakim/ssr-renderer/internal/cache"
	"github.com/rohmanhakim/ssr-renderer/internal/config"
	"github.com/rohmanhakim/ssr-renderer/internal/metadata"
	"github.com/rohmanhakim/ssr-renderer/pkg/urlutil"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

/*
Responsibilities

- Own the browser lifecycle (Stopped -> Started -> Stopped)
- Serve cached HTML when the caller asks for caching
- Render everything else in a fresh page of the shared browser
- Populate the cache after a successful render

Render Semantics

- A cache hit never touches the browser, so it works while Stopped
- Every opened page is closed, on failure paths too
- Selectors are awaited one after another, each within the render timeout
- Nothing is retried here; retrying is the caller's decision

Renders run concurrently, each in its own page. Stop waits for them to
finish before closing the browser.
*/
type Renderer struct {
	engine        browser.Engine
	store         cache.Store
	metadataSink  metadata.MetadataSink
	logger        zerolog.Logger
	strict        bool
	defaultEngine config.EngineConfig
	now           func() time.Time
	newID         func() string

	mu        sync.Mutex
	state     State
	handle    browser.Handle
	engineCfg config.EngineConfig
	inflight  int
	stopping  bool
	drained   chan struct{}

	group singleflight.Group
}

type Option func(*Renderer)

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithStrict turns lifecycle misuse and invalid configs into errors instead
// of warnings.
func WithStrict(strict bool) Option {
	return func(r *Renderer) {
		r.strict = strict
	}
}

// WithDefaultEngineConfig sets the config used when Render has to start the
// browser implicitly.
func WithDefaultEngineConfig(cfg config.EngineConfig) Option {
	return func(r *Renderer) {
		r.defaultEngine = cfg
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(r *Renderer) {
		r.newID = newID
	}
}

func NewRenderer(
	engine browser.Engine,
	store cache.Store,
	metadataSink metadata.MetadataSink,
	opts ...Option,
) *Renderer {
	r := &Renderer{
		engine:        engine,
		store:         store,
		metadataSink:  metadataSink,
		logger:        zerolog.Nop(),
		defaultEngine: config.DefaultEngineConfig(),
		now:           time.Now,
		newID:         uuid.NewString,
		state:         Stopped,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Cache exposes the store for inspection and administration.
func (r *Renderer) Cache() cache.Store {
	return r.store
}

func (r *Renderer) Start(ctx context.Context, cfg config.EngineConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Started {
		err := &RenderError{
			Message:   "call Stop before starting again",
			Retryable: false,
			Cause:     ErrCauseAlreadyStarted,
		}
		r.recordError("Renderer.Start", err)
		return err
	}

	if err := r.startLocked(ctx, cfg); err != nil {
		r.recordError("Renderer.Start", err)
		return err
	}
	return nil
}

func (r *Renderer) startLocked(ctx context.Context, cfg config.EngineConfig) error {
	cfg, err := r.resolveEngineConfig(cfg)
	if err != nil {
		return err
	}

	handle, launchErr := r.engine.Launch(ctx, cfg.LaunchParam())
	if launchErr != nil {
		return &RenderError{
			Retryable: true,
			Cause:     ErrCauseLaunchFailure,
			Err:       launchErr,
		}
	}

	r.handle = handle
	r.engineCfg = cfg
	r.state = Started
	BrowserRunning.Set(1)

	r.logger.Info().
		Bool("headless", cfg.Headless()).
		Bool("filter_requests", cfg.FilterRequests()).
		Msg("browser started")
	return nil
}

// Stop waits for in-flight renders, closes the browser and empties the cache.
// If ctx ends before the renders drain, Stop returns ErrBusy and the renderer
// stays Started.
func (r *Renderer) Stop(ctx context.Context) error {
	r.mu.Lock()

	if r.state == Stopped {
		r.mu.Unlock()
		if r.strict {
			err := &RenderError{Message: "nothing to stop", Cause: ErrCauseNotStarted}
			r.recordError("Renderer.Stop", err)
			return err
		}
		r.logger.Warn().Msg("stop called on a stopped renderer")
		return nil
	}

	if r.stopping {
		r.mu.Unlock()
		return &RenderError{Message: "another stop is in progress", Retryable: true, Cause: ErrCauseBusy}
	}

	if r.inflight > 0 {
		r.stopping = true
		drained := make(chan struct{})
		r.drained = drained
		pending := r.inflight
		r.mu.Unlock()

		r.logger.Info().Int("inflight", pending).Msg("waiting for renders to finish")

		select {
		case <-drained:
			r.mu.Lock()
			r.stopping = false
		case <-ctx.Done():
			r.mu.Lock()
			r.stopping = false
			r.drained = nil
			r.mu.Unlock()
			err := &RenderError{
				Message:   "renders still in flight",
				Retryable: true,
				Cause:     ErrCauseBusy,
				Err:       ctx.Err(),
			}
			r.recordError("Renderer.Stop", err)
			return err
		}
	}
	defer r.mu.Unlock()

	handle := r.handle
	r.handle = nil
	r.state = Stopped
	r.store.Reset()
	BrowserRunning.Set(0)

	if err := handle.Close(); err != nil {
		renderErr := &RenderError{Cause: ErrCauseCloseFailure, Err: err}
		r.recordError("Renderer.Stop", renderErr)
		return renderErr
	}

	r.logger.Info().Msg("browser stopped")
	return nil
}

func (r *Renderer) Render(ctx context.Context, rawURL string, cfg config.RenderConfig) (Result, error) {
	if _, err := urlutil.ParseRenderURL(rawURL); err != nil {
		renderErr := &RenderError{
			Message: fmt.Sprintf("%q", rawURL),
			Cause:   ErrCauseInvalidURL,
			Err:     err,
		}
		r.fail("Renderer.Render", renderErr)
		return Result{}, renderErr
	}

	cfg, err := r.resolveRenderConfig(cfg)
	if err != nil {
		r.fail("Renderer.Render", err)
		return Result{}, err
	}

	if !cfg.Cache() {
		return r.render(ctx, rawURL, cfg)
	}

	r.store.Clean()
	if result, ok := r.lookup(rawURL); ok {
		return result, nil
	}

	// concurrent misses with the same URL and render settings share one
	// render; it runs detached so one caller leaving does not fail the rest
	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(flightKey(rawURL, cfg), func() (any, error) {
		if result, ok := r.lookup(rawURL); ok {
			return result, nil
		}
		result, err := r.render(detached, rawURL, cfg)
		if err != nil {
			return Result{}, err
		}
		if saveErr := r.store.Save(rawURL, result.html, cfg.CacheTTL()); saveErr != nil {
			r.logger.Warn().Err(saveErr).Str("url", rawURL).Msg("rendered page not cached")
		}
		return result, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			r.logger.Debug().Str("url", rawURL).Msg("joined an in-flight render")
		}
		return res.Val.(Result), res.Err
	case <-ctx.Done():
		renderErr := abandoned(rawURL, ctx.Err())
		r.fail("Renderer.Render", renderErr)
		return Result{}, renderErr
	}
}

// flightKey identifies renders that may share one page load.
func flightKey(rawURL string, cfg config.RenderConfig) string {
	waits := make([]string, 0, len(cfg.WaitUntil()))
	for _, w := range cfg.WaitUntil() {
		waits = append(waits, string(w))
	}
	return strings.Join([]string{
		rawURL,
		cfg.Timeout().String(),
		cfg.CacheTTL().String(),
		strings.Join(waits, ","),
		strings.Join(cfg.DomTargets(), "\x1f"),
	}, "\x00")
}

// abandoned reports a caller whose context ended while a shared render was running.
func abandoned(rawURL string, ctxErr error) *RenderError {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return &RenderError{
			Message:   "caller deadline passed before the render finished",
			Retryable: true,
			Cause:     ErrCauseNavigationTimeout,
			URL:       rawURL,
			Err:       ctxErr,
		}
	}
	return &RenderError{
		Message: "caller left before the render finished",
		Cause:   ErrCauseNavigationFailure,
		URL:     rawURL,
		Err:     ctxErr,
	}
}

func (r *Renderer) lookup(rawURL string) (Result, bool) {
	entry, ok := r.store.Get(rawURL)
	if !ok {
		return Result{}, false
	}
	result := Result{
		url:       rawURL,
		html:      entry.HTML(),
		cached:    true,
		sessionID: r.newID(),
	}
	RendersTotal.WithLabelValues(resultCached).Inc()
	r.metadataSink.RecordRender(metadata.NewRenderEvent(rawURL, result.sessionID, 0, true, len(result.html)))
	r.logger.Debug().Str("url", rawURL).Msg("cache hit")
	return result, true
}

func (r *Renderer) render(ctx context.Context, rawURL string, cfg config.RenderConfig) (Result, error) {
	handle, engineCfg, release, err := r.acquire(ctx)
	if err != nil {
		r.fail("Renderer.Render", err)
		return Result{}, err
	}
	defer release()

	session := Session{
		id:        r.newID(),
		url:       rawURL,
		config:    cfg,
		startedAt: r.now(),
	}

	html, renderErr := r.renderPage(ctx, handle, engineCfg, session)
	if renderErr != nil {
		r.fail("Renderer.Render", renderErr)
		return Result{}, renderErr
	}

	session.finishedAt = r.now()
	result := Result{
		url:           rawURL,
		html:          html,
		cached:        false,
		renderingTime: session.RenderingTime(),
		sessionID:     session.id,
	}

	RendersTotal.WithLabelValues(resultRendered).Inc()
	RenderDuration.Observe(result.renderingTime.Seconds())
	r.metadataSink.RecordRender(metadata.NewRenderEvent(rawURL, session.id, result.renderingTime, false, len(html)))
	return result, nil
}

func (r *Renderer) renderPage(
	ctx context.Context,
	handle browser.Handle,
	engineCfg config.EngineConfig,
	session Session,
) (html string, err *RenderError) {
	cfg := session.config
	log := r.logger.With().Str("url", session.url).Str("session", session.id).Logger()

	openCtx, cancelOpen := context.WithTimeout(ctx, cfg.Timeout())
	page, openErr := handle.NewPage(openCtx)
	cancelOpen()
	if openErr != nil {
		return "", &RenderError{
			Retryable: true,
			Cause:     ErrCausePageOpenFailure,
			URL:       session.url,
			Err:       openErr,
		}
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("page close failed")
		}
	}()

	if engineCfg.FilterRequests() {
		if filterErr := page.BlockResources(engineCfg.BlockedResources()); filterErr != nil {
			return "", &RenderError{
				Message:   "request filtering could not be enabled",
				Retryable: true,
				Cause:     ErrCausePageOpenFailure,
				URL:       session.url,
				Err:       filterErr,
			}
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	navErr := page.Navigate(navCtx, session.url, cfg.WaitUntil())
	cancel()
	if navErr != nil {
		if isTimeout(navErr) {
			return "", &RenderError{
				Message:   fmt.Sprintf("no %v within %s", cfg.WaitUntil(), cfg.Timeout()),
				Retryable: true,
				Cause:     ErrCauseNavigationTimeout,
				URL:       session.url,
				Err:       navErr,
			}
		}
		return "", &RenderError{
			Retryable: !errors.Is(navErr, context.Canceled),
			Cause:     ErrCauseNavigationFailure,
			URL:       session.url,
			Err:       navErr,
		}
	}
	log.Debug().Msg("navigation finished")

	for _, selector := range cfg.DomTargets() {
		selCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
		selErr := page.WaitForSelector(selCtx, selector)
		cancel()
		if selErr != nil {
			if isTimeout(selErr) {
				return "", &RenderError{
					Message:   fmt.Sprintf("not found within %s", cfg.Timeout()),
					Retryable: true,
					Cause:     ErrCauseSelectorTimeout,
					URL:       session.url,
					Selector:  selector,
					Err:       selErr,
				}
			}
			return "", &RenderError{
				Cause:    ErrCauseSelectorFailure,
				URL:      session.url,
				Selector: selector,
				Err:      selErr,
			}
		}
		log.Debug().Str("selector", selector).Msg("selector matched")
	}

	contentCtx, cancelContent := context.WithTimeout(ctx, cfg.Timeout())
	content, contentErr := page.Content(contentCtx)
	cancelContent()
	if contentErr != nil {
		return "", &RenderError{
			Cause: ErrCauseContentExtraction,
			URL:   session.url,
			Err:   contentErr,
		}
	}
	return content, nil
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// acquire takes a reference on the running browser, starting it first in
// permissive mode. The returned release must be called exactly once.
func (r *Renderer) acquire(ctx context.Context) (browser.Handle, config.EngineConfig, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopping {
		return nil, config.EngineConfig{}, nil, &RenderError{
			Message:   "renderer is stopping",
			Retryable: true,
			Cause:     ErrCauseBusy,
		}
	}

	if r.state == Stopped {
		if r.strict {
			return nil, config.EngineConfig{}, nil, &RenderError{
				Message: "call Start before Render",
				Cause:   ErrCauseNotStarted,
			}
		}
		r.logger.Warn().Msg("renderer not started, starting browser with default engine config")
		if err := r.startLocked(ctx, r.defaultEngine); err != nil {
			return nil, config.EngineConfig{}, nil, err
		}
	}

	r.inflight++
	var once sync.Once
	release := func() {
		once.Do(r.release)
	}
	return r.handle, r.engineCfg, release, nil
}

func (r *Renderer) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight--
	if r.inflight == 0 && r.drained != nil {
		close(r.drained)
		r.drained = nil
	}
}

func (r *Renderer) resolveEngineConfig(cfg config.EngineConfig) (config.EngineConfig, error) {
	if r.strict {
		if err := cfg.Validate(); err != nil {
			return config.EngineConfig{}, err
		}
		return cfg, nil
	}
	fixed, corrections := cfg.Normalize()
	for _, c := range corrections {
		r.logger.Warn().Str("field", c.Field).Msg(c.Message)
	}
	return fixed, nil
}

func (r *Renderer) resolveRenderConfig(cfg config.RenderConfig) (config.RenderConfig, error) {
	if r.strict {
		if err := cfg.Validate(); err != nil {
			return config.RenderConfig{}, err
		}
		return cfg, nil
	}
	fixed, corrections := cfg.Normalize()
	for _, c := range corrections {
		r.logger.Warn().Str("field", c.Field).Msg(c.Message)
	}
	return fixed, nil
}

func (r *Renderer) fail(action string, err error) {
	RendersTotal.WithLabelValues(resultError).Inc()
	r.recordError(action, err)
}

func (r *Renderer) recordError(action string, err error) {
	var (
		cause     metadata.ErrorCause
		attrs     []metadata.Attribute
		renderErr *RenderError
		cfgErr    *config.ConfigError
	)

	switch {
	case errors.As(err, &renderErr):
		cause = mapRenderErrorToMetadataCause(renderErr)
		if renderErr.URL != "" {
			attrs = append(attrs,
				metadata.NewAttr(metadata.AttrURL, renderErr.URL),
				metadata.NewAttr(metadata.AttrHost, urlutil.Host(renderErr.URL)),
			)
		}
		if renderErr.Selector != "" {
			attrs = append(attrs, metadata.NewAttr(metadata.AttrSelector, renderErr.Selector))
		}
	case errors.As(err, &cfgErr):
		cause = metadata.CauseInvalidInput
		attrs = append(attrs, metadata.NewAttr(metadata.AttrField, cfgErr.Field))
	default:
		cause = metadata.CauseUnknown
	}

	r.metadataSink.RecordError(
		r.now(),
		"renderer",
		action,
		cause,
		err.Error(),
		attrs,
	)
}
