package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rohmanhakim/ssr-renderer/internal/browser"
	"github.com/rohmanhakim/ssr-renderer/internal/cache"
	"github.com/rohmanhakim/ssr-renderer/internal/config"
	"github.com/rohmanhakim/ssr-renderer/internal/postprocess"
	"github.com/rohmanhakim/ssr-renderer/internal/renderer"
	"github.com/rohmanhakim/ssr-renderer/pkg/hashutil"
	"github.com/rs/zerolog"
)

/*
Endpoints

	GET    /render?url=&cache=&ttl=&timeout=&target=&wait=&format=&select=
	GET    /cache                list live entries
	GET    /cache/entry?url=     one entry with its HTML
	POST   /cache                {"url","html","ttl"} adds an entry
	DELETE /cache?url=           removes an entry
	POST   /cache/clean          sweeps expired entries
	POST   /cache/reset          removes everything
	GET    /health
	GET    /metrics

Durations in query strings and bodies are milliseconds. A ttl of 0 keeps the
entry forever.
*/

// Renderer is the part of renderer.Renderer the service uses.
type Renderer interface {
	Render(ctx context.Context, url string, cfg config.RenderConfig) (renderer.Result, error)
	Cache() cache.Store
	State() renderer.State
}

type Server struct {
	renderer Renderer
	defaults config.RenderConfig
	limiter  *Limiter
	logger   zerolog.Logger
	now      func() time.Time
}

func NewServer(r Renderer, defaults config.RenderConfig, limiter *Limiter, logger zerolog.Logger) *Server {
	return &Server{
		renderer: r,
		defaults: defaults,
		limiter:  limiter,
		logger:   logger,
		now:      time.Now,
	}
}

func New(addr string, s *Server) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /render", WithRateLimit(s.limiter)(http.HandlerFunc(s.handleRender)))
	mux.HandleFunc("GET /cache", s.handleListCache)
	mux.HandleFunc("GET /cache/entry", s.handleGetEntry)
	mux.HandleFunc("POST /cache", s.handleAddEntry)
	mux.HandleFunc("DELETE /cache", s.handleDeleteEntry)
	mux.HandleFunc("POST /cache/clean", s.handleClean)
	mux.HandleFunc("POST /cache/reset", s.handleReset)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return WithLogger(s.logger)(mux)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cfg, err := s.renderConfigFrom(q)
	if err != nil {
		s.respondRender(w, http.StatusBadRequest, err.Error())
		return
	}
	format, err := postprocess.ParseFormat(q.Get("format"))
	if err != nil {
		s.respondRender(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.renderer.Render(r.Context(), q.Get("url"), cfg)
	if err != nil {
		s.respondRender(w, statusForRenderError(err), err.Error())
		return
	}

	out, err := postprocess.Apply(result.HTML(), q.Get("select"), format)
	if err != nil {
		var procErr *postprocess.ProcessError
		if errors.As(err, &procErr) && procErr.Cause == postprocess.ErrCauseNoMatch {
			s.respondRender(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.respondRender(w, http.StatusInternalServerError, err.Error())
		return
	}

	etag := hashutil.ETag(hashutil.ContentDigest(out.Content()))
	h := w.Header()
	h.Set("ETag", etag)
	h.Set("X-SSR-Cached", strconv.FormatBool(result.Cached()))
	h.Set("X-SSR-Rendering-Time", strconv.FormatInt(result.RenderingTime().Milliseconds(), 10))
	h.Set("X-SSR-Session", result.SessionID())

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		RenderResponses.WithLabelValues(strconv.Itoa(http.StatusNotModified)).Inc()
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.Set("Content-Type", out.Format().ContentType())
	RenderResponses.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(out.Content())); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write render response")
	}
}

func (s *Server) respondRender(w http.ResponseWriter, status int, msg string) {
	RenderResponses.WithLabelValues(strconv.Itoa(status)).Inc()
	writeError(w, status, msg)
}

// renderConfigFrom overlays query parameters on the server defaults.
// Range checks are left to the renderer.
func (s *Server) renderConfigFrom(q map[string][]string) (config.RenderConfig, error) {
	cfg := s.defaults
	get := func(key string) string {
		if v := q[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	if v := get("cache"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return config.RenderConfig{}, errors.New("cache must be a boolean")
		}
		cfg.WithCache(enabled)
	}
	if v := get("ttl"); v != "" {
		ttl, err := parseMillis(v)
		if err != nil {
			return config.RenderConfig{}, fmt.Errorf("ttl %w", err)
		}
		cfg.WithCacheTTL(ttl)
	}
	if v := get("timeout"); v != "" {
		timeout, err := parseMillis(v)
		if err != nil {
			return config.RenderConfig{}, fmt.Errorf("timeout %w", err)
		}
		cfg.WithTimeout(timeout)
	}
	if targets := splitValues(q["target"]); len(targets) > 0 {
		cfg.WithDomTargets(targets...)
	}
	if waits := splitValues(q["wait"]); len(waits) > 0 {
		conditions := make([]browser.WaitCondition, 0, len(waits))
		for _, w := range waits {
			conditions = append(conditions, browser.WaitCondition(w))
		}
		cfg.WithWaitUntil(conditions...)
	}
	return cfg, nil
}

const maxMillis = math.MaxInt64 / int64(time.Millisecond)

var errBadMillis = errors.New("must be an integer number of milliseconds within range")

func parseMillis(v string) (time.Duration, error) {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errBadMillis
	}
	return millisDuration(ms)
}

func millisDuration(ms int64) (time.Duration, error) {
	if ms > maxMillis || ms < -maxMillis {
		return 0, errBadMillis
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// splitValues accepts repeated parameters and comma-separated lists.
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func statusForRenderError(err error) int {
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return http.StatusBadRequest
	}

	var renderErr *renderer.RenderError
	if !errors.As(err, &renderErr) {
		return http.StatusInternalServerError
	}
	switch renderErr.Cause {
	case renderer.ErrCauseInvalidURL:
		return http.StatusBadRequest
	case renderer.ErrCauseNotStarted, renderer.ErrCauseBusy:
		return http.StatusServiceUnavailable
	case renderer.ErrCauseNavigationTimeout, renderer.ErrCauseSelectorTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleListCache(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	entries := s.renderer.Cache().GetAll()

	out := make([]entryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, newEntryDTO(e, now, false))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("url")
	if key == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	entry, ok := s.renderer.Cache().Get(key)
	if !ok {
		writeError(w, http.StatusNotFound, "no live cache entry for "+key)
		return
	}
	writeJSON(w, http.StatusOK, newEntryDTO(entry, s.now(), true))
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	var req addEntryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 32<<20))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}

	ttl, err := millisDuration(req.TTL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ttl "+err.Error())
		return
	}
	if err := s.renderer.Cache().Save(req.URL, req.HTML, ttl); err != nil {
		var cacheErr *cache.CacheError
		if errors.As(err, &cacheErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entry, _ := s.renderer.Cache().Get(req.URL)
	writeJSON(w, http.StatusCreated, newEntryDTO(entry, s.now(), false))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("url")
	if key == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	s.renderer.Cache().Delete(key)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	removed := s.renderer.Cache().Clean()
	writeJSON(w, http.StatusOK, cleanResponse{Removed: removed})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.renderer.Cache().Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		Browser:      s.renderer.State().String(),
		CacheEntries: s.renderer.Cache().Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
