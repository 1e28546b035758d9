package renderer

import (
	"time"

	"github.com/rohmanhakim/ssr-renderer/internal/config"
)

type State int

const (
	Stopped State = iota
	Started
)

func (s State) String() string {
	switch s {
	case Started:
		return "started"
	default:
		return "stopped"
	}
}

type Result struct {
	url           string
	html          string
	cached        bool
	renderingTime time.Duration
	sessionID     string
}

func (r Result) URL() string {
	return r.url
}

func (r Result) HTML() string {
	return r.html
}

// Cached reports whether the HTML came from the cache without touching the browser.
func (r Result) Cached() bool {
	return r.cached
}

// RenderingTime is zero for cached results.
func (r Result) RenderingTime() time.Duration {
	return r.renderingTime
}

func (r Result) SessionID() string {
	return r.sessionID
}

func NewResultForTest(url, html string, cached bool, renderingTime time.Duration, sessionID string) Result {
	return Result{
		url:           url,
		html:          html,
		cached:        cached,
		renderingTime: renderingTime,
		sessionID:     sessionID,
	}
}

// Session is the working state of one Render call.
type Session struct {
	id         string
	url        string
	config     config.RenderConfig
	startedAt  time.Time
	finishedAt time.Time
}

func (s Session) ID() string {
	return s.id
}

func (s Session) URL() string {
	return s.url
}

func (s Session) Config() config.RenderConfig {
	return s.config
}

func (s Session) StartedAt() time.Time {
	return s.startedAt
}

func (s Session) FinishedAt() time.Time {
	return s.finishedAt
}

func (s Session) RenderingTime() time.Duration {
	if s.finishedAt.IsZero() {
		return 0
	}
	return s.finishedAt.Sub(s.startedAt)
}
