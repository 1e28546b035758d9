package metadata

import (
	"time"
)

type RenderEvent struct {
	renderUrl     string
	sessionID     string
	renderingTime time.Duration
	cached        bool
	htmlBytes     int
}

func NewRenderEvent(renderUrl, sessionID string, renderingTime time.Duration, cached bool, htmlBytes int) RenderEvent {
	return RenderEvent{
		renderUrl:     renderUrl,
		sessionID:     sessionID,
		renderingTime: renderingTime,
		cached:        cached,
		htmlBytes:     htmlBytes,
	}
}

func (e RenderEvent) URL() string {
	return e.renderUrl
}

func (e RenderEvent) SessionID() string {
	return e.sessionID
}

func (e RenderEvent) RenderingTime() time.Duration {
	return e.renderingTime
}

func (e RenderEvent) Cached() bool {
	return e.cached
}

func (e RenderEvent) HTMLBytes() int {
	return e.htmlBytes
}

/*
ErrorCause is a closed classification used only for observability.

Packages map their local errors onto it. It never drives retry or
lifecycle decisions; those come from the package errors themselves.
If a failure does not clearly match a defined cause, CauseUnknown is used.

# CauseNetworkFailure
  - navigation failed at the transport level (DNS, refused connection, TLS)

# CauseTimeout
  - navigation or a selector wait did not finish within the render timeout

# CauseContentInvalid
  - the page loaded but its document could not be serialized

# CauseBrowserFailure
  - the browser process could not be launched, a page could not be opened
    or closed

# CauseLifecycleMisuse
  - start while started, render or stop while stopped, stop while busy

# CauseInvalidInput
  - malformed URL or render config
*/
type ErrorCause int

const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseTimeout
	CauseContentInvalid
	CauseBrowserFailure
	CauseLifecycleMisuse
	CauseInvalidInput
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseTimeout:
		return "timeout"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseBrowserFailure:
		return "browser_failure"
	case CauseLifecycleMisuse:
		return "lifecycle_misuse"
	case CauseInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL      AttributeKey = "url"
	AttrHost     AttributeKey = "host"
	AttrSession  AttributeKey = "session"
	AttrSelector AttributeKey = "selector"
	AttrField    AttributeKey = "field"
	AttrState    AttributeKey = "state"
)
