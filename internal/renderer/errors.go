package renderer

import (
	"strings"

	"github.com/rohmanhakim/ssr-renderer/internal/metadata"
	"github.com/rohmanhakim/ssr-renderer/pkg/failure"
)

type RenderErrorCause string

const (
	ErrCauseInvalidURL        RenderErrorCause = "invalid url"
	ErrCauseAlreadyStarted    RenderErrorCause = "already started"
	ErrCauseNotStarted        RenderErrorCause = "not started"
	ErrCauseBusy              RenderErrorCause = "busy"
	ErrCauseLaunchFailure     RenderErrorCause = "browser launch failed"
	ErrCausePageOpenFailure   RenderErrorCause = "page open failed"
	ErrCauseNavigationTimeout RenderErrorCause = "navigation timeout"
	ErrCauseNavigationFailure RenderErrorCause = "navigation failed"
	ErrCauseSelectorTimeout   RenderErrorCause = "selector timeout"
	ErrCauseSelectorFailure   RenderErrorCause = "selector wait failed"
	ErrCauseContentExtraction RenderErrorCause = "content extraction failed"
	ErrCauseCloseFailure      RenderErrorCause = "browser close failed"
)

// Sentinels for errors.Is. A RenderError matches any sentinel with the same cause.
var (
	ErrInvalidURL     = &RenderError{Cause: ErrCauseInvalidURL}
	ErrAlreadyStarted = &RenderError{Cause: ErrCauseAlreadyStarted}
	ErrNotStarted     = &RenderError{Cause: ErrCauseNotStarted}
	ErrBusy           = &RenderError{Cause: ErrCauseBusy}
)

type RenderError struct {
	Message   string
	Retryable bool
	Cause     RenderErrorCause
	URL       string
	Selector  string
	// Err is the underlying engine or context error, if any.
	Err error
}

func (e *RenderError) Error() string {
	var b strings.Builder
	b.WriteString("renderer error: ")
	b.WriteString(string(e.Cause))
	if e.URL != "" {
		b.WriteString(" (url ")
		b.WriteString(e.URL)
		b.WriteString(")")
	}
	if e.Selector != "" {
		b.WriteString(" (selector ")
		b.WriteString(e.Selector)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func (e *RenderError) Is(target error) bool {
	t, ok := target.(*RenderError)
	if !ok {
		return false
	}
	return t.Cause == e.Cause
}

func (e *RenderError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *RenderError) IsRetryable() bool {
	return e.Retryable
}

// mapRenderErrorToMetadataCause is observational only.
func mapRenderErrorToMetadataCause(err *RenderError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseInvalidURL:
		return metadata.CauseInvalidInput
	case ErrCauseAlreadyStarted, ErrCauseNotStarted, ErrCauseBusy:
		return metadata.CauseLifecycleMisuse
	case ErrCauseLaunchFailure, ErrCausePageOpenFailure, ErrCauseSelectorFailure, ErrCauseCloseFailure:
		return metadata.CauseBrowserFailure
	case ErrCauseNavigationTimeout, ErrCauseSelectorTimeout:
		return metadata.CauseTimeout
	case ErrCauseNavigationFailure:
		return metadata.CauseNetworkFailure
	case ErrCauseContentExtraction:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
