package postprocess

import (
	"fmt"

	"github.com/rohmanhakim/ssr-renderer/pkg/failure"
)

type ProcessErrorCause string

const (
	ErrCauseParseFailure      ProcessErrorCause = "html parse failed"
	ErrCauseNoMatch           ProcessErrorCause = "selector matched nothing"
	ErrCauseConversionFailure ProcessErrorCause = "conversion failed"
	ErrCauseUnknownFormat     ProcessErrorCause = "unknown output format"
)

type ProcessError struct {
	Message   string
	Retryable bool
	Cause     ProcessErrorCause
}

func (e *ProcessError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("postprocess error: %s", e.Cause)
	}
	return fmt.Sprintf("postprocess error: %s: %s", e.Cause, e.Message)
}

func (e *ProcessError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *ProcessError) IsRetryable() bool {
	return e.Retryable
}
