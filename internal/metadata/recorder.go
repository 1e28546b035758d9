package metadata

import (
	"time"

	"github.com/rs/zerolog"
)

/*
Metadata is write-only. No component reads it back to make decisions.

Recorder turns render and error events into structured log lines.
Events from one goroutine are written in order; there is no global ordering
across concurrent renders.
*/
type Recorder struct {
	logger zerolog.Logger
}

func NewRecorder(logger zerolog.Logger) Recorder {
	return Recorder{
		logger: logger,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	evt := r.logger.Error().
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Stringer("cause", cause)
	for _, a := range attrs {
		evt = evt.Str(string(a.Key), a.Value)
	}
	evt.Msg(details)
}

func (r *Recorder) RecordRender(event RenderEvent) {
	r.logger.Debug().
		Str(string(AttrURL), event.URL()).
		Str(string(AttrSession), event.SessionID()).
		Dur("duration", event.RenderingTime()).
		Bool("cached", event.Cached()).
		Int("bytes", event.HTMLBytes()).
		Msg("render completed")
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordRender(event RenderEvent)
}

// NoopSink implements MetadataSink and discards everything.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordRender(event RenderEvent) {}
