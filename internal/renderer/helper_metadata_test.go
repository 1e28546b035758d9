package renderer_test

import (
	"sync"
	"time"

	"github.com/rohmanhakim/ssr-renderer/internal/metadata"
)

type recordedError struct {
	action string
	cause  metadata.ErrorCause
	attrs  []metadata.Attribute
}

// sinkRecorder keeps every event so tests can assert on what was observed.
type sinkRecorder struct {
	mu      sync.Mutex
	errors  []recordedError
	renders []metadata.RenderEvent
}

func (s *sinkRecorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, recordedError{action: action, cause: cause, attrs: attrs})
}

func (s *sinkRecorder) RecordRender(event metadata.RenderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renders = append(s.renders, event)
}

func (s *sinkRecorder) Errors() []recordedError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedError(nil), s.errors...)
}

func (s *sinkRecorder) Renders() []metadata.RenderEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]metadata.RenderEvent(nil), s.renders...)
}
