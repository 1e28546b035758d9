package failure

type Severity int

// caller control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// ClassifiedError is returned by every stage that can fail.
// Recoverable errors may be retried by the caller; nothing retries internally.
type ClassifiedError interface {
	error
	Severity() Severity
}

// IsRecoverable reports whether err is a ClassifiedError marked recoverable.
func IsRecoverable(err error) bool {
	ce, ok := err.(ClassifiedError)
	return ok && ce.Severity() == SeverityRecoverable
}
