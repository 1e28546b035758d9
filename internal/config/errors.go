package config

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/ssr-renderer/pkg/failure"
)

var ErrFileDoesNotExist = errors.New("config file does not exist")
var ErrReadConfigFail = errors.New("failed to read config file")
var ErrConfigParsingFail = errors.New("failed to parse config file")
var ErrInvalidConfig = errors.New("invalid config")

// ConfigError reports one invalid field. It unwraps to ErrInvalidConfig.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func (e *ConfigError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *ConfigError) IsRetryable() bool {
	return false
}

func invalid(field, format string, args ...any) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
