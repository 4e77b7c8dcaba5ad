package game

import (
	"errors"
	"fmt"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrMapNotFound  = errors.New("map not found")
	ErrNotLive      = errors.New("game is not live")
)

// ConfigError reports a layout or plugin configuration that cannot be used.
// Path names the offending file.
type ConfigError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := "faulty configuration"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(path string, format string, args ...any) *ConfigError {
	return &ConfigError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
