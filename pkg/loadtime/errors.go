package loadtime

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is matched by every *ConfigError.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ConfigError reports a Config rejected by New.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// Unwrap implements error unwrapping
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}
