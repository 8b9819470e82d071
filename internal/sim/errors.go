package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every *ConfigError.
	ErrInvalidConfig = errors.New("sim: invalid config")

	// ErrAlreadyTerminated is returned by Step once the run has passed its
	// simulation time. The state is left untouched.
	ErrAlreadyTerminated = errors.New("sim: simulation already terminated")
)

// ConfigError names the offending field and value.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sim: invalid config %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func configErr(field string, value any, reason string) error {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}
