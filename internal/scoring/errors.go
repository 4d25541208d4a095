package scoring

import "fmt"

// ConfigError represents an invalid rule table
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rule table error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rule table error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
