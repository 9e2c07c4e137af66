package main

import (
	"fmt"
	"strings"
	"time"
)

// ConfigurationError covers bad or missing run configuration: absent
// credentials, unknown library or area codes. Fatal, never retried.
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Msg)
}

func unknownCodeError(field, code string, valid []string) *ConfigurationError {
	return &ConfigurationError{
		Field: field,
		Msg:   fmt.Sprintf("unknown code %q (valid: %s)", code, strings.Join(valid, ", ")),
	}
}

// ControlNotFoundError means a wizard control never became present and
// visible within its bounded wait.
type ControlNotFoundError struct {
	Step     string
	Selector string
	Timeout  time.Duration
	Err      error
}

func (e *ControlNotFoundError) Error() string {
	return fmt.Sprintf("%s: control %q not found within %s: %v", e.Step, e.Selector, e.Timeout, e.Err)
}

func (e *ControlNotFoundError) Unwrap() error { return e.Err }

// DialogOpenError means a selection dialog never became visible after the
// click-retry ceiling was exhausted.
type DialogOpenError struct {
	Step     string
	Attempts int
}

func (e *DialogOpenError) Error() string {
	return fmt.Sprintf("%s: dialog did not open after %d attempts", e.Step, e.Attempts)
}

// VerificationError means a selection was made but the control did not
// reflect it afterwards. Not retried: the UI is in an unknown state and a
// second click could compound the damage.
type VerificationError struct {
	Step string
	Want string
	Got  string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: selection did not apply (want %q in %q)", e.Step, e.Want, e.Got)
}

// AuthenticationError means the login page never progressed after
// submitting credentials. The site gives no explicit failure signal for bad
// credentials, so this is inferred from the absence of navigation.
type AuthenticationError struct {
	Msg string
	Err error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication: %s: %v", e.Msg, e.Err)
	}
	return "authentication: " + e.Msg
}

func (e *AuthenticationError) Unwrap() error { return e.Err }
