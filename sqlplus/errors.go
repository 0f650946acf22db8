package sqlplus

import (
	"errors"
	"fmt"
)

var (
	// ErrInvocation classifies failures reported by a non-zero sqlplus exit.
	ErrInvocation = errors.New("sqlplus exited with an error")

	// ErrDetected classifies failures found as markers in the output of a
	// process that exited successfully.
	ErrDetected = errors.New("sqlplus output contains an error")

	// ErrMissingConfiguration is returned by NewClient when connection
	// settings are incomplete.
	ErrMissingConfiguration = errors.New("missing database configuration")
)

// Error is the diagnostic of a failed invocation.
type Error struct {
	Message string
	// Command echoes the text sent to sqlplus, when known.
	Command string
	// Raised is true when sqlplus itself reported the failure through its
	// exit status, false when the failure was detected in its output.
	Raised     bool
	ExitStatus int
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Raised && msg == "" {
		msg = fmt.Sprintf("exit status %d", e.ExitStatus)
	}
	if e.Command != "" {
		return fmt.Sprintf("%s\ncommand: %s", msg, e.Command)
	}
	return msg
}

// Unwrap lets errors.Is match ErrInvocation or ErrDetected.
func (e *Error) Unwrap() error {
	if e.Raised {
		return ErrInvocation
	}
	return ErrDetected
}
