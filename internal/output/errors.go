package output

import (
	"errors"
	"fmt"

	"github.com/semmy-space/codex/internal/config"
)

// Exit codes. Every failure maps to ExitGeneral; exec passes the child's
// code through instead.
const (
	ExitOK      = 0 // Success
	ExitGeneral = 1 // Any error
)

// Kind classifies a CLIError
type Kind int

const (
	KindGeneral    Kind = iota
	KindValidation      // Bad flags, missing values, unknown commands
	KindIO              // Filesystem or secret store failure
	KindParse           // Malformed config file
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	default:
		return "general"
	}
}

// CLIError represents a structured error with exit code and optional hint
type CLIError struct {
	ExitCode int
	Kind     Kind
	Message  string
	Hint     string
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// NewCLIError creates a new CLIError
func NewCLIError(code int, msg string) *CLIError {
	return &CLIError{
		ExitCode: code,
		Message:  msg,
	}
}

// Validation creates a user-facing usage error
func Validation(format string, args ...any) *CLIError {
	return &CLIError{
		ExitCode: ExitGeneral,
		Kind:     KindValidation,
		Message:  fmt.Sprintf(format, args...),
	}
}

// ExitStatus carries a non-zero exit code without printing anything
func ExitStatus(code int) *CLIError {
	return &CLIError{ExitCode: code}
}

// WithHint adds a user-facing hint to the error
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// Classify converts any error into a CLIError, keeping existing ones as-is
func Classify(err error) *CLIError {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	kind := KindGeneral
	var ioErr *config.IOError
	var parseErr *config.ParseError
	switch {
	case errors.As(err, &parseErr):
		kind = KindParse
	case errors.As(err, &ioErr):
		kind = KindIO
	}

	return &CLIError{
		ExitCode: ExitGeneral,
		Kind:     kind,
		Message:  err.Error(),
	}
}

// ExitWithError prints the error and hint via the formatter and returns the
// exit code to use. Errors with an empty message only carry a code.
func ExitWithError(formatter Formatter, err error) int {
	cliErr := Classify(err)
	if cliErr.Message != "" {
		formatter.PrintError(cliErr)
	}
	if cliErr.Hint != "" {
		formatter.PrintHint(cliErr.Hint)
	}
	return cliErr.ExitCode
}
