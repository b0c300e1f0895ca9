// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package floorplan

import (
	"errors"
	"fmt"
)

// Code classifies the errors returned by Optimize and the validators.
type Code string

const (
	// CodeInvariant reports inconsistent input or an internal fault.
	CodeInvariant Code = "INVARIANT_VIOLATION"
	// CodeComputation reports degenerate geometry or a non-finite loss.
	CodeComputation Code = "COMPUTATION_FAULT"
	// CodeObserver reports an observer that failed; the run is aborted.
	CodeObserver Code = "OBSERVER_FAILURE"
)

// Error carries a Code along with the message and, for wrapped failures,
// the error that caused it.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (c Code) errorf(format string, args ...any) *Error {
	return c.wrap(nil, format, args...)
}

func (c Code) wrap(cause error, format string, args ...any) *Error {
	return &Error{Code: c, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCode returns the code of the first *Error in err's chain, or "" if
// there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}
