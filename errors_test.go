// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package floorplan

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"without cause", CodeInvariant.errorf("bad %s", "input"), "INVARIANT_VIOLATION: bad input"},
		{"with cause", CodeComputation.wrap(errors.New("boom"), "tessellation"),
			"COMPUTATION_FAULT: tessellation: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("run: %w", CodeObserver.wrap(cause, "observer failed"))

	if !Is(err, CodeObserver) {
		t.Errorf("Is(err, CodeObserver) = false, want true")
	}
	if Is(err, CodeComputation) {
		t.Errorf("Is(err, CodeComputation) = true, want false")
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
	if Is(cause, CodeObserver) {
		t.Errorf("Is(plain error, CodeObserver) = true, want false")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(CodeComputation.errorf("x")); got != CodeComputation {
		t.Errorf("GetCode(...) = %q, want %q", got, CodeComputation)
	}
	if got := GetCode(errors.New("x")); got != "" {
		t.Errorf("GetCode(plain error) = %q, want empty", got)
	}
	if Is(nil, "") {
		t.Errorf("Is(nil, \"\") = true, want false")
	}
}
