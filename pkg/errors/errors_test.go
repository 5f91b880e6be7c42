package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNoStartingNode, "no starting node: %s", "root")

	if err.Code != ErrCodeNoStartingNode {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNoStartingNode)
	}

	if err.Message != "no starting node: root" {
		t.Errorf("Message = %v, want %v", err.Message, "no starting node: root")
	}

	expected := "NO_STARTING_NODE: no starting node: root"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("store offline")
	err := Wrap(ErrCodeChildLoad, cause, "load children of %s", "/1")

	if err.Code != ErrCodeChildLoad {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeChildLoad)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	expected := "CHILD_LOAD_FAILED: load children of /1: store offline"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeConnection, "test"),
			code:     ErrCodeConnection,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeConnection, "test"),
			code:     ErrCodeChildLoad,
			expected: false,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeChildLoad, New(ErrCodeNodeNotFound, "inner"), "outer"),
			code:     ErrCodeChildLoad,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("export: %w", New(ErrCodeSave, "disk full")),
			code:     ErrCodeSave,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidModel, "test"),
			expected: ErrCodeInvalidModel,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "Error with cause",
			err:      Wrap(ErrCodeConnection, errors.New("missing dst"), "link /1/3"),
			expected: "link /1/3: missing dst",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}
