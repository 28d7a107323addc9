// SPDX-License-Identifier: MIT

// Package validate provides configuration validation utilities for gstmgr.
package validate

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/ManuGH/gstmgr/internal/gst/launch"
)

// Error represents a validation error
type Error struct {
	Field   string      // Field name that failed validation
	Value   interface{} // The invalid value
	Message string      // Human-readable error message
}

// Error implements the error interface
func (e Error) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator accumulates validation errors
type Validator struct {
	errors []Error
}

// New creates a new validator
func New() *Validator {
	return &Validator{
		errors: make([]Error, 0),
	}
}

// AddError adds a validation error
func (v *Validator) AddError(field, message string, value interface{}) {
	v.errors = append(v.errors, Error{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// IsValid returns true if no validation errors occurred
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []Error {
	return v.errors
}

// Err returns an error if validation failed, nil otherwise
func (v *Validator) Err() error {
	if v.IsValid() {
		return nil
	}
	return ValidationError{errors: v.errors}
}

// ValidationError wraps multiple validation errors
type ValidationError struct {
	errors []Error
}

// Errors returns all validation errors
func (e ValidationError) Errors() []Error {
	return e.errors
}

// Error implements the error interface
func (e ValidationError) Error() string {
	if len(e.errors) == 0 {
		return "validation failed"
	}
	if len(e.errors) == 1 {
		return e.errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(e.errors)))
	for i, err := range e.errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ListenAddr validates a host:port listen address. The host may be empty.
func (v *Validator) ListenAddr(field, addr string) {
	if addr == "" {
		v.AddError(field, "listen address cannot be empty", addr)
		return
	}
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		v.AddError(field, fmt.Sprintf("invalid listen address: %v", err), addr)
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		v.AddError(field, "port must be numeric", addr)
		return
	}
	v.Port(field, port)
}

// Port validates a port number (0-65535). Zero selects an ephemeral port.
func (v *Validator) Port(field string, port int) {
	if port < 0 || port > 65535 {
		v.AddError(field, "port must be between 0 and 65535", port)
	}
}

// Directory validates that path is a directory when it exists. With
// mustExist unset a missing directory is accepted; it is created on demand.
func (v *Validator) Directory(field, path string, mustExist bool) {
	if path == "" {
		v.AddError(field, "directory path cannot be empty", path)
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				v.AddError(field, "directory does not exist", path)
			}
			return
		}
		v.AddError(field, fmt.Sprintf("cannot access directory: %v", err), path)
		return
	}
	if !info.IsDir() {
		v.AddError(field, "path is not a directory", path)
	}
}

// NotEmpty validates that a string is not empty
func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "value cannot be empty", value)
	}
}

// OneOf validates that a value is one of the allowed values
func (v *Validator) OneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field,
		fmt.Sprintf("value must be one of %v, got %q", allowed, value),
		value)
}

// NonNegative validates that a number is non-negative (>= 0)
func (v *Validator) NonNegative(field string, value int) {
	if value < 0 {
		v.AddError(field, fmt.Sprintf("value cannot be negative, got %d", value), value)
	}
}

// PipelineDescription validates the syntax of a gst-launch description.
// Unknown element factories are left to the engine.
func (v *Validator) PipelineDescription(field, description string) {
	if _, err := launch.Parse(description); err != nil {
		v.AddError(field, err.Error(), description)
	}
}

// PipelineWithFactory validates a description and requires at least one
// element created from factory.
func (v *Validator) PipelineWithFactory(field, description, factory string) {
	g, err := launch.Parse(description)
	if err != nil {
		v.AddError(field, err.Error(), description)
		return
	}
	if len(g.ByFactory(factory)) == 0 {
		v.AddError(field, fmt.Sprintf("pipeline must contain a %s element", factory), description)
	}
}
