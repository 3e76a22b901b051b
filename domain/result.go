package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// Result represents the outcome of a domain operation.
// It provides a unified structure for returning success or failure information,
// optional data, and detailed error information.
type Result struct {
	Success bool    `json:"success" yaml:"success"`
	Message string  `json:"message,omitempty" yaml:"message,omitempty"`
	Data    any     `json:"data,omitempty" yaml:"data,omitempty"`
	Errors  []Error `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Error represents a structured error with location and context information.
// It represents lint issues and planning failures alike.
type Error struct {
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column   int    `json:"column,omitempty" yaml:"column,omitempty"`
	Severity string `json:"severity,omitempty" yaml:"severity,omitempty"`
	Message  string `json:"message" yaml:"message"`
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
}

// Context wraps context.Context with additional domain operation context.
// It provides working directory, verbosity and configuration for operations.
type Context struct {
	context.Context
	WorkDir string
	Verbose bool

	// Config is the wetwire.yaml configuration in effect, if any.
	Config *Config
}

// NewResult creates a successful Result with a message.
func NewResult(message string) *Result {
	return &Result{
		Success: true,
		Message: message,
	}
}

// NewResultWithData creates a successful Result with a message and data.
func NewResultWithData(message string, data any) *Result {
	return &Result{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewErrorResult creates a failed Result with a message and a single error.
func NewErrorResult(message string, err Error) *Result {
	return &Result{
		Success: false,
		Message: message,
		Errors:  []Error{err},
	}
}

// NewErrorResultMultiple creates a failed Result with a message and multiple errors.
func NewErrorResultMultiple(message string, errs []Error) *Result {
	return &Result{
		Success: false,
		Message: message,
		Errors:  errs,
	}
}

// ToJSON serializes the Result to JSON bytes.
func (r *Result) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// String formats the Error as a human-readable string.
// It includes all available information (path, line, column, severity, message).
func (e *Error) String() string {
	if e.Path == "" {
		if e.Code != "" {
			return fmt.Sprintf("%s (%s)", e.Message, e.Code)
		}
		return e.Message
	}

	result := e.Path
	if e.Line > 0 {
		result += fmt.Sprintf(":%d", e.Line)
		if e.Column > 0 {
			result += fmt.Sprintf(":%d", e.Column)
		}
	}

	if e.Severity != "" {
		result += fmt.Sprintf(" [%s]", e.Severity)
	}

	result += ": " + e.Message

	if e.Code != "" {
		result += fmt.Sprintf(" (%s)", e.Code)
	}

	return result
}

// NewContext creates a new Context with the given background context and working directory.
func NewContext(ctx context.Context, workDir string) *Context {
	return &Context{
		Context: ctx,
		WorkDir: workDir,
		Verbose: false,
	}
}

// NewContextWithVerbose creates a new Context with the given background context,
// working directory, and verbosity setting.
func NewContextWithVerbose(ctx context.Context, workDir string, verbose bool) *Context {
	return &Context{
		Context: ctx,
		WorkDir: workDir,
		Verbose: verbose,
	}
}

// WithConfig returns a copy of the context using cfg.
func (c *Context) WithConfig(cfg *Config) *Context {
	return &Context{
		Context: c.Context,
		WorkDir: c.WorkDir,
		Verbose: c.Verbose,
		Config:  cfg,
	}
}

// MixinConfig returns the mixin section of the configuration, never nil.
func (c *Context) MixinConfig() MixinConfig {
	if c == nil || c.Config == nil || c.Config.Mixin == nil {
		return MixinConfig{}
	}
	return *c.Config.Mixin
}
