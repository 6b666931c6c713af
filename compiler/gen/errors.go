package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the structured errors below.
var (
	ErrInvalidSchema    = errors.New("crudgen: invalid schema")
	ErrMissingConfig    = errors.New("crudgen: missing configuration")
	ErrInvalidEdge      = errors.New("crudgen: invalid edge definition")
	ErrGenerationFailed = errors.New("crudgen: code generation failed")
)

// SchemaError reports an invalid entity or field declaration.
type SchemaError struct {
	// Pos is the file:line of the offending declaration, if known.
	Pos    string
	Entity string
	Field  string
	Msg    string
	Err    error
}

func (e *SchemaError) Error() string {
	subject := e.Entity
	if e.Field != "" {
		subject += "." + e.Field
	}
	return located(e.Pos, subject, e.Msg, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Is matches ErrInvalidSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// typeError reports a finding about entity t as a whole.
func typeError(t *Type, format string, args ...any) *SchemaError {
	return &SchemaError{Pos: t.Pos(), Entity: t.Name, Msg: fmt.Sprintf(format, args...)}
}

// fieldError reports a finding about field f, wrapping err when set.
func fieldError(t *Type, f *Field, err error, format string, args ...any) *SchemaError {
	pos := f.Pos()
	if pos == "" {
		pos = t.Pos()
	}
	return &SchemaError{Pos: pos, Entity: t.Name, Field: f.Name, Msg: fmt.Sprintf(format, args...), Err: err}
}

// EdgeError reports a join field that does not match its relation.
type EdgeError struct {
	// Pos is the file:line of the join field, if known.
	Pos  string
	From string
	To   string
	Edge string
	Msg  string
	Err  error
}

func (e *EdgeError) Error() string {
	subject := e.From
	if e.Edge != "" {
		subject += "." + e.Edge
	}
	if e.To != "" {
		subject += " -> " + e.To
	}
	return located(e.Pos, subject, e.Msg, e.Err)
}

func (e *EdgeError) Unwrap() error { return e.Err }

// Is matches ErrInvalidEdge.
func (e *EdgeError) Is(target error) bool { return target == ErrInvalidEdge }

// located renders "pos: subject: msg: err", leaving out the empty parts.
func located(pos, subject, msg string, err error) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{pos, subject, msg} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if err != nil {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, ": ")
}

// ConfigError reports an invalid generator option.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("crudgen: option %s: %s", e.Option, e.Message)
	}
	return fmt.Sprintf("crudgen: option %s=%v: %s", e.Option, e.Value, e.Message)
}

// Is matches ErrMissingConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrMissingConfig }

// NewConfigError returns the error for option set to value.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// GenerationError reports a failure while producing File. Phase is one of
// "emit", "format" or "write".
type GenerationError struct {
	Phase   string
	File    string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	subject := "crudgen: " + e.Phase
	if e.File != "" {
		subject += " " + e.File
	}
	return located("", subject, e.Message, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is matches ErrGenerationFailed.
func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// NewGenerationError returns the error of phase for file.
func NewGenerationError(phase, file, message string, err error) *GenerationError {
	return &GenerationError{Phase: phase, File: file, Message: message, Err: err}
}

// IsSchemaError reports whether err holds a *SchemaError.
func IsSchemaError(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}

// IsConfigError reports whether err holds a *ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsEdgeError reports whether err holds an *EdgeError.
func IsEdgeError(err error) bool {
	var e *EdgeError
	return errors.As(err, &e)
}

// IsGenerationError reports whether err holds a *GenerationError.
func IsGenerationError(err error) bool {
	var e *GenerationError
	return errors.As(err, &e)
}
