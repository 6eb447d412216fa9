// Package errors provides the coded error type used across the module.
// Every failure carries an ErrorCode so callers can branch on the kind of
// failure without matching message strings.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorCode classifies a failure.
type ErrorCode int

const (
	Unknown ErrorCode = iota
	InvalidInput
	InvalidConfiguration
	Canceled

	// LLM backend failures. Both abort an optimization run.
	LLMGenerationFailed
	InvalidResponse

	// External evaluator failure. Degraded, never fatal: the subprocess
	// path falls back to a zero fitness instead of aborting the run.
	EvaluatorProcessFailed

	// Run history failures.
	StorageFailed
)

func (c ErrorCode) String() string {
	switch c {
	case InvalidInput:
		return "invalid_input"
	case InvalidConfiguration:
		return "invalid_configuration"
	case Canceled:
		return "canceled"
	case LLMGenerationFailed:
		return "llm_generation_failed"
	case InvalidResponse:
		return "invalid_response"
	case EvaluatorProcessFailed:
		return "evaluator_process_failed"
	case StorageFailed:
		return "storage_failed"
	default:
		return "unknown"
	}
}

// Fields carries structured context attached to an error.
type Fields map[string]interface{}

// Error is a coded error with an optional wrapped cause and structured
// fields. Instances are immutable; WithFields returns a copy.
type Error struct {
	code     ErrorCode
	message  string
	original error
	fields   Fields
}

// New creates an error with a code and message.
func New(code ErrorCode, message string) error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code and message to an existing error. A nil err yields
// nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, original: err}
}

// WithFields attaches structured context to an error, preserving its code
// and cause. A plain error is promoted to an Unknown-coded Error first. A
// nil err yields nil.
func WithFields(err error, fields Fields) error {
	if err == nil {
		return nil
	}

	merged := make(Fields, len(fields))
	e, ok := err.(*Error)
	if ok {
		for k, v := range e.fields {
			merged[k] = v
		}
	}
	for k, v := range fields {
		merged[k] = v
	}

	if ok {
		return &Error{code: e.code, message: e.message, original: e.original, fields: merged}
	}
	return &Error{code: Unknown, message: err.Error(), original: err, fields: merged}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.message)

	if e.original != nil {
		b.WriteString(": ")
		b.WriteString(e.original.Error())
	}

	if len(e.fields) > 0 {
		keys := make([]string, 0, len(e.fields))
		for k := range e.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=%v", k, e.fields[k])
		}
		b.WriteByte(']')
	}

	return b.String()
}

// Code returns the error's classification.
func (e *Error) Code() ErrorCode {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.original
}

// Fields returns a copy of the structured context.
func (e *Error) Fields() Fields {
	out := make(Fields, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return out
}

// Is matches errors by code, so errors.Is(err, New(Canceled, "")) asks
// whether err is a cancellation regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.code == t.code
}

// As supports errors.As extraction of the concrete *Error.
func (e *Error) As(target interface{}) bool {
	p, ok := target.(**Error)
	if ok {
		*p = e
	}
	return ok
}
