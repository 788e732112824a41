// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// Operation names the step that failed as a verb phrase. It completes the
	// sentence "failed to ...".
	Operation string

	// ActionableError is a user-facing failure: what runpack was doing, on
	// which file or artifact, why it failed and what to try next.
	//
	// Build one with ErrorContext:
	//
	//	return issue.NewErrorContext().
	//		WithOperation(issue.OperationLoadDescriptor).
	//		WithResource("app/runpack.cue").
	//		WithSuggestion("Pass the descriptor path as the first argument").
	//		Wrap(err).
	//		BuildError()
	ActionableError struct {
		Operation Operation
		// Resource is a path or an artifact coordinate. Optional.
		Resource    string
		Suggestions []string
		Cause       error
	}

	// ErrorContext accumulates the fields of an ActionableError. The zero
	// Operation makes Build return nil.
	ErrorContext struct {
		operation   Operation
		resource    string
		suggestions []string
		cause       error
	}
)

// NewErrorContext returns an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Wrap attaches op and resource to err. A nil err stays nil.
func Wrap(err error, op Operation, resource string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: op, Resource: resource, Cause: err}
}

func (o Operation) String() string { return string(o) }

// Error returns "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + string(e.Operation)}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the error for the terminal. Suggestions follow the message
// as bullets. With verbose set, every distinct message of the cause chain is
// listed under "caused by:", outermost first.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if e.HasSuggestions() {
		b.WriteString("\n")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • ")
			b.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\ncaused by:")
		var last string
		n := 0
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			msg := err.Error()
			if msg == last {
				continue
			}
			last = msg
			n++
			fmt.Fprintf(&b, "\n  %d. %s", n, msg)
		}
	}

	return b.String()
}

// HasSuggestions reports whether any suggestion is attached.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

func (c *ErrorContext) WithOperation(op Operation) *ErrorContext {
	c.operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion appends one suggestion; empty strings are ignored.
func (c *ErrorContext) WithSuggestion(s string) *ErrorContext {
	if s != "" {
		c.suggestions = append(c.suggestions, s)
	}
	return c
}

func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build returns nil when no operation was set. Suggestions are copied, so
// the context may be reused for further errors.
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}
	var suggestions []string
	if len(c.suggestions) > 0 {
		suggestions = append([]string(nil), c.suggestions...)
	}
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: suggestions,
		Cause:       c.cause,
	}
}

// BuildError is Build typed as error, returning an untyped nil when no
// operation was set.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
