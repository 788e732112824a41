// SPDX-License-Identifier: MPL-2.0

// Package merge folds per-origin contributions into one package state.
//
// Every environment property, system property and attachment name must be
// unique across all origins, and exactly one origin must supply the
// command-argument template. The fold is pure and visits origins in the order
// given, so the first conflicting pair of origins is the one reported.
package merge

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/invowk/runpack/pkg/contrib"
)

// Kinds of named contributions.
const (
	KindEnvironment Kind = "environment property"
	KindSystem      Kind = "system property"
	KindAttachment  Kind = "attachment"
)

var (
	// ErrDuplicateDefinition is returned when two origins define the same name.
	ErrDuplicateDefinition = errors.New("duplicate definition")
	// ErrDuplicateCommandArguments is returned when two origins supply a template.
	ErrDuplicateCommandArguments = errors.New("duplicate command arguments")
	// ErrMissingCommandArguments is returned when no origin supplies a template.
	ErrMissingCommandArguments = errors.New("missing command arguments: no origin supplies a commandArguments resource")
)

type (
	// Kind names an accumulator in error messages.
	Kind string

	// Accumulator maps names to values and remembers which origin defined each.
	Accumulator struct {
		kind    Kind
		values  map[string]string
		origins map[string]contrib.Origin
	}

	// State is the fold value threaded through the origin loop.
	State struct {
		Environment *Accumulator
		System      *Accumulator
		Attachments *Accumulator

		commandArguments       []byte
		commandArgumentsOrigin contrib.Origin
		origins                []contrib.Origin
	}

	// DuplicateDefinitionError names the conflicting name and both origins.
	// It wraps ErrDuplicateDefinition.
	DuplicateDefinitionError struct {
		Kind   Kind
		Name   string
		First  contrib.Origin
		Second contrib.Origin
	}

	// DuplicateCommandArgumentsError names both origins that supplied a
	// template. It wraps ErrDuplicateCommandArguments.
	DuplicateCommandArgumentsError struct {
		First  contrib.Origin
		Second contrib.Origin
	}
)

// NewAccumulator returns an empty accumulator of the given kind.
func NewAccumulator(kind Kind) *Accumulator {
	return &Accumulator{
		kind:    kind,
		values:  make(map[string]string),
		origins: make(map[string]contrib.Origin),
	}
}

// Put records name=value from origin, failing if any origin already defined name.
func (a *Accumulator) Put(name, value string, origin contrib.Origin) error {
	if first, ok := a.origins[name]; ok {
		return &DuplicateDefinitionError{Kind: a.kind, Name: name, First: first, Second: origin}
	}
	a.values[name] = value
	a.origins[name] = origin
	return nil
}

// PutAll records every entry of m in sorted name order.
func (a *Accumulator) PutAll(m map[string]string, origin contrib.Origin) error {
	for _, name := range slices.Sorted(maps.Keys(m)) {
		if err := a.Put(name, m[name], origin); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value recorded for name.
func (a *Accumulator) Get(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Origin returns the origin that defined name.
func (a *Accumulator) Origin(name string) (contrib.Origin, bool) {
	o, ok := a.origins[name]
	return o, ok
}

// Len returns the number of recorded names.
func (a *Accumulator) Len() int { return len(a.values) }

// Values returns a copy of the recorded name/value pairs.
func (a *Accumulator) Values() map[string]string { return maps.Clone(a.values) }

// Kind returns the accumulator's kind.
func (a *Accumulator) Kind() Kind { return a.kind }

// NewState returns an empty fold state.
func NewState() *State {
	return &State{
		Environment: NewAccumulator(KindEnvironment),
		System:      NewAccumulator(KindSystem),
		Attachments: NewAccumulator(KindAttachment),
	}
}

// Add folds one origin's contribution into the state.
func (s *State) Add(c contrib.Contribution) error {
	if err := s.Environment.PutAll(c.Environment, c.Origin); err != nil {
		return err
	}
	if err := s.System.PutAll(c.System, c.Origin); err != nil {
		return err
	}
	for _, name := range c.Attachments.Names() {
		coord, _ := c.Attachments.Get(name)
		if err := s.Attachments.Put(name, coord, c.Origin); err != nil {
			return err
		}
	}

	if c.CommandArguments != nil {
		if s.commandArguments != nil {
			return &DuplicateCommandArgumentsError{First: s.commandArgumentsOrigin, Second: c.Origin}
		}
		s.commandArguments = slices.Clone(c.CommandArguments)
		if s.commandArguments == nil {
			s.commandArguments = []byte{}
		}
		s.commandArgumentsOrigin = c.Origin
	}

	s.origins = append(s.origins, c.Origin)
	return nil
}

// CommandArguments returns the template and the origin that supplied it.
// The slice is nil when no origin has supplied one yet.
func (s *State) CommandArguments() ([]byte, contrib.Origin) {
	return s.commandArguments, s.commandArgumentsOrigin
}

// Origins lists the folded origins in visit order.
func (s *State) Origins() []contrib.Origin {
	return slices.Clone(s.origins)
}

// Fold merges contributions in the given order and requires a template.
func Fold(contribs ...contrib.Contribution) (*State, error) {
	s := NewState()
	for _, c := range contribs {
		if err := s.Add(c); err != nil {
			return nil, err
		}
	}
	if s.commandArguments == nil {
		return nil, ErrMissingCommandArguments
	}
	return s, nil
}

// Error implements the error interface for DuplicateDefinitionError.
func (e *DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("duplicate %s %q definition: origins %s and %s", e.Kind, e.Name, e.First, e.Second)
}

// Unwrap returns ErrDuplicateDefinition for errors.Is() compatibility.
func (e *DuplicateDefinitionError) Unwrap() error { return ErrDuplicateDefinition }

// Error implements the error interface for DuplicateCommandArgumentsError.
func (e *DuplicateCommandArgumentsError) Error() string {
	return fmt.Sprintf("duplicate commandArguments definition: origins %s and %s", e.First, e.Second)
}

// Unwrap returns ErrDuplicateCommandArguments for errors.Is() compatibility.
func (e *DuplicateCommandArgumentsError) Unwrap() error { return ErrDuplicateCommandArguments }
