// SPDX-License-Identifier: MPL-2.0

// Package attachment parses attachment declarations: named references to
// artifacts that a runtime bundle ships alongside its dependencies.
//
// Declarations come from an XML document found in a contribution origin:
//
//	<attachments>
//	  <attachment>
//	    <name>lib1</name>
//	    <groupId>g</groupId>
//	    <artifactId>a</artifactId>
//	    <classifier>optional</classifier>
//	    <type>jar</type>
//	    <version>1.0</version>
//	  </attachment>
//	</attachments>
//
// or from the project descriptor. Each origin yields a Set mapping attachment
// names to canonical coordinates; names must be unique within one origin.
package attachment

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/invowk/runpack/pkg/coordinate"
)

// DefaultType is applied to descriptor declarations that omit a type.
const DefaultType = "jar"

var (
	// ErrDuplicateAttachment is returned when one origin declares a name twice.
	ErrDuplicateAttachment = errors.New("duplicate attachment")
	// ErrMalformedDeclaration is returned when a declaration lacks a required element.
	ErrMalformedDeclaration = errors.New("malformed attachment declaration")
)

type (
	// Declaration is one attachment record.
	Declaration struct {
		Name       string `json:"name"`
		GroupID    string `json:"group_id"`
		ArtifactID string `json:"artifact_id"`
		Classifier string `json:"classifier,omitempty"`
		Type       string `json:"type"`
		Version    string `json:"version"`
	}

	// Set maps attachment names to canonical coordinates, remembering
	// declaration order.
	Set struct {
		names  []string
		coords map[string]string
	}

	// DuplicateAttachmentError is returned when a name appears twice within a
	// single origin. It wraps ErrDuplicateAttachment.
	DuplicateAttachmentError struct {
		Name   string
		Origin string
	}

	// MalformedDeclarationError identifies a record missing a required element.
	// Index is the zero-based position of the record in its document.
	// It wraps ErrMalformedDeclaration.
	MalformedDeclarationError struct {
		Origin  string
		Index   int
		Element string
		Cause   error
	}

	xmlDocument struct {
		Attachments []xmlAttachment `xml:"attachment"`
	}

	// Pointer fields distinguish an absent element from an empty one.
	xmlAttachment struct {
		Name       *string `xml:"name"`
		GroupID    *string `xml:"groupId"`
		ArtifactID *string `xml:"artifactId"`
		Classifier *string `xml:"classifier"`
		Type       *string `xml:"type"`
		Version    *string `xml:"version"`
	}
)

// Parse reads an attachment declaration document. The origin labels errors.
func Parse(r io.Reader, origin string) (*Set, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse attachments of %s: %w", origin, err)
	}

	decls := make([]Declaration, 0, len(doc.Attachments))
	for i, a := range doc.Attachments {
		if missing := a.missingElement(); missing != "" {
			return nil, &MalformedDeclarationError{Origin: origin, Index: i, Element: missing}
		}
		decls = append(decls, a.declaration())
	}

	return build(decls, origin)
}

// FromDeclarations builds a Set from declarations supplied outside a document,
// applying DefaultType to records without a type.
func FromDeclarations(decls []Declaration, origin string) (*Set, error) {
	withDefaults := make([]Declaration, len(decls))
	for i, d := range decls {
		if d.Type == "" {
			d.Type = DefaultType
		}
		withDefaults[i] = d
	}
	return build(withDefaults, origin)
}

func build(decls []Declaration, origin string) (*Set, error) {
	s := NewSet()
	for i, d := range decls {
		if d.Name == "" {
			return nil, &MalformedDeclarationError{Origin: origin, Index: i, Element: "name"}
		}
		if s.Has(d.Name) {
			return nil, &DuplicateAttachmentError{Name: d.Name, Origin: origin}
		}
		coord, err := d.Coordinate().Format()
		if err != nil {
			return nil, &MalformedDeclarationError{Origin: origin, Index: i, Element: fieldElement(err), Cause: err}
		}
		s.add(d.Name, coord)
	}
	return s, nil
}

// Coordinate returns the artifact coordinate the declaration refers to.
func (d Declaration) Coordinate() coordinate.Coordinate {
	return coordinate.Coordinate{
		GroupID:    d.GroupID,
		ArtifactID: d.ArtifactID,
		Type:       d.Type,
		Classifier: d.Classifier,
		Version:    d.Version,
	}
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{coords: make(map[string]string)}
}

// Names returns attachment names in declaration order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Get returns the canonical coordinate for name.
func (s *Set) Get(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	c, ok := s.coords[name]
	return c, ok
}

// Has reports whether name is declared.
func (s *Set) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Len returns the number of declarations.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Map returns a copy of the name to coordinate mapping.
func (s *Set) Map() map[string]string {
	m := make(map[string]string, s.Len())
	if s == nil {
		return m
	}
	for k, v := range s.coords {
		m[k] = v
	}
	return m
}

func (s *Set) add(name, coord string) {
	s.names = append(s.names, name)
	s.coords[name] = coord
}

// missingElement returns the first required element absent from the record.
func (a xmlAttachment) missingElement() string {
	required := []struct {
		element string
		value   *string
	}{
		{"name", a.Name},
		{"groupId", a.GroupID},
		{"artifactId", a.ArtifactID},
		{"type", a.Type},
		{"version", a.Version},
	}
	for _, r := range required {
		if r.value == nil {
			return r.element
		}
	}
	return ""
}

func (a xmlAttachment) declaration() Declaration {
	d := Declaration{
		Name:       text(a.Name),
		GroupID:    text(a.GroupID),
		ArtifactID: text(a.ArtifactID),
		Type:       text(a.Type),
		Version:    text(a.Version),
	}
	if a.Classifier != nil {
		d.Classifier = text(a.Classifier)
	}
	return d
}

func text(s *string) string {
	return strings.TrimSpace(*s)
}

func fieldElement(err error) string {
	var incomplete *coordinate.IncompleteCoordinateError
	if errors.As(err, &incomplete) {
		return incomplete.Field
	}
	return ""
}

// Error implements the error interface for DuplicateAttachmentError.
func (e *DuplicateAttachmentError) Error() string {
	return fmt.Sprintf("duplicate attachment %q definition in %s", e.Name, e.Origin)
}

// Unwrap returns ErrDuplicateAttachment for errors.Is() compatibility.
func (e *DuplicateAttachmentError) Unwrap() error { return ErrDuplicateAttachment }

// Error implements the error interface for MalformedDeclarationError.
func (e *MalformedDeclarationError) Error() string {
	return fmt.Sprintf("malformed attachment #%d in %s: missing %s", e.Index+1, e.Origin, e.Element)
}

// Unwrap returns ErrMalformedDeclaration for errors.Is() compatibility.
func (e *MalformedDeclarationError) Unwrap() error { return ErrMalformedDeclaration }
