// SPDX-License-Identifier: MPL-2.0

package coordinate

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// PackagingType is the artifact type of a packaging bundle.
	PackagingType = "zip"
	// PackagingClassifier is the classifier that marks a zip artifact as a packaging bundle.
	PackagingClassifier = "packaging"

	separator = ":"
)

var (
	// ErrIncompleteCoordinate is returned when a required coordinate field is empty.
	ErrIncompleteCoordinate = errors.New("incomplete coordinate")
	// ErrMalformedCoordinate is returned when a canonical string cannot be parsed.
	ErrMalformedCoordinate = errors.New("malformed coordinate")
)

type (
	// Coordinate identifies a resolved artifact. Classifier is optional.
	Coordinate struct {
		GroupID    string `json:"group_id"`
		ArtifactID string `json:"artifact_id"`
		Type       string `json:"type"`
		Classifier string `json:"classifier,omitempty"`
		Version    string `json:"version"`
	}

	// Artifact is a resolved dependency: a coordinate plus the file it resolved to.
	Artifact struct {
		Coordinate
		File string
	}

	// IncompleteCoordinateError names the first required field found empty.
	// It wraps ErrIncompleteCoordinate for errors.Is() compatibility.
	IncompleteCoordinateError struct {
		Field string
	}

	// MalformedCoordinateError is returned by Parse for strings that are not
	// in canonical form. It wraps ErrMalformedCoordinate.
	MalformedCoordinateError struct {
		Value string
	}
)

// Format renders the canonical form of the given fields.
func Format(groupID, artifactID, typ, classifier, version string) (string, error) {
	return Coordinate{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Type:       typ,
		Classifier: classifier,
		Version:    version,
	}.Format()
}

// Parse is the inverse of Format. It accepts the four and five segment forms.
func Parse(s string) (Coordinate, error) {
	parts := strings.Split(s, separator)
	if slices.Contains(parts, "") {
		return Coordinate{}, &MalformedCoordinateError{Value: s}
	}

	switch len(parts) {
	case 4:
		return Coordinate{GroupID: parts[0], ArtifactID: parts[1], Type: parts[2], Version: parts[3]}, nil
	case 5:
		return Coordinate{GroupID: parts[0], ArtifactID: parts[1], Type: parts[2], Classifier: parts[3], Version: parts[4]}, nil
	default:
		return Coordinate{}, &MalformedCoordinateError{Value: s}
	}
}

// Validate reports the first required field that is empty.
func (c Coordinate) Validate() error {
	switch {
	case c.GroupID == "":
		return &IncompleteCoordinateError{Field: "groupId"}
	case c.ArtifactID == "":
		return &IncompleteCoordinateError{Field: "artifactId"}
	case c.Type == "":
		return &IncompleteCoordinateError{Field: "type"}
	case c.Version == "":
		return &IncompleteCoordinateError{Field: "version"}
	}
	return nil
}

// Format returns the canonical string, or an error when a required field is empty.
func (c Coordinate) Format() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c.String(), nil
}

// String returns the canonical form without validation. Use Format when the
// coordinate may be incomplete.
func (c Coordinate) String() string {
	var b strings.Builder
	b.WriteString(c.GroupID)
	b.WriteString(separator)
	b.WriteString(c.ArtifactID)
	b.WriteString(separator)
	b.WriteString(c.Type)
	if c.Classifier != "" {
		b.WriteString(separator)
		b.WriteString(c.Classifier)
	}
	b.WriteString(separator)
	b.WriteString(c.Version)
	return b.String()
}

// IsPackagingBundle reports whether the coordinate marks a packaging bundle.
func (c Coordinate) IsPackagingBundle() bool {
	return c.Type == PackagingType && c.Classifier == PackagingClassifier
}

// Compare orders coordinates by group, artifact, type, classifier and version,
// each compared as a literal string. An empty classifier sorts first.
func Compare(a, b Coordinate) int {
	return cmp.Or(
		strings.Compare(a.GroupID, b.GroupID),
		strings.Compare(a.ArtifactID, b.ArtifactID),
		strings.Compare(a.Type, b.Type),
		strings.Compare(a.Classifier, b.Classifier),
		strings.Compare(a.Version, b.Version),
	)
}

// CompareArtifacts orders artifacts by their coordinates; files are ignored.
func CompareArtifacts(a, b Artifact) int {
	return Compare(a.Coordinate, b.Coordinate)
}

// SortedSet returns the artifacts deduplicated and sorted by Compare.
// Artifacts with equal coordinates collapse to the first occurrence.
func SortedSet(artifacts []Artifact) []Artifact {
	out := slices.Clone(artifacts)
	slices.SortStableFunc(out, CompareArtifacts)
	return slices.CompactFunc(out, func(a, b Artifact) bool {
		return CompareArtifacts(a, b) == 0
	})
}

// Error implements the error interface for IncompleteCoordinateError.
func (e *IncompleteCoordinateError) Error() string {
	return fmt.Sprintf("incomplete coordinate: %s is required", e.Field)
}

// Unwrap returns ErrIncompleteCoordinate for errors.Is() compatibility.
func (e *IncompleteCoordinateError) Unwrap() error { return ErrIncompleteCoordinate }

// Error implements the error interface for MalformedCoordinateError.
func (e *MalformedCoordinateError) Error() string {
	return fmt.Sprintf("malformed coordinate %q (expected group:artifact:type[:classifier]:version)", e.Value)
}

// Unwrap returns ErrMalformedCoordinate for errors.Is() compatibility.
func (e *MalformedCoordinateError) Unwrap() error { return ErrMalformedCoordinate }
