// SPDX-License-Identifier: MPL-2.0

// Package contrib reads the configuration contributed by one origin.
//
// An origin is the module's own packaging sources, the attachments declared in
// the project descriptor, or a packaging bundle dependency. Sources and
// bundles are both presented as an fs.FS (os.DirFS for a directory, a
// *zip.Reader for a bundle), so a resource is looked up by name without
// extracting anything. Every resource is optional.
package contrib

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/invowk/runpack/pkg/attachment"
	"github.com/invowk/runpack/pkg/propfile"
)

// Resource names looked up in every origin.
const (
	EnvironmentProperties = "environment.properties"
	SystemProperties      = "system.properties"
	AttachmentsDocument   = "attachments.xml"
	CommandArguments      = "commandArguments"
)

const (
	// ModuleSource labels the module's own packaging sources.
	ModuleSource Origin = "<module source>"
	// ProjectDescriptor labels attachments declared in the project descriptor.
	ProjectDescriptor Origin = "<project descriptor>"
)

type (
	// Origin identifies where a contribution came from: ModuleSource,
	// ProjectDescriptor, or a bundle's canonical coordinate.
	Origin string

	// Contribution is everything one origin supplies. Nil maps and a nil
	// CommandArguments mean the resource was absent. A present but empty
	// template is a non-nil empty slice.
	Contribution struct {
		Origin           Origin
		Environment      map[string]string
		System           map[string]string
		Attachments      *attachment.Set
		CommandArguments []byte
	}

	// Opener opens a bundle file as a filesystem. The closer releases the
	// underlying handle.
	Opener func(path string) (fs.FS, io.Closer, error)

	// ReadError reports a resource that exists but could not be read or parsed.
	ReadError struct {
		Origin   Origin
		Resource string
		Err      error
	}
)

// String returns the origin label.
func (o Origin) String() string { return string(o) }

// Read extracts the contribution of one origin from fsys.
func Read(fsys fs.FS, origin Origin) (Contribution, error) {
	c := Contribution{Origin: origin}
	var err error

	if c.Environment, err = readProperties(fsys, origin, EnvironmentProperties); err != nil {
		return Contribution{}, err
	}
	if c.System, err = readProperties(fsys, origin, SystemProperties); err != nil {
		return Contribution{}, err
	}

	data, err := readOptional(fsys, origin, AttachmentsDocument)
	if err != nil {
		return Contribution{}, err
	}
	if data != nil {
		c.Attachments, err = attachment.Parse(bytes.NewReader(data), origin.String())
		if err != nil {
			return Contribution{}, err
		}
	}

	if c.CommandArguments, err = readOptional(fsys, origin, CommandArguments); err != nil {
		return Contribution{}, err
	}

	return c, nil
}

// ReadDir reads an origin backed by a directory. A missing directory
// contributes nothing.
func ReadDir(dir string, origin Origin) (Contribution, error) {
	return Read(os.DirFS(dir), origin)
}

// OpenZip opens a zip archive as a filesystem. It is the default Opener.
func OpenZip(path string) (fs.FS, io.Closer, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, err
	}
	return zr, zr, nil
}

// ReadBundle opens a packaging bundle with open, reads its contribution and
// closes it before returning, whether or not reading succeeded. Bundles nested
// inside the archive are not inspected.
func ReadBundle(open Opener, path string, origin Origin) (c Contribution, err error) {
	if open == nil {
		open = OpenZip
	}
	fsys, closer, err := open(path)
	if err != nil {
		return Contribution{}, &ReadError{Origin: origin, Resource: path, Err: err}
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil && err == nil {
			err = &ReadError{Origin: origin, Resource: path, Err: closeErr}
		}
	}()

	return Read(fsys, origin)
}

// FromDeclarations wraps descriptor-declared attachments as a contribution.
func FromDeclarations(decls []attachment.Declaration) (Contribution, error) {
	set, err := attachment.FromDeclarations(decls, ProjectDescriptor.String())
	if err != nil {
		return Contribution{}, err
	}
	return Contribution{Origin: ProjectDescriptor, Attachments: set}, nil
}

// IsEmpty reports whether the origin contributed nothing at all.
func (c Contribution) IsEmpty() bool {
	return c.Environment == nil && c.System == nil && c.Attachments == nil && c.CommandArguments == nil
}

func readProperties(fsys fs.FS, origin Origin, name string) (map[string]string, error) {
	data, err := readOptional(fsys, origin, name)
	if err != nil || data == nil {
		return nil, err
	}
	props, err := propfile.Load(data)
	if err != nil {
		return nil, &ReadError{Origin: origin, Resource: name, Err: err}
	}
	return props, nil
}

// readOptional returns nil, nil when the resource does not exist, and a
// non-nil slice for any resource that does, even an empty one.
func readOptional(fsys fs.FS, origin Origin, name string) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, &ReadError{Origin: origin, Resource: name, Err: err}
	case data == nil:
		return []byte{}, nil
	}
	return data, nil
}

// Error implements the error interface for ReadError.
func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s from %s: %v", e.Resource, e.Origin, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ReadError) Unwrap() error { return e.Err }
