// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/invowk/runpack/pkg/coordinate"
	"github.com/invowk/runpack/pkg/merge"
	"github.com/invowk/runpack/pkg/propfile"
)

// Entry names, in archive order.
const (
	DependenciesEntry     = "dependencies"
	EnvironmentEntry      = "environment.properties"
	SystemEntry           = "system.properties"
	CommandArgumentsEntry = "commandArguments"
	AttachmentsEntry      = "attachments.properties"

	// Extension is the file extension of a runtime bundle.
	Extension = ".tar.xz"
	// MediaType is the output type registered for a runtime bundle.
	MediaType = "tar.xz"

	// DefaultDictCap is the xz dictionary size used when none is configured.
	DefaultDictCap = 8 << 20

	entryMode = 0o644
)

// EntryNames lists the archive entries in the order they are written.
var EntryNames = []string{
	DependenciesEntry,
	EnvironmentEntry,
	SystemEntry,
	CommandArgumentsEntry,
	AttachmentsEntry,
}

// ErrUnexpectedEntry is returned by Read for archives that do not follow the
// runtime bundle layout.
var ErrUnexpectedEntry = errors.New("unexpected archive entry")

type (
	// Contents is everything a runtime bundle holds.
	Contents struct {
		Dependencies     []string
		Environment      map[string]string
		System           map[string]string
		Attachments      map[string]string
		CommandArguments []byte
	}

	// WriteOptions controls archive encoding.
	WriteOptions struct {
		// Timestamp is applied to every entry.
		Timestamp time.Time
		// DictCap is the xz dictionary capacity. Zero selects DefaultDictCap.
		DictCap int
		// Atomic makes Publish write a temporary file and rename it into place.
		Atomic bool
	}

	// Entry describes one archive member as read back by Read.
	Entry struct {
		Name    string
		Size    int64
		Mode    int64
		ModTime time.Time
	}
)

// FromState builds the contents from the shipped dependencies and a folded
// merge state. Dependencies are written in the order given.
func FromState(deps []coordinate.Artifact, s *merge.State) *Contents {
	ids := make([]string, len(deps))
	for i, d := range deps {
		ids[i] = d.String()
	}
	tmpl, _ := s.CommandArguments()
	return &Contents{
		Dependencies:     ids,
		Environment:      s.Environment.Values(),
		System:           s.System.Values(),
		Attachments:      s.Attachments.Values(),
		CommandArguments: tmpl,
	}
}

// FileName returns `<finalName>.tar.xz` or `<finalName>-<classifier>.tar.xz`.
func FileName(finalName, classifier string) string {
	if classifier == "" {
		return finalName + Extension
	}
	return finalName + "-" + classifier + Extension
}

// Timestamp normalizes t to the value stored in every entry header.
func Timestamp(t time.Time) time.Time {
	return t.Truncate(time.Second).UTC()
}

// Write encodes c as a runtime bundle onto w.
func Write(w io.Writer, c *Contents, opts WriteOptions) (err error) {
	dictCap := opts.DictCap
	if dictCap == 0 {
		dictCap = DefaultDictCap
	}

	xw, err := xz.WriterConfig{DictCap: dictCap}.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create xz stream: %w", err)
	}
	defer func() {
		if closeErr := xw.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("finish xz stream: %w", closeErr)
		}
	}()

	tw := tar.NewWriter(xw)
	modTime := Timestamp(opts.Timestamp)
	for _, name := range EntryNames {
		if err = writeEntry(tw, name, c.entry(name), modTime); err != nil {
			return err
		}
	}

	if err = tw.Close(); err != nil {
		return fmt.Errorf("finish tar stream: %w", err)
	}
	return nil
}

// Marshal returns the encoded archive.
func Marshal(c *Contents, opts WriteOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeEntry(tw *tar.Writer, name string, data []byte, modTime time.Time) error {
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Size:     int64(len(data)),
		Mode:     entryMode,
		ModTime:  modTime,
		Format:   tar.FormatGNU,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write %s header: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (c *Contents) entry(name string) []byte {
	switch name {
	case DependenciesEntry:
		return []byte(dependencyLines(c.Dependencies))
	case EnvironmentEntry:
		return propfile.Marshal(c.Environment)
	case SystemEntry:
		return propfile.Marshal(c.System)
	case CommandArgumentsEntry:
		return c.CommandArguments
	case AttachmentsEntry:
		return propfile.Marshal(c.Attachments)
	default:
		return nil
	}
}

func dependencyLines(ids []string) string {
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	return b.String()
}
