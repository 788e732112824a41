// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"archive/tar"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/invowk/runpack/pkg/propfile"
)

// Read decodes a runtime bundle. It fails with ErrUnexpectedEntry when the
// archive's members are not exactly the runtime bundle entries in order.
func Read(r io.Reader) (*Contents, []Entry, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open xz stream: %w", err)
	}

	tr := tar.NewReader(xr)
	c := &Contents{}
	var entries []Entry
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read tar stream: %w", err)
		}

		if len(entries) >= len(EntryNames) || hdr.Name != EntryNames[len(entries)] {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnexpectedEntry, hdr.Name)
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", hdr.Name, err)
		}
		if err := c.set(hdr.Name, data); err != nil {
			return nil, nil, err
		}
		entries = append(entries, Entry{
			Name:    hdr.Name,
			Size:    hdr.Size,
			Mode:    hdr.Mode,
			ModTime: hdr.ModTime,
		})
	}

	if len(entries) != len(EntryNames) {
		return nil, nil, fmt.Errorf("%w: archive holds %d of %d entries", ErrUnexpectedEntry, len(entries), len(EntryNames))
	}
	return c, entries, nil
}

func (c *Contents) set(name string, data []byte) (err error) {
	switch name {
	case DependenciesEntry:
		c.Dependencies = splitLines(data)
	case EnvironmentEntry:
		c.Environment, err = propfile.Load(data)
	case SystemEntry:
		c.System, err = propfile.Load(data)
	case CommandArgumentsEntry:
		c.CommandArguments = data
	case AttachmentsEntry:
		c.Attachments, err = propfile.Load(data)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func splitLines(data []byte) []string {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
