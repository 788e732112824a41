// SPDX-License-Identifier: MPL-2.0

// Package propfile reads and writes flat name/value property text.
//
// Parsing follows the usual properties-file grammar (`name=value`,
// `name: value`, `name value`, `#` and `!` comments, backslash line
// continuations and escapes). Placeholders such as `${name}` are kept
// verbatim: they are resolved at run time, not at packaging time.
//
// Store writes one `name=value` line per property, sorted by name, with no
// header or date comment, so equal maps always serialize to equal bytes.
package propfile

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/magiconair/properties"
)

// Load parses properties text. Later definitions of a name replace earlier ones.
func Load(data []byte) (map[string]string, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}
	return p.Map(), nil
}

// Read is Load over a reader.
func Read(r io.Reader) (map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Store writes props sorted by name.
func Store(w io.Writer, props map[string]string) (err error) {
	bw := bufio.NewWriter(w)
	for _, name := range slices.Sorted(maps.Keys(props)) {
		if _, err = bw.WriteString(escapeKey(name) + "=" + escapeValue(props[name]) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Marshal returns the Store encoding of props.
func Marshal(props map[string]string) []byte {
	var b strings.Builder
	// strings.Builder never fails
	_ = Store(&b, props)
	return []byte(b.String())
}

func escapeKey(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch r {
		case ' ', '=', ':':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '#', '!':
			if i == 0 {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		default:
			writeCommon(&b, r)
		}
	}
	return b.String()
}

// escapeValue protects leading whitespace, which the parser would otherwise trim.
func escapeValue(s string) string {
	var b strings.Builder
	leading := true
	for _, r := range s {
		if leading && (r == ' ' || r == '\t' || r == '\f') {
			if r == ' ' {
				b.WriteString(`\ `)
			} else {
				writeCommon(&b, r)
			}
			continue
		}
		leading = false
		writeCommon(&b, r)
	}
	return b.String()
}

func writeCommon(b *strings.Builder, r rune) {
	switch r {
	case '\\':
		b.WriteString(`\\`)
	case '\n':
		b.WriteString(`\n`)
	case '\r':
		b.WriteString(`\r`)
	case '\t':
		b.WriteString(`\t`)
	case '\f':
		b.WriteString(`\f`)
	default:
		b.WriteRune(r)
	}
}
