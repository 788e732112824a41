// SPDX-License-Identifier: MPL-2.0

// Package tmplref finds the configuration names a template refers to.
//
// Templates use shell parameter expansion for placeholders: `$NAME`,
// `${NAME}` and the operator forms such as `${NAME:-default}`. Nothing is
// expanded; the names are only collected for diagnostics.
package tmplref

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

type (
	// Extractor reports the names referenced by a template.
	Extractor interface {
		// Extract calls fn once per distinct name referenced in text.
		Extract(text string, fn func(name string)) error
	}

	// ShellExtractor parses templates as here-document bodies.
	ShellExtractor struct{}

	// ExtractorFunc adapts a function to the Extractor interface.
	ExtractorFunc func(text string, fn func(name string)) error
)

// Default is the extractor used when none is configured.
var Default Extractor = ShellExtractor{}

// Extract implements Extractor.
func (ShellExtractor) Extract(text string, fn func(name string)) error {
	word, err := syntax.NewParser().Document(strings.NewReader(text))
	if err != nil {
		return fmt.Errorf("template syntax error: %w", err)
	}

	seen := make(map[string]struct{})
	syntax.Walk(word, func(node syntax.Node) bool {
		pe, ok := node.(*syntax.ParamExp)
		if !ok || pe.Param == nil {
			return true
		}
		name := pe.Param.Value
		if !syntax.ValidName(name) {
			return true
		}
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			fn(name)
		}
		return true
	})
	return nil
}

// Extract implements Extractor.
func (f ExtractorFunc) Extract(text string, fn func(name string)) error {
	return f(text, fn)
}
