// SPDX-License-Identifier: MPL-2.0

// Package logging builds the slog.Logger used by the CLI. Records are
// formatted by charmbracelet/log.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

// Prefix is printed before every record.
const Prefix = "runpack"

// ErrUnknownLevel is returned for level names charmbracelet/log does not know.
var ErrUnknownLevel = errors.New("unknown log level")

// New returns a logger writing to w that drops records below level
// ("debug", "info", "warn" or "error"; empty means info).
func New(w io.Writer, level string) (*slog.Logger, error) {
	lvl := log.InfoLevel
	if level = strings.TrimSpace(level); level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
		}
		lvl = parsed
	}

	handler := log.NewWithOptions(w, log.Options{
		Prefix: Prefix,
		Level:  lvl,
	})
	return slog.New(handler), nil
}
