// SPDX-License-Identifier: MPL-2.0

// Package config handles runpack configuration using Viper with CUE as the file format.
//
// Configuration is loaded from $XDG_CONFIG_HOME/runpack/config.cue (defaulting to
// ~/.config/runpack on Linux, ~/Library/Application Support/runpack on macOS and
// %APPDATA%\runpack on Windows), from ./config.cue, or from an explicit --config
// path. Every key can be overridden with a RUNPACK_ environment variable, with dots
// replaced by underscores (RUNPACK_PACKAGING_BUILD_DIR).
//
// Files are validated against the embedded #Config schema (config_schema.cue).
package config
