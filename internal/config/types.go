// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ulikunitz/xz/lzma"
)

const (
	// LogLevelDebug logs origin visits and scan details.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs the published bundle and referenced names.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs only problems that do not stop packaging.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs only failures.
	LogLevelError LogLevel = "error"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidDirPath is returned when a DirPath value is empty or whitespace-only.
	ErrInvalidDirPath = errors.New("invalid directory path")
	// ErrInvalidDictCap is returned when a DictCap is outside the xz range.
	ErrInvalidDictCap = errors.New("invalid xz dictionary capacity")
	// ErrInvalidPackagingConfig is the sentinel error wrapped by InvalidPackagingConfigError.
	ErrInvalidPackagingConfig = errors.New("invalid packaging config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level of emitted log records.
	LogLevel string

	// InvalidLogLevelError wraps ErrInvalidLogLevel.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError wraps ErrInvalidColorScheme.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// DirPath is a directory path; it must not be empty or whitespace-only.
	DirPath string

	// InvalidDirPathError wraps ErrInvalidDirPath.
	InvalidDirPathError struct {
		Field string
		Value DirPath
	}

	// DictCap is an xz dictionary capacity in bytes.
	DictCap int

	// InvalidDictCapError wraps ErrInvalidDictCap.
	InvalidDictCapError struct {
		Value DictCap
	}

	// InvalidPackagingConfigError collects field errors of a PackagingConfig.
	InvalidPackagingConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError collects field errors from all sub-components.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// LogLevel sets the minimum log level (default: info)
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// UI configures terminal output
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// Packaging holds defaults for `runpack package`
		Packaging PackagingConfig `json:"packaging" mapstructure:"packaging"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// Verbose enables debug logging and full error chains
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// ColorScheme selects the style used to render issue help
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}

	// PackagingConfig holds packaging defaults that the project descriptor
	// and command-line flags may override.
	PackagingConfig struct {
		SourcesDir    DirPath `json:"sources_dir" mapstructure:"sources_dir"`
		BuildDir      DirPath `json:"build_dir" mapstructure:"build_dir"`
		AtomicPublish bool    `json:"atomic_publish" mapstructure:"atomic_publish"`
		XZDictCap     DictCap `json:"xz_dict_cap" mapstructure:"xz_dict_cap"`
	}
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the ColorScheme.
func (c ColorScheme) String() string { return string(c) }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (c ColorScheme) IsValid() (bool, []error) {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: c}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the DirPath.
func (p DirPath) String() string { return string(p) }

func (p DirPath) validate(field string) (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidDirPathError{Field: field, Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidDirPathError.
func (e *InvalidDirPathError) Error() string {
	return fmt.Sprintf("invalid %s %q: must be non-empty", e.Field, e.Value)
}

// Unwrap returns ErrInvalidDirPath for errors.Is() compatibility.
func (e *InvalidDirPathError) Unwrap() error { return ErrInvalidDirPath }

// IsValid returns whether the capacity is within the range xz accepts.
func (d DictCap) IsValid() (bool, []error) {
	if d < lzma.MinDictCap || int64(d) > lzma.MaxDictCap {
		return false, []error{&InvalidDictCapError{Value: d}}
	}
	return true, nil
}

// Error implements the error interface for InvalidDictCapError.
func (e *InvalidDictCapError) Error() string {
	return fmt.Sprintf("invalid xz dictionary capacity %d: must be between %d and %d bytes", e.Value, lzma.MinDictCap, int64(lzma.MaxDictCap))
}

// Unwrap returns ErrInvalidDictCap for errors.Is() compatibility.
func (e *InvalidDictCapError) Unwrap() error { return ErrInvalidDictCap }

// IsValid returns whether every packaging field is valid.
func (c PackagingConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.SourcesDir.validate("sources_dir"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.BuildDir.validate("build_dir"); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.XZDictCap.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidPackagingConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPackagingConfigError.
func (e *InvalidPackagingConfigError) Error() string {
	return "invalid packaging config: " + joinErrors(e.FieldErrors)
}

// Unwrap returns ErrInvalidPackagingConfig for errors.Is() compatibility.
func (e *InvalidPackagingConfigError) Unwrap() error { return ErrInvalidPackagingConfig }

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Packaging.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return "invalid config: " + joinErrors(e.FieldErrors)
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// DefaultConfig returns the configuration used when no file sets a value.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: LogLevelInfo,
		UI: UIConfig{
			Verbose:     false,
			ColorScheme: ColorSchemeAuto,
		},
		Packaging: PackagingConfig{
			SourcesDir:    "src/package",
			BuildDir:      "target",
			AtomicPublish: true,
			XZDictCap:     8 << 20,
		},
	}
}
