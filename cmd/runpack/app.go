// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/invowk/runpack/internal/config"
	"github.com/invowk/runpack/internal/logging"
	"github.com/invowk/runpack/pkg/contrib"
	"github.com/invowk/runpack/pkg/packager"
)

type (
	// App wires CLI services and shared dependencies. Cobra handlers receive
	// an App and delegate to its services.
	App struct {
		Config config.Provider
		Clock  Clock
		// OpenBundle opens packaging bundles. Nil selects zip files.
		OpenBundle contrib.Opener
		stdout     io.Writer
		stderr     io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     config.Provider
		Clock      Clock
		OpenBundle contrib.Opener
		Stdout     io.Writer
		Stderr     io.Writer
	}

	// Clock supplies the archive timestamp when neither --timestamp nor
	// SOURCE_DATE_EPOCH is set.
	Clock interface {
		Now() time.Time
	}

	systemClock struct{}

	// session is the per-invocation state shared by subcommands.
	session struct {
		loaded *config.Loaded
		logger *slog.Logger
	}
)

func (systemClock) Now() time.Time { return time.Now() }

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Clock == nil {
		deps.Clock = systemClock{}
	}

	return &App{
		Config:     deps.Config,
		Clock:      deps.Clock,
		OpenBundle: deps.OpenBundle,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
}

// startSession loads configuration and builds the logger. --verbose or
// ui.verbose lowers the level to debug.
func (a *App) startSession(ctx context.Context, flags *rootFlags) (*session, error) {
	loaded, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}

	level := string(loaded.Config.LogLevel)
	if flags.verbose || loaded.Config.UI.Verbose {
		flags.verbose = true
		level = string(config.LogLevelDebug)
	}
	logger, err := logging.New(a.stderr, level)
	if err != nil {
		return nil, err
	}
	return &session{loaded: loaded, logger: logger}, nil
}

func (a *App) newPackager(logger *slog.Logger) *packager.Packager {
	return packager.New(
		packager.WithLogger(logger),
		packager.WithBundleOpener(a.OpenBundle),
	)
}
