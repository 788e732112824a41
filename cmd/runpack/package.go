// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/invowk/runpack/internal/config"
	"github.com/invowk/runpack/internal/issue"
	"github.com/invowk/runpack/internal/report"
	"github.com/invowk/runpack/internal/watch"
	"github.com/invowk/runpack/pkg/bundle"
	"github.com/invowk/runpack/pkg/descriptor"
	"github.com/invowk/runpack/pkg/packager"
	"github.com/invowk/runpack/pkg/types"
)

// SourceDateEpochEnv pins the archive timestamp for reproducible builds.
const SourceDateEpochEnv = "SOURCE_DATE_EPOCH"

// ErrInvalidTimestamp is returned for --timestamp or SOURCE_DATE_EPOCH
// values that are neither RFC 3339 nor unix seconds.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

type packageFlags struct {
	classifier string
	finalName  string
	outputDir  string
	sources    string
	timestamp  string
	reportPath string
	noAtomic   bool
	watch      bool
}

func newPackageCommand(app *App, root *rootFlags) *cobra.Command {
	flags := &packageFlags{}

	cmd := &cobra.Command{
		Use:   "package [descriptor]",
		Short: "Build the runtime bundle of a module",
		Long: `Build the runtime bundle of a module.

The project descriptor (default: ./` + descriptor.FileName + `) names the module and
its resolved dependencies. Packaging resources are read from the module's
sources directory, from attachments declared in the descriptor, and from every
dependency of type zip with classifier packaging. Each name may be defined by
exactly one of them; exactly one must supply the commandArguments template.

The archive timestamp is taken from --timestamp, then ` + SourceDateEpochEnv + `,
then the current time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := descriptor.FileName
			if len(args) == 1 {
				path = args[0]
			}
			return runPackage(cmd.Context(), app, root, flags, path)
		},
	}

	cmd.Flags().StringVar(&flags.classifier, "classifier", "", "classifier appended to the bundle file name")
	cmd.Flags().StringVar(&flags.finalName, "final-name", "", "bundle base name (default: <artifactId>-<version>)")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "directory receiving the bundle (default: packaging.build_dir)")
	cmd.Flags().StringVar(&flags.sources, "sources", "", "module packaging sources (default: packaging.sources_dir)")
	cmd.Flags().StringVar(&flags.timestamp, "timestamp", "", "archive entry time, RFC 3339 or unix seconds")
	cmd.Flags().StringVar(&flags.reportPath, "report", "", "write a TOML build report to this file")
	cmd.Flags().BoolVar(&flags.noAtomic, "no-atomic", false, "write the bundle in place instead of renaming a temporary file")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "package again whenever a file under the descriptor directory changes")

	return cmd
}

func runPackage(ctx context.Context, app *App, root *rootFlags, flags *packageFlags, path string) error {
	sess, err := app.startSession(ctx, root)
	if err != nil {
		return app.fail(nil, root.verbose, err)
	}
	if _, err := resolveTimestamp(flags.timestamp, os.Getenv, app.Clock); err != nil {
		return &ExitError{Code: types.ExitUsage, Err: err}
	}

	err = app.packageOnce(ctx, sess, root, flags, path)
	if !flags.watch {
		return err
	}
	return app.watchAndPackage(ctx, sess, root, flags, path)
}

// packageOnce loads the descriptor and publishes one bundle. Failures are
// reported before returning.
func (a *App) packageOnce(ctx context.Context, sess *session, root *rootFlags, flags *packageFlags, path string) error {
	ts, err := resolveTimestamp(flags.timestamp, os.Getenv, a.Clock)
	if err != nil {
		return &ExitError{Code: types.ExitUsage, Err: err}
	}

	proj, err := loadDescriptor(path)
	if err != nil {
		return a.fail(sess, root.verbose, err)
	}

	req := buildRequest(proj, sess.loaded.Config, flags, ts)
	sess.logger.Debug("packaging", "descriptor", path, "sources", req.SourcesDir, "output", req.OutputDir)

	res, err := a.newPackager(sess.logger).Package(ctx, req)
	if err != nil {
		return a.fail(sess, root.verbose, err)
	}

	fmt.Fprintf(a.stdout, "%s Packaged %s\n", SuccessStyle.Render("✓"), res.Path)
	if len(res.ReferencedNames) > 0 {
		fmt.Fprintf(a.stdout, "  %s %s\n", SubtitleStyle.Render("references:"), strings.Join(res.ReferencedNames, ", "))
	}

	if flags.reportPath != "" {
		rep, err := report.New(res)
		if err == nil {
			err = rep.WriteFile(flags.reportPath)
		}
		if err != nil {
			return a.fail(sess, root.verbose, issue.NewErrorContext().
				WithOperation(issue.OperationWriteReport).
				WithResource(flags.reportPath).
				Wrap(err).
				BuildError())
		}
		sess.logger.Info("wrote build report", "path", flags.reportPath)
	}
	return nil
}

func loadDescriptor(path string) (*descriptor.Project, error) {
	proj, err := descriptor.Load(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation(issue.OperationLoadDescriptor).
			WithResource(path).
			WithSuggestion("Pass the descriptor path as the first argument").
			Wrap(err).
			BuildError()
	}
	return proj, nil
}

// watchAndPackage re-packages whenever a file under the descriptor's
// directory changes, until ctx is canceled. The output directory and the
// report file are excluded.
func (a *App) watchAndPackage(ctx context.Context, sess *session, root *rootFlags, flags *packageFlags, path string) error {
	proj, err := loadDescriptor(path)
	if err != nil {
		return a.fail(sess, root.verbose, err)
	}
	req := buildRequest(proj, sess.loaded.Config, flags, time.Time{})

	var exclude []string
	for _, out := range []string{req.OutputDir, flags.reportPath} {
		exclude = append(exclude, excludeGlobs(proj.Dir, out)...)
	}

	w, err := watch.New(watch.Config{
		Dir:     proj.Dir,
		Exclude: exclude,
		Logger:  sess.logger,
		OnChange: func(ctx context.Context, _ []string) error {
			err := a.packageOnce(ctx, sess, root, flags, path)
			var exitErr *ExitError
			if errors.As(err, &exitErr) && exitErr.Reported {
				return nil
			}
			return err
		},
	})
	if err != nil {
		return a.fail(sess, root.verbose, issue.Wrap(err, issue.OperationWatch, proj.Dir))
	}

	fmt.Fprintf(a.stdout, "%s %s\n", SubtitleStyle.Render("Watching"), proj.Dir)
	if err := w.Run(ctx); err != nil {
		return a.fail(sess, root.verbose, issue.Wrap(err, issue.OperationWatch, proj.Dir))
	}
	return nil
}

// excludeGlobs returns doublestar globs matching path and everything below
// it, relative to dir. Paths outside dir need no exclusion.
func excludeGlobs(dir, path string) []string {
	if path == "" {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	rel = filepath.ToSlash(rel)
	return []string{rel, rel + "/**"}
}

// buildRequest applies flag > descriptor > configuration precedence.
// Configured directories are relative to the descriptor.
func buildRequest(proj *descriptor.Project, cfg *config.Config, flags *packageFlags, ts time.Time) packager.Request {
	req := packager.Request{
		Module:       proj.ModuleArtifact(),
		Dependencies: proj.Artifacts(),
		Attachments:  proj.AttachmentDeclarations(),
		SourcesDir:   firstNonEmpty(flags.sources, proj.Sources, underDir(proj.Dir, string(cfg.Packaging.SourcesDir))),
		OutputDir:    firstNonEmpty(flags.outputDir, proj.BuildDir, underDir(proj.Dir, string(cfg.Packaging.BuildDir))),
		FinalName:    firstNonEmpty(flags.finalName, proj.DefaultFinalName()),
		Classifier:   firstNonEmpty(flags.classifier, proj.Classifier),
		Timestamp:    ts,
		Atomic:       cfg.Packaging.AtomicPublish && !flags.noAtomic,
		XZDictCap:    int(cfg.Packaging.XZDictCap),
	}
	return req
}

// resolveTimestamp returns the archive timestamp from flag, then the
// SOURCE_DATE_EPOCH environment variable, then clock.
func resolveTimestamp(flag string, getenv func(string) string, clock Clock) (time.Time, error) {
	if flag != "" {
		return parseTimestamp(flag)
	}
	if epoch := getenv(SourceDateEpochEnv); epoch != "" {
		ts, err := parseTimestamp(epoch)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s: %w", SourceDateEpochEnv, err)
		}
		return ts, nil
	}
	return bundle.Timestamp(clock.Now()), nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: want RFC 3339 or unix seconds", ErrInvalidTimestamp, s)
	}
	return bundle.Timestamp(ts), nil
}

func underDir(dir, path string) string {
	if path == "" || filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, filepath.FromSlash(path))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
