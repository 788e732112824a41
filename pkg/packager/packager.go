// SPDX-License-Identifier: MPL-2.0

package packager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/invowk/runpack/internal/issue"
	"github.com/invowk/runpack/pkg/attachment"
	"github.com/invowk/runpack/pkg/bundle"
	"github.com/invowk/runpack/pkg/contrib"
	"github.com/invowk/runpack/pkg/coordinate"
	"github.com/invowk/runpack/pkg/merge"
	"github.com/invowk/runpack/pkg/tmplref"
)

const operation = issue.OperationPackage

// ErrInvalidRequest is returned for requests missing an output location.
var ErrInvalidRequest = errors.New("invalid packaging request")

type (
	// Request describes one packaging run.
	Request struct {
		// Module is the module's own artifact. It is nil for modules that
		// produce no artifact of their own.
		Module *coordinate.Artifact
		// Dependencies are the resolved dependency artifacts.
		Dependencies []coordinate.Artifact
		// SourcesDir holds the module's own contribution resources. An empty
		// or missing directory contributes nothing.
		SourcesDir string
		// Attachments are declared by the project descriptor.
		Attachments []attachment.Declaration

		OutputDir  string
		FinalName  string
		Classifier string
		Timestamp  time.Time
		Atomic     bool
		XZDictCap  int
	}

	// Output is what the caller registers as a build output.
	Output struct {
		Type       string `json:"type"`
		Classifier string `json:"classifier,omitempty"`
	}

	// Result describes a published runtime bundle.
	Result struct {
		Path      string
		Output    Output
		Timestamp time.Time
		// Dependencies are the shipped artifacts, bundles excluded.
		Dependencies []coordinate.Artifact
		// Bundles are the packaging bundles whose contributions were merged.
		Bundles []coordinate.Artifact
		// Origins lists every origin in visit order.
		Origins []contrib.Origin
		// ReferencedNames are the configuration names the merged properties
		// and command-argument template refer to, sorted.
		ReferencedNames []string
		Contents        *bundle.Contents
	}

	// Packager runs packaging requests.
	Packager struct {
		logger    *slog.Logger
		extractor tmplref.Extractor
		open      contrib.Opener
	}

	// Option configures a Packager.
	Option func(*Packager)
)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(p *Packager) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithExtractor replaces the template-reference extractor.
func WithExtractor(e tmplref.Extractor) Option {
	return func(p *Packager) {
		if e != nil {
			p.extractor = e
		}
	}
}

// WithBundleOpener replaces the function used to open packaging bundles.
func WithBundleOpener(open contrib.Opener) Option {
	return func(p *Packager) {
		if open != nil {
			p.open = open
		}
	}
}

// New returns a Packager with the given options applied.
func New(opts ...Option) *Packager {
	p := &Packager{
		logger:    slog.New(slog.DiscardHandler),
		extractor: tmplref.Default,
		open:      contrib.OpenZip,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Package merges every origin's contribution and publishes the runtime bundle.
//
// Conflicts are returned as *merge.DuplicateDefinitionError,
// *merge.DuplicateCommandArgumentsError, merge.ErrMissingCommandArguments,
// *attachment.DuplicateAttachmentError or *attachment.MalformedDeclarationError.
// Read and write failures are returned as *issue.ActionableError.
func (p *Packager) Package(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	shipped, bundles, err := partition(req)
	if err != nil {
		return nil, err
	}

	contribs, err := p.readOrigins(req, bundles)
	if err != nil {
		return nil, err
	}

	state, err := merge.Fold(contribs...)
	if err != nil {
		return nil, err
	}

	contents := bundle.FromState(shipped, state)
	names := p.referencedNames(state)

	opts := bundle.WriteOptions{
		Timestamp: req.Timestamp,
		DictCap:   req.XZDictCap,
		Atomic:    req.Atomic,
	}
	fileName := bundle.FileName(req.FinalName, req.Classifier)
	path, err := bundle.Publish(req.OutputDir, fileName, contents, opts)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation(operation).
			WithResource(fileName).
			WithSuggestion("Check that the output directory is writable and has free space").
			Wrap(err).
			BuildError()
	}

	p.logger.Info("runtime bundle written",
		"path", path,
		"dependencies", len(shipped),
		"bundles", len(bundles))

	return &Result{
		Path:            path,
		Output:          Output{Type: bundle.MediaType, Classifier: req.Classifier},
		Timestamp:       bundle.Timestamp(req.Timestamp),
		Dependencies:    shipped,
		Bundles:         bundles,
		Origins:         state.Origins(),
		ReferencedNames: names,
		Contents:        contents,
	}, nil
}

func (r Request) validate() error {
	switch {
	case r.OutputDir == "":
		return fmt.Errorf("%w: output directory is required", ErrInvalidRequest)
	case r.FinalName == "":
		return fmt.Errorf("%w: final name is required", ErrInvalidRequest)
	}
	return nil
}

// partition orders the artifact set and splits off the packaging bundles.
func partition(req Request) (shipped, bundles []coordinate.Artifact, err error) {
	all := slices.Clone(req.Dependencies)
	if req.Module != nil {
		all = append(all, *req.Module)
	}

	for _, a := range coordinate.SortedSet(all) {
		if err := a.Validate(); err != nil {
			return nil, nil, fmt.Errorf("%w: artifact %s: %w", ErrInvalidRequest, a.String(), err)
		}
		if a.IsPackagingBundle() {
			bundles = append(bundles, a)
			continue
		}
		shipped = append(shipped, a)
	}
	return shipped, bundles, nil
}

func (p *Packager) readOrigins(req Request, bundles []coordinate.Artifact) ([]contrib.Contribution, error) {
	contribs := make([]contrib.Contribution, 0, len(bundles)+2)

	if req.SourcesDir != "" {
		c, err := contrib.ReadDir(req.SourcesDir, contrib.ModuleSource)
		if err != nil {
			return nil, wrapReadError(err)
		}
		p.logger.Debug("read origin", "origin", c.Origin, "dir", req.SourcesDir, "empty", c.IsEmpty())
		contribs = append(contribs, c)
	}

	if len(req.Attachments) > 0 {
		c, err := contrib.FromDeclarations(req.Attachments)
		if err != nil {
			return nil, err
		}
		contribs = append(contribs, c)
	}

	for _, b := range bundles {
		c, err := contrib.ReadBundle(p.open, b.File, contrib.Origin(b.String()))
		if err != nil {
			return nil, wrapReadError(err)
		}
		p.logger.Debug("read origin", "origin", c.Origin, "file", b.File, "empty", c.IsEmpty())
		contribs = append(contribs, c)
	}

	return contribs, nil
}

// referencedNames scans merged property values and the template. Extraction
// failures are logged and never abort packaging.
func (p *Packager) referencedNames(state *merge.State) []string {
	names := make(map[string]struct{})
	add := func(name string) { names[name] = struct{}{} }

	for _, acc := range []*merge.Accumulator{state.Environment, state.System} {
		values := acc.Values()
		for _, name := range slices.Sorted(maps.Keys(values)) {
			if err := p.extractor.Extract(values[name], add); err != nil {
				origin, _ := acc.Origin(name)
				p.logger.Warn("cannot scan property value for references",
					"kind", acc.Kind(), "name", name, "origin", origin, "error", err)
			}
		}
	}

	tmpl, origin := state.CommandArguments()
	if err := p.extractor.Extract(string(tmpl), add); err != nil {
		p.logger.Warn("cannot scan command arguments for references", "origin", origin, "error", err)
	}

	sorted := slices.Sorted(maps.Keys(names))
	p.logger.Info("referenced configuration names", "names", sorted)
	return sorted
}

// wrapReadError turns I/O failures into actionable errors and passes
// declaration errors through unchanged.
func wrapReadError(err error) error {
	var readErr *contrib.ReadError
	if !errors.As(err, &readErr) {
		return err
	}
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(readErr.Origin.String()).
		Wrap(err).
		BuildError()
}
