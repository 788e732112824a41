// SPDX-License-Identifier: MPL-2.0

// Package report writes a TOML summary of a packaging run.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/invowk/runpack/pkg/packager"
)

type (
	// Report summarizes one published runtime bundle.
	Report struct {
		Output    Output    `toml:"output"`
		Timestamp time.Time `toml:"timestamp"`
		// Dependencies are canonical coordinates in archive order.
		Dependencies []string `toml:"dependencies"`
		// Bundles are the packaging bundles whose resources were merged.
		Bundles         []string `toml:"bundles"`
		Origins         []string `toml:"origins"`
		ReferencedNames []string `toml:"referenced_names"`
	}

	// Output identifies the produced file.
	Output struct {
		Path       string `toml:"path"`
		Type       string `toml:"type"`
		Classifier string `toml:"classifier,omitempty"`
		Size       int64  `toml:"size"`
		SHA256     string `toml:"sha256"`
	}
)

// New builds a report for res, hashing the published file.
func New(res *packager.Result) (*Report, error) {
	size, sum, err := digest(res.Path)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Output: Output{
			Path:       res.Path,
			Type:       res.Output.Type,
			Classifier: res.Output.Classifier,
			Size:       size,
			SHA256:     sum,
		},
		Timestamp:       res.Timestamp.UTC(),
		Dependencies:    make([]string, 0, len(res.Dependencies)),
		Bundles:         make([]string, 0, len(res.Bundles)),
		Origins:         make([]string, 0, len(res.Origins)),
		ReferencedNames: append([]string{}, res.ReferencedNames...),
	}
	for _, dep := range res.Dependencies {
		r.Dependencies = append(r.Dependencies, dep.String())
	}
	for _, b := range res.Bundles {
		r.Bundles = append(r.Bundles, b.String())
	}
	for _, o := range res.Origins {
		r.Origins = append(r.Origins, string(o))
	}
	return r, nil
}

func digest(path string) (size int64, sum string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("failed to open bundle for hashing: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	h := sha256.New()
	size, err = io.Copy(h, f)
	if err != nil {
		return 0, "", fmt.Errorf("failed to hash bundle: %w", err)
	}
	return size, hex.EncodeToString(h.Sum(nil)), nil
}

// Encode writes r as TOML.
func (r *Report) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(r)
}

// WriteFile writes r to path.
func (r *Report) WriteFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close report: %w", closeErr)
		}
	}()
	return r.Encode(f)
}

// Read decodes a report produced by Encode.
func Read(rd io.Reader) (*Report, error) {
	var r Report
	if err := toml.NewDecoder(rd).DisallowUnknownFields().Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}
