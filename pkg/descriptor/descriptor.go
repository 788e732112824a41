// SPDX-License-Identifier: MPL-2.0

// Package descriptor loads the project descriptor (runpack.cue).
//
// The descriptor is written by the build step that resolved the module's
// dependency graph. It names the module, every resolved dependency with the
// file it resolved to, attachments declared outside the packaging sources,
// and optional packaging settings:
//
//	module: {group_id: "com.example", artifact_id: "app", version: "1.0"}
//	dependencies: [
//		{group_id: "com.example", artifact_id: "lib", version: "1.0", file: "lib/lib-1.0.jar"},
//		{group_id: "com.example", artifact_id: "base", version: "1.0",
//		 type: "zip", classifier: "packaging", file: "lib/base-1.0-packaging.zip"},
//	]
package descriptor

import (
	_ "embed"
	"path/filepath"

	"github.com/invowk/runpack/pkg/attachment"
	"github.com/invowk/runpack/pkg/coordinate"
	"github.com/invowk/runpack/pkg/cueutil"
)

const (
	// FileName is the default descriptor file name.
	FileName = "runpack.cue"

	// PomPackaging marks a module that produces no artifact of its own.
	PomPackaging = "pom"
)

//go:embed project_schema.cue
var projectSchema []byte

type (
	// Module is the module being packaged.
	Module struct {
		GroupID    string `json:"group_id"`
		ArtifactID string `json:"artifact_id"`
		Version    string `json:"version"`
		Packaging  string `json:"packaging"`
		Classifier string `json:"classifier,omitempty"`
		File       string `json:"file,omitempty"`
	}

	// Dependency is a resolved dependency artifact.
	Dependency struct {
		GroupID    string `json:"group_id"`
		ArtifactID string `json:"artifact_id"`
		Version    string `json:"version"`
		Type       string `json:"type"`
		Classifier string `json:"classifier,omitempty"`
		File       string `json:"file"`
	}

	// Attachment is an attachment declared in the descriptor.
	Attachment struct {
		Name       string `json:"name"`
		GroupID    string `json:"group_id"`
		ArtifactID string `json:"artifact_id"`
		Version    string `json:"version"`
		Type       string `json:"type"`
		Classifier string `json:"classifier,omitempty"`
	}

	// Project is a decoded descriptor. Relative paths are resolved against
	// Dir by Load.
	Project struct {
		Module       Module       `json:"module"`
		FinalName    string       `json:"final_name,omitempty"`
		Classifier   string       `json:"classifier,omitempty"`
		Sources      string       `json:"sources,omitempty"`
		BuildDir     string       `json:"build_dir,omitempty"`
		Dependencies []Dependency `json:"dependencies"`
		Attachments  []Attachment `json:"attachments"`

		// Dir is the directory holding the descriptor.
		Dir string `json:"-"`
	}
)

// Load reads and validates the descriptor at path.
func Load(path string) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	res, err := cueutil.ParseFile[Project](projectSchema, abs, "#Project")
	if err != nil {
		return nil, err
	}
	p := res.Value
	p.Dir = filepath.Dir(abs)
	p.resolvePaths()
	return p, nil
}

// Parse decodes descriptor data. Relative paths are resolved against dir.
func Parse(data []byte, filename, dir string) (*Project, error) {
	res, err := cueutil.ParseAndDecode[Project](projectSchema, data, "#Project", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	p := res.Value
	p.Dir = dir
	p.resolvePaths()
	return p, nil
}

func (p *Project) resolvePaths() {
	p.Module.File = p.resolve(p.Module.File)
	p.Sources = p.resolve(p.Sources)
	p.BuildDir = p.resolve(p.BuildDir)
	for i := range p.Dependencies {
		p.Dependencies[i].File = p.resolve(p.Dependencies[i].File)
	}
}

func (p *Project) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || p.Dir == "" {
		return path
	}
	return filepath.Join(p.Dir, filepath.FromSlash(path))
}

// ModuleArtifact returns the module's own artifact, or nil for pom modules.
func (p *Project) ModuleArtifact() *coordinate.Artifact {
	if p.Module.Packaging == PomPackaging {
		return nil
	}
	return &coordinate.Artifact{
		Coordinate: coordinate.Coordinate{
			GroupID:    p.Module.GroupID,
			ArtifactID: p.Module.ArtifactID,
			Type:       p.Module.Packaging,
			Classifier: p.Module.Classifier,
			Version:    p.Module.Version,
		},
		File: p.Module.File,
	}
}

// Artifacts returns the resolved dependencies.
func (p *Project) Artifacts() []coordinate.Artifact {
	out := make([]coordinate.Artifact, len(p.Dependencies))
	for i, d := range p.Dependencies {
		out[i] = coordinate.Artifact{
			Coordinate: coordinate.Coordinate{
				GroupID:    d.GroupID,
				ArtifactID: d.ArtifactID,
				Type:       d.Type,
				Classifier: d.Classifier,
				Version:    d.Version,
			},
			File: d.File,
		}
	}
	return out
}

// AttachmentDeclarations returns the descriptor's attachments.
func (p *Project) AttachmentDeclarations() []attachment.Declaration {
	out := make([]attachment.Declaration, len(p.Attachments))
	for i, a := range p.Attachments {
		out[i] = attachment.Declaration{
			Name:       a.Name,
			GroupID:    a.GroupID,
			ArtifactID: a.ArtifactID,
			Classifier: a.Classifier,
			Type:       a.Type,
			Version:    a.Version,
		}
	}
	return out
}

// DefaultFinalName returns final_name, or `<artifactId>-<version>`.
func (p *Project) DefaultFinalName() string {
	if p.FinalName != "" {
		return p.FinalName
	}
	return p.Module.ArtifactID + "-" + p.Module.Version
}
