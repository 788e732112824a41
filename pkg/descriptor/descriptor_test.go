// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/invowk/runpack/internal/testutil"
	"github.com/invowk/runpack/pkg/attachment"
	"github.com/invowk/runpack/pkg/coordinate"
)

const sampleDescriptor = `
module: {group_id: "com.example", artifact_id: "app", version: "1.0", file: "target/app-1.0.jar"}
classifier: "linux"
sources: "src/package"
dependencies: [
	{group_id: "com.example", artifact_id: "lib", version: "2.0", file: "lib/lib.jar"},
	{group_id: "com.example", artifact_id: "base", version: "1.0", type: "zip", classifier: "packaging", file: "/abs/base.zip"},
]
attachments: [
	{name: "agent", group_id: "org.agent", artifact_id: "agent", version: "3"},
]
`

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{FileName: sampleDescriptor})

	p, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if p.Dir != dir {
		t.Errorf("Dir = %q, want %q", p.Dir, dir)
	}
	if p.Module.Packaging != "jar" {
		t.Errorf("Packaging = %q, want default jar", p.Module.Packaging)
	}
	if p.Sources != filepath.Join(dir, "src", "package") {
		t.Errorf("Sources = %q", p.Sources)
	}
	if p.DefaultFinalName() != "app-1.0" {
		t.Errorf("DefaultFinalName() = %q", p.DefaultFinalName())
	}

	want := []coordinate.Artifact{
		{
			Coordinate: coordinate.Coordinate{GroupID: "com.example", ArtifactID: "lib", Type: "jar", Version: "2.0"},
			File:       filepath.Join(dir, "lib", "lib.jar"),
		},
		{
			Coordinate: coordinate.Coordinate{GroupID: "com.example", ArtifactID: "base", Type: "zip", Classifier: "packaging", Version: "1.0"},
			File:       "/abs/base.zip",
		},
	}
	if diff := cmp.Diff(want, p.Artifacts()); diff != "" {
		t.Errorf("Artifacts() mismatch (-want +got):\n%s", diff)
	}

	module := p.ModuleArtifact()
	if module == nil || module.String() != "com.example:app:jar:1.0" {
		t.Errorf("ModuleArtifact() = %v", module)
	}
	if module.File != filepath.Join(dir, "target", "app-1.0.jar") {
		t.Errorf("ModuleArtifact().File = %q", module.File)
	}

	wantDecls := []attachment.Declaration{
		{Name: "agent", GroupID: "org.agent", ArtifactID: "agent", Type: "jar", Version: "3"},
	}
	if diff := cmp.Diff(wantDecls, p.AttachmentDeclarations()); diff != "" {
		t.Errorf("AttachmentDeclarations() mismatch (-want +got):\n%s", diff)
	}
}

func TestPomModuleHasNoArtifact(t *testing.T) {
	t.Parallel()

	p, err := Parse([]byte(`module: {group_id: "g", artifact_id: "parent", version: "1", packaging: "pom"}
final_name: "dist"`), "runpack.cue", "")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.ModuleArtifact() != nil {
		t.Error("pom module should have no artifact")
	}
	if p.DefaultFinalName() != "dist" {
		t.Errorf("DefaultFinalName() = %q", p.DefaultFinalName())
	}
	if len(p.Dependencies) != 0 || len(p.Attachments) != 0 {
		t.Errorf("lists should default to empty: %+v", p)
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantSub string
	}{
		{
			name:    "missing module",
			data:    `final_name: "x"`,
			wantSub: "module",
		},
		{
			name:    "dependency without file",
			data:    "module: {group_id: \"g\", artifact_id: \"a\", version: \"1\"}\ndependencies: [{group_id: \"g\", artifact_id: \"b\", version: \"1\"}]",
			wantSub: "dependencies[0].file",
		},
		{
			name:    "empty version",
			data:    `module: {group_id: "g", artifact_id: "a", version: ""}`,
			wantSub: "module.version",
		},
		{
			name:    "unknown field",
			data:    "module: {group_id: \"g\", artifact_id: \"a\", version: \"1\"}\noutput: \"x\"",
			wantSub: "output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.data), "runpack.cue", "")
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}
