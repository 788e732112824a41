// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/invowk/runpack/internal/testutil"
	"github.com/invowk/runpack/pkg/attachment"
	"github.com/invowk/runpack/pkg/bundle"
	"github.com/invowk/runpack/pkg/contrib"
	"github.com/invowk/runpack/pkg/coordinate"
	"github.com/invowk/runpack/pkg/descriptor"
	"github.com/invowk/runpack/pkg/merge"
	"github.com/invowk/runpack/pkg/packager"
	"github.com/invowk/runpack/pkg/propfile"
)

const bundleCount = 8

var timestamp = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// sampleDescriptor returns a descriptor with n jar dependencies and
// bundleCount packaging bundles.
func sampleDescriptor(n int) string {
	var b strings.Builder
	b.WriteString(`module: {group_id: "com.example", artifact_id: "app", version: "1.0"}` + "\n")
	b.WriteString("dependencies: [\n")
	for i := range n {
		fmt.Fprintf(&b, "\t{group_id: \"com.example.lib\", artifact_id: \"lib%03d\", version: \"1.%d\", file: \"lib/lib%03d.jar\"},\n", i, i, i)
	}
	for i := range bundleCount {
		fmt.Fprintf(&b, "\t{group_id: \"com.example.pkg\", artifact_id: \"base%d\", version: \"1.0\", type: \"zip\", classifier: \"packaging\", file: \"lib/base%d.zip\"},\n", i, i)
	}
	b.WriteString("]\n")
	return b.String()
}

func sampleProperties(prefix string, n int) string {
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, "%s.key%03d=${HOME}/value %d\n", prefix, i, i)
	}
	return b.String()
}

func sampleAttachments(prefix string, n int) string {
	var b strings.Builder
	b.WriteString("<attachments>\n")
	for i := range n {
		fmt.Fprintf(&b, "<attachment><name>%s%d</name><groupId>g</groupId><artifactId>a%d</artifactId><type>jar</type><version>1</version></attachment>\n", prefix, i, i)
	}
	b.WriteString("</attachments>\n")
	return b.String()
}

func BenchmarkDescriptorParse(b *testing.B) {
	data := []byte(sampleDescriptor(200))
	b.ReportAllocs()
	for b.Loop() {
		if _, err := descriptor.Parse(data, descriptor.FileName, "/work"); err != nil {
			b.Fatalf("Parse() error = %v", err)
		}
	}
}

func BenchmarkPropertiesLoad(b *testing.B) {
	data := []byte(sampleProperties("env", 500))
	b.ReportAllocs()
	for b.Loop() {
		if _, err := propfile.Load(data); err != nil {
			b.Fatalf("Load() error = %v", err)
		}
	}
}

func BenchmarkAttachmentParse(b *testing.B) {
	data := []byte(sampleAttachments("lib", 200))
	b.ReportAllocs()
	for b.Loop() {
		if _, err := attachment.Parse(bytes.NewReader(data), "bench"); err != nil {
			b.Fatalf("Parse() error = %v", err)
		}
	}
}

func BenchmarkFold(b *testing.B) {
	contribs := make([]contrib.Contribution, bundleCount)
	for i := range contribs {
		env, err := propfile.Load([]byte(sampleProperties(fmt.Sprintf("env%d", i), 200)))
		if err != nil {
			b.Fatal(err)
		}
		sys, err := propfile.Load([]byte(sampleProperties(fmt.Sprintf("sys%d", i), 200)))
		if err != nil {
			b.Fatal(err)
		}
		contribs[i] = contrib.Contribution{
			Origin:      contrib.Origin(fmt.Sprintf("g:base%d:zip:packaging:1.0", i)),
			Environment: env,
			System:      sys,
		}
	}
	contribs[0].CommandArguments = []byte("-Dport=${PORT}")

	b.ReportAllocs()
	for b.Loop() {
		if _, err := merge.Fold(contribs...); err != nil {
			b.Fatalf("Fold() error = %v", err)
		}
	}
}

func BenchmarkBundleMarshal(b *testing.B) {
	env, err := propfile.Load([]byte(sampleProperties("env", 500)))
	if err != nil {
		b.Fatal(err)
	}
	deps := make([]string, 300)
	for i := range deps {
		deps[i] = coordinate.Coordinate{
			GroupID:    "com.example",
			ArtifactID: fmt.Sprintf("lib%03d", i),
			Type:       "jar",
			Version:    "1.0",
		}.String()
	}
	c := &bundle.Contents{
		Dependencies:     deps,
		Environment:      env,
		System:           env,
		CommandArguments: []byte("-Dport=${PORT}"),
	}
	opts := bundle.WriteOptions{Timestamp: timestamp, DictCap: 1 << 20}

	b.ReportAllocs()
	for b.Loop() {
		if _, err := bundle.Marshal(c, opts); err != nil {
			b.Fatalf("Marshal() error = %v", err)
		}
	}
}

// BenchmarkPackage runs the complete pipeline: bundle reads, merge, scan,
// compression and atomic publish.
func BenchmarkPackage(b *testing.B) {
	dir := b.TempDir()
	testutil.WriteFiles(b, dir, map[string]string{
		"src/package/environment.properties": sampleProperties("module", 100),
		"src/package/attachments.xml":        sampleAttachments("own", 20),
	})
	testutil.MustMkdirAll(b, filepath.Join(dir, "lib"), 0o755)
	for i := range bundleCount {
		files := map[string]string{
			"environment.properties": sampleProperties(fmt.Sprintf("b%d", i), 100),
			"system.properties":      sampleProperties(fmt.Sprintf("s%d", i), 50),
			"attachments.xml":        sampleAttachments(fmt.Sprintf("b%d-", i), 10),
		}
		if i == 0 {
			files["commandArguments"] = "-Xmx${HEAP} -Dport=${PORT}"
		}
		testutil.WriteBundle(b, filepath.Join(dir, "lib", fmt.Sprintf("base%d.zip", i)), files)
	}

	proj, err := descriptor.Parse([]byte(sampleDescriptor(100)), descriptor.FileName, dir)
	if err != nil {
		b.Fatalf("Parse() error = %v", err)
	}
	req := packager.Request{
		Module:       proj.ModuleArtifact(),
		Dependencies: proj.Artifacts(),
		SourcesDir:   filepath.Join(dir, "src", "package"),
		OutputDir:    filepath.Join(dir, "target"),
		FinalName:    proj.DefaultFinalName(),
		Timestamp:    timestamp,
		Atomic:       true,
		XZDictCap:    1 << 20,
	}
	p := packager.New()

	b.ReportAllocs()
	for b.Loop() {
		if _, err := p.Package(context.Background(), req); err != nil {
			b.Fatalf("Package() error = %v", err)
		}
	}
}
