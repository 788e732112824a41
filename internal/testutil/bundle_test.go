// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/zip"
	"io"
	"path/filepath"
	"testing"
)

func TestZipDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	WriteFiles(t, filepath.Join(dir, "src"), map[string]string{
		"commandArguments":  "run",
		"nested/notes.txt":  "n",
		"system.properties": "a=1\n",
	})

	out := filepath.Join(dir, "out.zip")
	if err := ZipDir(out, filepath.Join(dir, "src")); err != nil {
		t.Fatalf("ZipDir() error = %v", err)
	}

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer MustClose(t, zr)

	want := []string{"commandArguments", "nested/notes.txt", "system.properties"}
	if len(zr.File) != len(want) {
		t.Fatalf("zip holds %d files, want %d", len(zr.File), len(want))
	}
	for i, f := range zr.File {
		if f.Name != want[i] {
			t.Errorf("entry %d = %q, want %q", i, f.Name, want[i])
		}
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer MustClose(t, rc)
	data, err := io.ReadAll(rc)
	if err != nil || string(data) != "run" {
		t.Errorf("commandArguments = %q, %v", data, err)
	}
}
