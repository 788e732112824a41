// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/invowk/runpack/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Path != "" && !strings.HasSuffix(loaded.Path, "config.cue") {
		t.Errorf("Path = %q", loaded.Path)
	}
	if loaded.Path == "" {
		if diff := cmp.Diff(DefaultConfig(), loaded.Config); diff != "" {
			t.Errorf("defaults mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestLoadFromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `
log_level: "debug"
packaging: {
	build_dir:   "out"
	xz_dict_cap: 65536
}
`)

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Path != path {
		t.Errorf("Path = %q, want %q", loaded.Path, path)
	}

	cfg := loaded.Config
	if cfg.LogLevel != LogLevelDebug {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Packaging.BuildDir != "out" || cfg.Packaging.XZDictCap != 65536 {
		t.Errorf("Packaging = %+v", cfg.Packaging)
	}
	if cfg.Packaging.SourcesDir != "src/package" || !cfg.Packaging.AtomicPublish {
		t.Errorf("unset packaging keys should keep defaults: %+v", cfg.Packaging)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), `ui: {verbose: true, color_scheme: "dark"}`)

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !loaded.Config.UI.Verbose || loaded.Config.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("UI = %+v", loaded.Config.UI)
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	var actionable *issue.ActionableError
	if !errors.As(err, &actionable) {
		t.Fatalf("Load() error = %v, want *issue.ActionableError", err)
	}
	if !actionable.HasSuggestions() {
		t.Error("missing config error should carry suggestions")
	}
}

func TestLoadSchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{name: "unknown level", content: `log_level: "trace"`, wantSub: "log_level"},
		{name: "unknown key", content: `output_dir: "x"`, wantSub: "output_dir"},
		{name: "small dictionary", content: `packaging: {xz_dict_cap: 10}`, wantSub: "xz_dict_cap"},
		{name: "wrong type", content: `packaging: {atomic_publish: "yes"}`, wantSub: "atomic_publish"},
		{name: "syntax", content: `packaging: {`, wantSub: "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `packaging: {build_dir: "from-file"}`)

	t.Setenv("RUNPACK_PACKAGING_BUILD_DIR", "from-env")
	t.Setenv("RUNPACK_PACKAGING_ATOMIC_PUBLISH", "false")
	t.Setenv("RUNPACK_LOG_LEVEL", "warn")

	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg := loaded.Config
	if cfg.Packaging.BuildDir != "from-env" {
		t.Errorf("BuildDir = %q, want from-env", cfg.Packaging.BuildDir)
	}
	if cfg.Packaging.AtomicPublish {
		t.Error("AtomicPublish should be overridden to false")
	}
	if cfg.LogLevel != LogLevelWarn {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadInvalidEnvironmentValue(t *testing.T) {
	t.Setenv("RUNPACK_LOG_LEVEL", "loud")

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUERoundTrip(t *testing.T) {
	t.Parallel()

	want := DefaultConfig()
	want.LogLevel = LogLevelError
	want.UI.ColorScheme = ColorSchemeLight
	want.Packaging.BuildDir = "build/dist"
	want.Packaging.XZDictCap = 1 << 16

	path := writeConfig(t, t.TempDir(), GenerateCUE(want))
	loaded, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(want, loaded.Config); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(SetConfigDirOverride(dir))

	path, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}

	if err := os.WriteFile(path, []byte(`log_level: "debug"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != `log_level: "debug"` {
		t.Errorf("existing config was overwritten: %q, %v", data, err)
	}
}
