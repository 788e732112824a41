// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/invowk/runpack/pkg/attachment"
	"github.com/invowk/runpack/pkg/coordinate"
	"github.com/invowk/runpack/pkg/merge"
)

func TestCatalog(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(PackagingFailedId) {
		t.Fatalf("catalog holds %d issues, want %d", len(values), PackagingFailedId)
	}
	for i, is := range values {
		if is.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, is.Id(), i+1)
		}
		if strings.TrimSpace(string(is.MarkdownMsg())) == "" {
			t.Errorf("issue %d has no message", is.Id())
		}
	}

	if Get(Id(999)) != nil {
		t.Error("Get(999) should be nil")
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	out, err := Get(MissingCommandArgumentsId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "commandArguments") {
		t.Errorf("Render() output lacks the resource name:\n%s", out)
	}
}

func TestForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Id
	}{
		{
			name: "duplicate definition",
			err:  &merge.DuplicateDefinitionError{Kind: merge.KindEnvironment, Name: "A", First: "x", Second: "y"},
			want: DuplicateDefinitionId,
		},
		{
			name: "duplicate template",
			err:  &merge.DuplicateCommandArgumentsError{First: "x", Second: "y"},
			want: DuplicateCommandArgumentsId,
		},
		{name: "missing template", err: merge.ErrMissingCommandArguments, want: MissingCommandArgumentsId},
		{
			name: "duplicate attachment",
			err:  &attachment.DuplicateAttachmentError{Name: "lib", Origin: "x"},
			want: DuplicateAttachmentId,
		},
		{
			name: "malformed attachment",
			err:  &attachment.MalformedDeclarationError{Origin: "x", Element: "version"},
			want: MalformedAttachmentsId,
		},
		{
			name: "incomplete coordinate",
			err:  fmt.Errorf("artifact: %w", &coordinate.IncompleteCoordinateError{Field: "version"}),
			want: InvalidCoordinateId,
		},
		{
			name: "packaging I/O",
			err:  Wrap(errors.New("disk full"), OperationPackage, "app-1.0.tar.xz"),
			want: PackagingFailedId,
		},
		{
			name: "config",
			err:  Wrap(errors.New("bad"), OperationLoadConfig, "config.cue"),
			want: ConfigLoadFailedId,
		},
		{
			name: "descriptor",
			err:  Wrap(errors.New("bad"), OperationLoadDescriptor, ""),
			want: DescriptorInvalidId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ForError(tt.err)
			if got == nil || got.Id() != tt.want {
				t.Errorf("ForError() = %v, want issue %d", got, tt.want)
			}
		})
	}

	if ForError(nil) != nil || ForError(errors.New("other")) != nil {
		t.Error("ForError() should be nil for unknown errors")
	}
}
