// SPDX-License-Identifier: MPL-2.0

package attachment

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const twoAttachments = `<?xml version="1.0" encoding="UTF-8"?>
<attachments>
  <attachment>
    <name>lib1</name>
    <groupId>g</groupId>
    <artifactId>a</artifactId>
    <type>jar</type>
    <version>1.0</version>
  </attachment>
  <attachment>
    <name>agent</name>
    <groupId>org.example</groupId>
    <artifactId>agent</artifactId>
    <classifier>all</classifier>
    <type>jar</type>
    <version>2.1</version>
  </attachment>
</attachments>
`

func TestParse(t *testing.T) {
	t.Parallel()

	set, err := Parse(strings.NewReader(twoAttachments), "<module source>")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if diff := cmp.Diff([]string{"lib1", "agent"}, set.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	want := map[string]string{
		"lib1":  "g:a:jar:1.0",
		"agent": "org.example:agent:jar:all:2.1",
	}
	if diff := cmp.Diff(want, set.Map()); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyDocument(t *testing.T) {
	t.Parallel()

	set, err := Parse(strings.NewReader("<attachments/>"), "x")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("Len() = %d, want 0", set.Len())
	}
}

func TestParseDuplicateName(t *testing.T) {
	t.Parallel()

	doc := `<attachments>
  <attachment><name>lib1</name><groupId>g</groupId><artifactId>a</artifactId><type>jar</type><version>1.0</version></attachment>
  <attachment><name>lib1</name><groupId>g</groupId><artifactId>b</artifactId><type>jar</type><version>1.0</version></attachment>
</attachments>`

	_, err := Parse(strings.NewReader(doc), "g:bundle:zip:packaging:1.0")
	if !errors.Is(err, ErrDuplicateAttachment) {
		t.Fatalf("Parse() error = %v, want ErrDuplicateAttachment", err)
	}

	var dup *DuplicateAttachmentError
	if !errors.As(err, &dup) {
		t.Fatalf("error type = %T, want *DuplicateAttachmentError", err)
	}
	if dup.Name != "lib1" || dup.Origin != "g:bundle:zip:packaging:1.0" {
		t.Errorf("DuplicateAttachmentError = %+v", dup)
	}
	if !strings.Contains(err.Error(), "g:bundle:zip:packaging:1.0") {
		t.Errorf("error message %q does not name the origin", err.Error())
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		record      string
		wantElement string
	}{
		{
			name:        "missing name",
			record:      `<groupId>g</groupId><artifactId>a</artifactId><type>jar</type><version>1.0</version>`,
			wantElement: "name",
		},
		{
			name:        "missing type",
			record:      `<name>n</name><groupId>g</groupId><artifactId>a</artifactId><version>1.0</version>`,
			wantElement: "type",
		},
		{
			name:        "missing version",
			record:      `<name>n</name><groupId>g</groupId><artifactId>a</artifactId><type>jar</type>`,
			wantElement: "version",
		},
		{
			name:        "empty group",
			record:      `<name>n</name><groupId></groupId><artifactId>a</artifactId><type>jar</type><version>1.0</version>`,
			wantElement: "groupId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := "<attachments><attachment>" + tt.record + "</attachment></attachments>"
			_, err := Parse(strings.NewReader(doc), "origin")

			var malformed *MalformedDeclarationError
			if !errors.As(err, &malformed) {
				t.Fatalf("Parse() error = %v, want *MalformedDeclarationError", err)
			}
			if malformed.Element != tt.wantElement {
				t.Errorf("Element = %q, want %q", malformed.Element, tt.wantElement)
			}
			if !errors.Is(err, ErrMalformedDeclaration) {
				t.Error("errors.Is(err, ErrMalformedDeclaration) = false")
			}
		})
	}
}

func TestParseSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("<attachments><attachment>"), "broken")
	if err == nil {
		t.Fatal("Parse() expected error for truncated document")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error %q does not name the origin", err.Error())
	}
}

func TestFromDeclarations(t *testing.T) {
	t.Parallel()

	set, err := FromDeclarations([]Declaration{
		{Name: "tool", GroupID: "g", ArtifactID: "tool", Version: "3"},
		{Name: "cfg", GroupID: "g", ArtifactID: "cfg", Type: "zip", Classifier: "conf", Version: "1"},
	}, "<project descriptor>")
	if err != nil {
		t.Fatalf("FromDeclarations() error = %v", err)
	}

	want := map[string]string{
		"tool": "g:tool:jar:3",
		"cfg":  "g:cfg:zip:conf:1",
	}
	if diff := cmp.Diff(want, set.Map()); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}

	_, err = FromDeclarations([]Declaration{
		{Name: "tool", GroupID: "g", ArtifactID: "tool", Version: "3"},
		{Name: "tool", GroupID: "g", ArtifactID: "other", Version: "3"},
	}, "<project descriptor>")
	if !errors.Is(err, ErrDuplicateAttachment) {
		t.Errorf("FromDeclarations() error = %v, want ErrDuplicateAttachment", err)
	}
}

func TestNilSet(t *testing.T) {
	t.Parallel()

	var s *Set
	if s.Len() != 0 || s.Has("x") || len(s.Names()) != 0 || len(s.Map()) != 0 {
		t.Error("nil Set should behave as empty")
	}
}
