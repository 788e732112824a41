// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"errors"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"

	"github.com/invowk/runpack/pkg/attachment"
	"github.com/invowk/runpack/pkg/coordinate"
	"github.com/invowk/runpack/pkg/merge"
)

// Operations used by ActionableError values that ForError recognizes.
const (
	OperationPackage        Operation = "package"
	OperationLoadConfig     Operation = "load configuration"
	OperationValidateConfig Operation = "validate configuration"
	OperationLoadDescriptor Operation = "load project descriptor"
	OperationWriteReport    Operation = "write build report"
	OperationWatch          Operation = "watch project"
)

// Issue identifiers.
const (
	DuplicateDefinitionId Id = iota + 1
	DuplicateCommandArgumentsId
	MissingCommandArgumentsId
	DuplicateAttachmentId
	MalformedAttachmentsId
	InvalidCoordinateId
	DescriptorInvalidId
	ConfigLoadFailedId
	PackagingFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the help text of an issue.
	MarkdownMsg string

	// HttpLink is a documentation link.
	HttpLink string

	// Issue is a catalog entry explaining a class of failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

var render = glamour.Render

// Id returns the issue identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw help text.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the help text with the glamour style at stylePath
// ("dark", "light", "notty", or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var catalog = []*Issue{
	{
		id: DuplicateDefinitionId,
		mdMsg: `
# Duplicate definition

Two origins define the same environment property, system property or
attachment name. Every name must be defined exactly once across the module's
packaging sources, the project descriptor and all packaging bundles.

## Things you can try:
- Remove the definition from one of the two origins named in the error
- Rename one of the properties if both are really needed`,
	},
	{
		id: DuplicateCommandArgumentsId,
		mdMsg: `
# More than one commandArguments template

Exactly one origin may supply a ` + "`commandArguments`" + ` resource.

## Things you can try:
- Delete the template from the module sources to use the bundle's one
- Depend on only one packaging bundle that ships a template`,
	},
	{
		id: MissingCommandArgumentsId,
		mdMsg: `
# No commandArguments template

No origin supplies a ` + "`commandArguments`" + ` resource, so the runtime
bundle would not know how to start the module.

## Things you can try:
- Add ` + "`src/package/commandArguments`" + ` to the module
- Depend on a packaging bundle (type zip, classifier packaging) that ships one`,
	},
	{
		id: DuplicateAttachmentId,
		mdMsg: `
# Attachment declared twice

An attachments document declares the same attachment name more than once.

## Things you can try:
- Remove or rename the repeated ` + "`<attachment>`" + ` record`,
	},
	{
		id: MalformedAttachmentsId,
		mdMsg: `
# Malformed attachments document

An attachment record is missing a required element. Each record needs
` + "`name`, `groupId`, `artifactId`, `type` and `version`" + `; ` + "`classifier`" + ` is optional.

~~~xml
<attachments>
  <attachment>
    <name>lib1</name>
    <groupId>g</groupId>
    <artifactId>a</artifactId>
    <type>jar</type>
    <version>1.0</version>
  </attachment>
</attachments>
~~~`,
	},
	{
		id: InvalidCoordinateId,
		mdMsg: `
# Incomplete artifact coordinate

Every artifact needs a group id, an artifact id, a type and a version.

## Things you can try:
- Regenerate the project descriptor from the build that resolved the dependencies`,
	},
	{
		id: DescriptorInvalidId,
		mdMsg: `
# Invalid project descriptor

The project descriptor (` + "`runpack.cue`" + `) could not be read or does not
match the schema.

## Things you can try:
- Check the field named in the error
- Pass the descriptor path explicitly: ` + "`runpack package path/to/runpack.cue`",
	},
	{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

## Things you can try:
- Show the effective configuration:
~~~
$ runpack config show
~~~
- Print a complete default file to compare against:
~~~
$ runpack config dump
~~~`,
	},
	{
		id: PackagingFailedId,
		mdMsg: `
# Packaging failed

A source, packaging bundle or the output file could not be read or written.

## Things you can try:
- Check that every dependency file listed in the descriptor exists
- Check that the output directory is writable and has free space`,
	},
}

// Values returns every issue ordered by id.
func Values() []*Issue {
	out := slices.Clone(catalog)
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

// Get returns the issue with the given id, or nil.
func Get(id Id) *Issue {
	idx := slices.IndexFunc(catalog, func(i *Issue) bool { return i.id == id })
	if idx < 0 {
		return nil
	}
	return catalog[idx]
}

// ForError returns the catalog entry explaining err, or nil.
func ForError(err error) *Issue {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, merge.ErrDuplicateDefinition):
		return Get(DuplicateDefinitionId)
	case errors.Is(err, merge.ErrDuplicateCommandArguments):
		return Get(DuplicateCommandArgumentsId)
	case errors.Is(err, merge.ErrMissingCommandArguments):
		return Get(MissingCommandArgumentsId)
	case errors.Is(err, attachment.ErrDuplicateAttachment):
		return Get(DuplicateAttachmentId)
	case errors.Is(err, attachment.ErrMalformedDeclaration):
		return Get(MalformedAttachmentsId)
	case errors.Is(err, coordinate.ErrIncompleteCoordinate):
		return Get(InvalidCoordinateId)
	}

	var actionable *ActionableError
	if !errors.As(err, &actionable) {
		return nil
	}
	switch actionable.Operation {
	case OperationLoadDescriptor:
		return Get(DescriptorInvalidId)
	case OperationLoadConfig, OperationValidateConfig:
		return Get(ConfigLoadFailedId)
	case OperationPackage:
		return Get(PackagingFailedId)
	}
	return nil
}
