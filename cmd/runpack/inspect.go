// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/runpack/pkg/bundle"
	"github.com/invowk/runpack/pkg/propfile"
)

func newInspectCommand(app *App) *cobra.Command {
	var entriesOnly bool

	cmd := &cobra.Command{
		Use:   "inspect <bundle>",
		Short: "Print the entries and contents of a runtime bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectBundle(app.stdout, args[0], entriesOnly)
		},
	}
	cmd.Flags().BoolVar(&entriesOnly, "entries", false, "list entries without their contents")

	return cmd
}

func inspectBundle(w io.Writer, path string, entriesOnly bool) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	contents, entries, err := bundle.Read(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for _, e := range entries {
		fmt.Fprintf(w, "%s %6d  %s  %s\n",
			os.FileMode(e.Mode).Perm(), e.Size, e.ModTime.UTC().Format("2006-01-02T15:04:05Z"), KeyStyle.Render(e.Name))
	}
	if entriesOnly {
		return nil
	}

	section := func(name, body string) {
		fmt.Fprintln(w, sectionStyle.Render(name))
		if body == "" {
			fmt.Fprintln(w, SubtitleStyle.Render("(empty)"))
			return
		}
		fmt.Fprint(w, body)
		if !strings.HasSuffix(body, "\n") {
			fmt.Fprintln(w)
		}
	}

	var depBody string
	if len(contents.Dependencies) > 0 {
		depBody = strings.Join(contents.Dependencies, "\n") + "\n"
	}
	section(bundle.DependenciesEntry, depBody)
	section(bundle.EnvironmentEntry, string(propfile.Marshal(contents.Environment)))
	section(bundle.SystemEntry, string(propfile.Marshal(contents.System)))
	section(bundle.CommandArgumentsEntry, string(contents.CommandArguments))
	section(bundle.AttachmentsEntry, string(propfile.Marshal(contents.Attachments)))
	return nil
}
