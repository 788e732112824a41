// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/invowk/runpack/internal/config"
	"github.com/invowk/runpack/internal/issue"
	"github.com/invowk/runpack/pkg/types"
)

// fail prints err with its catalog help and returns an already reported
// ExitError. sess is nil when configuration could not be loaded.
func (a *App) fail(sess *session, verbose bool, err error) error {
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	if is := issue.ForError(err); is != nil {
		scheme := config.ColorSchemeAuto
		if sess != nil {
			scheme = sess.loaded.Config.UI.ColorScheme
		}
		if rendered, renderErr := is.Render(glamourStyle(scheme)); renderErr == nil {
			fmt.Fprint(a.stderr, rendered)
		}
	}
	return &ExitError{Code: types.ExitFailure, Err: err, Reported: true}
}

// glamourStyle maps the configured color scheme to a glamour style name.
func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
