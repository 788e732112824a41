// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"errors"
	"fmt"
	"slices"
	"syscall"
)

// ErrWatchLimit is matched by every LimitError.
var ErrWatchLimit = errors.New("watch: operating system watch limit reached")

// LimitError reports that the project tree could not be watched, or stopped
// being watched, because an operating system limit was exhausted. It matches
// both ErrWatchLimit and the underlying errno.
type LimitError struct {
	Dir string
	Err error
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("watch %s: %v (%s)", e.Dir, e.Err, limitHint)
}

func (e *LimitError) Unwrap() []error { return []error{ErrWatchLimit, e.Err} }

// exhausted reports whether err carries one of the platform's limit errnos.
func exhausted(err error) bool {
	return slices.ContainsFunc(exhaustionErrnos, func(n syscall.Errno) bool {
		return errors.Is(err, n)
	})
}

// limitError wraps err as a LimitError when it is a limit errno, and returns
// it unchanged otherwise.
func (w *Watcher) limitError(err error) error {
	if !exhausted(err) {
		return err
	}
	return &LimitError{Dir: w.dir, Err: err}
}
