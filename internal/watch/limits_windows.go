// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import "syscall"

// exhaustionErrnos are the Win32 codes ReadDirectoryChangesW reports when the
// handle or its notification buffer can no longer be serviced.
var exhaustionErrnos = []syscall.Errno{
	4, // ERROR_TOO_MANY_OPEN_FILES
	6, // ERROR_INVALID_HANDLE: the watched directory went away
	8, // ERROR_NOT_ENOUGH_MEMORY
}

const limitHint = "close other watchers or exclude large directories"
