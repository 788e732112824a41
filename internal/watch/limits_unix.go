// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import "syscall"

// exhaustionErrnos are the inotify and descriptor limits that make a watch
// impossible to continue.
var exhaustionErrnos = []syscall.Errno{
	syscall.ENOSPC, // fs.inotify.max_user_watches
	syscall.EMFILE,
	syscall.ENFILE,
}

const limitHint = "raise fs.inotify.max_user_watches or exclude large directories"
