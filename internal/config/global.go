// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces the platform lookup in ConfigDir. Tests set it
// because os.UserHomeDir does not honor HOME on every platform.
var configDirOverride string

// SetConfigDirOverride points ConfigDir at dir and returns a func restoring
// the previous value, suitable for t.Cleanup.
func SetConfigDirOverride(dir string) (restore func()) {
	prev := configDirOverride
	configDirOverride = dir
	return func() { configDirOverride = prev }
}
