// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Publish writes c to dir/fileName and returns the final path.
//
// With opts.Atomic the archive is written to a temporary file in dir and
// renamed over the final path only after it is complete; on any failure the
// temporary file is removed and the final path is untouched. Without it the
// final path is written directly and a failed write may leave a partial file.
// Concurrent Publish calls for the same path are not coordinated.
func Publish(dir, fileName string, c *Contents, opts WriteOptions) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	finalPath := filepath.Join(dir, fileName)

	if !opts.Atomic {
		if err := writeFile(finalPath, c, opts); err != nil {
			return "", err
		}
		return finalPath, nil
	}

	tmp, err := os.CreateTemp(dir, "."+fileName+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := finish(tmp, c, opts); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			err = errors.Join(err, removeErr)
		}
		return "", err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("publish %s: %w", finalPath, err)
	}
	return finalPath, nil
}

func writeFile(path string, c *Contents, opts WriteOptions) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return finish(f, c, opts)
}

// finish writes the archive to f and always closes it.
func finish(f *os.File, c *Contents, opts WriteOptions) (err error) {
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", f.Name(), closeErr)
		}
	}()

	if err = Write(f, c, opts); err != nil {
		return err
	}
	if err = f.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", f.Name(), err)
	}
	return f.Sync()
}
