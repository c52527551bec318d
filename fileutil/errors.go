package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrDirectoryAccess indicates the output directory exists but could not
	// be read.
	ErrDirectoryAccess = errors.New("cannot read directory")

	// ErrPermission indicates the process lacks write access.
	ErrPermission = errors.New("permission denied")

	// ErrDisk indicates any other OS-level failure while writing.
	ErrDisk = errors.New("disk error")
)

// writeError categorizes an OS error encountered while creating a directory
// or writing a file. The returned error wraps both the category and the
// original error.
func writeError(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrPermission, err)
	}
	return fmt.Errorf("%w: %w", ErrDisk, err)
}
