package fileutil

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Fingerprint is the content hash used to compare files.
type Fingerprint [sha256.Size]byte

// Digest returns the fingerprint of the given bytes.
func Digest(b []byte) Fingerprint {
	return sha256.Sum256(b)
}

// DigestFile returns the fingerprint of the file at the given path.
func DigestFile(path string) (Fingerprint, error) {
	var fp Fingerprint

	f, err := os.Open(path)
	if err != nil {
		return fp, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fp, err
	}

	copy(fp[:], h.Sum(nil))
	return fp, nil
}

// FindDuplicate reports whether a regular file in dir has exactly the given
// content. On a match it returns the file's name. Subdirectories are not
// descended into. A directory that does not exist contains no duplicates.
//
// Every call reads and hashes every file in the directory.
func FindDuplicate(dir string, b []byte) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %w", ErrDirectoryAccess, err)
	}

	want := Digest(b)
	log.Debugf("scanning for duplicates: dir=%s entries=%d", dir, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		path := filepath.Join(dir, e.Name())

		// Stat rather than trusting the entry type so that symlinks to
		// regular files are compared too.
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Removed since listing, or a dangling symlink.
				continue
			}
			return "", false, fmt.Errorf("%w: %w", ErrDirectoryAccess, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}

		have, err := DigestFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", false, fmt.Errorf("%w: %w", ErrDirectoryAccess, err)
		}

		if have == want {
			return e.Name(), true, nil
		}
	}

	return "", false, nil
}
