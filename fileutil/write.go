package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

// MaxNameLen is the longest filename, in bytes, that common local
// filesystems accept.
const MaxNameLen = 255

// SplitExt splits a filename into its base and extension. The extension
// includes the leading dot. A name whose only dot is its first character
// (e.g., ".profile") has no extension.
func SplitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// TruncateName shortens name to at most max bytes by cutting the end of its
// base; the extension is kept intact. It returns "" if the extension alone
// doesn't fit.
func TruncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}

	base, ext := SplitExt(name)
	base = truncate(base, max-len(ext))
	if base == "" {
		return ""
	}
	return base + ext
}

// truncate returns the longest prefix of s that is at most max bytes and
// doesn't split a UTF-8 sequence.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// CandidateName returns the n'th name to try when saving a file called name.
// The 0th candidate is name itself; the rest carry a numeric suffix before
// the extension: photo.png, photo_1.png, photo_2.png, ... A suffixed name
// that would exceed MaxNameLen has its base shortened to make room.
func CandidateName(name string, n int) string {
	if n == 0 {
		return name
	}

	base, ext := SplitExt(name)
	suffix := fmt.Sprintf("_%d%s", n, ext)
	if len(base)+len(suffix) > MaxNameLen {
		if short := truncate(base, MaxNameLen-len(suffix)); short != "" {
			base = short
		}
	}
	return base + suffix
}

// WriteUnique writes b to a new file in dir without overwriting anything.
// If the desired name is taken, it tries the suffixed candidates in order,
// starting from 1, until it finds a free one. It creates dir if necessary. It
// returns the path of the written file.
//
// The write is not atomic: a failure part way through can leave a partial
// file behind.
func WriteUnique(dir string, name string, b []byte) (string, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", writeError(err)
	}

	for n := 0; ; n++ {
		path := filepath.Join(dir, CandidateName(name, n))
		if FileExists(path) {
			log.Debugf("name taken: %s", path)
			continue
		}

		err := writeNew(path, b)
		if errors.Is(err, fs.ErrExist) {
			// Created by someone else since we looked.
			log.Debugf("name taken: %s", path)
			continue
		}
		if err != nil {
			return "", writeError(err)
		}

		return path, nil
	}
}

// writeNew writes b to a file that must not already exist.
func writeNew(path string, b []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	_, err = f.Write(b)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
