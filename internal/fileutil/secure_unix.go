//go:build !windows

package fileutil

import "os"

// SecureWriteFile writes data with mode 0600. The kernel enforces the mode
// bits, so no extra work is needed on Unix.
func SecureWriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0600)
}

// SecureMkdirAll creates a directory tree with mode 0700 on each created
// directory.
func SecureMkdirAll(path string) error {
	return os.MkdirAll(path, 0700)
}

// SecureOpenFile opens a file for writing with mode 0600.
func SecureOpenFile(path string, flag int) (*os.File, error) {
	return os.OpenFile(path, flag, 0600)
}
