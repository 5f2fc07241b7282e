//go:build !windows

package fileutil

import "testing"

// assertOwnerOnlyWindows is unreachable on Unix; mode bits are checked in
// assertOwnerOnly directly.
func assertOwnerOnlyWindows(t *testing.T, _ string) {
	t.Helper()
}

// assertHasInheritedACEs checks Windows DACL inheritance and has no Unix
// equivalent.
func assertHasInheritedACEs(t *testing.T, _ string) {
	t.Helper()
}
