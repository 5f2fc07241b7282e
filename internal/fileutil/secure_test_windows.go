//go:build windows

package fileutil

import (
	"testing"
	"unsafe"

	"golang.org/x/sys/windows"
)

// assertOwnerOnlyWindows verifies the DACL grants access to the current
// user and to nobody else.
func assertOwnerOnlyWindows(t *testing.T, path string) {
	t.Helper()

	ownerSID, err := currentUserSID()
	if err != nil {
		t.Fatalf("currentUserSID: %v", err)
	}

	dacl := readDACL(t, path)
	if dacl == nil {
		t.Fatal("DACL is nil (NULL DACL grants everyone full access)")
	}

	aceCount := int(dacl.AceCount)
	if aceCount == 0 {
		t.Fatal("DACL has no ACEs (empty DACL denies all access)")
	}

	foundOwner := false
	for i := 0; i < aceCount; i++ {
		var ace *windows.ACCESS_ALLOWED_ACE
		if err := windows.GetAce(dacl, uint32(i), &ace); err != nil {
			t.Fatalf("GetAce(%d): %v", i, err)
		}

		aceSID := (*windows.SID)(unsafe.Pointer(&ace.SidStart))
		if aceSID.Equals(ownerSID) {
			foundOwner = true
			continue
		}
		t.Errorf("unexpected ACE for SID %s, only the owner should have access", aceSID.String())
	}

	if !foundOwner {
		t.Error("no ACE found for the current user")
	}
}

// assertHasInheritedACEs verifies a plain os.WriteFile left more than one
// ACE on the file, confirming the inherited DACL was not replaced.
func assertHasInheritedACEs(t *testing.T, path string) {
	t.Helper()

	dacl := readDACL(t, path)
	if dacl == nil {
		t.Fatal("DACL is nil")
	}

	if aceCount := int(dacl.AceCount); aceCount <= 1 {
		t.Fatalf("expected inherited ACEs, got %d", aceCount)
	}
}

func readDACL(t *testing.T, path string) *windows.ACL {
	t.Helper()

	sd, err := windows.GetNamedSecurityInfo(
		path,
		windows.SE_FILE_OBJECT,
		windows.DACL_SECURITY_INFORMATION,
	)
	if err != nil {
		t.Fatalf("GetNamedSecurityInfo(%s): %v", path, err)
	}

	dacl, _, err := sd.DACL()
	if err != nil {
		t.Fatalf("DACL(): %v", err)
	}
	return dacl
}
