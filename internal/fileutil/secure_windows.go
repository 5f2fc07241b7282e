//go:build windows

package fileutil

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// SecureWriteFile writes data and then replaces the file's DACL with one
// that grants access to the current user only. Passing 0600 to os.WriteFile
// does nothing on Windows; without the DACL step the file inherits the
// parent directory's ACL, which usually includes BUILTIN\Users. If the DACL
// cannot be applied the file is removed rather than left world-readable.
func SecureWriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	if err := restrictToOwner(path); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// SecureMkdirAll creates a directory tree and restricts the leaf to the
// current user.
func SecureMkdirAll(path string) error {
	if err := os.MkdirAll(path, 0700); err != nil {
		return err
	}
	return restrictToOwner(path)
}

// SecureOpenFile opens a file for writing and restricts it to the current
// user. The file is closed and the error returned if the DACL step fails.
func SecureOpenFile(path string, flag int) (*os.File, error) {
	f, err := os.OpenFile(path, flag, 0600)
	if err != nil {
		return nil, err
	}
	if err := restrictToOwner(path); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// currentUserSID resolves the SID of the user owning this process.
func currentUserSID() (*windows.SID, error) {
	token, err := windows.OpenCurrentProcessToken()
	if err != nil {
		return nil, fmt.Errorf("open process token: %w", err)
	}
	defer token.Close()

	user, err := token.GetTokenUser()
	if err != nil {
		return nil, fmt.Errorf("get token user: %w", err)
	}
	return user.User.Sid, nil
}

// restrictToOwner installs a protected DACL with a single ACE granting
// GENERIC_ALL to the current user. PROTECTED_DACL_SECURITY_INFORMATION
// stops ACEs from the parent directory being inherited back onto the path.
func restrictToOwner(path string) error {
	sid, err := currentUserSID()
	if err != nil {
		return err
	}

	ea := windows.EXPLICIT_ACCESS{
		AccessPermissions: windows.GENERIC_ALL,
		AccessMode:        windows.SET_ACCESS,
		Inheritance:       windows.NO_INHERITANCE,
		Trustee: windows.TRUSTEE{
			TrusteeForm:  windows.TRUSTEE_IS_SID,
			TrusteeType:  windows.TRUSTEE_IS_USER,
			TrusteeValue: windows.TrusteeValueFromSID(sid),
		},
	}

	acl, err := windows.ACLFromEntries([]windows.EXPLICIT_ACCESS{ea}, nil)
	if err != nil {
		return fmt.Errorf("build ACL: %w", err)
	}

	return windows.SetNamedSecurityInfo(
		path,
		windows.SE_FILE_OBJECT,
		windows.DACL_SECURITY_INFORMATION|windows.PROTECTED_DACL_SECURITY_INFORMATION,
		nil,
		nil,
		acl,
		nil,
	)
}
