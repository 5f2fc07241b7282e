package scan

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestIsBinary(t *testing.T) {
	dir := tempDir(t)

	tests := []struct {
		name    string
		content []byte
		want    bool
	}{
		{name: "plain text", content: []byte("#!/bin/sh\necho hello\n"), want: false},
		{name: "empty file", content: nil, want: false},
		{name: "nul byte", content: []byte("MZ\x00\x01payload"), want: true},
		{name: "elf header", content: append([]byte{0x7f, 'E', 'L', 'F'}, bytes.Repeat([]byte{0x00}, 16)...), want: true},
		{name: "control-heavy content", content: bytes.Repeat([]byte{0x01, 0x02, 'a'}, 40), want: true},
		{name: "tabs and newlines", content: []byte("col1\tcol2\r\nval1\tval2\n"), want: false},
		{name: "nul beyond sniff window", content: append(bytes.Repeat([]byte("a"), sniffLen), 0x00), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestFile(t, dir, "sniff-"+tt.name, tt.content)
			if got := IsBinary(path); got != tt.want {
				t.Errorf("IsBinary = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsBinary_MissingFile(t *testing.T) {
	// Unreadable files are left for the read step to classify.
	if IsBinary(filepath.Join(tempDir(t), "missing.bin")) {
		t.Error("IsBinary on a missing file = true, want false")
	}
}
