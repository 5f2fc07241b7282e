package scan

import (
	"bytes"
	"io"
	"os"
)

// sniffLen is how many leading bytes decide text vs binary.
const sniffLen = 512

// nonTextRatio above which content is treated as binary.
const nonTextRatio = 0.30

// IsBinary reports whether the file at path looks like binary content:
// a NUL byte anywhere in the first 512 bytes, or more than 30% of them
// outside the printable/whitespace range. A file that cannot be opened
// is not binary; the read step classifies the failure properly.
func IsBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false
	}

	return sniffContent(buf[:n])
}

func sniffContent(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}

	nonText := 0
	for _, b := range data {
		if b < 32 && b != '\t' && b != '\n' && b != '\r' {
			nonText++
		}
	}

	return float64(nonText)/float64(len(data)) > nonTextRatio
}
