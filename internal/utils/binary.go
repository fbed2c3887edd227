package utils

import (
	"bytes"
	"unicode/utf8"
)

// IsBinary reports whether data holds a NUL byte or is not valid UTF-8.
// Exported documents carry text only.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data)
}
