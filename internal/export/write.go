package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/aiprompt/internal/filelock"
)

const (
	documentIndent            = "  "
	errorEncodeDocumentFormat = "encode document: %w"
	errorWriteDocumentFormat  = "write document %s: %w"
	errorReadIgnoreFormat     = "read %s: %w"
	errorWriteIgnoreFormat    = "write %s: %w"
	ignoreFilePermissions     = 0o644
)

// EncodeDocument renders the document as indented JSON without escaping HTML characters.
func EncodeDocument(document Document) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", documentIndent)
	if err := encoder.Encode(document); err != nil {
		return nil, fmt.Errorf(errorEncodeDocumentFormat, err)
	}
	return buffer.Bytes(), nil
}

// WriteDocument atomically replaces the file at path with the encoded document.
func WriteDocument(path string, document Document) ([]byte, error) {
	encoded, encodeErr := EncodeDocument(document)
	if encodeErr != nil {
		return nil, encodeErr
	}
	if writeErr := filelock.AtomicWrite(path, encoded); writeErr != nil {
		return nil, fmt.Errorf(errorWriteDocumentFormat, path, writeErr)
	}
	return encoded, nil
}

// ReadPriorDocument returns the content of an existing document, or nil when
// none can be read.
func ReadPriorDocument(path string) []byte {
	data, readErr := os.ReadFile(filepath.Clean(path))
	if readErr != nil {
		return nil
	}
	return data
}

// EnsureIgnored adds entry to the ignore file in root unless a line already
// equals it. It reports whether the file changed.
func EnsureIgnored(root string, ignoreFileName string, entry string) (bool, error) {
	ignorePath := filepath.Join(root, ignoreFileName)
	existing, readErr := os.ReadFile(ignorePath)
	if readErr != nil {
		if !errors.Is(readErr, os.ErrNotExist) {
			return false, fmt.Errorf(errorReadIgnoreFormat, ignorePath, readErr)
		}
		if writeErr := os.WriteFile(ignorePath, []byte(entry+"\n"), ignoreFilePermissions); writeErr != nil {
			return false, fmt.Errorf(errorWriteIgnoreFormat, ignorePath, writeErr)
		}
		return true, nil
	}

	for _, line := range strings.Split(string(existing), "\n") {
		if strings.TrimSpace(line) == entry {
			return false, nil
		}
	}

	trimmed := strings.TrimRight(string(existing), " \t\r\n")
	updated := entry + "\n"
	if trimmed != "" {
		updated = trimmed + "\n" + entry + "\n"
	}
	if writeErr := filelock.AtomicWrite(ignorePath, []byte(updated)); writeErr != nil {
		return false, fmt.Errorf(errorWriteIgnoreFormat, ignorePath, writeErr)
	}
	return true, nil
}
