package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/temirov/aiprompt/internal/utils"
)

// DefaultReaderCacheSize bounds the number of cached file contents.
const DefaultReaderCacheSize = 256

const (
	errorStatContentFormat = "stat %s: %w"
	errorReadContentFormat = "read %s: %w"
	errorNotRegularFormat  = "%s is not a regular file"
)

// ErrBinaryContent reports a file whose content is not text.
var ErrBinaryContent = errors.New("binary content")

// ContentReader returns the text content of a file relative to the project root.
type ContentReader interface {
	ReadFile(relativePath string) (string, error)
}

type cachedContent struct {
	size         int64
	modification time.Time
	content      string
	binary       bool
}

// FileReader reads project files and caches their content until the file's
// size or modification time changes.
type FileReader struct {
	root  string
	cache *lru.Cache[string, cachedContent]
}

// NewFileReader returns a FileReader rooted at root. A non-positive cacheSize
// selects DefaultReaderCacheSize.
func NewFileReader(root string, cacheSize int) *FileReader {
	if cacheSize <= 0 {
		cacheSize = DefaultReaderCacheSize
	}
	cache, cacheErr := lru.New[string, cachedContent](cacheSize)
	if cacheErr != nil {
		panic(cacheErr)
	}
	return &FileReader{root: root, cache: cache}
}

// ReadFile returns the content of relativePath, or ErrBinaryContent when the
// file holds binary data.
func (reader *FileReader) ReadFile(relativePath string) (string, error) {
	fullPath := filepath.Join(reader.root, filepath.FromSlash(relativePath))
	info, statErr := os.Stat(fullPath)
	if statErr != nil {
		return "", fmt.Errorf(errorStatContentFormat, relativePath, statErr)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf(errorNotRegularFormat, relativePath)
	}

	if cached, found := reader.cache.Get(relativePath); found && cached.size == info.Size() && cached.modification.Equal(info.ModTime()) {
		return cached.result()
	}

	data, readErr := os.ReadFile(fullPath)
	if readErr != nil {
		return "", fmt.Errorf(errorReadContentFormat, relativePath, readErr)
	}
	entry := cachedContent{size: info.Size(), modification: info.ModTime()}
	if utils.IsBinary(data) {
		entry.binary = true
	} else {
		entry.content = string(data)
	}
	reader.cache.Add(relativePath, entry)
	return entry.result()
}

// Cached reports the number of cached entries.
func (reader *FileReader) Cached() int {
	return reader.cache.Len()
}

func (entry cachedContent) result() (string, error) {
	if entry.binary {
		return "", ErrBinaryContent
	}
	return entry.content, nil
}

var _ ContentReader = (*FileReader)(nil)
