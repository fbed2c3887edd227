// Package diagnostics loads per-file diagnostics reported by external tools
// so they can be included in an exported document.
package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	errorReadDiagnosticsFormat  = "read diagnostics %s: %w"
	errorParseDiagnosticsFormat = "parse diagnostics %s: %w"
)

// Diagnostic is a single message attached to a line of a file.
type Diagnostic struct {
	Line    int    `yaml:"line" json:"line"`
	Message string `yaml:"message" json:"message"`
}

// Set maps a file path to the diagnostics reported for it, in reported order.
type Set map[string][]Diagnostic

// Paths returns the file paths of the set in sorted order.
func (set Set) Paths() []string {
	paths := make([]string, 0, len(set))
	for filePath := range set {
		paths = append(paths, filePath)
	}
	sort.Strings(paths)
	return paths
}

// Parse decodes a YAML or JSON document of the form
// {"<path>": [{"line": 3, "message": "..."}]}.
func Parse(data []byte) (Set, error) {
	set := Set{}
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, err
	}
	if set == nil {
		set = Set{}
	}
	return set, nil
}

// LoadFile reads and parses the diagnostics document at path. An empty path
// yields an empty set.
func LoadFile(path string) (Set, error) {
	if path == "" {
		return Set{}, nil
	}
	data, readErr := os.ReadFile(filepath.Clean(path))
	if readErr != nil {
		return nil, fmt.Errorf(errorReadDiagnosticsFormat, path, readErr)
	}
	set, parseErr := Parse(data)
	if parseErr != nil {
		return nil, fmt.Errorf(errorParseDiagnosticsFormat, path, parseErr)
	}
	return set, nil
}
