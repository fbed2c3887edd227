package utils_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/temirov/aiprompt/internal/utils"
)

// textFileName defines the name of the text file used in tests.
const textFileName = "sample.txt"

// nestedDirectoryName defines the directory used for nested path tests.
const nestedDirectoryName = "subdir"

// nodeModulesDirectoryPattern defines the ignore pattern for the node_modules directory inside nestedDirectoryName.
const nodeModulesDirectoryPattern = nestedDirectoryName + "/node_modules/"

// backslashNodeModulesDirectoryPattern defines the same pattern with backslashes to verify normalization.
const backslashNodeModulesDirectoryPattern = nestedDirectoryName + `\node_modules\`

// nodeModulesFilePath defines a file inside the node_modules directory.
const nodeModulesFilePath = nestedDirectoryName + "/node_modules/index.js"

// claspFilePattern defines the ignore pattern for a clasp configuration file inside nestedDirectoryName.
const claspFilePattern = nestedDirectoryName + "/.clasp.json"

// TestDeduplicatePatterns verifies that DeduplicatePatterns removes duplicate patterns.
func TestDeduplicatePatterns(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		patterns []string
		expected []string
	}{
		{testName: "removes duplicates", patterns: []string{"a", "b", "a"}, expected: []string{"a", "b"}},
		{testName: "keeps unique", patterns: []string{"a", "b"}, expected: []string{"a", "b"}},
		{testName: "empty input", patterns: nil, expected: []string{}},
	}
	for index, testCase := range testCases {
		actual := utils.DeduplicatePatterns(testCase.patterns)
		if len(actual) != len(testCase.expected) {
			testingInstance.Errorf("case %d (%s): expected length %d, got %d", index, testCase.testName, len(testCase.expected), len(actual))
			continue
		}
		for position, value := range actual {
			if value != testCase.expected[position] {
				testingInstance.Errorf("case %d (%s): expected %s at position %d, got %s", index, testCase.testName, testCase.expected[position], position, value)
			}
		}
	}
}

// TestContainsString verifies that ContainsString locates strings in a slice.
func TestContainsString(testingInstance *testing.T) {
	if !utils.ContainsString([]string{"alpha", "beta"}, "beta") {
		testingInstance.Errorf("expected beta to be found")
	}
	if utils.ContainsString([]string{"alpha", "beta"}, "gamma") {
		testingInstance.Errorf("expected gamma to be missing")
	}
}

// TestRelativePathOrSelf verifies relative path calculations.
func TestRelativePathOrSelf(testingInstance *testing.T) {
	temporaryRoot := testingInstance.TempDir()
	nestedPath := filepath.Join(temporaryRoot, nestedDirectoryName, textFileName)
	if makeError := os.MkdirAll(filepath.Dir(nestedPath), 0o755); makeError != nil {
		testingInstance.Fatalf("mkdir: %v", makeError)
	}
	testCases := []struct {
		testName string
		fullPath string
		expected string
	}{
		{testName: "root path returns dot", fullPath: temporaryRoot, expected: "."},
		{testName: "nested path uses forward slashes", fullPath: nestedPath, expected: nestedDirectoryName + "/" + textFileName},
		{testName: "relative input is kept", fullPath: nestedDirectoryName + "/" + textFileName, expected: nestedDirectoryName + "/" + textFileName},
	}
	for index, testCase := range testCases {
		actual := utils.RelativePathOrSelf(testCase.fullPath, temporaryRoot)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %s, got %s", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestShouldIgnoreByPath verifies path ignoring logic.
func TestShouldIgnoreByPath(testingInstance *testing.T) {
	testCases := []struct {
		testName       string
		relativePath   string
		patterns       []string
		expectedIgnore bool
	}{
		{testName: "state directory", relativePath: utils.StateDirectoryName + "/selection.json", expectedIgnore: true},
		{testName: "exclude pattern", relativePath: "dir/file.txt", patterns: []string{"EXCL:dir"}, expectedIgnore: true},
		{testName: "directory pattern for directory", relativePath: "dir", patterns: []string{"dir/"}, expectedIgnore: true},
		{testName: "unanchored directory pattern", relativePath: "web/node_modules/react/index.js", patterns: []string{"node_modules/"}, expectedIgnore: true},
		{testName: "nested directory pattern", relativePath: "dir/file.txt", patterns: []string{"dir/*"}, expectedIgnore: true},
		{testName: "wildcard file pattern", relativePath: "dir/file.txt", patterns: []string{"*.txt"}, expectedIgnore: true},
		{testName: "path pattern", relativePath: "dir/file.txt", patterns: []string{"dir/*.txt"}, expectedIgnore: true},
		{testName: "not ignored", relativePath: "dir/file.txt", patterns: []string{"*.md"}, expectedIgnore: false},
		{testName: "nested directory with slash", relativePath: nodeModulesFilePath, patterns: []string{nodeModulesDirectoryPattern}, expectedIgnore: true},
		{testName: "nested directory with backslashes", relativePath: nodeModulesFilePath, patterns: []string{backslashNodeModulesDirectoryPattern}, expectedIgnore: true},
		{testName: "nested file pattern", relativePath: claspFilePattern, patterns: []string{claspFilePattern}, expectedIgnore: true},
		{testName: "nested file pattern no match", relativePath: "other/" + claspFilePattern, patterns: []string{claspFilePattern}, expectedIgnore: false},
		{testName: "nested directory pattern no match", relativePath: "other/" + nodeModulesFilePath, patterns: []string{nodeModulesDirectoryPattern}, expectedIgnore: false},
		{testName: "export file listed in gitignore", relativePath: utils.DefaultExportFileName, patterns: []string{utils.DefaultExportFileName}, expectedIgnore: true},
	}
	for index, testCase := range testCases {
		actual := utils.ShouldIgnoreByPath(testCase.relativePath, testCase.patterns)
		if actual != testCase.expectedIgnore {
			testingInstance.Errorf("case %d (%s): expected %t, got %t", index, testCase.testName, testCase.expectedIgnore, actual)
		}
	}
}

// TestIsBinary verifies detection of binary data in byte slices.
func TestIsBinary(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		data     []byte
		expected bool
	}{
		{testName: "utf8 text", data: []byte("hello"), expected: false},
		{testName: "null byte", data: []byte{0x00, 0x01}, expected: true},
		{testName: "invalid utf8", data: []byte{0xff}, expected: true},
		{testName: "empty slice", data: []byte{}, expected: false},
	}
	for index, testCase := range testCases {
		actual := utils.IsBinary(testCase.data)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %t, got %t", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestShouldIgnoreByPathKeepsBackslashFileNames verifies that a backslash in a
// POSIX file name is not read as a directory separator.
func TestShouldIgnoreByPathKeepsBackslashFileNames(testingInstance *testing.T) {
	if runtime.GOOS == "windows" {
		testingInstance.Skip("backslash is the path separator on windows")
	}
	if utils.ShouldIgnoreByPath(`notes\todo.txt`, []string{"todo.txt"}) {
		testingInstance.Errorf("expected notes\\todo.txt to differ from todo.txt")
	}
	if utils.ShouldIgnoreByPath(`notes\todo.txt`, []string{"notes/"}) {
		testingInstance.Errorf("expected notes\\todo.txt outside the notes directory")
	}
	if !utils.ShouldIgnoreByPath(`notes\todo.txt`, []string{"notes*"}) {
		testingInstance.Errorf("expected wildcard to match the whole file name")
	}
}
