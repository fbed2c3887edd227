package diagnostics

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadFile(testingHandle *testing.T) {
	testCases := []struct {
		name        string
		content     string
		expectedSet Set
		expectError bool
	}{
		{
			name:    "yaml",
			content: "src/a.ts:\n  - line: 3\n    message: unused variable\n  - line: 1\n    message: missing import\n",
			expectedSet: Set{"src/a.ts": {
				{Line: 3, Message: "unused variable"},
				{Line: 1, Message: "missing import"},
			}},
		},
		{
			name:        "json",
			content:     `{"main.go": [{"line": 7, "message": "undefined: x"}]}`,
			expectedSet: Set{"main.go": {{Line: 7, Message: "undefined: x"}}},
		},
		{
			name:        "empty document",
			content:     "",
			expectedSet: Set{},
		},
		{
			name:        "malformed",
			content:     "main.go: [line: {",
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subTestingHandle *testing.T) {
			diagnosticsPath := filepath.Join(subTestingHandle.TempDir(), "diagnostics.yaml")
			if writeError := os.WriteFile(diagnosticsPath, []byte(testCase.content), 0o644); writeError != nil {
				subTestingHandle.Fatalf("write diagnostics: %v", writeError)
			}
			set, loadError := LoadFile(diagnosticsPath)
			if testCase.expectError {
				if loadError == nil {
					subTestingHandle.Fatalf("expected an error")
				}
				return
			}
			if loadError != nil {
				subTestingHandle.Fatalf("LoadFile: %v", loadError)
			}
			if !reflect.DeepEqual(set, testCase.expectedSet) {
				subTestingHandle.Fatalf("expected %v, got %v", testCase.expectedSet, set)
			}
		})
	}
}

func TestLoadFileEmptyPathAndMissingFile(testingHandle *testing.T) {
	set, loadError := LoadFile("")
	if loadError != nil || len(set) != 0 {
		testingHandle.Fatalf("expected empty set for empty path, got %v, %v", set, loadError)
	}
	if _, loadError = LoadFile(filepath.Join(testingHandle.TempDir(), "missing.yaml")); loadError == nil {
		testingHandle.Fatalf("expected an error for a missing file")
	}
}

func TestSetPathsSorted(testingHandle *testing.T) {
	set := Set{"z.go": nil, "a.go": nil, "m/b.go": nil}
	expected := []string{"a.go", "m/b.go", "z.go"}
	if paths := set.Paths(); !reflect.DeepEqual(paths, expected) {
		testingHandle.Fatalf("expected %v, got %v", expected, paths)
	}
}
