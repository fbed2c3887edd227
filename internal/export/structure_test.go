package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStructureFromPaths(t *testing.T) {
	testCases := []struct {
		name     string
		paths    []string
		expected string
	}{
		{
			name:     "root files and nested directories",
			paths:    []string{"README.md", "src/a.ts", "src/lib/b.ts"},
			expected: `{".":["README.md"],"src":["a.ts",{"lib":["b.ts"]}]}`,
		},
		{
			name:     "root group placed at first root file",
			paths:    []string{"docs/guide.md", "main.go", "cmd/tool/main.go", "go.mod"},
			expected: `{"docs":["guide.md"],".":["main.go","go.mod"],"cmd":[{"tool":["main.go"]}]}`,
		},
		{
			name:     "deeply nested directories merge",
			paths:    []string{"a/b/c/d.txt", "a/b/e.txt", "a/b/c/f.txt"},
			expected: `{"a":[{"b":[{"c":["d.txt","f.txt"]},"e.txt"]}]}`,
		},
		{
			name:     "empty",
			paths:    nil,
			expected: `{}`,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			encoded, err := json.Marshal(StructureFromPaths(testCase.paths))
			require.NoError(t, err)
			require.JSONEq(t, testCase.expected, string(encoded))
			require.Equal(t, testCase.expected, string(encoded))
		})
	}
}

func TestStructureEscapesNames(t *testing.T) {
	encoded, err := json.Marshal(StructureFromPaths([]string{`we"ird/na\me.txt`}))
	require.NoError(t, err)
	require.True(t, json.Valid(encoded))
}
