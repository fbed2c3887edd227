package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/aiprompt/internal/diagnostics"
)

type mapReader map[string]string

func (reader mapReader) ReadFile(relativePath string) (string, error) {
	if relativePath == "image.png" {
		return "", ErrBinaryContent
	}
	content, found := reader[relativePath]
	if !found {
		return "", errors.New("permission denied")
	}
	return content, nil
}

type lengthCounter struct{}

func (lengthCounter) Name() string { return "length" }

func (lengthCounter) CountString(input string) (int, error) { return len(input), nil }

func newTestAssembler(root string) Assembler {
	return Assembler{
		Root:     root,
		Reader:   mapReader{"README.md": "# demo", "src/a.ts": "export {}", "src/lib/b.ts": "let b"},
		Defaults: StandardDefaults(),
	}
}

func stringPointer(value string) *string {
	return &value
}

func TestAssembleBuildsDocument(t *testing.T) {
	assembler := newTestAssembler("/project")
	result, err := assembler.Assemble(context.Background(), Input{
		AllFiles:      []string{"README.md", "src/a.ts", "src/lib/b.ts"},
		SelectedFiles: []string{"src/a.ts", "src/lib/b.ts"},
		Diagnostics: diagnostics.Set{
			"src/lib/b.ts":      {{Line: 1, Message: "unused b"}},
			"/project/src/a.ts": {{Line: 4, Message: "second"}, {Line: 2, Message: "first"}},
		},
	})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)

	document := result.Document
	require.Equal(t, DefaultProjectContext, document.ProjectContext)
	require.Equal(t, DefaultPrompt, document.Prompt)
	require.Equal(t, DefaultPromptRules, document.PromptRules)
	require.Equal(t, map[string]string{"src/a.ts": "export {}", "src/lib/b.ts": "let b"}, document.Files)
	require.Equal(t, []ErrorEntry{
		{File: "src/a.ts", Line: 4, ErrorMessage: "second"},
		{File: "src/a.ts", Line: 2, ErrorMessage: "first"},
		{File: "src/lib/b.ts", Line: 1, ErrorMessage: "unused b"},
	}, document.Errors)

	encoded, err := EncodeDocument(document)
	require.NoError(t, err)
	require.Contains(t, string(encoded), `"structure": {`)

	require.Equal(t, 2, result.Summary.Files)
	require.Equal(t, int64(len("export {}")+len("let b")), result.Summary.TotalBytes)
	require.Zero(t, result.Summary.Tokens)
}

func TestAssembleSkipsUnreadableFiles(t *testing.T) {
	assembler := newTestAssembler("/project")
	result, err := assembler.Assemble(context.Background(), Input{
		AllFiles:      []string{"README.md", "image.png", "secret.txt"},
		SelectedFiles: []string{"README.md", "image.png", "secret.txt"},
	})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"README.md": "# demo"}, result.Document.Files)
	require.Len(t, result.Warnings, 2)
	require.Contains(t, result.Warnings[0], "image.png")
	require.Contains(t, result.Warnings[1], "secret.txt")
	require.NotNil(t, result.Document.Errors)
}

func TestAssembleMergesPriorDocument(t *testing.T) {
	prior := []byte(`{"project-context": "a CLI", "prompt": "fix bug", "prompt-rules": ["be terse"], "files": {"old.go": "x"}}`)
	assembler := newTestAssembler("/project")
	result, err := assembler.Assemble(context.Background(), Input{
		AllFiles:      []string{"README.md"},
		SelectedFiles: []string{"README.md"},
		PriorDocument: prior,
	})
	require.NoError(t, err)
	require.Equal(t, "a CLI", result.Document.ProjectContext)
	require.Equal(t, "fix bug", result.Document.Prompt)
	require.Equal(t, []string{"be terse"}, result.Document.PromptRules)
	require.Equal(t, map[string]string{"README.md": "# demo"}, result.Document.Files)
}

func TestAssembleMetadataPrecedence(t *testing.T) {
	testCases := []struct {
		name           string
		prior          string
		override       *string
		expectedPrompt string
		expectedRules  []string
		expectWarning  bool
	}{
		{name: "override wins over prior", prior: `{"prompt": "fix bug"}`, override: stringPointer("add tests"), expectedPrompt: "add tests", expectedRules: DefaultPromptRules},
		{name: "empty prior string is kept", prior: `{"prompt": ""}`, expectedPrompt: "", expectedRules: DefaultPromptRules},
		{name: "wrong types fall back", prior: `{"prompt": 3, "prompt-rules": ["ok", 1]}`, expectedPrompt: DefaultPrompt, expectedRules: DefaultPromptRules},
		{name: "unparseable prior", prior: `{"prompt": "fix`, expectedPrompt: DefaultPrompt, expectedRules: DefaultPromptRules, expectWarning: true},
		{name: "empty rules preserved", prior: `{"prompt-rules": []}`, expectedPrompt: DefaultPrompt, expectedRules: []string{}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result, err := newTestAssembler("/project").Assemble(context.Background(), Input{
				PriorDocument: []byte(testCase.prior),
				Prompt:        testCase.override,
			})
			require.NoError(t, err)
			require.Equal(t, testCase.expectedPrompt, result.Document.Prompt)
			require.Equal(t, testCase.expectedRules, result.Document.PromptRules)
			if testCase.expectWarning {
				require.Len(t, result.Warnings, 1)
			} else {
				require.Empty(t, result.Warnings)
			}
		})
	}
}

func TestAssembleCountsTokens(t *testing.T) {
	assembler := newTestAssembler(t.TempDir())
	assembler.Counter = lengthCounter{}
	result, err := assembler.Assemble(context.Background(), Input{SelectedFiles: []string{"README.md", "src/a.ts"}})
	require.NoError(t, err)
	require.Equal(t, len("# demo")+len("export {}"), result.Summary.Tokens)
	require.Equal(t, "length", result.Summary.Model)
}

func TestAssembleRequiresReader(t *testing.T) {
	_, err := Assembler{}.Assemble(context.Background(), Input{})
	require.Error(t, err)
}

func TestAssembleHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestAssembler(filepath.Join(t.TempDir(), "root")).Assemble(ctx, Input{SelectedFiles: []string{"README.md"}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestAssembleReadsBackslashFileNames(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("backslash is the path separator on windows")
	}
	projectRoot := t.TempDir()
	fileName := `notes\todo.txt`
	require.NoError(t, os.WriteFile(filepath.Join(projectRoot, fileName), []byte("buy milk"), 0o644))

	assembler := Assembler{Root: projectRoot, Reader: NewFileReader(projectRoot, 0), Defaults: StandardDefaults()}
	result, err := assembler.Assemble(context.Background(), Input{
		AllFiles:      []string{fileName},
		SelectedFiles: []string{fileName},
	})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	require.Equal(t, map[string]string{fileName: "buy milk"}, result.Document.Files)

	structure, err := json.Marshal(result.Document.Structure)
	require.NoError(t, err)
	require.JSONEq(t, `{".": ["notes\\todo.txt"]}`, string(structure))
}
