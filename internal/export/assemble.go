package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/temirov/aiprompt/internal/diagnostics"
	"github.com/temirov/aiprompt/internal/tokenizer"
	"github.com/temirov/aiprompt/internal/utils"
)

const (
	projectContextField = "project-context"
	promptField         = "prompt"
	promptRulesField    = "prompt-rules"

	warningSkippedBinaryFormat     = "skipped %s: binary content"
	warningSkippedUnreadableFormat = "skipped %s: %v"
	warningPriorUnparseable        = "existing document is not valid JSON; using defaults"
	errorNilReader                 = "export: content reader is nil"
	errorCountTokensFormat         = "count tokens: %w"

	logMessageSkippedFile = "skipping file"
	logMessagePriorIgnore = "ignoring existing document"
	logFieldPath          = "path"
	logFieldReason        = "reason"
)

// Input carries the selection state and metadata overrides for one export.
type Input struct {
	AllFiles      []string
	SelectedFiles []string
	Diagnostics   diagnostics.Set
	// ProjectContext and Prompt, when set, replace any prior or default value.
	ProjectContext *string
	Prompt         *string
	// PriorDocument is the content of the document being replaced, if any.
	PriorDocument []byte
}

// Summary describes the exported content.
type Summary struct {
	Files      int
	TotalBytes int64
	TotalSize  string
	Tokens     int
	Model      string
}

// Result is the assembled document with the warnings raised while building it.
type Result struct {
	Document Document
	Warnings []string
	Summary  Summary
}

// Assembler builds documents for a project root.
type Assembler struct {
	Root     string
	Reader   ContentReader
	Defaults Defaults
	// Counter, when set, totals the tokens of exported file content.
	Counter tokenizer.Counter
	Model   string
	Logger  *zap.Logger
}

// Assemble builds the document for input. Files that cannot be read are
// skipped and reported in Result.Warnings; a prior document that cannot be
// parsed is treated as absent.
func (assembler Assembler) Assemble(ctx context.Context, input Input) (Result, error) {
	if assembler.Reader == nil {
		return Result{}, errors.New(errorNilReader)
	}
	logger := assembler.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var result Result
	metadata := assembler.mergeMetadata(input.PriorDocument, &result, logger)
	if input.ProjectContext != nil {
		metadata.ProjectContext = *input.ProjectContext
	}
	if input.Prompt != nil {
		metadata.Prompt = *input.Prompt
	}

	files := make(map[string]string, len(input.SelectedFiles))
	var totalBytes int64
	var contents []string
	for _, relativePath := range input.SelectedFiles {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		content, readErr := assembler.Reader.ReadFile(relativePath)
		if readErr != nil {
			var warning string
			if errors.Is(readErr, ErrBinaryContent) {
				warning = fmt.Sprintf(warningSkippedBinaryFormat, relativePath)
			} else {
				warning = fmt.Sprintf(warningSkippedUnreadableFormat, relativePath, readErr)
			}
			logger.Warn(logMessageSkippedFile, zap.String(logFieldPath, relativePath), zap.Error(readErr))
			result.Warnings = append(result.Warnings, warning)
			continue
		}
		files[relativePath] = content
		totalBytes += int64(len(content))
		contents = append(contents, content)
	}

	result.Document = Document{
		ProjectContext: metadata.ProjectContext,
		Prompt:         metadata.Prompt,
		PromptRules:    metadata.PromptRules,
		Structure:      StructureFromPaths(input.AllFiles),
		Files:          files,
		Errors:         assembler.errorEntries(input.Diagnostics),
	}
	result.Summary = Summary{
		Files:      len(files),
		TotalBytes: totalBytes,
		TotalSize:  utils.FormatFileSize(totalBytes),
	}
	if assembler.Counter != nil {
		tokens, countErr := tokenizer.CountStrings(assembler.Counter, contents)
		if countErr != nil {
			return Result{}, fmt.Errorf(errorCountTokensFormat, countErr)
		}
		result.Summary.Tokens = tokens
		result.Summary.Model = assembler.Model
		if result.Summary.Model == "" {
			result.Summary.Model = assembler.Counter.Name()
		}
	}
	return result, nil
}

// mergeMetadata takes each metadata field from the prior document when it is
// present there with the right type, and from the defaults otherwise.
func (assembler Assembler) mergeMetadata(prior []byte, result *Result, logger *zap.Logger) Defaults {
	merged := Defaults{
		ProjectContext: assembler.Defaults.ProjectContext,
		Prompt:         assembler.Defaults.Prompt,
		PromptRules:    append([]string{}, assembler.Defaults.PromptRules...),
	}
	if len(prior) == 0 {
		return merged
	}
	if !gjson.ValidBytes(prior) {
		logger.Warn(logMessagePriorIgnore, zap.String(logFieldReason, warningPriorUnparseable))
		result.Warnings = append(result.Warnings, warningPriorUnparseable)
		return merged
	}

	if projectContext := gjson.GetBytes(prior, projectContextField); projectContext.Type == gjson.String {
		merged.ProjectContext = projectContext.String()
	}
	if prompt := gjson.GetBytes(prior, promptField); prompt.Type == gjson.String {
		merged.Prompt = prompt.String()
	}
	if rules, ok := stringArray(gjson.GetBytes(prior, promptRulesField)); ok {
		merged.PromptRules = rules
	}
	return merged
}

func stringArray(value gjson.Result) ([]string, bool) {
	if !value.IsArray() {
		return nil, false
	}
	elements := value.Array()
	values := make([]string, 0, len(elements))
	for _, element := range elements {
		if element.Type != gjson.String {
			return nil, false
		}
		values = append(values, element.String())
	}
	return values, true
}

// errorEntries flattens diagnostics into entries ordered by file path, keeping
// the reported order within a file.
func (assembler Assembler) errorEntries(set diagnostics.Set) []ErrorEntry {
	entries := []ErrorEntry{}
	for _, filePath := range set.Paths() {
		relativePath := filepath.ToSlash(filePath)
		if filepath.IsAbs(filePath) && assembler.Root != "" {
			relativePath = utils.RelativePathOrSelf(filePath, assembler.Root)
		}
		for _, diagnostic := range set[filePath] {
			entries = append(entries, ErrorEntry{File: relativePath, Line: diagnostic.Line, ErrorMessage: diagnostic.Message})
		}
	}
	return entries
}
