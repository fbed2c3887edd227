package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/aiprompt/internal/config"
	"github.com/temirov/aiprompt/internal/diagnostics"
	"github.com/temirov/aiprompt/internal/export"
	"github.com/temirov/aiprompt/internal/output"
	"github.com/temirov/aiprompt/internal/selection"
	"github.com/temirov/aiprompt/internal/tokenizer"
	"github.com/temirov/aiprompt/internal/utils"
)

const (
	exportUse              = "export"
	exportAlias            = "x"
	exportShortDescription = "write the prompt document (" + exportAlias + ")"
	exportLongDescription  = `Write the selected files, the project structure and diagnostics into a JSON
prompt document. The project context, prompt and prompt rules of an existing
document are kept unless overridden with flags. The document is added to
.gitignore unless --no-gitignore-update is given.`
	exportUsageExample = `  # Export with a new task description
  aiprompt export --prompt "fix the failing parser test"

  # Attach diagnostics and count tokens
  aiprompt export --diagnostics lint.yaml --tokens --model gpt-4o`

	outputFlagName                = "output"
	promptFlagName                = "prompt"
	projectContextFlagName        = "project-context"
	diagnosticsFlagName           = "diagnostics"
	tokensFlagName                = "tokens"
	modelFlagName                 = "model"
	clipboardFlagName             = "clipboard"
	noGitignoreUpdateFlagName     = "no-gitignore-update"
	outputFlagDescription         = "document path relative to the project root"
	promptFlagDescription         = "replace the prompt of the document"
	projectContextFlagDescription = "replace the project context of the document"
	diagnosticsFlagDescription    = "YAML or JSON file mapping paths to diagnostics"
	tokensFlagDescription         = "count tokens of the exported content"
	modelFlagDescription          = "tokenizer model to use for token counting"
	clipboardFlagDescription      = "copy the document to the clipboard"
	noGitignoreUpdateDescription  = "do not add the document to .gitignore"

	exportedDocumentFormat     = "Exported %s\n"
	warningClipboardFormat     = "copy to clipboard: %v"
	warningGitignoreFormat     = "update %s: %v"
	errorLoadDiagnosticsFormat = "load diagnostics: %w"
	errorTokenizerFormat       = "initialize tokenizer: %w"
	logMessageIgnoreUpdated    = "document added to ignore file"
	logMessageDocumentWritten  = "document written"
	logFieldFiles              = "files"
	logFieldWarnings           = "warnings"
)

type exportOptions struct {
	outputPath       string
	prompt           string
	projectContext   string
	diagnosticsPath  string
	countTokens      bool
	model            string
	copyToClipboard  bool
	skipIgnoreUpdate bool
}

func createExportCommand(options *globalOptions, dependencies Dependencies) *cobra.Command {
	var flags exportOptions

	exportCommand := &cobra.Command{
		Use:     exportUse,
		Aliases: []string{exportAlias},
		Short:   exportShortDescription,
		Long:    exportLongDescription,
		Example: exportUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			ctx := command.Context()
			currentSession, sessionError := openSession(ctx, command, options, dependencies)
			if sessionError != nil {
				return sessionError
			}
			defer currentSession.Close()
			return runExport(command, currentSession, flags, dependencies)
		},
	}

	commandFlags := exportCommand.Flags()
	commandFlags.StringVar(&flags.outputPath, outputFlagName, "", outputFlagDescription)
	commandFlags.StringVar(&flags.prompt, promptFlagName, "", promptFlagDescription)
	commandFlags.StringVar(&flags.projectContext, projectContextFlagName, "", projectContextFlagDescription)
	commandFlags.StringVar(&flags.diagnosticsPath, diagnosticsFlagName, "", diagnosticsFlagDescription)
	commandFlags.StringVar(&flags.model, modelFlagName, "", modelFlagDescription)
	registerBooleanFlag(commandFlags, &flags.countTokens, tokensFlagName, false, tokensFlagDescription)
	registerBooleanFlag(commandFlags, &flags.copyToClipboard, clipboardFlagName, false, clipboardFlagDescription)
	registerBooleanFlag(commandFlags, &flags.skipIgnoreUpdate, noGitignoreUpdateFlagName, false, noGitignoreUpdateDescription)
	return exportCommand
}

func runExport(command *cobra.Command, currentSession *session, flags exportOptions, dependencies Dependencies) error {
	ctx := command.Context()
	exportConfiguration := currentSession.configuration.Export

	outputPath := firstNonEmpty(flags.outputPath, exportConfiguration.Output, utils.DefaultExportFileName)
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(currentSession.root, outputPath)
	}

	diagnosticSet, diagnosticsError := diagnostics.LoadFile(flags.diagnosticsPath)
	if diagnosticsError != nil {
		return fmt.Errorf(errorLoadDiagnosticsFormat, diagnosticsError)
	}

	assembler := export.Assembler{
		Root:     currentSession.root,
		Reader:   export.NewFileReader(currentSession.root, export.DefaultReaderCacheSize),
		Defaults: exportDefaults(exportConfiguration),
		Logger:   dependencies.Logger,
	}
	if resolveBooleanSetting(command, tokensFlagName, flags.countTokens, exportConfiguration.Tokens.Enabled, false) {
		model := firstNonEmpty(flags.model, exportConfiguration.Tokens.Model, tokenizer.DefaultModel)
		counter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: model})
		if counterError != nil {
			return fmt.Errorf(errorTokenizerFormat, counterError)
		}
		assembler.Counter = counter
		assembler.Model = resolvedModel
	}

	input := export.Input{
		AllFiles:      selection.FilePaths(currentSession.engine.AllFiles()),
		SelectedFiles: selection.FilePaths(currentSession.engine.SelectedFiles()),
		Diagnostics:   diagnosticSet,
		PriorDocument: export.ReadPriorDocument(outputPath),
	}
	if command.Flags().Changed(promptFlagName) {
		input.Prompt = &flags.prompt
	}
	if command.Flags().Changed(projectContextFlagName) {
		input.ProjectContext = &flags.projectContext
	}

	result, assembleError := assembler.Assemble(ctx, input)
	if assembleError != nil {
		return assembleError
	}
	encoded, writeError := export.WriteDocument(outputPath, result.Document)
	if writeError != nil {
		return writeError
	}
	dependencies.Logger.Debug(logMessageDocumentWritten,
		zap.String(logFieldPath, outputPath),
		zap.Int(logFieldFiles, result.Summary.Files),
		zap.Int(logFieldWarnings, len(result.Warnings)),
	)

	warnings := result.Warnings
	updateIgnore := !resolveBooleanSetting(command, noGitignoreUpdateFlagName, flags.skipIgnoreUpdate, negate(exportConfiguration.UpdateGitignore), false)
	if entry, insideRoot := ignoreEntry(currentSession.root, outputPath); updateIgnore && insideRoot {
		changed, ignoreError := export.EnsureIgnored(currentSession.root, utils.GitIgnoreFileName, entry)
		if ignoreError != nil {
			warnings = append(warnings, fmt.Sprintf(warningGitignoreFormat, utils.GitIgnoreFileName, ignoreError))
		} else if changed {
			dependencies.Logger.Debug(logMessageIgnoreUpdated, zap.String(logFieldPath, entry))
		}
	}

	if resolveBooleanSetting(command, clipboardFlagName, flags.copyToClipboard, exportConfiguration.Clipboard, false) {
		if copyError := dependencies.Clipboard.Copy(string(encoded)); copyError != nil {
			warnings = append(warnings, fmt.Sprintf(warningClipboardFormat, copyError))
		}
	}

	writeWarnings(dependencies, warnings)
	fmt.Fprintf(dependencies.Stdout, exportedDocumentFormat, utils.RelativePathOrSelf(outputPath, currentSession.root))
	fmt.Fprintln(dependencies.Stdout, output.FormatSummaryLine(result.Summary))
	return nil
}

// exportDefaults overlays configured metadata onto the built-in defaults.
func exportDefaults(exportConfiguration config.ExportConfiguration) export.Defaults {
	defaults := export.StandardDefaults()
	if exportConfiguration.ProjectContext != nil {
		defaults.ProjectContext = *exportConfiguration.ProjectContext
	}
	if exportConfiguration.Prompt != nil {
		defaults.Prompt = *exportConfiguration.Prompt
	}
	if len(exportConfiguration.PromptRules) > 0 {
		defaults.PromptRules = append([]string{}, exportConfiguration.PromptRules...)
	}
	return defaults
}

// ignoreEntry returns the slash-separated path of the document relative to
// root and whether the document lies inside root.
func ignoreEntry(root string, outputPath string) (string, bool) {
	relativePath, relativeError := filepath.Rel(root, outputPath)
	if relativeError != nil {
		return "", false
	}
	relativePath = filepath.ToSlash(relativePath)
	if relativePath == ".." || strings.HasPrefix(relativePath, "../") {
		return "", false
	}
	return relativePath, true
}
