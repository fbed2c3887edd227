package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/aiprompt/internal/config"
	"github.com/temirov/aiprompt/internal/output"
	"github.com/temirov/aiprompt/internal/selection"
)

const (
	treeUse              = "tree"
	treeAlias            = "t"
	treeShortDescription = "display the project tree with selection marks (" + treeAlias + ")"
	treeLongDescription  = `Display the project tree. [x] marks a selected node, [+] a node included
through a selected directory and [ ] an unselected node.`
	treeUsageExample = `  # Render the tree as JSON
  aiprompt tree --format json

  # Render another project
  aiprompt tree --root ../service`

	toggleUse              = "toggle <path>..."
	toggleShortDescription = "toggle selection of files or directories"
	toggleLongDescription  = `Toggle the selection of each path relative to the project root.
Toggling a directory applies its new state to everything below it.
Paths that are not part of the project tree are skipped with a warning.`
	toggleUsageExample = `  # Select a directory and a single file
  aiprompt toggle src README.md

  # Start over with only docs selected
  aiprompt toggle --clear docs`
	clearFlagName        = "clear"
	clearFlagDescription = "deselect everything before toggling"

	selectedUse              = "selected"
	selectedAlias            = "s"
	selectedShortDescription = "list selected files (" + selectedAlias + ")"
	allFlagName              = "all"
	allFlagDescription       = "list every file of the project tree"

	initUse               = "init"
	initShortDescription  = "write a default configuration file"
	globalFlagName        = "global"
	globalFlagDescription = "write the configuration into the home directory"
	forceFlagName         = "force"
	forceFlagDescription  = "overwrite an existing configuration file"

	selectionCountFormat    = "%d %s selected\n"
	configurationWrittenFmt = "Configuration written to %s\n"
	warningStalePathFormat  = "%s is not part of the project tree"
	errorToggleArguments    = "toggle requires at least one path unless --clear is given"
	logMessageStalePath     = "skipping path outside the tree"
	logFieldPath            = "path"
)

func createTreeCommand(options *globalOptions, dependencies Dependencies) *cobra.Command {
	var outputFormat string

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			outputFormatLower := strings.ToLower(outputFormat)
			if formatError := output.ValidateFormat(outputFormatLower); formatError != nil {
				return formatError
			}
			currentSession, sessionError := openSession(command.Context(), command, options, dependencies)
			if sessionError != nil {
				return sessionError
			}
			defer currentSession.Close()

			snapshot := currentSession.engine.Snapshot()
			if outputFormatLower == output.FormatJSON {
				rendered, renderError := output.RenderJSON(snapshot)
				if renderError != nil {
					return renderError
				}
				fmt.Fprintln(dependencies.Stdout, rendered)
				return nil
			}
			output.WriteTreeRaw(dependencies.Stdout, snapshot, output.NewPalette(dependencies.Colorize))
			return nil
		},
	}
	treeCommand.Flags().StringVar(&outputFormat, formatFlagName, output.FormatRaw, formatFlagDescription)
	return treeCommand
}

func createToggleCommand(options *globalOptions, dependencies Dependencies) *cobra.Command {
	var clearFirst bool

	toggleCommand := &cobra.Command{
		Use:     toggleUse,
		Short:   toggleShortDescription,
		Long:    toggleLongDescription,
		Example: toggleUsageExample,
		Args: func(command *cobra.Command, arguments []string) error {
			if len(arguments) == 0 && !clearFirst {
				return errors.New(errorToggleArguments)
			}
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			ctx := command.Context()
			currentSession, sessionError := openSession(ctx, command, options, dependencies)
			if sessionError != nil {
				return sessionError
			}
			defer currentSession.Close()

			if clearFirst {
				if clearError := currentSession.engine.ClearSelection(ctx); clearError != nil {
					return clearError
				}
			}

			var warnings []string
			for _, argument := range arguments {
				nodePath := currentSession.relativeNodePath(argument)
				if !currentSession.engine.Contains(nodePath) {
					dependencies.Logger.Debug(logMessageStalePath, zap.String(logFieldPath, nodePath))
					warnings = append(warnings, fmt.Sprintf(warningStalePathFormat, argument))
					continue
				}
				if toggleError := currentSession.engine.ToggleSelection(ctx, nodePath); toggleError != nil {
					return toggleError
				}
			}
			writeWarnings(dependencies, warnings)

			selectedCount := len(currentSession.engine.SelectedFiles())
			fmt.Fprintf(dependencies.Stdout, selectionCountFormat, selectedCount, pluralizeFiles(selectedCount))
			return nil
		},
	}
	registerBooleanFlag(toggleCommand.Flags(), &clearFirst, clearFlagName, false, clearFlagDescription)
	return toggleCommand
}

func createSelectedCommand(options *globalOptions, dependencies Dependencies) *cobra.Command {
	var outputFormat string
	var listAll bool

	selectedCommand := &cobra.Command{
		Use:     selectedUse,
		Aliases: []string{selectedAlias},
		Short:   selectedShortDescription,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			outputFormatLower := strings.ToLower(outputFormat)
			if formatError := output.ValidateFormat(outputFormatLower); formatError != nil {
				return formatError
			}
			currentSession, sessionError := openSession(command.Context(), command, options, dependencies)
			if sessionError != nil {
				return sessionError
			}
			defer currentSession.Close()

			files := currentSession.engine.SelectedFiles()
			if listAll {
				files = currentSession.engine.AllFiles()
			}
			paths := selection.FilePaths(files)
			if outputFormatLower == output.FormatJSON {
				rendered, renderError := output.RenderJSON(paths)
				if renderError != nil {
					return renderError
				}
				fmt.Fprintln(dependencies.Stdout, rendered)
				return nil
			}
			output.WriteFileList(dependencies.Stdout, paths)
			return nil
		},
	}
	selectedCommand.Flags().StringVar(&outputFormat, formatFlagName, output.FormatRaw, formatFlagDescription)
	registerBooleanFlag(selectedCommand.Flags(), &listAll, allFlagName, false, allFlagDescription)
	return selectedCommand
}

func createInitCommand(options *globalOptions, dependencies Dependencies) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: options.root,
			})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(dependencies.Stdout, configurationWrittenFmt, writtenPath)
			return nil
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

func pluralizeFiles(count int) string {
	if count == 1 {
		return "file"
	}
	return "files"
}
