// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/aiprompt/internal/output"
	"github.com/temirov/aiprompt/internal/services/clipboard"
	"github.com/temirov/aiprompt/internal/utils"
)

const (
	rootFlagName         = "root"
	configFlagName       = "config"
	storeFlagName        = "store"
	databaseFlagName     = "database"
	exclusionFlagName    = "e"
	noGitignoreFlagName  = "no-gitignore"
	noIgnoreFlagName     = "no-ignore"
	includeGitFlagName   = "git"
	versionFlagName      = "version"
	formatFlagName       = "format"
	defaultRootDirectory = "."

	configEnvironmentVariable = "AIPROMPT_CONFIG"
	storeEnvironmentVariable  = "AIPROMPT_STORE"

	versionTemplate      = "aiprompt version: %s\n"
	rootUse              = "aiprompt"
	rootShortDescription = "aiprompt command line interface"
	rootLongDescription  = `aiprompt keeps a persistent selection of project files and directories
and exports the selected content, the project structure and diagnostics into a
single JSON prompt document.
Use tree to inspect the selection, toggle to change it, selected to list it and
export to write the document.`

	rootFlagDescription        = "project root directory"
	configFlagDescription      = "configuration file (default .aiprompt.yaml in the project root, env " + configEnvironmentVariable + ")"
	storeFlagDescription       = "selection store: file, sqlite or memory (env " + storeEnvironmentVariable + ")"
	databaseFlagDescription    = "SQLite database used by the sqlite store"
	exclusionFlagDescription   = "exclude path pattern"
	noGitignoreFlagDescription = "do not use .gitignore"
	noIgnoreFlagDescription    = "do not use .ignore"
	includeGitFlagDescription  = "include git directory"
	versionFlagDescription     = "display application version"
	formatFlagDescription      = "output format: raw or json"
)

// errVersionShown stops command execution after --version was handled.
var errVersionShown = errors.New("version shown")

// Dependencies are the collaborators commands write to and call into.
type Dependencies struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *zap.Logger
	Clipboard clipboard.Copier
	Colorize  bool
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Stdout == nil {
		dependencies.Stdout = os.Stdout
	}
	if dependencies.Stderr == nil {
		dependencies.Stderr = os.Stderr
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Clipboard == nil {
		dependencies.Clipboard = clipboard.NewService()
	}
	return dependencies
}

// globalOptions stores the persistent flags shared by every command.
type globalOptions struct {
	root              string
	configPath        string
	storeBackend      string
	databasePath      string
	exclusionPatterns []string
	disableGitignore  bool
	disableIgnoreFile bool
	includeGit        bool
	showVersion       bool
}

// Execute runs the aiprompt application with the process arguments.
func Execute(ctx context.Context, logger *zap.Logger) error {
	rootCommand := NewRootCommand(Dependencies{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Logger:    logger,
		Clipboard: clipboard.NewService(),
		Colorize:  output.ShouldColorize(os.Stdout),
	})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return runRootCommand(ctx, rootCommand)
}

func runRootCommand(ctx context.Context, rootCommand *cobra.Command) error {
	if executeError := rootCommand.ExecuteContext(ctx); executeError != nil && !errors.Is(executeError, errVersionShown) {
		return executeError
	}
	return nil
}

// NewRootCommand builds the root Cobra command and its subcommands.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	dependencies = dependencies.withDefaults()
	options := &globalOptions{}

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				fmt.Fprintf(dependencies.Stdout, versionTemplate, utils.GetApplicationVersion())
				return errVersionShown
			}
			return nil
		},
	}

	flags := rootCommand.PersistentFlags()
	flags.StringVar(&options.root, rootFlagName, defaultRootDirectory, rootFlagDescription)
	flags.StringVar(&options.configPath, configFlagName, os.Getenv(configEnvironmentVariable), configFlagDescription)
	flags.StringVar(&options.storeBackend, storeFlagName, os.Getenv(storeEnvironmentVariable), storeFlagDescription)
	flags.StringVar(&options.databasePath, databaseFlagName, "", databaseFlagDescription)
	flags.StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	registerBooleanFlag(flags, &options.disableGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
	registerBooleanFlag(flags, &options.disableIgnoreFile, noIgnoreFlagName, false, noIgnoreFlagDescription)
	registerBooleanFlag(flags, &options.includeGit, includeGitFlagName, false, includeGitFlagDescription)
	registerBooleanFlag(flags, &options.showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(
		createTreeCommand(options, dependencies),
		createToggleCommand(options, dependencies),
		createSelectedCommand(options, dependencies),
		createExportCommand(options, dependencies),
		createInitCommand(options, dependencies),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

func writeWarnings(dependencies Dependencies, warnings []string) {
	output.WriteWarnings(dependencies.Stderr, warnings, output.NewPalette(dependencies.Colorize))
}
