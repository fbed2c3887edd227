package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/aiprompt/internal/config"
	"github.com/temirov/aiprompt/internal/selection"
	"github.com/temirov/aiprompt/internal/store"
	"github.com/temirov/aiprompt/internal/utils"
	"github.com/temirov/aiprompt/internal/workspace"
)

const (
	defaultDatabaseFileName = "selection.db"
	homeDirectoryPrefix     = "~/"
	errorLoadConfigFormat   = "load configuration: %w"
	errorLoadIgnoreFormat   = "load ignore patterns: %w"
	errorOpenStoreFormat    = "open selection store: %w"
	errorRefreshFormat      = "refresh selection: %w"
	errorResolveHomeFormat  = "resolve home directory: %w"
	logMessageSessionOpened = "session opened"
	logFieldRoot            = "root"
	logFieldStore           = "store"
	logFieldIgnorePatterns  = "ignore_patterns"
)

// session is the selection state of one project loaded for a single command.
type session struct {
	root          string
	configuration config.ApplicationConfiguration
	store         store.Store
	engine        *selection.Engine
	logger        *zap.Logger
}

// openSession resolves the project root, loads configuration and ignore
// patterns, opens the selection store and refreshes the engine from disk.
func openSession(ctx context.Context, command *cobra.Command, options *globalOptions, dependencies Dependencies) (*session, error) {
	root, rootError := workspace.ValidateRoot(options.root)
	if rootError != nil {
		return nil, rootError
	}

	configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: root,
		ExplicitFilePath: options.configPath,
	})
	if configurationError != nil {
		return nil, fmt.Errorf(errorLoadConfigFormat, configurationError)
	}

	ignoreOptions := config.IgnoreOptions{
		ExclusionPatterns: append(append([]string{}, configuration.Paths.Exclude...), options.exclusionPatterns...),
		UseGitignore:      !resolveBooleanSetting(command, noGitignoreFlagName, options.disableGitignore, negate(configuration.Paths.UseGitignore), false),
		UseIgnoreFile:     !resolveBooleanSetting(command, noIgnoreFlagName, options.disableIgnoreFile, negate(configuration.Paths.UseIgnoreFile), false),
		IncludeGit:        resolveBooleanSetting(command, includeGitFlagName, options.includeGit, configuration.Paths.IncludeGit, false),
	}
	ignorePatterns, ignoreError := config.LoadRecursiveIgnorePatterns(root, ignoreOptions)
	if ignoreError != nil {
		return nil, fmt.Errorf(errorLoadIgnoreFormat, ignoreError)
	}

	backend := firstNonEmpty(options.storeBackend, configuration.Selection.Store, store.BackendFile)
	var databasePath string
	if strings.EqualFold(backend, store.BackendSQLite) {
		resolvedPath, databaseError := resolveDatabasePath(firstNonEmpty(options.databasePath, configuration.Selection.Database))
		if databaseError != nil {
			return nil, databaseError
		}
		databasePath = resolvedPath
	}
	selectionStore, storeError := store.Open(backend, root, databasePath)
	if storeError != nil {
		return nil, fmt.Errorf(errorOpenStoreFormat, storeError)
	}

	engine := selection.NewEngine(selectionStore, selection.WithLogger(dependencies.Logger))
	enumerator := workspace.NewEnumerator(workspace.Options{
		Root:           root,
		IgnorePatterns: ignorePatterns,
		Logger:         dependencies.Logger,
	})
	if refreshError := engine.Refresh(ctx, enumerator); refreshError != nil {
		_ = store.Close(selectionStore)
		return nil, fmt.Errorf(errorRefreshFormat, refreshError)
	}

	dependencies.Logger.Debug(logMessageSessionOpened,
		zap.String(logFieldRoot, root),
		zap.String(logFieldStore, backend),
		zap.Int(logFieldIgnorePatterns, len(ignorePatterns)),
	)
	return &session{
		root:          root,
		configuration: configuration,
		store:         selectionStore,
		engine:        engine,
		logger:        dependencies.Logger,
	}, nil
}

func (currentSession *session) Close() error {
	return store.Close(currentSession.store)
}

// relativeNodePath converts a user-supplied path into the tree's
// slash-separated form relative to the project root.
func (currentSession *session) relativeNodePath(input string) string {
	if filepath.IsAbs(input) {
		return utils.RelativePathOrSelf(input, currentSession.root)
	}
	cleaned := filepath.ToSlash(filepath.Clean(input))
	return strings.TrimSuffix(cleaned, "/")
}

// resolveDatabasePath expands a leading "~/" and defaults to the global
// configuration directory.
func resolveDatabasePath(databasePath string) (string, error) {
	if databasePath != "" && !strings.HasPrefix(databasePath, homeDirectoryPrefix) {
		return databasePath, nil
	}
	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil {
		return "", fmt.Errorf(errorResolveHomeFormat, homeError)
	}
	if databasePath == "" {
		return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, defaultDatabaseFileName), nil
	}
	return filepath.Join(homeDirectory, strings.TrimPrefix(databasePath, homeDirectoryPrefix)), nil
}

func negate(value *bool) *bool {
	if value == nil {
		return nil
	}
	negated := !*value
	return &negated
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
