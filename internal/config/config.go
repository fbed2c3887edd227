// Package config loads the application configuration and the ignore patterns
// that limit which project files are enumerated.
package config

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/aiprompt/internal/utils"
)

const (
	// gitDirectoryPattern represents the pattern that matches the Git directory.
	gitDirectoryPattern = utils.GitDirectoryName + "/"
	commentPrefix       = "#"
	negationPrefix      = "!"

	warningCloseFileFormat = "Warning: failed to close %s: %v\n"
	errorLoadIgnoreFormat  = "loading %s from %s: %w"
)

// IgnoreOptions selects which ignore sources contribute patterns.
type IgnoreOptions struct {
	ExclusionPatterns []string
	UseGitignore      bool
	UseIgnoreFile     bool
	IncludeGit        bool
}

// LoadIgnoreFilePatterns reads an ignore file and returns its patterns.
// Blank lines, comments and negated patterns are skipped; a missing file
// yields no patterns.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, warningCloseFileFormat, ignoreFilePath, closeError)
		}
	}()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) || strings.HasPrefix(trimmedLine, negationPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// LoadRecursiveIgnorePatterns walks rootDirectoryPath and aggregates ignore patterns.
// Patterns from utils.IgnoreFileName and utils.GitIgnoreFileName in each nested directory are prefixed with that
// directory's path relative to rootDirectoryPath. The directory named utils.GitDirectoryName is ignored by default
// unless options.IncludeGit is true. The state directory is never scanned. options.ExclusionPatterns are appended
// to the result.
func LoadRecursiveIgnorePatterns(rootDirectoryPath string, options IgnoreOptions) ([]string, error) {
	var aggregatedPatterns []string

	loadPrefixed := func(currentDirectoryPath string, fileName string, prefix string) error {
		patterns, loadError := LoadIgnoreFilePatterns(filepath.Join(currentDirectoryPath, fileName))
		if loadError != nil {
			return fmt.Errorf(errorLoadIgnoreFormat, fileName, currentDirectoryPath, loadError)
		}
		for _, pattern := range patterns {
			aggregatedPatterns = append(aggregatedPatterns, prefix+strings.TrimPrefix(pattern, "/"))
		}
		return nil
	}

	walkFunction := func(currentDirectoryPath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if currentDirectoryPath == rootDirectoryPath {
				return walkError
			}
			return filepath.SkipDir
		}
		if !directoryEntry.IsDir() {
			return nil
		}
		if directoryEntry.Name() == utils.StateDirectoryName {
			return filepath.SkipDir
		}
		if !options.IncludeGit && directoryEntry.Name() == utils.GitDirectoryName {
			return filepath.SkipDir
		}

		relativeDirectory := utils.RelativePathOrSelf(currentDirectoryPath, rootDirectoryPath)
		prefix := ""
		if relativeDirectory != "." {
			prefix = relativeDirectory + "/"
		}

		if options.UseIgnoreFile {
			if loadError := loadPrefixed(currentDirectoryPath, utils.IgnoreFileName, prefix); loadError != nil {
				return loadError
			}
		}
		if options.UseGitignore {
			if loadError := loadPrefixed(currentDirectoryPath, utils.GitIgnoreFileName, prefix); loadError != nil {
				return loadError
			}
		}
		return nil
	}

	if walkError := filepath.WalkDir(rootDirectoryPath, walkFunction); walkError != nil {
		return nil, walkError
	}

	if !options.IncludeGit {
		aggregatedPatterns = append(aggregatedPatterns, gitDirectoryPattern)
	}

	deduplicatedPatterns := utils.DeduplicatePatterns(aggregatedPatterns)

	for _, pattern := range options.ExclusionPatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		if !utils.ContainsString(deduplicatedPatterns, trimmedPattern) {
			deduplicatedPatterns = append(deduplicatedPatterns, trimmedPattern)
		}
	}

	return deduplicatedPatterns, nil
}
