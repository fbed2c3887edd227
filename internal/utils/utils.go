// Package utils contains helpers shared by the selection, enumeration and export packages.
package utils

import (
	"path/filepath"
	"strings"
)

// File and directory names with a fixed meaning for the tool.
const (
	// IgnoreFileName is the name of the project's ignore file.
	IgnoreFileName = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// ExclusionPrefix marks patterns that exclude a path prefix from enumeration.
	ExclusionPrefix = "EXCL:"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// NodeModulesDirectoryName is the conventionally ignored dependency directory.
	NodeModulesDirectoryName = "node_modules"
	// StateDirectoryName holds per-project state such as the persisted selection.
	StateDirectoryName = ".aiprompt"
	// DefaultExportFileName is the default name of the exported document.
	DefaultExportFileName = "aiPrompt.json"
	// ConfigFileName is the project-local configuration file.
	ConfigFileName = ".aiprompt.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding global configuration.
	GlobalConfigDirectoryName = ".aiprompt"
	// GlobalConfigFileName is the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
)

const pathSegmentSeparator = "/"

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// ContainsString checks if a slice of strings contains a specific target string.
func ContainsString(stringSlice []string, targetString string) bool {
	for _, currentString := range stringSlice {
		if currentString == targetString {
			return true
		}
	}
	return false
}

// RelativePathOrSelf calculates the slash-separated path of fullPath relative to root.
// Returns "." when both resolve to the same directory and the cleaned fullPath
// when no relative path exists.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)
	if !filepath.IsAbs(cleanPath) {
		return filepath.ToSlash(cleanPath)
	}

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// ShouldIgnoreByPath reports whether a path relative to the project root
// is excluded from enumeration. Paths and patterns are compared in
// forward-slash form, segment by segment with filepath.Match semantics.
// A pattern ending with a slash matches that directory and everything below
// it; a single-segment pattern matches the last path segment anywhere in the
// tree; ExclusionPrefix patterns match a leading path prefix.
func ShouldIgnoreByPath(relativePath string, ignorePatterns []string) bool {
	normalizedPath := filepath.ToSlash(relativePath)
	pathSegments := strings.Split(normalizedPath, pathSegmentSeparator)
	lastSegment := pathSegments[len(pathSegments)-1]

	if pathSegments[0] == StateDirectoryName {
		return true
	}

	for _, patternValue := range ignorePatterns {
		normalizedPattern := strings.ReplaceAll(patternValue, "\\", pathSegmentSeparator)

		if strings.HasPrefix(normalizedPattern, ExclusionPrefix) {
			exclusionPattern := strings.TrimPrefix(normalizedPattern, ExclusionPrefix)
			exclusionSegments := strings.Split(exclusionPattern, pathSegmentSeparator)
			if len(pathSegments) >= len(exclusionSegments) && segmentsMatch(pathSegments[:len(exclusionSegments)], exclusionSegments) {
				return true
			}
			continue
		}

		isDirectoryPattern := strings.HasSuffix(normalizedPattern, pathSegmentSeparator)
		trimmedPattern := strings.TrimPrefix(strings.TrimSuffix(normalizedPattern, pathSegmentSeparator), pathSegmentSeparator)
		patternSegments := strings.Split(trimmedPattern, pathSegmentSeparator)

		if isDirectoryPattern {
			if len(patternSegments) == 1 {
				if directorySegmentMatches(pathSegments[:len(pathSegments)-1], patternSegments[0]) || matchesSegment(patternSegments[0], lastSegment) {
					return true
				}
				continue
			}
			if len(pathSegments) >= len(patternSegments) && segmentsMatch(pathSegments[:len(patternSegments)], patternSegments) {
				return true
			}
			continue
		}

		if len(patternSegments) == 1 {
			if matchesSegment(patternSegments[0], lastSegment) {
				return true
			}
			continue
		}

		if len(pathSegments) == len(patternSegments) && segmentsMatch(pathSegments, patternSegments) {
			return true
		}
	}

	return false
}

// directorySegmentMatches reports whether any directory segment matches pattern.
func directorySegmentMatches(directorySegments []string, pattern string) bool {
	for _, segment := range directorySegments {
		if matchesSegment(pattern, segment) {
			return true
		}
	}
	return false
}

func matchesSegment(pattern, segment string) bool {
	isMatched, matchError := filepath.Match(pattern, segment)
	return matchError == nil && isMatched
}

// segmentsMatch reports whether each pattern segment matches the corresponding
// path segment using filepath.Match semantics.
func segmentsMatch(pathSegments, patternSegments []string) bool {
	for segmentIndex, patternSegment := range patternSegments {
		if !matchesSegment(patternSegment, pathSegments[segmentIndex]) {
			return false
		}
	}
	return true
}
