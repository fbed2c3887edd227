package selection

import "strings"

// SelectionPredicate reports whether a persisted selection contains a path.
type SelectionPredicate func(relativePath string) bool

// Build converts relative file paths into a tree rooted at ".". Files are
// seeded with isSelected; directories start unselected. Duplicate paths are
// idempotent and paths that cannot be inserted are skipped.
func Build(paths []string, isSelected SelectionPredicate) *DirectoryNode {
	return BuildWithWarnings(paths, isSelected, nil)
}

// BuildWithWarnings is Build with a callback receiving every rejected path.
func BuildWithWarnings(paths []string, isSelected SelectionPredicate, rejected func(relativePath string)) *DirectoryNode {
	root := NewRoot()
	for _, relativePath := range paths {
		segments := SplitPath(relativePath)
		normalizedPath := strings.Join(segments, pathSegmentSeparator)
		selected := isSelected != nil && isSelected(normalizedPath)
		if !root.insert(segments, selected) && rejected != nil {
			rejected(relativePath)
		}
	}
	return root
}

// PathSet returns a membership predicate over paths.
func PathSet(paths []string) SelectionPredicate {
	members := make(map[string]struct{}, len(paths))
	for _, relativePath := range paths {
		members[relativePath] = struct{}{}
	}
	return func(relativePath string) bool {
		_, exists := members[relativePath]
		return exists
	}
}
