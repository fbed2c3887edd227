// Package selection maintains the selection-state tree of a project: a rooted
// hierarchy of file and directory nodes built from relative paths, with
// directory selection cascading to descendants and a persisted flat set of
// effectively selected files.
package selection

import (
	"path"
	"path/filepath"
	"strings"
)

// RootPath is the canonical path of the tree root.
const RootPath = "."

const (
	pathSegmentSeparator = "/"
	parentSegment        = ".."
)

// Node is a file or directory entry of the selection tree.
// The only implementations are *FileNode and *DirectoryNode.
type Node interface {
	Path() string
	Name() string
	Selected() bool
	isNode()
}

// FileNode is a leaf of the selection tree.
type FileNode struct {
	path     string
	selected bool
}

// DirectoryNode owns an insertion-ordered set of children keyed by basename.
type DirectoryNode struct {
	path          string
	selected      bool
	children      []Node
	childrenIndex map[string]Node
}

// NewRoot returns an empty root directory.
func NewRoot() *DirectoryNode {
	return newDirectoryNode(RootPath)
}

func newDirectoryNode(nodePath string) *DirectoryNode {
	return &DirectoryNode{
		path:          nodePath,
		childrenIndex: make(map[string]Node),
	}
}

// Path returns the slash-separated path relative to the root.
func (file *FileNode) Path() string { return file.path }

// Name returns the basename.
func (file *FileNode) Name() string { return path.Base(file.path) }

// Selected reports the stored selection flag.
func (file *FileNode) Selected() bool { return file.selected }

func (*FileNode) isNode() {}

// Path returns the slash-separated path relative to the root, "." for the root.
func (directory *DirectoryNode) Path() string { return directory.path }

// Name returns the basename, "." for the root.
func (directory *DirectoryNode) Name() string { return path.Base(directory.path) }

// Selected reports the stored selection flag.
func (directory *DirectoryNode) Selected() bool { return directory.selected }

func (*DirectoryNode) isNode() {}

// Children returns the children in insertion order. The slice must not be modified.
func (directory *DirectoryNode) Children() []Node {
	return directory.children
}

// Child returns the direct child with the given basename.
func (directory *DirectoryNode) Child(name string) (Node, bool) {
	child, exists := directory.childrenIndex[name]
	return child, exists
}

// IsRoot reports whether the directory is the tree root.
func (directory *DirectoryNode) IsRoot() bool {
	return directory.path == RootPath
}

func (directory *DirectoryNode) childPath(name string) string {
	if directory.IsRoot() {
		return name
	}
	return directory.path + pathSegmentSeparator + name
}

func (directory *DirectoryNode) appendChild(name string, child Node) {
	directory.children = append(directory.children, child)
	directory.childrenIndex[name] = child
}

// Insert adds a file at relativePath below the directory, creating intermediate
// directories. It reports false when the path has an empty, "." or ".." segment
// or collides with an existing node of the other kind.
func (directory *DirectoryNode) Insert(relativePath string, selected bool) bool {
	return directory.insert(SplitPath(relativePath), selected)
}

// insert walks segments from the directory, find-or-creating directories for
// every segment except the last, which becomes (or reuses) a file.
func (directory *DirectoryNode) insert(segments []string, selected bool) bool {
	if len(segments) == 0 {
		return false
	}
	for _, segment := range segments {
		if segment == "" || segment == RootPath || segment == parentSegment {
			return false
		}
	}
	current := directory
	for index, segment := range segments {
		existing, exists := current.childrenIndex[segment]
		if index == len(segments)-1 {
			if !exists {
				current.appendChild(segment, &FileNode{path: current.childPath(segment), selected: selected})
				return true
			}
			_, isFile := existing.(*FileNode)
			return isFile
		}
		if !exists {
			created := newDirectoryNode(current.childPath(segment))
			current.appendChild(segment, created)
			current = created
			continue
		}
		subdirectory, isDirectory := existing.(*DirectoryNode)
		if !isDirectory {
			return false
		}
		current = subdirectory
	}
	return false
}

// Find returns the node whose path equals nodePath, testing the directory
// itself before its descendants.
func (directory *DirectoryNode) Find(nodePath string) (Node, bool) {
	if directory.path == nodePath {
		return directory, true
	}
	for _, child := range directory.children {
		switch typed := child.(type) {
		case *FileNode:
			if typed.path == nodePath {
				return typed, true
			}
		case *DirectoryNode:
			if found, ok := typed.Find(nodePath); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// setSelectedRecursively overwrites the flag of the directory and every descendant.
func (directory *DirectoryNode) setSelectedRecursively(selected bool) {
	directory.selected = selected
	for _, child := range directory.children {
		switch typed := child.(type) {
		case *FileNode:
			typed.selected = selected
		case *DirectoryNode:
			typed.setSelectedRecursively(selected)
		}
	}
}

// SplitPath splits a relative path on "/" and the platform separator. On
// POSIX systems a backslash is part of a file name, not a separator.
func SplitPath(relativePath string) []string {
	if relativePath == "" {
		return nil
	}
	return strings.Split(filepath.ToSlash(relativePath), pathSegmentSeparator)
}
