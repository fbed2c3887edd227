package selection

import (
	"sort"
	"strings"
)

// Node kinds reported in snapshots.
const (
	NodeKindFile      = "file"
	NodeKindDirectory = "directory"
)

// SnapshotNode is a display copy of a tree node.
type SnapshotNode struct {
	Path     string         `json:"path"`
	Name     string         `json:"name"`
	Kind     string         `json:"type"`
	Selected bool           `json:"selected"`
	Children []SnapshotNode `json:"children,omitempty"`
}

// Snapshot returns a copy of the tree with every directory's children sorted
// case-insensitively by basename. The stored order is left untouched.
func (engine *Engine) Snapshot() SnapshotNode {
	engine.mutex.RLock()
	defer engine.mutex.RUnlock()
	return snapshotDirectory(engine.root)
}

func snapshotDirectory(directory *DirectoryNode) SnapshotNode {
	snapshot := SnapshotNode{
		Path:     directory.path,
		Name:     directory.Name(),
		Kind:     NodeKindDirectory,
		Selected: directory.selected,
		Children: make([]SnapshotNode, 0, len(directory.children)),
	}
	for _, child := range directory.children {
		switch typed := child.(type) {
		case *FileNode:
			snapshot.Children = append(snapshot.Children, SnapshotNode{
				Path:     typed.path,
				Name:     typed.Name(),
				Kind:     NodeKindFile,
				Selected: typed.selected,
			})
		case *DirectoryNode:
			snapshot.Children = append(snapshot.Children, snapshotDirectory(typed))
		}
	}
	sort.SliceStable(snapshot.Children, func(left, right int) bool {
		return strings.ToLower(snapshot.Children[left].Name) < strings.ToLower(snapshot.Children[right].Name)
	})
	return snapshot
}
