package export

import (
	"bytes"
	"encoding/json"

	"github.com/temirov/aiprompt/internal/selection"
)

// RootFilesKey groups files that sit directly in the project root.
const RootFilesKey = "."

// StructureItem is either a bare file name or a nested directory.
type StructureItem struct {
	FileName  string
	Directory *StructureDirectory
}

// StructureDirectory is a named directory and its items in tree order.
type StructureDirectory struct {
	Name  string
	Items []StructureItem
}

// Structure mirrors the project tree. Top-level directories and the RootFilesKey
// group are kept in the order they first appear.
type Structure struct {
	Entries []StructureDirectory
}

// StructureFromPaths builds the structure of the tree formed by paths.
func StructureFromPaths(paths []string) Structure {
	return StructureFromTree(selection.Build(paths, nil))
}

// StructureFromTree builds the structure of root. The RootFilesKey entry is
// created at the position of the first root-level file.
func StructureFromTree(root *selection.DirectoryNode) Structure {
	structure := Structure{}
	rootFilesIndex := -1
	for _, child := range root.Children() {
		switch typed := child.(type) {
		case *selection.FileNode:
			if rootFilesIndex < 0 {
				rootFilesIndex = len(structure.Entries)
				structure.Entries = append(structure.Entries, StructureDirectory{Name: RootFilesKey})
			}
			entry := &structure.Entries[rootFilesIndex]
			entry.Items = append(entry.Items, StructureItem{FileName: typed.Name()})
		case *selection.DirectoryNode:
			structure.Entries = append(structure.Entries, StructureDirectory{Name: typed.Name(), Items: directoryItems(typed)})
		}
	}
	return structure
}

func directoryItems(directory *selection.DirectoryNode) []StructureItem {
	items := make([]StructureItem, 0, len(directory.Children()))
	for _, child := range directory.Children() {
		switch typed := child.(type) {
		case *selection.FileNode:
			items = append(items, StructureItem{FileName: typed.Name()})
		case *selection.DirectoryNode:
			items = append(items, StructureItem{Directory: &StructureDirectory{Name: typed.Name(), Items: directoryItems(typed)}})
		}
	}
	return items
}

// MarshalJSON encodes the structure as an object whose keys keep tree order.
func (structure Structure) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for index, entry := range structure.Entries {
		if index > 0 {
			buffer.WriteByte(',')
		}
		if err := writeKeyedItems(&buffer, entry); err != nil {
			return nil, err
		}
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// MarshalJSON encodes a file as a string and a directory as a single-key object.
func (item StructureItem) MarshalJSON() ([]byte, error) {
	if item.Directory == nil {
		return json.Marshal(item.FileName)
	}
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	if err := writeKeyedItems(&buffer, *item.Directory); err != nil {
		return nil, err
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

func writeKeyedItems(buffer *bytes.Buffer, directory StructureDirectory) error {
	encodedKey, keyErr := json.Marshal(directory.Name)
	if keyErr != nil {
		return keyErr
	}
	items := directory.Items
	if items == nil {
		items = []StructureItem{}
	}
	encodedItems, itemsErr := json.Marshal(items)
	if itemsErr != nil {
		return itemsErr
	}
	buffer.Write(encodedKey)
	buffer.WriteByte(':')
	buffer.Write(encodedItems)
	return nil
}
