package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/aiprompt/internal/filelock"
	"github.com/temirov/aiprompt/internal/utils"
)

const (
	// StateFileName is the name of the selection state file inside utils.StateDirectoryName.
	StateFileName = "selection.json"

	errorReadStateFormat   = "read selection state %s: %w"
	errorDecodeStateFormat = "decode selection state %s: %w"
	errorEncodeStateFormat = "encode selection state: %w"
	errorWriteStateFormat  = "write selection state %s: %w"
)

type fileState struct {
	SelectedFiles []string `json:"selectedFiles"`
}

// FileStore keeps the selection in a JSON file inside the project.
type FileStore struct {
	statePath string
}

// NewFileStore returns a FileStore writing to
// <projectRoot>/utils.StateDirectoryName/StateFileName.
func NewFileStore(projectRoot string) *FileStore {
	return &FileStore{statePath: filepath.Join(projectRoot, utils.StateDirectoryName, StateFileName)}
}

// Path returns the location of the state file.
func (fileStore *FileStore) Path() string {
	return fileStore.statePath
}

// Load reads the selection under a shared file lock. A missing state file
// yields an empty selection.
func (fileStore *FileStore) Load(ctx context.Context) ([]string, error) {
	data, readError := filelock.ReadShared(fileStore.statePath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(errorReadStateFormat, fileStore.statePath, readError)
	}
	var state fileState
	if decodeError := json.Unmarshal(data, &state); decodeError != nil {
		return nil, fmt.Errorf(errorDecodeStateFormat, fileStore.statePath, decodeError)
	}
	return normalizePaths(state.SelectedFiles), nil
}

// Save overwrites the state file under an exclusive file lock.
func (fileStore *FileStore) Save(ctx context.Context, paths []string) error {
	encoded, encodeError := json.MarshalIndent(fileState{SelectedFiles: normalizePaths(paths)}, "", "  ")
	if encodeError != nil {
		return fmt.Errorf(errorEncodeStateFormat, encodeError)
	}
	if writeError := filelock.LockAndWrite(fileStore.statePath, append(encoded, '\n')); writeError != nil {
		return fmt.Errorf(errorWriteStateFormat, fileStore.statePath, writeError)
	}
	return nil
}
