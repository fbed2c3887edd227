package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const (
	errorEnumeratePathsFormat  = "enumerate paths: %w"
	errorLoadSelectionFormat   = "load persisted selection: %w"
	errorSaveSelectionFormat   = "save selection: %w"
	logMessageStaleToggle      = "toggle target not found"
	logMessageToggled          = "selection toggled"
	logMessageRefreshed        = "selection tree refreshed"
	logMessageRejectedPath     = "path rejected by tree builder"
	logFieldPath               = "path"
	logFieldSelected           = "selected"
	logFieldFileCount          = "files"
	logFieldSelectedFileCount  = "selected_files"
	changeSignalBufferCapacity = 1
)

// ErrNilStore indicates that an engine was used without a persistence sink.
var ErrNilStore = errors.New("selection: store is nil")

// Store persists the flat set of effectively selected file paths.
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, paths []string) error
}

// PathEnumerator produces the relative file paths of a project.
type PathEnumerator interface {
	EnumeratePaths(ctx context.Context) ([]string, error)
}

// Engine owns one selection tree and its persistence sink.
type Engine struct {
	mutex     sync.RWMutex
	root      *DirectoryNode
	store     Store
	lastSaved []string
	changes   chan struct{}
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for diagnostics messages.
func WithLogger(logger *zap.Logger) Option {
	return func(engine *Engine) {
		if logger != nil {
			engine.logger = logger
		}
	}
}

// NewEngine returns an engine with an empty tree backed by store.
func NewEngine(store Store, options ...Option) *Engine {
	engine := &Engine{
		root:    NewRoot(),
		store:   store,
		changes: make(chan struct{}, changeSignalBufferCapacity),
		logger:  zap.NewNop(),
	}
	for _, option := range options {
		option(engine)
	}
	return engine
}

// Changes signals that the tree changed and any rendered view is stale.
// Signals coalesce; receivers should re-read the engine state.
func (engine *Engine) Changes() <-chan struct{} {
	return engine.changes
}

func (engine *Engine) notify() {
	select {
	case engine.changes <- struct{}{}:
	default:
	}
}

// Root returns the live tree root. It is mutated by later toggles; use
// Snapshot for a stable copy.
func (engine *Engine) Root() *DirectoryNode {
	engine.mutex.RLock()
	defer engine.mutex.RUnlock()
	return engine.root
}

// Contains reports whether the tree has a node at nodePath.
func (engine *Engine) Contains(nodePath string) bool {
	engine.mutex.RLock()
	defer engine.mutex.RUnlock()
	_, found := engine.root.Find(nodePath)
	return found
}

// LastSaved returns the selection set written or loaded most recently.
func (engine *Engine) LastSaved() []string {
	engine.mutex.RLock()
	defer engine.mutex.RUnlock()
	return append([]string(nil), engine.lastSaved...)
}

// Refresh rebuilds the tree from a fresh enumeration and the persisted
// selection. The enumeration runs without holding the engine lock, so reads
// keep observing the previous tree until the new one is swapped in.
func (engine *Engine) Refresh(ctx context.Context, enumerator PathEnumerator) error {
	if engine.store == nil {
		return ErrNilStore
	}
	paths, enumerateError := enumerator.EnumeratePaths(ctx)
	if enumerateError != nil {
		return fmt.Errorf(errorEnumeratePathsFormat, enumerateError)
	}
	persisted, loadError := engine.store.Load(ctx)
	if loadError != nil {
		return fmt.Errorf(errorLoadSelectionFormat, loadError)
	}

	root := BuildWithWarnings(paths, PathSet(persisted), func(relativePath string) {
		engine.logger.Warn(logMessageRejectedPath, zap.String(logFieldPath, relativePath))
	})

	engine.mutex.Lock()
	engine.root = root
	engine.lastSaved = append([]string(nil), persisted...)
	engine.mutex.Unlock()

	engine.logger.Debug(logMessageRefreshed, zap.Int(logFieldFileCount, len(paths)), zap.Int(logFieldSelectedFileCount, len(persisted)))
	engine.notify()
	return nil
}

// ToggleSelection flips the selection of the node at nodePath. A directory
// cascades its new flag to every descendant. A path missing from the tree is
// ignored. The new selection is persisted before returning; a persistence
// failure is returned after the in-memory toggle took effect.
func (engine *Engine) ToggleSelection(ctx context.Context, nodePath string) error {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	node, found := engine.root.Find(nodePath)
	if !found {
		engine.logger.Debug(logMessageStaleToggle, zap.String(logFieldPath, nodePath))
		return nil
	}

	var selected bool
	switch typed := node.(type) {
	case *DirectoryNode:
		selected = !typed.selected
		typed.setSelectedRecursively(selected)
	case *FileNode:
		selected = !typed.selected
		typed.selected = selected
	}
	engine.logger.Debug(logMessageToggled, zap.String(logFieldPath, nodePath), zap.Bool(logFieldSelected, selected))

	persistError := engine.persistLocked(ctx)
	engine.notify()
	return persistError
}

// ClearSelection deselects every node and persists the empty selection.
func (engine *Engine) ClearSelection(ctx context.Context) error {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	engine.root.setSelectedRecursively(false)
	persistError := engine.persistLocked(ctx)
	engine.notify()
	return persistError
}

// SelectedFiles returns the effectively selected files. A selected directory
// contributes every descendant file regardless of their own flags; an
// unselected directory contributes only individually selected files.
func (engine *Engine) SelectedFiles() []*FileNode {
	engine.mutex.RLock()
	defer engine.mutex.RUnlock()
	return collectSelectedFiles(engine.root, nil)
}

// AllFiles returns every file of the tree in depth-first insertion order.
func (engine *Engine) AllFiles() []*FileNode {
	engine.mutex.RLock()
	defer engine.mutex.RUnlock()
	return collectAllFiles(engine.root, nil)
}

// Persist writes the effective selection to the store, replacing its value.
func (engine *Engine) Persist(ctx context.Context) error {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()
	return engine.persistLocked(ctx)
}

func (engine *Engine) persistLocked(ctx context.Context) error {
	if engine.store == nil {
		return ErrNilStore
	}
	paths := filePaths(collectSelectedFiles(engine.root, nil))
	if saveError := engine.store.Save(ctx, paths); saveError != nil {
		return fmt.Errorf(errorSaveSelectionFormat, saveError)
	}
	engine.lastSaved = paths
	return nil
}

func collectSelectedFiles(directory *DirectoryNode, accumulator []*FileNode) []*FileNode {
	if directory.selected {
		return collectAllFiles(directory, accumulator)
	}
	for _, child := range directory.children {
		switch typed := child.(type) {
		case *FileNode:
			if typed.selected {
				accumulator = append(accumulator, typed)
			}
		case *DirectoryNode:
			accumulator = collectSelectedFiles(typed, accumulator)
		}
	}
	return accumulator
}

func collectAllFiles(directory *DirectoryNode, accumulator []*FileNode) []*FileNode {
	for _, child := range directory.children {
		switch typed := child.(type) {
		case *FileNode:
			accumulator = append(accumulator, typed)
		case *DirectoryNode:
			accumulator = collectAllFiles(typed, accumulator)
		}
	}
	return accumulator
}

// FilePaths returns the paths of files in order.
func FilePaths(files []*FileNode) []string {
	return filePaths(files)
}

func filePaths(files []*FileNode) []string {
	paths := make([]string, 0, len(files))
	for _, file := range files {
		paths = append(paths, file.path)
	}
	return paths
}
