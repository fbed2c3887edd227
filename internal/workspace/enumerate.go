// Package workspace enumerates the files of a project root, honoring ignore
// patterns, and feeds them to the selection engine.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/aiprompt/internal/utils"
)

const (
	errorNoProjectRootFormat   = "%w: %s"
	errorStreamHandlerIsNil    = "workspace: path channel is nil"
	warningReadDirectory       = "skipping unreadable directory"
	warningStatEntry           = "skipping entry that cannot be inspected"
	logFieldDirectory          = "directory"
	logFieldPath               = "path"
	conventionallyIgnoredMatch = utils.NodeModulesDirectoryName + "/"
)

// ErrNoProjectRoot indicates that the configured root is missing or not a directory.
var ErrNoProjectRoot = errors.New("no active project root")

// Options configures a walk of a project root.
type Options struct {
	Root           string
	IgnorePatterns []string
	// IncludeConventional disables the built-in node_modules exclusion.
	IncludeConventional bool
	Logger              *zap.Logger
}

// Enumerator lists the relative file paths of a project.
type Enumerator struct {
	Options Options
}

// NewEnumerator returns an Enumerator for options.
func NewEnumerator(options Options) *Enumerator {
	return &Enumerator{Options: options}
}

// ValidateRoot resolves root to an absolute, existing directory.
func ValidateRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf(errorNoProjectRootFormat, ErrNoProjectRoot, "root is empty")
	}
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return "", fmt.Errorf(errorNoProjectRootFormat, ErrNoProjectRoot, absoluteError.Error())
	}
	info, statError := os.Stat(absoluteRoot)
	if statError != nil {
		return "", fmt.Errorf(errorNoProjectRootFormat, ErrNoProjectRoot, statError.Error())
	}
	if !info.IsDir() {
		return "", fmt.Errorf(errorNoProjectRootFormat, ErrNoProjectRoot, absoluteRoot+" is not a directory")
	}
	return filepath.Clean(absoluteRoot), nil
}

// EnumeratePaths walks the root and returns slash-separated relative file
// paths in directory-listing order. The walk produces paths on a channel
// consumed concurrently, as in StreamPaths.
func (enumerator *Enumerator) EnumeratePaths(ctx context.Context) ([]string, error) {
	if _, rootError := ValidateRoot(enumerator.Options.Root); rootError != nil {
		return nil, rootError
	}

	group, streamCtx := errgroup.WithContext(ctx)
	relativePaths := make(chan string)
	var collected []string

	group.Go(func() error {
		defer close(relativePaths)
		return StreamPaths(streamCtx, enumerator.Options, relativePaths)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case relativePath, ok := <-relativePaths:
				if !ok {
					return nil
				}
				collected = append(collected, relativePath)
			}
		}
	})

	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}
	return collected, nil
}

type walkContext struct {
	ctx     context.Context
	options Options
	root    string
	out     chan<- string
	logger  *zap.Logger
}

// StreamPaths sends the relative path of every non-ignored file below
// options.Root to out. Unreadable subdirectories are logged and skipped.
func StreamPaths(ctx context.Context, options Options, out chan<- string) error {
	if out == nil {
		return errors.New(errorStreamHandlerIsNil)
	}
	root, rootError := ValidateRoot(options.Root)
	if rootError != nil {
		return rootError
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	walker := walkContext{ctx: ctx, options: options, root: root, out: out, logger: logger}
	return walker.walkDirectory(root)
}

func (walker *walkContext) walkDirectory(directoryPath string) error {
	if contextError := walker.ctx.Err(); contextError != nil {
		return contextError
	}
	entries, readError := os.ReadDir(directoryPath)
	if readError != nil {
		return readError
	}

	for _, entry := range entries {
		childPath := filepath.Join(directoryPath, entry.Name())
		relativePath := utils.RelativePathOrSelf(childPath, walker.root)
		if walker.ignored(relativePath) {
			continue
		}

		entryType := entry.Type()
		if entryType&os.ModeSymlink != 0 {
			info, statError := os.Stat(childPath)
			if statError != nil {
				walker.logger.Warn(warningStatEntry, zap.String(logFieldPath, relativePath), zap.Error(statError))
				continue
			}
			if info.IsDir() {
				continue
			}
			entryType = info.Mode().Type()
		}

		if entry.IsDir() {
			if walkError := walker.walkDirectory(childPath); walkError != nil {
				if errors.Is(walkError, context.Canceled) || errors.Is(walkError, context.DeadlineExceeded) {
					return walkError
				}
				walker.logger.Warn(warningReadDirectory, zap.String(logFieldDirectory, relativePath), zap.Error(walkError))
			}
			continue
		}
		if !entryType.IsRegular() {
			continue
		}

		select {
		case <-walker.ctx.Done():
			return walker.ctx.Err()
		case walker.out <- relativePath:
		}
	}
	return nil
}

func (walker *walkContext) ignored(relativePath string) bool {
	if utils.ShouldIgnoreByPath(relativePath, walker.options.IgnorePatterns) {
		return true
	}
	if walker.options.IncludeConventional {
		return false
	}
	return utils.ShouldIgnoreByPath(relativePath, []string{conventionallyIgnoredMatch})
}
