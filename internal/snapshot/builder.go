// Package snapshot builds the filtered in-memory tree for a repository snapshot.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/deeplifeai/repojson/internal/types"
)

const (
	// errorRootMissingFormat reports a repository path that does not exist.
	errorRootMissingFormat = "repository path '%s' does not exist"
	// errorRootStatFormat reports failure to retrieve repository path information.
	errorRootStatFormat = "stat failed for '%s': %w"
	// errorRootNotDirectoryFormat reports a repository path that is not a directory.
	errorRootNotDirectoryFormat = "repository path '%s' is not a directory"
	// errorAbsolutePathFormat reports failure to resolve an absolute path.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorReadRootFormat reports failure to list the repository root.
	errorReadRootFormat = "reading repository root %s: %w"

	// warningSkipDirectoryMessage is logged when a subdirectory cannot be listed.
	warningSkipDirectoryMessage = "skipping unreadable directory"
	// warningSkipFileMessage is logged when a file cannot be read.
	warningSkipFileMessage = "skipping unreadable file"

	pathLogField = "path"
)

// Builder walks a repository depth-first and produces the filtered tree of
// directory and file nodes. The traversal is strictly sequential; the
// returned tree is privately owned by the caller of Build.
type Builder struct {
	Policy ExclusionPolicy
	Logger *zap.Logger
}

// NewBuilder returns a Builder applying the provided exclusion policy. A nil
// logger is replaced with a no-op logger.
func NewBuilder(exclusionPolicy ExclusionPolicy, loggerInstance *zap.Logger) *Builder {
	if loggerInstance == nil {
		loggerInstance = zap.NewNop()
	}
	return &Builder{
		Policy: exclusionPolicy,
		Logger: loggerInstance,
	}
}

// Build returns the directory node representing the filtered subtree rooted
// at rootPath. The root must exist and be a directory; that precondition
// failing is fatal and reported before any traversal begins. Permission
// errors on individual subpaths are non-fatal: the subpath is skipped with a
// warning and traversal continues, so a partial snapshot is still produced.
func (builder *Builder) Build(rootPath string) (*types.TreeNode, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}

	rootInformation, rootStatError := os.Stat(absoluteRootPath)
	if rootStatError != nil {
		if os.IsNotExist(rootStatError) {
			return nil, fmt.Errorf(errorRootMissingFormat, rootPath)
		}
		return nil, fmt.Errorf(errorRootStatFormat, rootPath, rootStatError)
	}
	if !rootInformation.IsDir() {
		return nil, fmt.Errorf(errorRootNotDirectoryFormat, rootPath)
	}

	rootEntries, readRootError := os.ReadDir(absoluteRootPath)
	if readRootError != nil {
		return nil, fmt.Errorf(errorReadRootFormat, rootPath, readRootError)
	}

	rootNode := types.NewDirectoryNode()
	builder.populateDirectoryNode(rootNode, absoluteRootPath, rootEntries)
	return rootNode, nil
}

// populateDirectoryNode fills directoryNode with the filtered children found
// in directoryEntries. Excluded subdirectories are pruned before recursion:
// they are never entered and contribute no node, so their contents are never
// inspected. Excluded and undecodable files likewise contribute no node.
func (builder *Builder) populateDirectoryNode(directoryNode *types.TreeNode, directoryPath string, directoryEntries []os.DirEntry) {
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		childPath := filepath.Join(directoryPath, entryName)

		if directoryEntry.IsDir() {
			if builder.Policy.ExcludesDirectory(entryName) {
				continue
			}
			childEntries, readDirectoryError := os.ReadDir(childPath)
			if readDirectoryError != nil {
				builder.Logger.Warn(warningSkipDirectoryMessage, zap.String(pathLogField, childPath), zap.Error(readDirectoryError))
				continue
			}
			childNode := directoryNode.ChildDirectory(entryName)
			builder.populateDirectoryNode(childNode, childPath, childEntries)
			continue
		}

		if builder.Policy.ExcludesFile(entryName) {
			continue
		}
		fileBytes, fileReadError := os.ReadFile(childPath)
		if fileReadError != nil {
			builder.Logger.Warn(warningSkipFileMessage, zap.String(pathLogField, childPath), zap.Error(fileReadError))
			continue
		}
		fileContent, isText := TryDecodeUTF8(fileBytes)
		if !isText {
			continue
		}
		directoryNode.InsertFile(entryName, fileContent)
	}
}
