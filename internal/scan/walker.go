// Package scan builds an in-memory tree of filesystem entries for a directory root.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/treecraft/treecraft/internal/types"
)

const (
	// errorRootFormat wraps root validation failures with the offending path.
	errorRootFormat = "root %s: %w"
	// errorStatRootFormat is used when the root cannot be stat'd for reasons other than absence.
	errorStatRootFormat = "stat root %s: %w"
)

// Walk validates rootPath and returns the tree rooted at it. Hidden entries
// (dot-prefixed names) are dropped before recursion unless includeHidden is
// set; hidden directories are not descended into. Entries that cannot be
// listed or stat'd become childless unreadable leaves instead of aborting
// the walk. Symbolic links below the root are recorded as file leaves with
// the link's own reported size and are never followed into traversal; the
// root path itself is resolved, so a link to a directory is a valid root.
func Walk(rootPath string, includeHidden bool) (*types.TreeNode, error) {
	rootInfo, rootStatError := os.Stat(rootPath)
	if rootStatError != nil {
		if os.IsNotExist(rootStatError) {
			return nil, fmt.Errorf(errorRootFormat, rootPath, types.ErrPathNotFound)
		}
		return nil, fmt.Errorf(errorStatRootFormat, rootPath, rootStatError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(errorRootFormat, rootPath, types.ErrNotADirectory)
	}

	rootNode := &types.TreeNode{
		Name: rootName(rootPath),
		Kind: types.NodeKindDirectory,
		Path: rootPath,
	}
	childNodes, listError := walkDirectory(rootPath, includeHidden)
	if listError != nil {
		rootNode.Kind = types.NodeKindUnreadable
		rootNode.Error = listError.Error()
		return rootNode, nil
	}
	rootNode.Children = childNodes
	return rootNode, nil
}

// rootName derives the root node's name from the final path component of the
// user-supplied path. Relative paths are resolved first, so "." labels the
// root by the directory's real name; the filesystem root keeps the path
// itself.
func rootName(rootPath string) string {
	resolvedPath := rootPath
	if absolutePath, absoluteError := filepath.Abs(rootPath); absoluteError == nil {
		resolvedPath = absolutePath
	}
	baseName := filepath.Base(resolvedPath)
	if baseName == string(filepath.Separator) || baseName == "." {
		return rootPath
	}
	return baseName
}

// walkDirectory lists directoryPath once and returns its child nodes in
// canonical order.
func walkDirectory(directoryPath string, includeHidden bool) ([]*types.TreeNode, error) {
	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return nil, readDirectoryError
	}

	var childNodes []*types.TreeNode
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		if !includeHidden && isHiddenName(entryName) {
			continue
		}
		childPath := filepath.Join(directoryPath, entryName)
		childNodes = append(childNodes, buildNode(childPath, entryName, directoryEntry, includeHidden))
	}

	sortChildren(childNodes)
	return childNodes, nil
}

// buildNode classifies a single directory entry and, for readable
// directories, recurses into it.
func buildNode(entryPath string, entryName string, directoryEntry os.DirEntry, includeHidden bool) *types.TreeNode {
	node := &types.TreeNode{
		Name: entryName,
		Path: entryPath,
	}

	entryInfo, infoError := directoryEntry.Info()
	if infoError != nil {
		node.Kind = types.NodeKindUnreadable
		node.Error = infoError.Error()
		return node
	}

	// DirEntry reports the lstat type, so a symbolic link to a directory is
	// not IsDir and stays an opaque leaf.
	if directoryEntry.IsDir() {
		childNodes, listError := walkDirectory(entryPath, includeHidden)
		if listError != nil {
			node.Kind = types.NodeKindUnreadable
			node.Error = listError.Error()
			return node
		}
		node.Kind = types.NodeKindDirectory
		node.Children = childNodes
		return node
	}

	node.Kind = types.NodeKindFile
	node.SizeBytes = entryInfo.Size()
	return node
}

// isHiddenName reports whether entryName follows the dotfile convention.
func isHiddenName(entryName string) bool {
	return len(entryName) > 0 && entryName[0] == '.'
}

// sortChildren orders siblings deterministically regardless of the order the
// operating system listed them: directories first, then case-sensitive
// lexicographic by name.
func sortChildren(childNodes []*types.TreeNode) {
	sort.SliceStable(childNodes, func(leftIndex, rightIndex int) bool {
		leftNode := childNodes[leftIndex]
		rightNode := childNodes[rightIndex]
		leftIsDirectory := leftNode.Kind == types.NodeKindDirectory
		rightIsDirectory := rightNode.Kind == types.NodeKindDirectory
		if leftIsDirectory != rightIsDirectory {
			return leftIsDirectory
		}
		return leftNode.Name < rightNode.Name
	})
}
