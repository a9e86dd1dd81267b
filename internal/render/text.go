// Package render turns a scanned tree into its two deterministic artifacts:
// the ASCII-art text rendering and the canonical JSON document.
package render

import (
	"strings"

	"github.com/treecraft/treecraft/internal/types"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	// unreadableMarker annotates entries the walker could not read.
	unreadableMarker = " [unreadable]"
)

// RenderText produces the multi-line ASCII tree for the node. The root name
// is the first line; every descendant follows on its own line. Output is
// byte-for-byte reproducible for a fixed tree.
func RenderText(rootNode *types.TreeNode) string {
	var builder strings.Builder
	builder.WriteString(nodeLabel(rootNode))
	renderChildren(&builder, rootNode, "")
	return builder.String()
}

// renderChildren appends one line per child, selecting the connector by
// last-sibling position and extending the padding for descendants.
func renderChildren(builder *strings.Builder, parentNode *types.TreeNode, prefix string) {
	childCount := len(parentNode.Children)
	for childIndex, childNode := range parentNode.Children {
		isLastChild := childIndex == childCount-1
		connector := treeBranchConnector
		childPadding := prefix + treeBranchPadding
		if isLastChild {
			connector = treeLastConnector
			childPadding = prefix + treeLastPadding
		}
		builder.WriteString("\n")
		builder.WriteString(prefix)
		builder.WriteString(connector)
		builder.WriteString(nodeLabel(childNode))
		if childNode.Kind == types.NodeKindDirectory {
			renderChildren(builder, childNode, childPadding)
		}
	}
}

// nodeLabel returns the entry name with the unreadable annotation when the
// walker could not read it.
func nodeLabel(node *types.TreeNode) string {
	if node.Kind == types.NodeKindUnreadable {
		return node.Name + unreadableMarker
	}
	return node.Name
}
