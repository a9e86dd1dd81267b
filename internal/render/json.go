package render

import (
	"encoding/json"

	"github.com/treecraft/treecraft/internal/types"
)

// documentNode is the canonical JSON shape: fixed key order via struct field
// order, size present for files only, error for unreadable entries only,
// children for directories only.
type documentNode struct {
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Size     *int64          `json:"size,omitempty"`
	Error    string          `json:"error,omitempty"`
	Children *[]documentNode `json:"children,omitempty"`
}

// RenderJSON produces the canonical UTF-8 JSON document for the node. The
// returned bytes are the complete output-file content: compact encoding, no
// insignificant whitespace, child order identical to the tree's.
func RenderJSON(rootNode *types.TreeNode) ([]byte, error) {
	return json.Marshal(buildDocumentNode(rootNode))
}

func buildDocumentNode(node *types.TreeNode) documentNode {
	document := documentNode{
		Name:  node.Name,
		Kind:  node.Kind,
		Error: node.Error,
	}
	if node.Kind == types.NodeKindFile {
		sizeValue := node.SizeBytes
		document.Size = &sizeValue
	}
	if node.Kind == types.NodeKindDirectory {
		childDocuments := make([]documentNode, 0, len(node.Children))
		for _, childNode := range node.Children {
			childDocuments = append(childDocuments, buildDocumentNode(childNode))
		}
		// A directory always carries the key, even when empty.
		document.Children = &childDocuments
	}
	return document
}
