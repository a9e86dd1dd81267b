// Package types defines every cross-package data structure used by the treecraft CLI.
package types

const (
	NodeKindFile       = "file"
	NodeKindDirectory  = "directory"
	NodeKindUnreadable = "unreadable"

	OutcomeSuccess        = "success"
	OutcomePartialFailure = "partial_failure"
	OutcomeFailure        = "failure"
)

// TreeNode represents one filesystem entry inside a scanned tree.
// Children are ordered: directories before files, then case-sensitive
// lexicographic by name. Only directory nodes carry children.
type TreeNode struct {
	Name      string
	Kind      string
	SizeBytes int64
	Error     string
	Children  []*TreeNode
	Path      string
}

// HasUnreadable reports whether the node or any descendant could not be read.
func (node *TreeNode) HasUnreadable() bool {
	if node == nil {
		return false
	}
	if node.Kind == NodeKindUnreadable {
		return true
	}
	for _, childNode := range node.Children {
		if childNode.HasUnreadable() {
			return true
		}
	}
	return false
}

// RunRecord summarizes a single invocation for the append-only run log.
type RunRecord struct {
	InputPath      string
	OutputTextPath string
	OutputJSONPath string
	TextSizeBytes  int64
	JSONSizeBytes  int64
	Outcome        string
	Reason         string
}

// RunResult is returned by the orchestrator to the CLI shell.
type RunResult struct {
	Outcome        string
	OutputTextPath string
	OutputJSONPath string
	TextSizeBytes  int64
	JSONSizeBytes  int64
	LogPath        string
	TreeText       string
}

// Options is the immutable configuration record built once at the CLI
// boundary and passed into the core. The core never re-reads flags.
type Options struct {
	RootPath        string
	OutputDirectory string
	IncludeHidden   bool
	CopyToClipboard bool
	Verbosity       int
	Debug           bool
	Logging         LoggingOptions
}

// LoggingOptions configures the rotating run log.
type LoggingOptions struct {
	Path        string
	MaxBytes    int64
	BackupCount int
}
