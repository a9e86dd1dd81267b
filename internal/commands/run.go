// Package commands contains the core run logic of the treecraft CLI.
package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/treecraft/treecraft/internal/logging"
	"github.com/treecraft/treecraft/internal/render"
	"github.com/treecraft/treecraft/internal/scan"
	"github.com/treecraft/treecraft/internal/types"
	"github.com/treecraft/treecraft/internal/utils"
)

const (
	outputDirectoryPermission = 0o755

	textOutputSuffix = "_tree.txt"
	jsonOutputSuffix = "_tree.json"

	// fallbackBaseName names the outputs when the root path has no usable
	// final component.
	fallbackBaseName = "root"

	errorCreateOutputDirectoryFormat = "creating output directory %s: %w"
	errorWriteOutputFormat           = "writing %s: %w"
	errorRenderJSONFormat            = "rendering json document: %w"

	warningAppendRecordMessage  = "failed to append run record"
	warningRemoveOutputMessage  = "failed to remove partial output"
	debugScanCompletedMessage   = "scan completed"
	debugOutputWrittenMessage   = "output written"
	infoRunCompletedMessage     = "run completed"
	reasonIOFailure             = "io_error"
	reasonUnreadableSubtree     = "unreadable_subtree"
)

// Runner orchestrates one invocation: walk, render, write outputs, append
// the run record. It holds everything the core needs; nothing is re-read
// from flags or configuration during the run.
type Runner struct {
	Options types.Options
	Logger  *zap.Logger
	RunLog  *logging.RunLogger
}

// Run executes the pipeline and classifies the outcome. Unreadable subtrees
// are absorbed into the tree and downgrade the outcome to partial failure;
// every other failure aborts the run before any output file survives.
func (runner *Runner) Run() (types.RunResult, error) {
	result := types.RunResult{Outcome: types.OutcomeFailure}
	options := runner.Options

	rootNode, walkError := scan.Walk(options.RootPath, options.IncludeHidden)
	if walkError != nil {
		// Validation failures happen before anything observable; no record.
		return result, walkError
	}
	runner.Logger.Debug(debugScanCompletedMessage, zap.String("path", options.RootPath))

	treeText := render.RenderText(rootNode)
	jsonDocument, renderError := render.RenderJSON(rootNode)
	if renderError != nil {
		wrappedError := fmt.Errorf(errorRenderJSONFormat, errors.Join(types.ErrIO, renderError))
		runner.appendFailureRecord(wrappedError)
		return result, wrappedError
	}

	if makeDirectoryError := os.MkdirAll(options.OutputDirectory, outputDirectoryPermission); makeDirectoryError != nil {
		wrappedError := fmt.Errorf(errorCreateOutputDirectoryFormat, options.OutputDirectory, errors.Join(types.ErrIO, makeDirectoryError))
		runner.appendFailureRecord(wrappedError)
		return result, wrappedError
	}

	baseName := outputBaseName(options.RootPath)
	textPath := filepath.Join(options.OutputDirectory, baseName+textOutputSuffix)
	jsonPath := filepath.Join(options.OutputDirectory, baseName+jsonOutputSuffix)

	if writeError := utils.WriteFileAtomic(textPath, []byte(treeText)); writeError != nil {
		wrappedError := fmt.Errorf(errorWriteOutputFormat, textPath, errors.Join(types.ErrIO, writeError))
		runner.appendFailureRecord(wrappedError)
		return result, wrappedError
	}
	runner.Logger.Debug(debugOutputWrittenMessage, zap.String("file", textPath))

	if writeError := utils.WriteFileAtomic(jsonPath, jsonDocument); writeError != nil {
		// A failed run leaves no output files behind.
		if removeError := os.Remove(textPath); removeError != nil {
			runner.Logger.Warn(warningRemoveOutputMessage, zap.String("file", textPath), zap.Error(removeError))
		}
		wrappedError := fmt.Errorf(errorWriteOutputFormat, jsonPath, errors.Join(types.ErrIO, writeError))
		runner.appendFailureRecord(wrappedError)
		return result, wrappedError
	}
	runner.Logger.Debug(debugOutputWrittenMessage, zap.String("file", jsonPath))

	outcome := types.OutcomeSuccess
	reason := ""
	if rootNode.HasUnreadable() {
		outcome = types.OutcomePartialFailure
		reason = reasonUnreadableSubtree
	}

	record := types.RunRecord{
		InputPath:      options.RootPath,
		OutputTextPath: textPath,
		OutputJSONPath: jsonPath,
		TextSizeBytes:  int64(len(treeText)),
		JSONSizeBytes:  int64(len(jsonDocument)),
		Outcome:        outcome,
		Reason:         reason,
	}
	runner.appendRecord(record)

	result = types.RunResult{
		Outcome:        outcome,
		OutputTextPath: textPath,
		OutputJSONPath: jsonPath,
		TextSizeBytes:  int64(len(treeText)),
		JSONSizeBytes:  int64(len(jsonDocument)),
		TreeText:       treeText,
	}
	if runner.RunLog != nil {
		result.LogPath = runner.RunLog.LogPath()
	}
	runner.Logger.Info(infoRunCompletedMessage, zap.String("outcome", outcome))
	return result, nil
}

// appendFailureRecord logs a run record for a failure that happened after
// path validation. Output paths and sizes are omitted.
func (runner *Runner) appendFailureRecord(runError error) {
	runner.appendRecord(types.RunRecord{
		InputPath: runner.Options.RootPath,
		Outcome:   types.OutcomeFailure,
		Reason:    reasonIOFailure + ": " + runError.Error(),
	})
}

// appendRecord writes the record best-effort: a logging failure never
// reverses outputs that were already written.
func (runner *Runner) appendRecord(record types.RunRecord) {
	if runner.RunLog == nil {
		return
	}
	if appendError := runner.RunLog.Append(record); appendError != nil {
		runner.Logger.Warn(warningAppendRecordMessage, zap.Error(appendError))
	}
}

// outputBaseName derives the output file stem from the final component of
// the root path, resolving relative paths first so "." names the outputs
// after the directory itself. Only the filesystem root falls back.
func outputBaseName(rootPath string) string {
	resolvedPath := rootPath
	if absolutePath, absoluteError := filepath.Abs(rootPath); absoluteError == nil {
		resolvedPath = absolutePath
	}
	trimmedPath := strings.TrimRight(resolvedPath, string(filepath.Separator))
	baseName := filepath.Base(trimmedPath)
	if baseName == "" || baseName == "." || baseName == string(filepath.Separator) {
		return fallbackBaseName
	}
	return baseName
}
