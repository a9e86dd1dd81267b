// Package cli provides the command line interface.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/treecraft/treecraft/internal/commands"
	"github.com/treecraft/treecraft/internal/config"
	"github.com/treecraft/treecraft/internal/logging"
	"github.com/treecraft/treecraft/internal/services/clipboard"
	"github.com/treecraft/treecraft/internal/types"
	"github.com/treecraft/treecraft/internal/utils"
)

const (
	rootUse              = "treecraft <path>"
	rootShortDescription = "render a directory tree as text art and canonical json"
	rootLongDescription  = `treecraft scans a directory and writes two synchronized artifacts:
an ASCII tree (<basename>_tree.txt) and a canonical JSON document
(<basename>_tree.json). Every run is appended to a size-rotated JSONL log.`
	rootUsageExample = `  # Render the current project into ./out
  treecraft .

  # Include hidden entries and choose the output directory
  treecraft --show-hidden --out /tmp/render ~/project`

	outputFlagName    = "out"
	showHiddenFlag    = "show-hidden"
	showHiddenShort   = "a"
	verboseFlagName   = "verbose"
	verboseFlagShort  = "v"
	debugFlagName     = "debug"
	copyFlagName      = "copy"
	configFlagName    = "config"
	versionFlagName   = "version"
	versionTemplate   = "treecraft version: %s\n"

	defaultOutputDirectory = "./out"

	outputFlagDescription     = "destination directory for the two output files"
	showHiddenFlagDescription = "include hidden (dotfile) entries"
	verboseFlagDescription    = "increase diagnostic verbosity (repeatable)"
	debugFlagDescription      = "report failures with full diagnostic detail"
	copyFlagDescription       = "copy the rendered tree to the system clipboard"
	configFlagDescription     = "explicit configuration file path"
	versionFlagDescription    = "display application version"

	createdHeaderLine       = "Created:"
	createdOutputLineFormat = "  %s: %s (%s)\n"
	createdLogLineFormat    = "  %s: %s\n"
	createdTextLabel        = "txt"
	createdJSONLabel        = "json"
	createdLogLabel         = "log"

	warningOpenRunLogMessage = "run log unavailable; continuing without it"
	warningClipboardMessage  = "failed to copy tree to clipboard"
	warningCloseRunLog       = "failed to close run log"
	partialFailureNotice     = "some entries were unreadable; outputs are partial"
)

// Process exit codes produced from the core's outcome.
const (
	ExitSuccess  = 0
	ExitUsage    = 2
	ExitNotFound = 3
	ExitIO       = 4
)

// RunError carries the exit code classification for a core failure across
// the cobra boundary.
type RunError struct {
	Code  int
	Cause error
}

// Error returns the underlying failure text.
func (runError *RunError) Error() string {
	return runError.Cause.Error()
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (runError *RunError) Unwrap() error {
	return runError.Cause
}

// ExitCodeFor maps an Execute error to the process exit code. Errors that
// were not classified by the core are usage errors raised by cobra.
func ExitCodeFor(executionError error) int {
	if executionError == nil {
		return ExitSuccess
	}
	var runError *RunError
	if errors.As(executionError, &runError) {
		return runError.Code
	}
	return ExitUsage
}

// Execute runs the treecraft application.
func Execute() error {
	return createRootCommand().Execute()
}

// createRootCommand builds the root cobra command.
func createRootCommand() *cobra.Command {
	var outputDirectory string
	var includeHidden bool
	var verbosity int
	var debugEnabled bool
	var copyEnabled bool
	var configFilePath string
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		// The positional path is not required when only the version was asked
		// for; flags are parsed before positional validation runs.
		Args: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				return nil
			}
			return cobra.ExactArgs(1)(command, arguments)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				command.Printf(versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			options := types.Options{
				RootPath:        arguments[0],
				OutputDirectory: outputDirectory,
				IncludeHidden:   includeHidden,
				CopyToClipboard: copyEnabled,
				Verbosity:       verbosity,
				Debug:           debugEnabled,
			}
			return runGenerate(options, configFilePath)
		},
	}

	rootCommand.Flags().StringVar(&outputDirectory, outputFlagName, defaultOutputDirectory, outputFlagDescription)
	rootCommand.Flags().BoolVarP(&includeHidden, showHiddenFlag, showHiddenShort, false, showHiddenFlagDescription)
	rootCommand.Flags().CountVarP(&verbosity, verboseFlagName, verboseFlagShort, verboseFlagDescription)
	rootCommand.Flags().BoolVar(&debugEnabled, debugFlagName, false, debugFlagDescription)
	rootCommand.Flags().BoolVar(&copyEnabled, copyFlagName, false, copyFlagDescription)
	rootCommand.Flags().StringVar(&configFilePath, configFlagName, "", configFlagDescription)
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	return rootCommand
}

// runGenerate assembles the core's collaborators and executes one run.
func runGenerate(options types.Options, configFilePath string) error {
	applicationLogger, loggerError := utils.NewApplicationLogger(options.Verbosity)
	if loggerError != nil {
		return &RunError{Code: ExitIO, Cause: fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)}
	}
	defer func() {
		_ = applicationLogger.Sync()
	}()

	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: configFilePath,
	})
	if configurationError != nil {
		return &RunError{Code: ExitIO, Cause: configurationError}
	}
	options.Logging = types.LoggingOptions{
		Path:        applicationConfiguration.Logging.Path,
		MaxBytes:    applicationConfiguration.Logging.MaxBytes,
		BackupCount: applicationConfiguration.Logging.BackupCount,
	}

	// The run log is best-effort relative to the primary deliverable.
	runLogger, runLogError := logging.NewRunLogger(options.Logging)
	if runLogError != nil {
		applicationLogger.Warn(warningOpenRunLogMessage, zap.Error(runLogError))
		runLogger = nil
	}
	if runLogger != nil {
		defer func() {
			if closeError := runLogger.Close(); closeError != nil {
				applicationLogger.Warn(warningCloseRunLog, zap.Error(closeError))
			}
		}()
	}

	runner := &commands.Runner{
		Options: options,
		Logger:  applicationLogger,
		RunLog:  runLogger,
	}
	result, runError := runner.Run()
	if runError != nil {
		return classifyRunError(runError, options.Debug)
	}

	if result.Outcome == types.OutcomePartialFailure {
		applicationLogger.Warn(partialFailureNotice)
	}
	fmt.Print(createdSummary(result))

	if options.CopyToClipboard {
		if copyError := clipboard.NewService().Copy(result.TreeText); copyError != nil {
			applicationLogger.Warn(warningClipboardMessage, zap.Error(copyError))
		}
	}
	return nil
}

// classifyRunError maps the core error taxonomy onto exit codes. Without
// --debug the wrapped detail is reduced to the terse sentinel text.
func classifyRunError(runError error, debugEnabled bool) error {
	code := ExitIO
	terse := runError
	switch {
	case errors.Is(runError, types.ErrPathNotFound):
		code = ExitNotFound
		terse = types.ErrPathNotFound
	case errors.Is(runError, types.ErrNotADirectory):
		code = ExitNotFound
		terse = types.ErrNotADirectory
	}
	if debugEnabled {
		return &RunError{Code: code, Cause: runError}
	}
	return &RunError{Code: code, Cause: terse}
}

// createdSummary reports the produced artifacts with their human-readable
// sizes.
func createdSummary(result types.RunResult) string {
	var builder strings.Builder
	builder.WriteString(createdHeaderLine + "\n")
	builder.WriteString(fmt.Sprintf(createdOutputLineFormat, createdTextLabel, result.OutputTextPath, utils.FormatFileSize(result.TextSizeBytes)))
	builder.WriteString(fmt.Sprintf(createdOutputLineFormat, createdJSONLabel, result.OutputJSONPath, utils.FormatFileSize(result.JSONSizeBytes)))
	if result.LogPath != "" {
		builder.WriteString(fmt.Sprintf(createdLogLineFormat, createdLogLabel, result.LogPath))
	}
	return builder.String()
}
