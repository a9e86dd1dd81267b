package commands_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/treecraft/treecraft/internal/commands"
	"github.com/treecraft/treecraft/internal/logging"
	"github.com/treecraft/treecraft/internal/types"
)

// changeTestDirectory switches the working directory for the duration of a
// test and restores the original directory on cleanup.
func changeTestDirectory(testingInstance *testing.T, directory string) {
	testingInstance.Helper()
	originalDirectory, getError := os.Getwd()
	if getError != nil {
		testingInstance.Fatalf("getwd: %v", getError)
	}
	if changeError := os.Chdir(directory); changeError != nil {
		testingInstance.Fatalf("chdir: %v", changeError)
	}
	testingInstance.Cleanup(func() {
		if restoreError := os.Chdir(originalDirectory); restoreError != nil {
			testingInstance.Fatalf("restore working directory: %v", restoreError)
		}
	})
}

// buildSampleRoot creates root directory A containing empty subdirectory b,
// a.txt (10 bytes), and z.txt (5 bytes).
func buildSampleRoot(testingInstance *testing.T) string {
	testingInstance.Helper()
	rootPath := filepath.Join(testingInstance.TempDir(), "A")
	if makeError := os.MkdirAll(filepath.Join(rootPath, "b"), 0o755); makeError != nil {
		testingInstance.Fatalf("mkdir: %v", makeError)
	}
	if writeError := os.WriteFile(filepath.Join(rootPath, "a.txt"), []byte("0123456789"), 0o644); writeError != nil {
		testingInstance.Fatalf("write: %v", writeError)
	}
	if writeError := os.WriteFile(filepath.Join(rootPath, "z.txt"), []byte("01234"), 0o644); writeError != nil {
		testingInstance.Fatalf("write: %v", writeError)
	}
	return rootPath
}

func newTestRunner(testingInstance *testing.T, rootPath string) (*commands.Runner, string, string) {
	testingInstance.Helper()
	outputDirectory := filepath.Join(testingInstance.TempDir(), "out")
	logPath := filepath.Join(testingInstance.TempDir(), "logs", "tree_logs.jsonl")
	loggingOptions := types.LoggingOptions{Path: logPath, MaxBytes: 1024 * 1024, BackupCount: 2}

	runLogger, loggerError := logging.NewRunLogger(loggingOptions)
	if loggerError != nil {
		testingInstance.Fatalf("new run logger: %v", loggerError)
	}
	testingInstance.Cleanup(func() {
		_ = runLogger.Close()
	})

	runner := &commands.Runner{
		Options: types.Options{
			RootPath:        rootPath,
			OutputDirectory: outputDirectory,
			Logging:         loggingOptions,
		},
		Logger: zap.NewNop(),
		RunLog: runLogger,
	}
	return runner, outputDirectory, logPath
}

// TestRunWritesBothOutputsAndLogs verifies the happy path: both artifacts
// exist, the outcome is success, and one record was appended.
func TestRunWritesBothOutputsAndLogs(testingInstance *testing.T) {
	rootPath := buildSampleRoot(testingInstance)
	runner, outputDirectory, logPath := newTestRunner(testingInstance, rootPath)

	result, runError := runner.Run()
	if runError != nil {
		testingInstance.Fatalf("run: %v", runError)
	}
	if result.Outcome != types.OutcomeSuccess {
		testingInstance.Errorf("unexpected outcome: %q", result.Outcome)
	}

	expectedTextPath := filepath.Join(outputDirectory, "A_tree.txt")
	expectedJSONPath := filepath.Join(outputDirectory, "A_tree.json")
	if result.OutputTextPath != expectedTextPath {
		testingInstance.Errorf("unexpected text path: %q", result.OutputTextPath)
	}
	if result.OutputJSONPath != expectedJSONPath {
		testingInstance.Errorf("unexpected json path: %q", result.OutputJSONPath)
	}

	textContent, textError := os.ReadFile(expectedTextPath)
	if textError != nil {
		testingInstance.Fatalf("read text output: %v", textError)
	}
	expectedText := "A\n├── b\n├── a.txt\n└── z.txt"
	if string(textContent) != expectedText {
		testingInstance.Errorf("unexpected text output: %q", textContent)
	}
	if result.TextSizeBytes != int64(len(textContent)) {
		testingInstance.Errorf("reported text size %d does not match file size %d", result.TextSizeBytes, len(textContent))
	}

	jsonContent, jsonError := os.ReadFile(expectedJSONPath)
	if jsonError != nil {
		testingInstance.Fatalf("read json output: %v", jsonError)
	}
	if !strings.Contains(string(jsonContent), `"name":"A"`) {
		testingInstance.Errorf("unexpected json output: %s", jsonContent)
	}

	logContent, logError := os.ReadFile(logPath)
	if logError != nil {
		testingInstance.Fatalf("read log: %v", logError)
	}
	if strings.Count(string(logContent), "\n") != 1 {
		testingInstance.Errorf("expected exactly one run record, got %q", logContent)
	}
	if !strings.Contains(string(logContent), `"outcome":"success"`) {
		testingInstance.Errorf("record must carry the outcome: %q", logContent)
	}
}

// TestRunDotRootNamesOutputsAfterDirectory verifies a "." root resolves to
// the working directory's real name for the output file stems.
func TestRunDotRootNamesOutputsAfterDirectory(testingInstance *testing.T) {
	rootPath := buildSampleRoot(testingInstance)
	changeTestDirectory(testingInstance, rootPath)
	runner, outputDirectory, _ := newTestRunner(testingInstance, ".")

	result, runError := runner.Run()
	if runError != nil {
		testingInstance.Fatalf("run: %v", runError)
	}
	expectedTextPath := filepath.Join(outputDirectory, "A_tree.txt")
	if result.OutputTextPath != expectedTextPath {
		testingInstance.Errorf("unexpected text path for dot root: %q", result.OutputTextPath)
	}
	if _, statError := os.Stat(expectedTextPath); statError != nil {
		testingInstance.Errorf("text output missing: %v", statError)
	}
	if _, statError := os.Stat(filepath.Join(outputDirectory, "A_tree.json")); statError != nil {
		testingInstance.Errorf("json output missing: %v", statError)
	}
}

// TestRunDeterminism verifies two runs over unchanged filesystem state
// produce byte-identical artifacts.
func TestRunDeterminism(testingInstance *testing.T) {
	rootPath := buildSampleRoot(testingInstance)

	firstRunner, firstOutputDirectory, _ := newTestRunner(testingInstance, rootPath)
	if _, runError := firstRunner.Run(); runError != nil {
		testingInstance.Fatalf("first run: %v", runError)
	}
	secondRunner, secondOutputDirectory, _ := newTestRunner(testingInstance, rootPath)
	if _, runError := secondRunner.Run(); runError != nil {
		testingInstance.Fatalf("second run: %v", runError)
	}

	for _, outputName := range []string{"A_tree.txt", "A_tree.json"} {
		firstContent, firstError := os.ReadFile(filepath.Join(firstOutputDirectory, outputName))
		if firstError != nil {
			testingInstance.Fatalf("read first %s: %v", outputName, firstError)
		}
		secondContent, secondError := os.ReadFile(filepath.Join(secondOutputDirectory, outputName))
		if secondError != nil {
			testingInstance.Fatalf("read second %s: %v", outputName, secondError)
		}
		if string(firstContent) != string(secondContent) {
			testingInstance.Errorf("%s differs across runs", outputName)
		}
	}
}

// TestRunUnreadableSubtreeIsPartialFailure verifies the documented partial
// failure scenario: outputs produced, marker present, outcome downgraded.
func TestRunUnreadableSubtreeIsPartialFailure(testingInstance *testing.T) {
	if os.Geteuid() == 0 {
		testingInstance.Skip("permission bits are not enforced for root")
	}
	rootPath := filepath.Join(testingInstance.TempDir(), "A")
	lockedDirectory := filepath.Join(rootPath, "locked")
	if makeError := os.MkdirAll(lockedDirectory, 0o755); makeError != nil {
		testingInstance.Fatalf("mkdir: %v", makeError)
	}
	for _, fileName := range []string{"one.txt", "two.txt"} {
		if writeError := os.WriteFile(filepath.Join(rootPath, fileName), []byte("data"), 0o644); writeError != nil {
			testingInstance.Fatalf("write: %v", writeError)
		}
	}
	if chmodError := os.Chmod(lockedDirectory, 0o000); chmodError != nil {
		testingInstance.Fatalf("chmod: %v", chmodError)
	}
	testingInstance.Cleanup(func() {
		_ = os.Chmod(lockedDirectory, 0o755)
	})

	runner, outputDirectory, _ := newTestRunner(testingInstance, rootPath)
	result, runError := runner.Run()
	if runError != nil {
		testingInstance.Fatalf("run: %v", runError)
	}
	if result.Outcome != types.OutcomePartialFailure {
		testingInstance.Errorf("unexpected outcome: %q", result.Outcome)
	}

	textContent, textError := os.ReadFile(filepath.Join(outputDirectory, "A_tree.txt"))
	if textError != nil {
		testingInstance.Fatalf("text output missing: %v", textError)
	}
	if !strings.Contains(string(textContent), "locked [unreadable]") {
		testingInstance.Errorf("missing unreadable marker: %q", textContent)
	}
	if !strings.Contains(string(textContent), "one.txt") || !strings.Contains(string(textContent), "two.txt") {
		testingInstance.Errorf("readable files must render normally: %q", textContent)
	}
	if _, statError := os.Stat(filepath.Join(outputDirectory, "A_tree.json")); statError != nil {
		testingInstance.Errorf("json output missing: %v", statError)
	}
}

// TestRunMissingRootLeavesNoTraces verifies a validation failure creates
// neither output files nor the output directory.
func TestRunMissingRootLeavesNoTraces(testingInstance *testing.T) {
	missingRoot := filepath.Join(testingInstance.TempDir(), "missing")
	runner, outputDirectory, _ := newTestRunner(testingInstance, missingRoot)

	result, runError := runner.Run()
	if !errors.Is(runError, types.ErrPathNotFound) {
		testingInstance.Fatalf("expected ErrPathNotFound, got %v", runError)
	}
	if result.Outcome != types.OutcomeFailure {
		testingInstance.Errorf("unexpected outcome: %q", result.Outcome)
	}
	if _, statError := os.Stat(outputDirectory); !os.IsNotExist(statError) {
		testingInstance.Errorf("output directory must not be created on validation failure")
	}
}

// TestRunRootIsFileFails verifies the not-a-directory classification
// propagates from the orchestrator.
func TestRunRootIsFileFails(testingInstance *testing.T) {
	filePath := filepath.Join(testingInstance.TempDir(), "plain.txt")
	if writeError := os.WriteFile(filePath, []byte("data"), 0o644); writeError != nil {
		testingInstance.Fatalf("write: %v", writeError)
	}
	runner, _, _ := newTestRunner(testingInstance, filePath)
	if _, runError := runner.Run(); !errors.Is(runError, types.ErrNotADirectory) {
		testingInstance.Errorf("expected ErrNotADirectory, got %v", runError)
	}
}

// TestRunWithoutRunLogStillProducesOutputs verifies logging stays
// best-effort relative to the primary deliverable.
func TestRunWithoutRunLogStillProducesOutputs(testingInstance *testing.T) {
	rootPath := buildSampleRoot(testingInstance)
	outputDirectory := filepath.Join(testingInstance.TempDir(), "out")
	runner := &commands.Runner{
		Options: types.Options{
			RootPath:        rootPath,
			OutputDirectory: outputDirectory,
		},
		Logger: zap.NewNop(),
	}
	result, runError := runner.Run()
	if runError != nil {
		testingInstance.Fatalf("run: %v", runError)
	}
	if result.Outcome != types.OutcomeSuccess {
		testingInstance.Errorf("unexpected outcome: %q", result.Outcome)
	}
	if _, statError := os.Stat(result.OutputTextPath); statError != nil {
		testingInstance.Errorf("text output missing: %v", statError)
	}
}
