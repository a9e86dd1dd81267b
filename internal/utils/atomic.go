package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	temporaryFilePattern = ".treecraft-*.tmp"
	outputFilePermission = 0o644

	errorCreateTemporaryFormat = "creating temporary file in %s: %w"
	errorWriteTemporaryFormat  = "writing temporary file %s: %w"
	errorRenameTemporaryFormat = "renaming %s to %s: %w"
)

// WriteFileAtomic writes data to targetPath via a temporary file in the same
// directory followed by a rename, so a killed process never leaves a
// truncated target in place.
func WriteFileAtomic(targetPath string, data []byte) error {
	targetDirectory := filepath.Dir(targetPath)
	temporaryFile, createError := os.CreateTemp(targetDirectory, temporaryFilePattern)
	if createError != nil {
		return fmt.Errorf(errorCreateTemporaryFormat, targetDirectory, createError)
	}
	temporaryPath := temporaryFile.Name()

	_, writeError := temporaryFile.Write(data)
	if writeError == nil {
		writeError = temporaryFile.Sync()
	}
	closeError := temporaryFile.Close()
	if writeError == nil {
		writeError = closeError
	}
	if writeError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(errorWriteTemporaryFormat, temporaryPath, writeError)
	}

	if chmodError := os.Chmod(temporaryPath, outputFilePermission); chmodError != nil {
		_ = os.Remove(temporaryPath)
		return chmodError
	}
	if renameError := os.Rename(temporaryPath, targetPath); renameError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(errorRenameTemporaryFormat, temporaryPath, targetPath, renameError)
	}
	return nil
}
