// Package logging owns the append-only run log: a size-rotated file writer
// and the zap core that serializes run records onto it.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	logDirectoryPermission = 0o755
	logFilePermission      = 0o644

	// backupNameFormat names rotated files: slot 1 is the most recent backup.
	backupNameFormat = "%s.%d"

	errorCreateLogDirectoryFormat = "creating log directory %s: %w"
	errorOpenLogFileFormat        = "opening log file %s: %w"
	errorShiftBackupFormat        = "shifting backup %s to %s: %w"
	errorRemoveBackupFormat       = "removing oldest backup %s: %w"
	errorRotateCurrentFormat      = "rotating %s: %w"
)

// RotatingWriter appends single-line records to one log file and rotates it
// into numbered backup slots once a record would push the file's size to or
// past the configured threshold. It assumes exactly one writing process owns
// the log path and must be constructed and closed explicitly.
type RotatingWriter struct {
	path        string
	maxBytes    int64
	backupCount int
	file        *os.File
	size        int64
}

// NewRotatingWriter opens (or creates) the log file at path for appending,
// creating the parent directory when missing. A maxBytes of zero disables
// rotation.
func NewRotatingWriter(path string, maxBytes int64, backupCount int) (*RotatingWriter, error) {
	logDirectory := filepath.Dir(path)
	if makeDirectoryError := os.MkdirAll(logDirectory, logDirectoryPermission); makeDirectoryError != nil {
		return nil, fmt.Errorf(errorCreateLogDirectoryFormat, logDirectory, makeDirectoryError)
	}

	writer := &RotatingWriter{
		path:        path,
		maxBytes:    maxBytes,
		backupCount: backupCount,
	}
	if openError := writer.openCurrentFile(); openError != nil {
		return nil, openError
	}
	return writer, nil
}

// Write appends one serialized record, rotating first when the record would
// reach the size threshold. The record is reported as written only after it
// resides in the current file.
func (writer *RotatingWriter) Write(record []byte) (int, error) {
	if writer.shouldRotate(int64(len(record))) {
		if rotateError := writer.rotate(); rotateError != nil {
			return 0, rotateError
		}
	}
	writtenBytes, writeError := writer.file.Write(record)
	writer.size += int64(writtenBytes)
	return writtenBytes, writeError
}

// Sync flushes the current file to stable storage.
func (writer *RotatingWriter) Sync() error {
	return writer.file.Sync()
}

// Close releases the current file handle.
func (writer *RotatingWriter) Close() error {
	return writer.file.Close()
}

// CurrentSize returns the byte size of the current log file.
func (writer *RotatingWriter) CurrentSize() int64 {
	return writer.size
}

func (writer *RotatingWriter) shouldRotate(pendingBytes int64) bool {
	if writer.maxBytes <= 0 {
		return false
	}
	return writer.size+pendingBytes >= writer.maxBytes
}

// rotate moves the current file into backup slot 1, shifting existing
// backups up one slot and evicting the slot past backupCount, then opens a
// fresh current file.
func (writer *RotatingWriter) rotate() error {
	if closeError := writer.file.Close(); closeError != nil {
		return fmt.Errorf(errorRotateCurrentFormat, writer.path, closeError)
	}

	if writer.backupCount > 0 {
		oldestBackupPath := writer.backupPath(writer.backupCount)
		if _, statError := os.Stat(oldestBackupPath); statError == nil {
			if removeError := os.Remove(oldestBackupPath); removeError != nil {
				return fmt.Errorf(errorRemoveBackupFormat, oldestBackupPath, removeError)
			}
		}
		for slotIndex := writer.backupCount - 1; slotIndex >= 1; slotIndex-- {
			sourcePath := writer.backupPath(slotIndex)
			if _, statError := os.Stat(sourcePath); statError != nil {
				continue
			}
			destinationPath := writer.backupPath(slotIndex + 1)
			if renameError := os.Rename(sourcePath, destinationPath); renameError != nil {
				return fmt.Errorf(errorShiftBackupFormat, sourcePath, destinationPath, renameError)
			}
		}
		if renameError := os.Rename(writer.path, writer.backupPath(1)); renameError != nil {
			return fmt.Errorf(errorRotateCurrentFormat, writer.path, renameError)
		}
	} else {
		if removeError := os.Remove(writer.path); removeError != nil {
			return fmt.Errorf(errorRotateCurrentFormat, writer.path, removeError)
		}
	}

	return writer.openCurrentFile()
}

func (writer *RotatingWriter) backupPath(slotIndex int) string {
	return fmt.Sprintf(backupNameFormat, writer.path, slotIndex)
}

func (writer *RotatingWriter) openCurrentFile() error {
	logFile, openError := os.OpenFile(writer.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if openError != nil {
		return fmt.Errorf(errorOpenLogFileFormat, writer.path, openError)
	}
	fileInfo, statError := logFile.Stat()
	if statError != nil {
		_ = logFile.Close()
		return fmt.Errorf(errorOpenLogFileFormat, writer.path, statError)
	}
	writer.file = logFile
	writer.size = fileInfo.Size()
	return nil
}
