// Package config loads optional application configuration for treecraft.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configBaseName = "treecraft"
	configType     = "yaml"

	// userConfigDirectoryName is the per-user configuration directory under $HOME.
	userConfigDirectoryName = ".treecraft"

	loggingPathKey        = "logging.path"
	loggingMaxBytesKey    = "logging.max_bytes"
	loggingBackupCountKey = "logging.backup_count"

	// DefaultLogPath is the run log location relative to the working directory.
	DefaultLogPath = "logs/tree_logs.jsonl"
	// DefaultLogMaxBytes is the rotation threshold for the run log.
	DefaultLogMaxBytes = 10 * 1024 * 1024
	// DefaultLogBackupCount bounds the number of rotated backup files kept.
	DefaultLogBackupCount = 5

	errorReadConfigFormat      = "reading configuration: %w"
	errorUnmarshalConfigFormat = "parsing configuration: %w"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// LoggingConfiguration configures the rotating run log. Rotation parameters
// are configuration inputs, not CLI flags.
type LoggingConfiguration struct {
	Path        string `mapstructure:"path"`
	MaxBytes    int64  `mapstructure:"max_bytes"`
	BackupCount int    `mapstructure:"backup_count"`
}

// ApplicationConfiguration holds every configurable default.
type ApplicationConfiguration struct {
	Logging LoggingConfiguration `mapstructure:"logging"`
}

// LoadApplicationConfiguration merges defaults with an optional
// treecraft.yaml found in the working directory or ~/.treecraft. A missing
// file is not an error; a malformed one is.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", workingDirectoryError)
		}
		workingDirectory = currentDirectory
	}

	loader := viper.New()
	loader.SetDefault(loggingPathKey, DefaultLogPath)
	loader.SetDefault(loggingMaxBytesKey, DefaultLogMaxBytes)
	loader.SetDefault(loggingBackupCountKey, DefaultLogBackupCount)

	if options.ExplicitFilePath != "" {
		loader.SetConfigFile(options.ExplicitFilePath)
	} else {
		loader.SetConfigName(configBaseName)
		loader.SetConfigType(configType)
		loader.AddConfigPath(workingDirectory)
		if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && homeDirectory != "" {
			loader.AddConfigPath(filepath.Join(homeDirectory, userConfigDirectoryName))
		}
	}

	if readError := loader.ReadInConfig(); readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		isMissing := errors.As(readError, &notFoundError) || os.IsNotExist(readError)
		// A discovered file is optional; an explicitly named one is not.
		if !isMissing || options.ExplicitFilePath != "" {
			return ApplicationConfiguration{}, fmt.Errorf(errorReadConfigFormat, readError)
		}
	}

	var configuration ApplicationConfiguration
	if unmarshalError := loader.Unmarshal(&configuration); unmarshalError != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorUnmarshalConfigFormat, unmarshalError)
	}
	return configuration, nil
}
