package utils

// ErrorLogFormat defines the formatting string for error log messages.
const ErrorLogFormat = "Error: %v"

// LoggerInitializationFailedMessageFormat reports a failed logger construction.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
