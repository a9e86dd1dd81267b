package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/treecraft/treecraft/internal/types"
	"github.com/treecraft/treecraft/internal/utils"
)

const (
	// runEventName labels every run record.
	runEventName = "tree_generated"

	timestampKey = "timestamp"
	levelKey     = "level"
	eventKey     = "event"

	inputPathFieldKey     = "path"
	textFileFieldKey      = "text_file"
	jsonFileFieldKey      = "json_file"
	textSizeFieldKey      = "text_size_bytes"
	jsonSizeFieldKey      = "json_size_bytes"
	outcomeFieldKey       = "outcome"
	failureReasonFieldKey = "reason"
)

// RunLogger appends one structured JSONL record per invocation onto a
// rotating writer. It is constructed and closed explicitly by its owner and
// is never shared process-wide.
type RunLogger struct {
	writer *RotatingWriter
	core   zapcore.Core
	clock  func() time.Time
}

// NewRunLogger opens the rotating log configured by options and builds the
// zap JSON core that renders run records as single lines.
func NewRunLogger(options types.LoggingOptions) (*RunLogger, error) {
	rotatingWriter, writerError := NewRotatingWriter(options.Path, options.MaxBytes, options.BackupCount)
	if writerError != nil {
		return nil, writerError
	}
	return &RunLogger{
		writer: rotatingWriter,
		core:   zapcore.NewCore(newRecordEncoder(), rotatingWriter, zapcore.InfoLevel),
		clock:  time.Now,
	}, nil
}

// newRecordEncoder configures the JSON line shape: level, a fixed +09:00
// ISO-8601 timestamp, the event name, then the record payload.
func newRecordEncoder() zapcore.Encoder {
	encoderConfiguration := zapcore.EncoderConfig{
		MessageKey:     eventKey,
		LevelKey:       levelKey,
		TimeKey:        timestampKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeTime: func(value time.Time, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString(utils.FormatRunTimestamp(value))
		},
	}
	return zapcore.NewJSONEncoder(encoderConfiguration)
}

// Append serializes the record to one canonical line and writes it through
// the rotating writer. Field order is fixed; output paths and sizes are
// omitted on records describing failed runs that produced no files.
func (runLogger *RunLogger) Append(record types.RunRecord) error {
	fields := []zapcore.Field{
		zap.String(inputPathFieldKey, record.InputPath),
	}
	if record.OutputTextPath != "" {
		fields = append(fields,
			zap.String(textFileFieldKey, record.OutputTextPath),
			zap.String(jsonFileFieldKey, record.OutputJSONPath),
			zap.Int64(textSizeFieldKey, record.TextSizeBytes),
			zap.Int64(jsonSizeFieldKey, record.JSONSizeBytes),
		)
	}
	fields = append(fields, zap.String(outcomeFieldKey, record.Outcome))
	if record.Reason != "" {
		fields = append(fields, zap.String(failureReasonFieldKey, record.Reason))
	}

	entry := zapcore.Entry{
		Level:   zapcore.InfoLevel,
		Time:    runLogger.clock(),
		Message: runEventName,
	}
	return runLogger.core.Write(entry, fields)
}

// LogPath returns the current log file path.
func (runLogger *RunLogger) LogPath() string {
	return runLogger.writer.path
}

// Close flushes and releases the underlying log file.
func (runLogger *RunLogger) Close() error {
	syncError := runLogger.writer.Sync()
	closeError := runLogger.writer.Close()
	if syncError != nil {
		return syncError
	}
	return closeError
}
