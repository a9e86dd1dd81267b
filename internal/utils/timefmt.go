package utils

import (
	"time"
)

// runRecordZoneOffsetSeconds fixes run-record timestamps at UTC+09:00.
// The offset is constant; records are never reinterpreted to local time.
const runRecordZoneOffsetSeconds = 9 * 60 * 60

const runRecordZoneName = "+09:00"

// RunRecordZone is the fixed-offset location used for run-record timestamps.
var RunRecordZone = time.FixedZone(runRecordZoneName, runRecordZoneOffsetSeconds)

// FormatRunTimestamp renders the provided time as ISO-8601 in the fixed
// +09:00 offset.
func FormatRunTimestamp(value time.Time) string {
	return value.In(RunRecordZone).Format(time.RFC3339)
}
