package repository

import (
	"fmt"
	"time"
)

// TimeFormat is the storage format for timestamps, matching SQLite's
// CURRENT_TIMESTAMP output.
const TimeFormat = "2006-01-02 15:04:05"

// ParseTime parses a timestamp string in storage, date-only, or RFC3339 format.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range []string{TimeFormat, "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse time: %q", str)
}

// FormatTime formats a timestamp for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}
