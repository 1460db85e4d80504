package logging

import (
	"log/slog"
	"time"
)

const logTimestampLayout = "2006-01-02 15:04:05"

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(logTimestampLayout)
}

// timeRounding keeps millisecond precision below one second and rounds
// longer durations to 10ms.
func timeRounding(v slog.Value) time.Duration {
	if v.Duration() < time.Second {
		return time.Millisecond
	}
	return 10 * time.Millisecond
}
