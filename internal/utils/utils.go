package utils

import (
	"context"
	"strings"
	"time"
)

var after = time.After

// WaitFor pauses for d. It returns ctx.Err() as soon as ctx is done.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-after(d):
		return nil
	}
}

// TruncateForLog flattens s into a single line and cuts it to limit runes. Resume
// text and model responses span many lines, which breaks console log output.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	runes := []rune(strings.Join(strings.Fields(s), " "))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
