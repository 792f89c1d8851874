package safe

import (
	"log/slog"
	"runtime/debug"
	"strings"
)

// Run executes fn and converts panics into error logs. Background
// telemetry and workflow side effects go through here so a bad record
// never takes down the caller.
func Run(fn func()) {
	RunWithLog(fn, "safe.Run")
}

// RunWithLog is Run with an explicit component name for the log entry.
func RunWithLog(fn func(), component string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered",
				slog.Any("recover", r),
				slog.String("component", component),
				slog.String("stack", stackTrace()),
			)
		}
	}()

	fn()
}

// stackTrace trims the recover machinery frames and caps the output at
// 20 frames.
func stackTrace() string {
	lines := strings.Split(string(debug.Stack()), "\n")
	formatted := []string{"Stack trace:"}
	if len(lines) > 0 {
		formatted = append(formatted, "  "+lines[0])
	}
	count := 0
	for i := 1; i < len(lines) && count < 20; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		formatted = append(formatted, "  "+line)
		count++
	}
	if count == 20 {
		formatted = append(formatted, "  ... (truncated)")
	}
	return strings.Join(formatted, "\n")
}

func GetStack() string {
	return string(debug.Stack())
}
