// Package telemetry writes structured JSON log lines, one per event.
package telemetry

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

const service = "resume-builder"

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
	now           = time.Now
)

// SetOutput redirects log lines to w and returns a func restoring the previous writer.
func SetOutput(w io.Writer) func() {
	mu.Lock()
	prev := out
	out = w
	mu.Unlock()
	return func() {
		mu.Lock()
		out = prev
		mu.Unlock()
	}
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write("info", msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write("warn", msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write("error", msg, fields)
}

func write(level, msg string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+4)
	for k, v := range fields {
		if err, ok := v.(error); ok && err != nil {
			v = err.Error()
		}
		entry[k] = v
	}
	// Reserved keys win over caller fields.
	entry["ts"] = now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level
	entry["msg"] = msg
	entry["service"] = service

	data, err := json.Marshal(entry)
	if err != nil {
		data, _ = json.Marshal(map[string]any{
			"ts":      now().UTC().Format(time.RFC3339Nano),
			"level":   "error",
			"msg":     "logger marshal failed",
			"service": service,
			"event":   msg,
			"err":     err.Error(),
		})
	}
	data = append(data, '\n')

	mu.Lock()
	defer mu.Unlock()
	_, _ = out.Write(data)
}
