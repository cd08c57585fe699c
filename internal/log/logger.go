package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

type Logger struct {
	mu      sync.Mutex
	console io.Writer
	file    *os.File
	logJSON bool
	logText bool
}

func New(logFilePath string, logJSON, logText bool) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	return &Logger{
		console: os.Stdout,
		file:    file,
		logJSON: logJSON,
		logText: logText,
	}, nil
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

type LogEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Path      string          `json:"path,omitempty"`
	NewPath   string          `json:"new_path,omitempty"`
	Fields    string          `json:"fields,omitempty"`
	Action    types.FixAction `json:"action,omitempty"`
	Error     string          `json:"error,omitempty"`
	Duration  time.Duration   `json:"duration,omitempty"`
}

// LogFix records the outcome of normalizing one file.
func (l *Logger) LogFix(result types.FixResult, duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Message:   fmt.Sprintf("%s: %s [%s]", result.Action, result.Entry.Name, result.Fields),
		Path:      result.Entry.Path,
		Fields:    result.Fields.String(),
		Action:    result.Action,
		Duration:  duration,
	}

	if result.Path != result.Entry.Path {
		entry.NewPath = result.Path
		entry.Message = fmt.Sprintf("%s: %s -> %s [%s]",
			result.Action, result.Entry.Name, filepath.Base(result.Path), result.Fields)
	}

	if result.Error != "" {
		entry.Level = "ERROR"
		entry.Error = result.Error
	}

	l.writeEntry(entry)
}

func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Message:   msg,
	}
	l.writeEntry(entry)
}

func (l *Logger) Error(msg string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "ERROR",
		Message:   msg,
		Error:     err.Error(),
	}
	l.writeEntry(entry)
}

func (l *Logger) writeEntry(entry LogEntry) {
	if l.logJSON && l.file != nil {
		data, _ := json.Marshal(entry)
		l.file.Write(data)
		l.file.Write([]byte("\n"))
	}

	if l.logText && l.file != nil {
		line := fmt.Sprintf("[%s] %s %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Level,
			entry.Message,
		)
		if entry.Error != "" {
			line = fmt.Sprintf("[%s] %s %s - Error: %s\n",
				entry.Timestamp.Format("2006-01-02 15:04:05"),
				entry.Level,
				entry.Message,
				entry.Error,
			)
		}
		l.file.WriteString(line)
	}
}

func (l *Logger) Summary(summary types.RunSummary) {
	fmt.Fprintln(l.console, "\n=== PhotosNorm Summary ===")
	fmt.Fprintf(l.console, "Scanned files:  %d\n", summary.ScannedFiles)
	fmt.Fprintf(l.console, "Processed:      %d\n", summary.Processed)
	fmt.Fprintf(l.console, "Fixed:          %d\n", summary.Fixed)
	fmt.Fprintf(l.console, "Renamed:        %d\n", summary.Renamed)
	fmt.Fprintf(l.console, "Unchanged:      %d\n", summary.Unchanged)
	fmt.Fprintf(l.console, "Skipped:        %d\n", summary.Skipped)
	fmt.Fprintf(l.console, "Failed:         %d\n", summary.Failed)
	fmt.Fprintf(l.console, "Duration:       %s\n", summary.Duration.Round(time.Second))
	fmt.Fprintln(l.console, "==========================")
}

func (l *Logger) Progress(current, total int, filename string) {
	fmt.Fprintf(l.console, "\r[%d/%d] %s", current, total, filename)
}
