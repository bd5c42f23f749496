package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for file logs.
const (
	maxLogSizeMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 28
)

// NewRotatingWriter returns a size-rotated writer for path.
func NewRotatingWriter(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
}

// NewFileLogger builds a JSON slog logger writing to a rotating file. With
// an empty path it logs to stderr. The returned closer flushes and closes
// the file and is safe to call in both cases.
func NewFileLogger(path string, level slog.Level) (*SlogLogger, io.Closer) {
	var w io.WriteCloser = nopCloser{os.Stderr}
	if path != "" {
		w = NewRotatingWriter(path)
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), w
}

// NewStdoutLogger is the server-side logger: JSON lines on stdout.
func NewStdoutLogger(level slog.Level) *SlogLogger {
	return NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
