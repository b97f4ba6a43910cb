package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/0bVdnt/PixlFX/internal/filesystem"
)

// Logger is a structured logger that owns its output file.
// The terminal belongs to tcell, so logs only ever go to a file.
type Logger struct {
	hclog.Logger

	mu   sync.Mutex
	file io.Closer
}

// Creates a logger writing to path. An empty path disables logging.
func New(path, level string) (*Logger, error) {
	if path == "" {
		return Noop(), nil
	}

	file, err := filesystem.API().OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}

	return &Logger{
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:            "pixlfx",
			Level:           lvl,
			Output:          file,
			TimeFormat:      "15:04:05.000",
			IncludeLocation: lvl <= hclog.Debug,
		}),
		file: file,
	}, nil
}

// returns a no-op logger
func Noop() *Logger {
	return &Logger{Logger: hclog.NewNullLogger()}
}

// Closes the log file
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

// Returns whether logging is enabled
func (l *Logger) IsEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file != nil
}
