package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogOutput returns the writer for structured logs: stdout, plus a size-rotated
// file under LogDir when one is configured. The returned closer must be closed on exit.
func SetupLogOutput(cfg *Config, name string) (io.Writer, io.Closer) {
	if cfg.LogDir == "" {
		return os.Stdout, nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, name+".log"),
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   true,
	}
	return io.MultiWriter(os.Stdout, rotator), rotator
}

// NewLogger builds the JSON logger used by every process
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.IsDev() {
		logLevel = slog.LevelDebug
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
