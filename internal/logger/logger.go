// Package logger routes the standard logger, slog and gin's request log to
// stderr or to a rotating file.
package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"

	"github.com/mrlokans/bookoutlet/internal/config"
)

// Setup installs the configured sink as the output of log, slog and gin.
// The returned closer flushes the log file, if any.
func Setup(cfg config.Log) io.Closer {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   true,
		}
		w = file
		closer = file
	}

	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	slog.SetDefault(New(w, cfg.Level))
	gin.DefaultWriter = w
	gin.DefaultErrorWriter = w
	return closer
}

// New creates a text slog.Logger writing to w at the given level.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else
// is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
