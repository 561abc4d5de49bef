package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// WriteFailureLog records a single item failure in its own file, replacing any
// previous log at path. The file is closed before returning on every path.
func WriteFailureLog(path, message string, cause error, attrs ...Attr) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create failure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open failure log %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close failure log %s: %w", path, cerr)
		}
	}()

	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(file, lvl, false))
	attrs = append(attrs, Error(cause))
	logger.LogAttrs(context.Background(), slog.LevelError, message, attrs...)
	return nil
}
