// Package logging builds the file-backed logger. The TUI owns stdout and
// stderr, so logs must never write to the terminal.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a production logger writing to path, or a nop logger when path
// is empty.
func New(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
