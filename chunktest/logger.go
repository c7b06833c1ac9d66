// Package chunktest provides shared helpers and document fixtures for
// tests across the module.
package chunktest

import (
	"bytes"
	"log/slog"
	"testing"
)

func NewTestLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	logger := slog.New(handler)
	return logger, &buf
}
