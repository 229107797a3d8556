// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package logging

import (
	"context"
	"log/slog"
)

// PluginLogger is the console logger handed to plugins. Every record carries
// a plugin=<name> attribute.
type PluginLogger struct {
	name   string
	logger *slog.Logger
}

// NewPluginLogger returns a logger for the named plugin on top of base.
// A nil base uses slog.Default().
func NewPluginLogger(name string, base *slog.Logger) *PluginLogger {
	if base == nil {
		base = slog.Default()
	}
	return &PluginLogger{
		name:   name,
		logger: base.With("plugin", name),
	}
}

// Name returns the plugin name the logger was created for.
func (l *PluginLogger) Name() string { return l.name }

// Slog returns the underlying structured logger.
func (l *PluginLogger) Slog() *slog.Logger { return l.logger }

// Debug logs at debug level.
func (l *PluginLogger) Debug(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs at info level.
func (l *PluginLogger) Info(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *PluginLogger) Warn(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs at error level.
func (l *PluginLogger) Error(msg string, args ...any) {
	l.logger.Log(context.Background(), slog.LevelError, msg, args...)
}
