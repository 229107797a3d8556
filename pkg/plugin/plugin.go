// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

// Package plugin provides the lifecycle base that plugins embed.
//
// A host drives a plugin through Load, then any sequence of Enable and
// Disable calls. The plugin supplies its behavior through Hooks. Hook
// failures never escape to the host: they are logged and the plugin is left
// in a consistent state. Hooks may call back into Base; a lifecycle call
// made while another one's hook is running is logged and ignored.
package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/samber/oops"
	"github.com/spf13/afero"

	"github.com/hytalab/hytalib/pkg/config"
	"github.com/hytalab/hytalib/pkg/errutil"
	"github.com/hytalab/hytalib/pkg/logging"
)

// Error codes logged or returned by Base.
const (
	CodeInvalidName   = "PLUGIN_INVALID_NAME"
	CodeNotLoaded     = "PLUGIN_NOT_LOADED"
	CodeLoadFailed    = "PLUGIN_LOAD_FAILED"
	CodeEnableFailed  = "PLUGIN_ENABLE_FAILED"
	CodeDisableFailed = "PLUGIN_DISABLE_FAILED"
)

// DefaultDataRoot is the directory holding per-plugin data directories.
const DefaultDataRoot = "plugins"

// Hooks is implemented by every plugin.
type Hooks interface {
	OnEnable(ctx context.Context) error
	OnDisable(ctx context.Context) error
}

// Loader is implemented by plugins that need to run code when loaded.
type Loader interface {
	OnLoad(ctx context.Context) error
}

// Base tracks a plugin's name, logger and enabled state.
type Base struct {
	hooks    Hooks
	base     *slog.Logger
	dataRoot string
	fs       afero.Fs

	mu      sync.RWMutex
	name    string
	logger  *logging.PluginLogger
	enabled bool
	// running names the Load, Enable or Disable whose hook is executing.
	// Hooks run without mu held, so they may call back into Base; a
	// lifecycle call made meanwhile is logged and dropped.
	running string
}

// Option configures a Base.
type Option func(*Base)

// WithLogger sets the logger plugin loggers are derived from.
func WithLogger(l *slog.Logger) Option {
	return func(b *Base) {
		b.base = l
	}
}

// WithDataRoot sets the directory under which DataDir is resolved.
func WithDataRoot(dir string) Option {
	return func(b *Base) {
		b.dataRoot = dir
	}
}

// WithFS sets the filesystem used by OpenConfig.
func WithFS(fs afero.Fs) Option {
	return func(b *Base) {
		b.fs = fs
	}
}

// New returns an unloaded Base driving hooks.
func New(hooks Hooks, opts ...Option) *Base {
	b := &Base{
		hooks:    hooks,
		base:     slog.Default(),
		dataRoot: DefaultDataRoot,
		fs:       afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load records the plugin name and creates its logger. If the hooks
// implement Loader, OnLoad runs afterwards and its failure is returned.
func (b *Base) Load(ctx context.Context, name string) error {
	if name == "" {
		return oops.Code(CodeInvalidName).Errorf("plugin name must not be empty")
	}

	logger := logging.NewPluginLogger(name, b.base)
	b.mu.Lock()
	if b.running != "" {
		running := b.running
		b.mu.Unlock()
		return oops.Code(CodeLoadFailed).
			With("plugin", name).
			With("running", running).
			Errorf("plugin lifecycle operation in progress")
	}
	b.name = name
	b.logger = logger
	b.running = "load"
	b.mu.Unlock()
	defer b.finish(false, false)

	logger.Info("loaded plugin", "name", name)

	if loader, ok := b.hooks.(Loader); ok {
		if err := safeCall(ctx, loader.OnLoad); err != nil {
			return oops.Code(CodeLoadFailed).With("plugin", name).Wrap(err)
		}
	}
	return nil
}

// Enable runs OnEnable and marks the plugin enabled on success. Calling it
// on an enabled plugin only logs a warning. Errors and panics from the hook
// are logged; the plugin then stays disabled.
func (b *Base) Enable(ctx context.Context) {
	logger, ok := b.begin("enable", true)
	if !ok {
		return
	}

	logger.Info("enabling plugin")
	if err := safeCall(ctx, b.hooks.OnEnable); err != nil {
		b.finish(false, false)
		errutil.LogError(logger.Slog(), "failed to enable plugin",
			oops.Code(CodeEnableFailed).With("plugin", logger.Name()).Wrap(err))
		return
	}

	b.finish(true, true)
	logger.Info("plugin enabled")
}

// Disable marks the plugin disabled, then runs OnDisable. Calling it on a
// disabled plugin only logs a warning. Errors and panics from the hook are
// logged; the plugin is disabled regardless.
func (b *Base) Disable(ctx context.Context) {
	logger, ok := b.begin("disable", false)
	if !ok {
		return
	}
	defer b.finish(false, false)

	logger.Info("disabling plugin")
	if err := safeCall(ctx, b.hooks.OnDisable); err != nil {
		errutil.LogError(logger.Slog(), "failed to disable plugin",
			oops.Code(CodeDisableFailed).With("plugin", logger.Name()).Wrap(err))
		return
	}
	logger.Info("plugin disabled")
}

// IsEnabled reports whether the plugin is currently enabled.
func (b *Base) IsEnabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.enabled
}

// Name returns the name given to Load, or "" before Load.
func (b *Base) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

// Logger returns the plugin logger, or nil before Load.
func (b *Base) Logger() *logging.PluginLogger {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.logger
}

// DataDir returns the plugin's data directory, dataRoot/name.
func (b *Base) DataDir() string {
	return filepath.Join(b.dataRoot, b.Name())
}

// OpenConfig opens (creating if needed) a config store for file inside
// DataDir.
func (b *Base) OpenConfig(file string) (*config.Store, error) {
	if b.Name() == "" {
		return nil, oops.Code(CodeNotLoaded).With("file", file).Errorf("plugin has not been loaded")
	}
	opts := []config.Option{config.WithFS(b.fs)}
	if l := b.Logger(); l != nil {
		opts = append(opts, config.WithLogger(l.Slog()))
	}
	return config.New(filepath.Join(b.DataDir(), file), opts...)
}

// begin claims the lifecycle for op, which moves the plugin to the enabled
// state target. It returns false, after logging why, when Load has not run,
// the plugin is already in target, or another operation holds the
// lifecycle. A disable clears the enabled flag before its hook runs.
func (b *Base) begin(op string, target bool) (*logging.PluginLogger, bool) {
	b.mu.Lock()
	logger, enabled, running := b.logger, b.enabled, b.running
	claimed := logger != nil && enabled != target && running == ""
	if claimed {
		b.running = op
		if !target {
			b.enabled = false
		}
	}
	b.mu.Unlock()

	switch {
	case claimed:
		return logger, true
	case logger == nil:
		errutil.LogError(b.base, "plugin lifecycle called before load",
			oops.Code(CodeNotLoaded).With("operation", op).Errorf("plugin has not been loaded"))
	case enabled == target && target:
		logger.Warn("plugin is already enabled")
	case enabled == target:
		logger.Warn("plugin is already disabled")
	default:
		logger.Warn("plugin lifecycle operation in progress", "operation", op, "running", running)
	}
	return nil, false
}

// finish releases the lifecycle, setting the enabled flag when set is true.
func (b *Base) finish(set, enabled bool) {
	b.mu.Lock()
	b.running = ""
	if set {
		b.enabled = enabled
	}
	b.mu.Unlock()
}

// safeCall runs fn, turning a panic into an error.
func safeCall(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in plugin hook: %v", r)
		}
	}()
	return fn(ctx)
}
