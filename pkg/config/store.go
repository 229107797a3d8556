// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package config

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/oops"
	"github.com/spf13/afero"
)

// Error codes returned by Store.
const (
	// CodeInitFailed marks a store that could not be created or first loaded.
	CodeInitFailed = "CONFIG_INIT_FAILED"
	// CodePersistFailed marks a failed read or write after construction.
	CodePersistFailed = "CONFIG_PERSIST_FAILED"
	// CodeInvalidValue marks a value that has no configuration representation.
	CodeInvalidValue = "CONFIG_INVALID_VALUE"
)

// Store is a YAML file-backed mapping with typed, default-aware accessors.
//
// Every method runs under one mutex, so operations on a Store are totally
// ordered. Mutators rewrite the whole file before returning; if the write
// fails the in-memory change is undone and the error is returned.
type Store struct {
	mu     sync.Mutex
	path   string
	fs     afero.Fs
	logger *slog.Logger
	data   *Map
}

// Option configures a Store.
type Option func(*Store)

// WithFS sets the filesystem the store reads and writes. Defaults to the OS filesystem.
func WithFS(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

// WithLogger sets the logger for store diagnostics. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New opens the configuration file at path, creating its directory chain
// and an empty mapping file when missing, then loads it. Any failure returns
// an error coded CodeInitFailed.
func New(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		fs:     afero.NewOsFs(),
		logger: slog.Default(),
		data:   NewMap(),
	}
	for _, opt := range opts {
		opt(s)
	}

	empty, err := encode(NewMap())
	if err != nil {
		return nil, oops.Code(CodeInitFailed).With("path", path).Wrap(err)
	}
	created, err := ensureFile(s.fs, path, empty)
	if err != nil {
		return nil, oops.Code(CodeInitFailed).With("path", path).Wrap(err)
	}
	if created {
		s.logger.Info("created config file", "path", path)
	}

	if err := s.load(); err != nil {
		return nil, oops.Code(CodeInitFailed).With("path", path).Wrap(err)
	}
	return s, nil
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Reload discards in-memory state and reparses the file. Blank files and
// non-mapping documents load as an empty mapping. On failure the previous
// state is kept.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return oops.Code(CodePersistFailed).
			With("path", s.path).
			With("operation", "reload").
			Wrap(err)
	}
	return nil
}

// Save rewrites the file from the in-memory mapping.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist("save")
}

// Get returns the raw value at key. No coercion.
func (s *Store) Get(key string) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Get(key)
}

// Contains reports whether key is present.
func (s *Store) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Has(key)
}

// Keys returns the top-level keys in file order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Keys()
}

// GetString returns the value at key rendered as text, or "".
func (s *Store) GetString(key string) string {
	return s.GetStringOr(key, "")
}

// GetStringOr returns the value at key rendered as text, or def when absent
// or not a scalar.
func (s *Store) GetStringOr(key, def string) string {
	return s.value(key).StringOr(def)
}

// GetInt returns the value at key coerced to int, or 0.
func (s *Store) GetInt(key string) int {
	return s.GetIntOr(key, 0)
}

// GetIntOr returns the value at key coerced to int, or def.
func (s *Store) GetIntOr(key string, def int) int {
	return s.value(key).IntOr(def)
}

// GetFloat returns the value at key coerced to float64, or 0.
func (s *Store) GetFloat(key string) float64 {
	return s.GetFloatOr(key, 0)
}

// GetFloatOr returns the value at key coerced to float64, or def.
func (s *Store) GetFloatOr(key string, def float64) float64 {
	return s.value(key).FloatOr(def)
}

// GetBool returns the value at key coerced to bool, or false.
func (s *Store) GetBool(key string) bool {
	return s.GetBoolOr(key, false)
}

// GetBoolOr returns the value at key coerced to bool, or def.
func (s *Store) GetBoolOr(key string, def bool) bool {
	return s.value(key).BoolOr(def)
}

// Section returns a copy of the mapping at key, or an empty mapping when the
// key is missing or holds something else. Never nil.
func (s *Store) Section(key string) *Map {
	if m := s.SectionOrNil(key); m != nil {
		return m
	}
	return NewMap()
}

// SectionOrNil returns a copy of the mapping at key, or nil when the key is
// missing or holds something else.
func (s *Store) SectionOrNil(key string) *Map {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data.values[key]
	if !ok || v.kind != KindMap {
		return nil
	}
	return v.m.Clone()
}

// AsMap returns a snapshot of the whole mapping. Changes to the snapshot do
// not reach the store.
func (s *Store) AsMap() *Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Set stores value at key and rewrites the file.
func (s *Store) Set(key string, value any) error {
	v, err := ValueOf(value)
	if err != nil {
		return oops.Code(CodeInvalidValue).With("key", key).Wrap(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data.values[key]
	s.data.Put(key, v)
	if err := s.persist("set"); err != nil {
		if had {
			s.data.values[key] = prev
		} else {
			s.data.Delete(key)
		}
		return err
	}
	return nil
}

// Remove deletes key and rewrites the file. Removing an absent key is a
// no-op and does not touch the file.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.data.index(key)
	if idx < 0 {
		return nil
	}
	prev := s.data.values[key]
	s.data.Delete(key)
	if err := s.persist("remove"); err != nil {
		s.data.insertAt(idx, key, prev)
		return err
	}
	return nil
}

// SetDefault stores value at key only when key is absent, writing the file
// only in that case.
func (s *Store) SetDefault(key string, value any) error {
	v, err := ValueOf(value)
	if err != nil {
		return oops.Code(CodeInvalidValue).With("key", key).Wrap(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.Has(key) {
		return nil
	}
	s.data.Put(key, v)
	if err := s.persist("set_default"); err != nil {
		s.data.Delete(key)
		return err
	}
	return nil
}

// ApplyDefaults inserts every key of defaults missing from the store, in
// defaults' order, and writes the file once if anything was inserted.
func (s *Store) ApplyDefaults(defaults *Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inserted []string
	defaults.Range(func(k string, v Value) bool {
		if !s.data.Has(k) {
			s.data.Put(k, v)
			inserted = append(inserted, k)
		}
		return true
	})
	if len(inserted) == 0 {
		return nil
	}

	if err := s.persist("apply_defaults"); err != nil {
		for _, k := range inserted {
			s.data.Delete(k)
		}
		return err
	}
	return nil
}

// GetOrDefault returns the value at key as a T when it is present and its
// Go representation (see Value.Interface) is a T; otherwise def. A type
// mismatch is treated as absence, never as an error. T may also be Value
// or *Map.
//
// No numeric conversion happens here, unlike the typed getters: an integer
// read with a float64 default yields the default, and an integer is only
// returned for T of int or int64. Use GetFloatOr to widen integers.
func GetOrDefault[T any](s *Store, key string, def T) T {
	v, ok := s.Get(key)
	if !ok || v.IsNull() {
		return def
	}

	if t, ok := v.Interface().(T); ok {
		return t
	}
	if t, ok := any(v).(T); ok {
		return t
	}
	switch v.kind {
	case KindInt:
		if t, ok := any(v.i).(T); ok {
			return t
		}
	case KindMap:
		if t, ok := any(v.m).(T); ok {
			return t
		}
	case KindList:
		if t, ok := any(v.list).(T); ok {
			return t
		}
	}
	return def
}

func (s *Store) value(key string) Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.values[key]
}

// load replaces s.data with the file content. Callers hold s.mu (or own s
// exclusively during construction).
func (s *Store) load() (err error) {
	defer func() {
		StoreReloads.WithLabelValues(resultLabel(err)).Inc()
	}()

	raw, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	m, err := decode(raw)
	if err != nil {
		return err
	}
	s.data = m
	s.logger.Debug("loaded config", "path", s.path, "keys", m.Len())
	return nil
}

// persist writes s.data to disk. Callers hold s.mu.
func (s *Store) persist(operation string) (err error) {
	defer func() {
		StoreWrites.WithLabelValues(operation, resultLabel(err)).Inc()
	}()

	data, err := encode(s.data)
	if err == nil {
		err = atomicWrite(s.fs, s.path, data)
	}
	if err != nil {
		s.logger.Warn("config write failed", "path", s.path, "operation", operation, "error", err)
		return oops.Code(CodePersistFailed).
			With("path", s.path).
			With("operation", operation).
			Wrap(err)
	}
	s.logger.Debug("saved config", "path", s.path, "operation", operation)
	return nil
}
