// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

// Package config provides the YAML-backed configuration store used by
// plugins.
//
// A [Store] is bound to one file. Opening it creates the directory chain and
// an empty file when needed, so a plugin can ask for its config on first run
// without any setup:
//
//	store, err := config.New("plugins/example/config.yml")
//	if err != nil {
//		return err
//	}
//	defaults := config.NewMap().
//		Put("greeting", config.StringValue("Welcome!")).
//		Put("max-homes", config.IntValue(3))
//	if err := store.ApplyDefaults(defaults); err != nil {
//		return err
//	}
//	homes := store.GetIntOr("max-homes", 1)
//
// # Values
//
// Values are held in the tagged variant [Value]: null, bool, int, float,
// string, list or nested [Map]. Keys are flat: a dotted key is just a key.
// Nested regions are read with [Store.Section].
//
// # Coercion
//
// Typed getters never fail. Integers and floats convert into each other,
// strings are parsed when a number or boolean is requested, and anything
// else falls back to the supplied (or zero) default.
//
// # Persistence
//
// Every mutator rewrites the whole file before returning, using block-style
// YAML with two-space indentation so users can hand-edit it. Writes go
// through a temp file and rename. A failed write undoes the in-memory change
// and returns an error coded [CodePersistFailed].
//
// The file is assumed to be owned by one process. Edits made by other
// processes between writes are not detected and will be overwritten.
package config
