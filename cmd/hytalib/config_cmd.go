// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package main

import (
	"bytes"
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hytalab/hytalib/pkg/config"
)

// CodeKeyNotFound is returned by "config get" for a missing key.
const CodeKeyNotFound = "CONFIG_KEY_NOT_FOUND"

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit plugin configuration files",
		Long: `Read and change YAML plugin configuration files the same way plugins
do. Files are created when missing and rewritten after every change.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <file> <key>",
		Short: "Print the value stored at a top-level key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(args[0])
			if err != nil {
				return err
			}
			v, ok := store.Get(args[1])
			if !ok {
				return oops.Code(CodeKeyNotFound).
					With("file", args[0]).
					With("key", args[1]).
					Errorf("key %q not found", args[1])
			}
			out, err := renderValue(v)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <file> <key> <value>",
		Short: "Store a YAML value at a top-level key",
		Long: `Store a value at a top-level key. The value is read as YAML, so 42 is
an integer, "42" is a string and [a, b] is a list.`,
		Args: cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := config.ParseValue(args[2])
			if err != nil {
				return oops.Code(config.CodeInvalidValue).With("key", args[1]).Wrap(err)
			}
			store, err := a.openStore(args[0])
			if err != nil {
				return err
			}
			return store.Set(args[1], v)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <file> <key>",
		Short: "Delete a top-level key",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			store, err := a.openStore(args[0])
			if err != nil {
				return err
			}
			return store.Remove(args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "defaults <file> <defaults.yaml>",
		Short: "Add keys from a defaults file that the config file lacks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := afero.ReadFile(a.fs, args[1])
			if err != nil {
				return oops.With("file", args[1]).Wrap(err)
			}
			defaults, err := config.Parse(raw)
			if err != nil {
				return oops.Code(config.CodeInvalidValue).With("file", args[1]).Wrap(err)
			}
			store, err := a.openStore(args[0])
			if err != nil {
				return err
			}
			before := len(store.Keys())
			if err := store.ApplyDefaults(defaults); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d of %d default keys\n", len(store.Keys())-before, defaults.Len())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <file>",
		Short: "Print the whole file as the store sees it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(args[0])
			if err != nil {
				return err
			}
			out, err := config.Marshal(store.AsMap())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	return cmd
}

func (a *app) openStore(path string) (*config.Store, error) {
	return config.New(path, config.WithFS(a.fs), config.WithLogger(a.logger))
}

// renderValue formats v for the terminal: scalars as plain text, lists and
// mappings as block YAML.
func renderValue(v config.Value) (string, error) {
	switch v.Kind() {
	case config.KindNull:
		return "null\n", nil
	case config.KindMap:
		m, _ := v.AsMap()
		out, err := config.Marshal(m)
		return string(out), err
	case config.KindList:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v.Interface()); err != nil {
			return "", err
		}
		if err := enc.Close(); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return v.StringOr("") + "\n", nil
	}
}
