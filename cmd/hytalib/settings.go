// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/hytalab/hytalib/internal/xdg"
	"github.com/hytalab/hytalib/pkg/database"
	"github.com/hytalab/hytalib/pkg/logging"
)

// CodeSettingsInvalid marks an unreadable or inconsistent settings file.
const CodeSettingsInvalid = "SETTINGS_INVALID"

// settings is the CLI's own configuration.
type settings struct {
	Log      logSettings      `koanf:"log"`
	Database databaseSettings `koanf:"database"`
}

type logSettings struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

type databaseSettings struct {
	Kind       string            `koanf:"kind"`
	Host       string            `koanf:"host"`
	Port       int               `koanf:"port"`
	Name       string            `koanf:"name"`
	File       string            `koanf:"file"`
	User       string            `koanf:"user"`
	Password   string            `koanf:"password"`
	Properties map[string]string `koanf:"properties"`
	Pool       poolSettings      `koanf:"pool"`
}

type poolSettings struct {
	MaxSize           int           `koanf:"max-size"`
	MinIdle           int           `koanf:"min-idle"`
	ConnectionTimeout time.Duration `koanf:"connection-timeout"`
	IdleTimeout       time.Duration `koanf:"idle-timeout"`
	MaxLifetime       time.Duration `koanf:"max-lifetime"`
}

func defaultSettings() settings {
	pool := database.DefaultPoolSettings()
	return settings{
		Log: logSettings{
			Format: logging.FormatText,
			Level:  "warn",
		},
		Database: databaseSettings{
			Host: database.DefaultHost,
			Pool: poolSettings{
				MaxSize:           pool.MaxPoolSize,
				MinIdle:           pool.MinIdle,
				ConnectionTimeout: pool.ConnectionTimeout,
				IdleTimeout:       pool.IdleTimeout,
				MaxLifetime:       pool.MaxLifetime,
			},
		},
	}
}

// Validate checks that the settings are usable.
func (s settings) Validate() error {
	if err := logging.ValidateFormat(s.Log.Format); err != nil {
		return oops.Code(CodeSettingsInvalid).With("key", "log.format").Wrap(err)
	}
	if _, err := logging.ParseLevel(s.Log.Level); err != nil {
		return oops.Code(CodeSettingsInvalid).With("key", "log.level").Wrap(err)
	}
	return nil
}

// databaseConfig converts the database section into a database.Config.
// A relative SQLite file is resolved against the hytalib data directory.
func (d databaseSettings) databaseConfig() (database.Config, error) {
	kind, err := database.ParseKind(d.Kind)
	if err != nil {
		return database.Config{}, err
	}
	file := d.File
	if kind == database.KindSQLite && file != "" && file != database.MemoryPath && !filepath.IsAbs(file) {
		dataDir, err := xdg.DataDir()
		if err != nil {
			return database.Config{}, oops.Code(CodeSettingsInvalid).With("key", "database.file").Wrap(err)
		}
		file = filepath.Join(dataDir, file)
	}
	b := database.NewBuilder().
		Kind(kind).
		Host(d.Host).
		Port(d.Port).
		Database(d.Name).
		FilePath(file).
		User(d.User).
		Password(d.Password).
		MaxPoolSize(d.Pool.MaxSize).
		MinIdle(d.Pool.MinIdle).
		ConnectionTimeout(d.Pool.ConnectionTimeout).
		IdleTimeout(d.Pool.IdleTimeout).
		MaxLifetime(d.Pool.MaxLifetime)
	for k, v := range d.Properties {
		b.Property(k, v)
	}
	return b.Config(), nil
}

// flagKeys maps command-line flags onto settings keys. Flags not listed
// here are not settings.
var flagKeys = map[string]string{
	"log-format":         "log.format",
	"log-level":          "log.level",
	"kind":               "database.kind",
	"host":               "database.host",
	"port":               "database.port",
	"name":               "database.name",
	"file":               "database.file",
	"user":               "database.user",
	"password":           "database.password",
	"property":           "database.properties",
	"max-pool-size":      "database.pool.max-size",
	"connection-timeout": "database.pool.connection-timeout",
}

// loadSettings layers defaults, the settings file and flags, in that order.
// A missing file is an error only when required.
func loadSettings(path string, required bool, flags *pflag.FlagSet) (settings, error) {
	k := koanf.New(".")

	if path != "" {
		_, statErr := os.Stat(path)
		if statErr == nil || required {
			if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
				return settings{}, oops.Code(CodeSettingsInvalid).With("path", path).Wrap(err)
			}
		}
	}

	if flags != nil {
		if err := k.Load(flagProvider(flags, k), nil); err != nil {
			return settings{}, oops.Code(CodeSettingsInvalid).Wrap(err)
		}
	}

	s := defaultSettings()
	if err := k.Unmarshal("", &s); err != nil {
		return settings{}, oops.Code(CodeSettingsInvalid).With("path", path).Wrap(err)
	}
	return s, nil
}

func flagProvider(flags *pflag.FlagSet, k *koanf.Koanf) *posflag.Posflag {
	return posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		if f.Name == "property" {
			pairs, _ := flags.GetStringSlice(f.Name)
			return key, parseProperties(pairs)
		}
		return key, posflag.FlagVal(flags, f)
	})
}

// parseProperties turns key=value pairs into a map. Entries without "=" map
// to an empty value.
func parseProperties(pairs []string) map[string]any {
	props := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, _ := strings.Cut(p, "=")
		if k = strings.TrimSpace(k); k != "" {
			props[k] = v
		}
	}
	return props
}
