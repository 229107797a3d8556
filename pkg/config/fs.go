// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// ensureFile creates the parent directory chain and, when the file is
// missing, writes initial as its content. It reports whether it created the file.
func ensureFile(fs afero.Fs, path string, initial []byte) (bool, error) {
	if err := fs.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return false, fmt.Errorf("stat config file: %w", err)
	}
	if exists {
		return false, nil
	}

	if err := atomicWrite(fs, path, initial); err != nil {
		return false, err
	}
	return true, nil
}

// atomicWrite writes data to a sibling temp file and renames it over path,
// so readers never see a half-written config.
func atomicWrite(fs afero.Fs, path string, data []byte) error {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Errorf("generate temp suffix: %w", err)
	}
	tmp := path + ".tmp." + hex.EncodeToString(suffix)

	if err := afero.WriteFile(fs, tmp, data, filePerm); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp) //nolint:errcheck // best effort cleanup; rename error takes precedence
		return fmt.Errorf("replace config file: %w", err)
	}
	return nil
}
