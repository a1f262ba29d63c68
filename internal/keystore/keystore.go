// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package keystore reads API keys from the local filesystem. Keys never
// live in the config file so that configs can be shared freely.
package keystore

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// envKey overrides the on-disk key when set.
const envKey = "REALWEATHER_API_KEY"

var (
	ErrEmptyKey          = errors.New("key file contains no key")
	ErrInsecurePermitted = errors.New("key file must not be readable by group or others")
)

// Store retrieves API keys from a file path.
type Store struct {
	path string
}

// New returns a Store reading from the given path.
func New(path string) *Store {
	return &Store{path: path}
}

// Key returns the API key. The environment variable takes precedence;
// otherwise the key file is read. A key file with group or world read
// permissions is rejected.
func (s *Store) Key() (string, error) {
	if key := strings.TrimSpace(os.Getenv(envKey)); key != "" {
		return key, nil
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to stat key file %q: %w", s.path, err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		return "", fmt.Errorf("%w: %q has mode %s", ErrInsecurePermitted, s.path, info.Mode().Perm())
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read key file %q: %w", s.path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}

	return "", fmt.Errorf("%w: %q", ErrEmptyKey, s.path)
}
