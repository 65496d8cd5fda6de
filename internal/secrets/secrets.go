// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads credentials from a directory of plain-text files,
// one secret per file: the filename is the key name and the trimmed file
// contents are the value. Secrets fill configuration keys that neither the
// environment nor the config file set.
//
// Known key files: nvidia-api-key.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultDir is the secrets directory relative to the working directory.
	DefaultDir = ".secrets"

	// NVIDIAAPIKey names the file holding the generation endpoint key.
	NVIDIAAPIKey = "nvidia-api-key"
)

// Bindings maps secret file names to the configuration keys they fill.
var Bindings = map[string]string{
	NVIDIAAPIKey: "generation.api_key",
}

// Secrets holds loaded secret values by file name.
type Secrets map[string]string

// Load reads every regular, non-dot file in dir. A missing directory yields
// an empty set. Unreadable or empty files are skipped; unreadable ones are
// logged.
func Load(dir string, logger *slog.Logger) (Secrets, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	out := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}

// Lookup returns the value of the named secret.
func (s Secrets) Lookup(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Apply copies each bound secret into v when the target key is still empty,
// and returns the names of the secrets it applied.
func (s Secrets) Apply(v *viper.Viper, bindings map[string]string) []string {
	var applied []string
	for name, key := range bindings {
		value, ok := s.Lookup(name)
		if !ok || v.GetString(key) != "" {
			continue
		}
		v.Set(key, value)
		applied = append(applied, name)
	}
	return applied
}
