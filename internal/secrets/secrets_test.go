// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, NVIDIAAPIKey, "  nvapi-abc123  \n")
				writeFile(t, dir, "other-key", "v2")
				return dir
			},
			want: Secrets{NVIDIAAPIKey: "nvapi-abc123", "other-key": "v2"},
		},
		{
			name: "missing directory is empty",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files dotfiles and directories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, NVIDIAAPIKey, "nvapi-real")
				writeFile(t, dir, "blank", "  \n\t")
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Secrets{NVIDIAAPIKey: "nvapi-real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got.Lookup("bad-key")
	assert.False(t, hasBad)
}

func TestApply(t *testing.T) {
	s := Secrets{NVIDIAAPIKey: "from-file"}

	t.Run("fills empty key", func(t *testing.T) {
		v := viper.New()
		applied := s.Apply(v, Bindings)
		assert.Equal(t, []string{NVIDIAAPIKey}, applied)
		assert.Equal(t, "from-file", v.GetString("generation.api_key"))
	})

	t.Run("keeps configured key", func(t *testing.T) {
		v := viper.New()
		v.Set("generation.api_key", "from-env")
		assert.Empty(t, s.Apply(v, Bindings))
		assert.Equal(t, "from-env", v.GetString("generation.api_key"))
	})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
