package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such-config.yml"))
	require.NoError(t, err, "a missing config file must not be an error")
	assert.Equal(t, DefaultPrompt, cfg.Prompt)
	assert.Equal(t, DefaultMaxLineLen, cfg.MaxLineLen)
}

func TestLoadOverrides(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(file, []byte("prompt: \"> \"\nmax_line_length: 100\n"), 0o644))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "> ", cfg.Prompt)
	assert.Equal(t, 100, cfg.MaxLineLen)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(file, []byte("prompt: \"%% \"\n"), 0o644))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "%% ", cfg.Prompt)
	assert.Equal(t, DefaultMaxLineLen, cfg.MaxLineLen, "omitted field should keep its default")
}

func TestLoadInvalidYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(file, []byte("prompt: [unclosed\n"), 0o644))

	_, err := Load(file)
	assert.Error(t, err)
}
