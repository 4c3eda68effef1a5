package desim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateRejectsMaxTimeNotGreaterThanTimeInit(t *testing.T) {
	cfg := Config{MaxTime: 1, TimeInit: 1}
	assert.Error(t, cfg.Validate())
}

func TestConfig_ValidateRejectsMissingOutputDir(t *testing.T) {
	cfg := Config{MaxTime: 10, OutputDir: filepath.Join(t.TempDir(), "does-not-exist")}
	assert.Error(t, cfg.Validate())
}

func TestConfig_ValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := Config{MaxTime: 10, TimeInit: 0, OutputDir: t.TempDir()}
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_ParsesKnownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_time: 10\ntime_init: 1\nprogress: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.MaxTime)
	assert.Equal(t, 1.0, cfg.TimeInit)
	assert.True(t, cfg.Progress)
}

func TestLoadConfig_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_time: 10\nnot_a_real_field: 1\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
