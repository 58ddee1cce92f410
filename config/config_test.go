package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	require.False(t, cfg.Debug)
	require.Equal(t, ColorAuto, cfg.Color)
	require.False(t, cfg.Trace)
}

func TestLoadWithNoFilePresent(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(wd)
	require.NoError(t, os.Chdir(dir))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadReadsYamlFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(wd)
	require.NoError(t, os.Chdir(dir))

	content := "debug: true\ncolor: never\ntrace: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".evicc.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Debug)
	require.Equal(t, ColorNever, cfg.Color)
	require.True(t, cfg.Trace)
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(wd)
	require.NoError(t, os.Chdir(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".evicc.yaml"), []byte("debug: [this is not a bool"), 0o644))

	_, err = Load()
	require.Error(t, err)
}
