package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useFile(t *testing.T, path string) {
	t.Helper()

	origOverride, origCfg := ConfigFileOverride, Cfg
	t.Cleanup(func() {
		ConfigFileOverride, Cfg = origOverride, origCfg
	})

	ConfigFileOverride = path
	Cfg = defaults()
}

func TestReadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	useFile(t, path)

	require.NoError(t, ReadConfigFile())
	assert.Equal(t, defaults(), Cfg)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "log_level: warn")
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	useFile(t, path)

	require.NoError(t, os.WriteFile(path, []byte("netns: blue\nlog_level: debug\nsim: true\n"), 0o644))
	require.NoError(t, ReadConfigFile())

	assert.Equal(t, "blue", Cfg.NetNS)
	assert.Equal(t, "debug", Cfg.LogLevel)
	assert.Equal(t, "text", Cfg.LogFormat)
	assert.True(t, Cfg.Sim)
}

func TestReadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	useFile(t, path)

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	require.NoError(t, ReadConfigFile())
	assert.Equal(t, defaults(), Cfg)
}

func TestReadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	useFile(t, path)

	require.NoError(t, os.WriteFile(path, []byte("log_format: xml\n"), 0o644))
	assert.Error(t, ReadConfigFile())

	require.NoError(t, os.WriteFile(path, []byte("sim: [\n"), 0o644))
	assert.Error(t, ReadConfigFile())
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	useFile(t, path)

	require.NoError(t, os.WriteFile(path, []byte("netns: blue\n"), 0o644))
	t.Setenv("IFCFG_NETNS", "red")
	t.Setenv("IFCFG_LOG_LEVEL", "error")

	require.NoError(t, ReadConfigFile())
	assert.Equal(t, "red", Cfg.NetNS)
	assert.Equal(t, "error", Cfg.LogLevel)
}
