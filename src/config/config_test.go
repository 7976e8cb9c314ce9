// SPDX-License-Identifier: MIT
package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHasSaneBaseline(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "production", cfg.General.Mode)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.True(t, cfg.Server.RateLimit)
	assert.Equal(t, "realistic", cfg.Privacy.UAStrategy)
	assert.True(t, cfg.Privacy.FallbackToSystem)
	assert.NotEmpty(t, cfg.Privacy.DoHServers)
}

func TestLoadWritesDefaultConfigWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, path, err := Load(dir, filepath.Join(dir, "data"))
	require.NoError(t, err)
	require.FileExists(t, path)
	assert.Equal(t, 8090, cfg.Server.Port)
}

func TestLoadReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	_, path, err := Load(dir, filepath.Join(dir, "data"))
	require.NoError(t, err)

	cfg := Default()
	cfg.Server.Port = 9999
	require.NoError(t, Save(cfg, path))

	reloaded, _, err := Load(dir, filepath.Join(dir, "data"))
	require.NoError(t, err)
	assert.Equal(t, 9999, reloaded.Server.Port)
}

func TestApplyEnvOverridesReadsSeeseaPrefixedVars(t *testing.T) {
	t.Setenv("SEESEA_SERVER_PORT", "1234")
	t.Setenv("SEESEA_PRIVACY_TOR_ENABLED", "yes")

	cfg := Default()
	applyEnvOverrides(cfg)

	assert.Equal(t, 1234, cfg.Server.Port)
	assert.True(t, cfg.Privacy.Tor.Enabled)
}

func TestParseBoolRecognizesTruthyAndFalsyWords(t *testing.T) {
	assert.True(t, ParseBool("yes"))
	assert.True(t, ParseBool("enable"))
	assert.False(t, ParseBool("nope"))
	assert.False(t, ParseBool(""))
}
