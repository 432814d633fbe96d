package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCfg(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ooms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeCfg(t, "logger:\n  level: debug\n")

	cfg, gotPath, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, gotPath)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "ooms.db", cfg.Database.DBName)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadConfigEnvExpansion(t *testing.T) {
	t.Setenv("OOMS_TEST_DB", "/tmp/from-env.db")
	path := writeCfg(t, "database:\n  type: sqlite\n  dbname: ${OOMS_TEST_DB}\nlogger:\n  level: ${OOMS_TEST_LEVEL:warn}\n")

	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.db", cfg.Database.DBName)
	// unset variable falls back to its default
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
