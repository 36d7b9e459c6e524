package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathHandler_Defaults(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	ph := NewSecurePathHandler()

	db, err := ph.GetSecureDBPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, ".bulletin", "bulletin.db"), db)

	cfg, err := ph.GetSecureConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, ".config", "bulletin", "config.toml"), cfg)

	logPath, err := ph.GetSecureLogPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, ".bulletin", "bulletin.log"), logPath)
}

func TestPathHandler_UserPaths(t *testing.T) {
	secure := NewSecurePathHandler()
	permissive := NewPermissivePathHandler()
	dir := t.TempDir()

	_, err := secure.GetSecureDBPath("/etc/bulletin.db")
	assert.Error(t, err)

	custom := filepath.Join(dir, "custom.db")
	got, err := permissive.GetSecureDBPath(custom)
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	_, err = permissive.GetSecureConfigPath("../../config.toml")
	assert.Error(t, err)
}

func TestPathHandler_EnsureSecureDirectory(t *testing.T) {
	ph := NewPermissivePathHandler()
	dir := filepath.Join(t.TempDir(), "logs")

	got, err := ph.EnsureSecureDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
