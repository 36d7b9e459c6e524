package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePathValidator_Secure(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	v := NewFilePathValidator()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "home expansion", input: "~/.bulletin/bulletin.db", want: filepath.Join(homeDir, ".bulletin", "bulletin.db")},
		{name: "config dir", input: filepath.Join(homeDir, ".config", "bulletin", "config.toml"), want: filepath.Join(homeDir, ".config", "bulletin", "config.toml")},
		{name: "temp dir", input: filepath.Join(os.TempDir(), "bulletin-test.db"), want: filepath.Join(os.TempDir(), "bulletin-test.db")},
		{name: "outside allowed", input: filepath.Join(homeDir, "Documents", "x.db"), wantErr: "not within allowed"},
		{name: "relative", input: "bulletin.db", wantErr: "relative paths"},
		{name: "traversal", input: "~/.bulletin/../.ssh/id_rsa", wantErr: "dangerous sequence"},
		{name: "bare dotdot", input: "/tmp/..", wantErr: "traversal"},
		{name: "null byte", input: "/tmp/a\x00b", wantErr: "null bytes"},
		{name: "control char", input: "/tmp/a\nb", wantErr: "control characters"},
		{name: "unc", input: "//server/share", wantErr: "dangerous sequence"},
		{name: "other user tilde", input: "~root/.bulletin", wantErr: "tilde"},
		{name: "empty", input: "", wantErr: "cannot be empty"},
		{name: "too long", input: "/tmp/" + strings.Repeat("a", 5000), wantErr: "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndSanitize(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilePathValidator_Permissive(t *testing.T) {
	v := NewPermissiveFilePathValidator()

	got, err := v.ValidateAndSanitize("bulletin.db")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "bulletin.db", filepath.Base(got))

	_, err = v.ValidateAndSanitize("../escape.db")
	assert.Error(t, err)
}

func TestFilePathValidator_ValidateDirectory(t *testing.T) {
	v := NewPermissiveFilePathValidator()
	dir := filepath.Join(t.TempDir(), "nested", "dir")

	got, err := v.ValidateDirectory(dir, false)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))

	_, err = v.ValidateDirectory(dir, true)
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = v.ValidateDirectory(file, false)
	assert.ErrorContains(t, err, "not a directory")
}

func TestFilePathValidator_ValidateFile(t *testing.T) {
	v := NewPermissiveFilePathValidator()
	dir := t.TempDir()

	got, err := v.ValidateFile(filepath.Join(dir, "missing.db"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "missing.db"), got)

	_, err = v.ValidateFile(dir)
	assert.ErrorContains(t, err, "is a directory")
}

func TestCheckBaseDirs_SiblingPrefix(t *testing.T) {
	base := t.TempDir()
	v := &FilePathValidator{AllowedBaseDirs: []string{filepath.Join(base, "app")}, MaxPathLength: maxPathLength}

	assert.NoError(t, v.checkBaseDirs(filepath.Join(base, "app", "x.db")))
	assert.Error(t, v.checkBaseDirs(filepath.Join(base, "app-other", "x.db")))
	assert.NoError(t, v.checkBaseDirs(filepath.Join(base, "app", "..data")), "names starting with dots are not traversal")
}
