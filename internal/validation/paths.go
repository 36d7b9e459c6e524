package validation

import (
	"os"
	"path/filepath"
)

// PathHandler resolves the app's file locations through a FilePathValidator.
type PathHandler struct {
	validator *FilePathValidator
}

func NewSecurePathHandler() *PathHandler {
	return &PathHandler{validator: NewFilePathValidator()}
}

func NewPermissivePathHandler() *PathHandler {
	return &PathHandler{validator: NewPermissiveFilePathValidator()}
}

// GetSecureDBPath validates userPath, defaulting to ~/.bulletin/bulletin.db.
func (ph *PathHandler) GetSecureDBPath(userPath string) (string, error) {
	return ph.fileOrDefault(userPath, ".bulletin", "bulletin.db")
}

// GetSecureConfigPath validates userPath, defaulting to
// ~/.config/bulletin/config.toml.
func (ph *PathHandler) GetSecureConfigPath(userPath string) (string, error) {
	return ph.fileOrDefault(userPath, ".config", "bulletin", "config.toml")
}

// GetSecureLogPath validates userPath, defaulting to ~/.bulletin/bulletin.log.
func (ph *PathHandler) GetSecureLogPath(userPath string) (string, error) {
	return ph.fileOrDefault(userPath, ".bulletin", "bulletin.log")
}

func (ph *PathHandler) fileOrDefault(userPath string, defaultParts ...string) (string, error) {
	if userPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		userPath = filepath.Join(append([]string{homeDir}, defaultParts...)...)
	}
	return ph.validator.ValidateFile(userPath)
}

// EnsureSecureDirectory validates path and creates it if missing.
func (ph *PathHandler) EnsureSecureDirectory(path string) (string, error) {
	return ph.validator.ValidateDirectory(path, true)
}
